package message

import (
	"encoding/json"
	"fmt"
)

// ParseRequest parses a JSON execute request.
// It returns ErrJSONUnmarshalFailed (wrapping the original error) if unmarshalling fails.
func ParseRequest(data []byte) (ExecuteRequest, error) {
	var req ExecuteRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ExecuteRequest{}, fmt.Errorf("%w: %w", ErrJSONUnmarshalFailed, err)
	}
	if req.BeginTime < 0 || (req.EndTime != 0 && req.EndTime <= req.BeginTime) {
		return ExecuteRequest{}, fmt.Errorf("%w: [%g, %g)", ErrInvalidTimeRange, req.BeginTime, req.EndTime)
	}
	return req, nil
}

func EncodeRequest(req ExecuteRequest) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJSONMarshalFailed, err)
	}
	return data, nil
}

func EncodeResult(r *Result) ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJSONMarshalFailed, err)
	}
	return data, nil
}

func DecodeResult(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJSONUnmarshalFailed, err)
	}
	return &r, nil
}

// Snippet returns a prefix of a raw payload, useful for logging.
func Snippet(data []byte, maxLength int) string {
	if maxLength <= 0 {
		return "..."
	}
	if len(data) > maxLength {
		return string(data[:maxLength]) + "..."
	}
	return string(data)
}
