package message

import "errors"

var (
	ErrJSONUnmarshalFailed = errors.New("failed to unmarshal JSON message")
	ErrJSONMarshalFailed   = errors.New("failed to marshal JSON message")
	ErrInvalidTimeRange    = errors.New("request endTime must be greater than beginTime")
)
