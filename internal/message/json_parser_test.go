package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest([]byte(`{"id":"r1","beginTime":10,"endTime":90,"statistics":["Time"],"planeMinValue":2}`))
	require.NoError(t, err)
	assert.Equal(t, "r1", req.ID)
	assert.Equal(t, 10.0, req.BeginTime)
	assert.Equal(t, 90.0, req.EndTime)
	assert.Equal(t, []string{"Time"}, req.Statistics)
	require.NotNil(t, req.PlaneMinValue)
	assert.Equal(t, 2.0, *req.PlaneMinValue)
}

func TestParseRequestErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{name: "malformed", input: `{"id":`, want: ErrJSONUnmarshalFailed},
		{name: "wrong type", input: `{"beginTime":"soon"}`, want: ErrJSONUnmarshalFailed},
		{name: "reversed range", input: `{"beginTime":50,"endTime":10}`, want: ErrInvalidTimeRange},
		{name: "negative begin", input: `{"beginTime":-1}`, want: ErrInvalidTimeRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest([]byte(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseRequestOpenEnd(t *testing.T) {
	req, err := ParseRequest([]byte(`{"beginTime":50}`))
	require.NoError(t, err)
	assert.Zero(t, req.EndTime)
}

func TestRequestedTime(t *testing.T) {
	tests := []struct {
		value  string
		wantOK bool
	}{
		{value: "2024-05-01T10:00:00Z", wantOK: true},
		{value: "2024-05-01T10:00:00.123456789+02:00", wantOK: true},
		{value: "2024-05-01 10:00:00", wantOK: true},
		{value: "yesterday", wantOK: false},
		{value: "", wantOK: false},
	}
	for _, tt := range tests {
		_, ok := ExecuteRequest{RequestedAt: tt.value}.RequestedTime()
		assert.Equal(t, tt.wantOK, ok, tt.value)
	}

	got, ok := ExecuteRequest{RequestedAt: "2024-05-01T10:00:00Z"}.RequestedTime()
	require.True(t, ok)
	assert.True(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).Equal(got))
}

func TestResultEncoding(t *testing.T) {
	r := &Result{
		RequestID: "r1",
		EndTime:   100,
		Rows:      []string{"TASK 1"},
		Columns:   []string{"0", "1"},
		Statistics: []StatisticResult{{
			Name:         "Time",
			Cells:        []Cell{{Row: 0, Column: 1, Value: 40}},
			ColumnTotals: []float64{0, 40},
			RowTotals:    []float64{40},
			GrandTotal:   40,
		}},
	}
	data, err := EncodeResult(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"requestId":"r1"`)

	decoded, err := DecodeResult(data)
	require.NoError(t, err)
	s, ok := decoded.Statistic("Time")
	require.True(t, ok)
	assert.Equal(t, 40.0, s.GrandTotal)
	_, ok = decoded.Statistic("missing")
	assert.False(t, ok)

	_, err = DecodeResult([]byte("{"))
	assert.ErrorIs(t, err, ErrJSONUnmarshalFailed)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "abc", Snippet([]byte("abc"), 5))
	assert.Equal(t, "ab...", Snippet([]byte("abcdef"), 2))
	assert.Equal(t, "...", Snippet([]byte("abc"), 0))
}
