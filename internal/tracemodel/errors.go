package tracemodel

import "errors"

var (
	ErrReadingModel  = errors.New("failed to read trace model")
	ErrParsingModel  = errors.New("failed to parse trace model")
	ErrInvalidModel  = errors.New("invalid trace model")
	ErrUnknownLevel  = errors.New("unknown topology level")
	ErrUnknownWindow = errors.New("unknown window")
)
