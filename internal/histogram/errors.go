package histogram

import "errors"

var (
	ErrNoControlWindow  = errors.New("histogram has no control window")
	ErrInvalidRange     = errors.New("invalid histogram range: min must be lower than max and delta positive")
	ErrNotCommStatistic = errors.New("statistic creates communications but does not provide a partner")
)
