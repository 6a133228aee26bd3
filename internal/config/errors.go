package config

import "errors"

var (
	ErrReadingConfigFile       = errors.New("failed to read config file")
	ErrUnmarshallingConfig     = errors.New("failed to unmarshal config")
	ErrConfigFileMissing       = errors.New("config file not found")
	ErrEmptyTraceFile          = errors.New("trace file cannot be empty")
	ErrEmptyControlWindow      = errors.New("histogram controlWindow cannot be empty")
	ErrInvalidNumColumns       = errors.New("histogram numColumns must be positive")
	ErrInvalidAxis             = errors.New("histogram axis needs min < max and a positive delta")
	ErrInvalidTimeRange        = errors.New("histogram endTime must be greater than beginTime")
	ErrEmptyThresholdStatistic = errors.New("threshold statistic cannot be empty")
	ErrInvalidPipelineMode     = errors.New("pipeline mode must be oneshot or stream")
	ErrEmptyKafkaBrokers       = errors.New("kafka brokers list cannot be empty")
	ErrEmptyKafkaTopic         = errors.New("kafka requestTopic cannot be empty")
	ErrEmptyKafkaGroupID       = errors.New("kafka groupID cannot be empty")
)
