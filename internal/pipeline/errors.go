package pipeline

import "errors"

var (
	ErrInvalidKafkaConfig      = errors.New("invalid Kafka configuration provided")
	ErrKafkaFetchFailed        = errors.New("failed to fetch message from Kafka")
	ErrKafkaCommitFailed       = errors.New("failed to commit message to Kafka")
	ErrKafkaWriteFailed        = errors.New("failed to write message to Kafka")
	ErrConsumerCreationFailed  = errors.New("failed to create consumer")
	ErrPublisherCreationFailed = errors.New("failed to create publisher")
	ErrHistogramSetup          = errors.New("failed to configure histogram")
	ErrHistogramExecution      = errors.New("histogram execution failed")
	ErrConsumerRunFailed       = errors.New("consumer component failed")
	ErrExecutorRunFailed       = errors.New("executor component failed")
	ErrReporterRunFailed       = errors.New("reporter component failed")
)
