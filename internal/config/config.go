package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	ModeOneShot = "oneshot"
	ModeStream  = "stream"
)

const (
	defaultKafkaGroupID   = "tracelens-default-group"
	defaultPipelineMode   = ModeOneShot
	defaultPipelineRender = true
	defaultNumColumns     = 20
	defaultHorizontal     = true
	defaultMetricsAddress = ":2112"
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
	defaultLogFileEnabled = false
	defaultLogDirectory   = "log"
	defaultLogFilename    = "app.log"
	defaultLogMaxSizeMB   = 100
	defaultLogMaxBackups  = 3
	defaultLogMaxAgeDays  = 7
	defaultLogCompress    = false

	// Environment variable prefix
	envPrefix = "TRACELENS"
)

type Config struct {
	Trace     TraceConfig     `mapstructure:"trace"`
	Histogram HistogramConfig `mapstructure:"histogram"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
}

type TraceConfig struct {
	File string `mapstructure:"file"`
}

type HistogramConfig struct {
	ControlWindow      string            `mapstructure:"controlWindow"`
	DataWindow         string            `mapstructure:"dataWindow"`         // Defaults to the control window
	ExtraControlWindow string            `mapstructure:"extraControlWindow"` // Enables the third dimension
	Control            AxisConfig        `mapstructure:"control"`
	ExtraControl       AxisConfig        `mapstructure:"extraControl"`
	Data               RangeConfig       `mapstructure:"data"`
	Statistics         []string          `mapstructure:"statistics"`
	Inclusive          bool              `mapstructure:"inclusive"`
	Horizontal         bool              `mapstructure:"horizontal"`
	ComputeScale       bool              `mapstructure:"computeScale"`
	NumColumns         int               `mapstructure:"numColumns"` // Target columns when computing the scale
	LegacyRowCount     bool              `mapstructure:"legacyRowCount"`
	PlaneMinValue      *float64          `mapstructure:"planeMinValue"`
	BeginTime          float64           `mapstructure:"beginTime"`
	EndTime            float64           `mapstructure:"endTime"` // 0 means the end of the trace
	Limits             LimitsConfig      `mapstructure:"limits"`
	Thresholds         []ThresholdConfig `mapstructure:"thresholds"`
}

type AxisConfig struct {
	Min   float64 `mapstructure:"min"`
	Max   float64 `mapstructure:"max"`
	Delta float64 `mapstructure:"delta"`
}

type RangeConfig struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// LimitsConfig leaves a bound open when it is not set.
type LimitsConfig struct {
	BurstMin    *float64 `mapstructure:"burstMin"`
	BurstMax    *float64 `mapstructure:"burstMax"`
	CommSizeMin *int64   `mapstructure:"commSizeMin"`
	CommSizeMax *int64   `mapstructure:"commSizeMax"`
	CommTagMin  *int64   `mapstructure:"commTagMin"`
	CommTagMax  *int64   `mapstructure:"commTagMax"`
}

// ThresholdConfig bounds the per-row totals of a statistic.
type ThresholdConfig struct {
	Statistic string   `mapstructure:"statistic"`
	Min       *float64 `mapstructure:"min"`
	Max       *float64 `mapstructure:"max"`
}

type PipelineConfig struct {
	Mode   string `mapstructure:"mode"`   // oneshot or stream
	Render bool   `mapstructure:"render"` // Print the histogram table
}

type KafkaConfig struct {
	Brokers      []string `mapstructure:"brokers"`
	GroupID      string   `mapstructure:"groupID"`
	RequestTopic string   `mapstructure:"requestTopic"`
	ResultTopic  string   `mapstructure:"resultTopic"` // Results are not published when empty
}

type MetricsConfig struct {
	Address string `mapstructure:"address"` // Metrics endpoint is disabled when empty
}

type LogConfig struct {
	Level              string `mapstructure:"level"`
	Format             string `mapstructure:"format"`
	FileLoggingEnabled bool   `mapstructure:"fileLoggingEnabled"`
	Directory          string `mapstructure:"directory"`
	Filename           string `mapstructure:"filename"`
	MaxSize            int    `mapstructure:"maxSize"`    // Max size in MB
	MaxBackups         int    `mapstructure:"maxBackups"` // Max backup files
	MaxAge             int    `mapstructure:"maxAge"`     // Max days to retain
	Compress           bool   `mapstructure:"compress"`   // Compress rotated files?
}

// Load initializes viper, reads config, applies defaults, unmarshals, and validates.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	configureViper(v, configPath)

	// Set default values before reading config source .yaml
	setDefaults(v)

	// Read configuration from file (error if mandatory file is missing)
	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshallingConfig, err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// configureViper sets up viper instance for file and environment variables.
func configureViper(v *viper.Viper, configPath string) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults applies default configuration values using Viper.
func setDefaults(v *viper.Viper) {
	v.SetDefault("trace.file", "")
	v.SetDefault("histogram.controlWindow", "")
	v.SetDefault("histogram.control.min", 0.0)
	v.SetDefault("histogram.control.max", 1.0)
	v.SetDefault("histogram.control.delta", 1.0)
	v.SetDefault("histogram.extraControl.min", 0.0)
	v.SetDefault("histogram.extraControl.max", 1.0)
	v.SetDefault("histogram.extraControl.delta", 1.0)
	v.SetDefault("histogram.data.min", 0.0)
	v.SetDefault("histogram.data.max", 1.0)
	v.SetDefault("histogram.horizontal", defaultHorizontal)
	v.SetDefault("histogram.numColumns", defaultNumColumns)
	v.SetDefault("pipeline.mode", defaultPipelineMode)
	v.SetDefault("pipeline.render", defaultPipelineRender)
	v.SetDefault("kafka.groupID", defaultKafkaGroupID)
	v.SetDefault("metrics.address", defaultMetricsAddress)
	v.SetDefault("log.level", defaultLogLevel)
	v.SetDefault("log.format", defaultLogFormat)
	v.SetDefault("log.fileLoggingEnabled", defaultLogFileEnabled)
	v.SetDefault("log.directory", defaultLogDirectory)
	v.SetDefault("log.filename", defaultLogFilename)
	v.SetDefault("log.maxSize", defaultLogMaxSizeMB)
	v.SetDefault("log.maxBackups", defaultLogMaxBackups)
	v.SetDefault("log.maxAge", defaultLogMaxAgeDays)
	v.SetDefault("log.compress", defaultLogCompress)
}

// readConfigFile attempts to read the configuration file specified in viper.
func readConfigFile(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return ErrConfigFileMissing
		}
		return fmt.Errorf("%w: %w", ErrReadingConfigFile, err)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.Trace.File == "" {
		return ErrEmptyTraceFile
	}
	if cfg.Histogram.ControlWindow == "" {
		return ErrEmptyControlWindow
	}
	if cfg.Histogram.NumColumns <= 0 {
		return ErrInvalidNumColumns
	}
	if !cfg.Histogram.ComputeScale {
		if err := validateAxis("control", cfg.Histogram.Control); err != nil {
			return err
		}
		if cfg.Histogram.ExtraControlWindow != "" {
			if err := validateAxis("extraControl", cfg.Histogram.ExtraControl); err != nil {
				return err
			}
		}
	}
	if cfg.Histogram.EndTime != 0 && cfg.Histogram.EndTime <= cfg.Histogram.BeginTime {
		return ErrInvalidTimeRange
	}
	for _, t := range cfg.Histogram.Thresholds {
		if t.Statistic == "" {
			return ErrEmptyThresholdStatistic
		}
	}

	switch cfg.Pipeline.Mode {
	case ModeOneShot:
	case ModeStream:
		if len(cfg.Kafka.Brokers) == 0 {
			return ErrEmptyKafkaBrokers
		}
		if cfg.Kafka.RequestTopic == "" {
			return ErrEmptyKafkaTopic
		}
		if cfg.Kafka.GroupID == "" {
			return ErrEmptyKafkaGroupID
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidPipelineMode, cfg.Pipeline.Mode)
	}
	if cfg.Kafka.ResultTopic != "" && len(cfg.Kafka.Brokers) == 0 {
		return ErrEmptyKafkaBrokers
	}
	return nil
}

func validateAxis(name string, a AxisConfig) error {
	if !(a.Min < a.Max) || !(a.Delta > 0) {
		return fmt.Errorf("%w: %s min=%g max=%g delta=%g", ErrInvalidAxis, name, a.Min, a.Max, a.Delta)
	}
	return nil
}
