// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all configuration for the dispatcher.
// The mapstructure tags are used by Viper to unmarshal the data.
type Config struct {
	HttpListenAddr     string        `mapstructure:"http_listen_addr" validate:"required"`
	GrpcListenAddr     string        `mapstructure:"grpc_listen_addr" validate:"required"`
	ProcessingDuration time.Duration `mapstructure:"processing_duration" validate:"gt=0"`
	SnapshotSchedule   string        `mapstructure:"snapshot_schedule" validate:"required,cron"`
	EtcdEndpoints      []string      `mapstructure:"etcd_endpoints"`
	EtcdTimeout        time.Duration `mapstructure:"etcd_timeout" validate:"gt=0"`
	InstanceTTL        time.Duration `mapstructure:"instance_ttl" validate:"gte=1s"`
}

// UseEtcd reports whether an etcd cluster is configured for the completion log and instance registry.
func (c *Config) UseEtcd() bool {
	return len(c.EtcdEndpoints) > 0
}

// CronParser is the schedule parser shared by config validation and the snapshot reporter.
// It accepts standard five-field expressions and descriptors such as "@every 30s".
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// NewValidator returns a validator with the custom tags used across the service.
func NewValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		_, err := CronParser.Parse(fl.Field().String())
		return err == nil
	})

	return validate
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	// Set default values
	v.SetDefault("http_listen_addr", ":8080")
	v.SetDefault("grpc_listen_addr", ":50051")
	v.SetDefault("processing_duration", "10s")
	v.SetDefault("snapshot_schedule", "@every 30s")
	v.SetDefault("etcd_endpoints", []string{})
	v.SetDefault("etcd_timeout", "5s")
	v.SetDefault("instance_ttl", "10s")

	// Set config file details
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Read environment variables, e.g. PROCESSING_DURATION=2s
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file; defaults and env vars apply.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.EtcdEndpoints = splitEndpoints(cfg.EtcdEndpoints)

	if err := NewValidator().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// splitEndpoints accepts both a YAML list and a comma separated env value.
func splitEndpoints(in []string) []string {
	var out []string
	for _, e := range in {
		for _, part := range strings.Split(e, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
