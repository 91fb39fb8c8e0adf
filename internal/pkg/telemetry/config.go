package telemetry

import "log/slog"

// Config is embedded into each binary's kong configuration.
type Config struct {
	LogLevel     string  `help:"Log level." env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error"`
	OTLPEndpoint string  `name:"otlp-endpoint" help:"OTLP gRPC collector host:port. Empty disables tracing." env:"OTEL_EXPORTER_OTLP_ENDPOINT" default:""`
	Environment  string  `help:"Deployment environment reported on spans." env:"DEPLOYMENT_ENV" default:"local"`
	SampleRatio  float64 `help:"Fraction of traces sampled." env:"OTEL_TRACES_SAMPLE_RATIO" default:"1"`
}

func (c Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func (c Config) TracerConfig(serviceName string) TracerConfig {
	return TracerConfig{
		ServiceName: serviceName,
		Endpoint:    c.OTLPEndpoint,
		Environment: c.Environment,
		SampleRatio: c.SampleRatio,
	}
}
