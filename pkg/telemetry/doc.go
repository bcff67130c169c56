// Package telemetry provides observability instrumentation for lzconfig.
//
// It integrates structured logging (zerolog), distributed tracing
// (OpenTelemetry) and metrics (Prometheus) around configuration loads.
//
// # Usage
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.Tracing.Enabled = true
//	cfg.Tracing.Exporter = "stdout"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
// # Structured Logging
//
//	logger := tel.Logger.NewComponentLogger("config-loader")
//	logger.WithLoadID(id).WithSource("global-config.yaml").Info("configuration loaded")
//
// Packages that take a zerolog.Logger directly receive tel.Logger.Zerolog().
//
// # Tracing
//
// A load produces a config.load span with config.parse and config.semantic
// children. Supported exporters are otlp (gRPC), stdout and none. A nil
// *Tracer is valid and starts no spans.
//
// # Metrics
//
//   - lzconfig_loads_total{source,result}
//   - lzconfig_load_duration_seconds{source}
//   - lzconfig_violations_total{kind}
//   - lzconfig_reloads_total{result}
//   - lzconfig_last_load_success
//
// A nil *Metrics is valid and records nothing.
package telemetry
