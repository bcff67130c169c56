package telemetry_test

import (
	"context"
	"fmt"
	"time"

	"github.com/openfroyo/lzconfig/pkg/telemetry"
)

// Example_basicSetup demonstrates basic telemetry setup.
func Example_basicSetup() {
	cfg := telemetry.DefaultConfig()
	cfg.ServiceVersion = "1.0.0"

	tel, err := telemetry.NewTelemetry(cfg)
	if err != nil {
		panic(err)
	}
	defer tel.Shutdown(context.Background())

	ctx := tel.WithContext(context.Background())

	logger := telemetry.FromContext(ctx).NewComponentLogger("config-loader")
	logger.Info("telemetry initialized")

	// Output varies, no output specified
}

// Example_loadTracing demonstrates tracing a configuration load.
func Example_loadTracing() {
	cfg := telemetry.DefaultConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "none"

	tel, _ := telemetry.NewTelemetry(cfg)
	defer tel.Shutdown(context.Background())

	ctx, span := tel.Tracer.StartLoadSpan(context.Background(), "load-123", "global-config.yaml")
	defer span.End()

	_, parseSpan := tel.Tracer.Start(ctx, telemetry.SpanParse)
	telemetry.RecordSuccess(parseSpan)
	parseSpan.End()

	// Output varies, no output specified
}

// Example_metricsCollection demonstrates recording load metrics.
func Example_metricsCollection() {
	metrics, _ := telemetry.NewMetrics(telemetry.DefaultConfig().Metrics)

	metrics.RecordLoad("directory", telemetry.ResultValid, 3*time.Millisecond)
	metrics.RecordLoad("string", telemetry.ResultRejected, time.Millisecond)
	metrics.RecordViolations("structural", 2)

	fmt.Println("Metrics recorded successfully")
	// Output: Metrics recorded successfully
}
