package config_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/openfroyo/lzconfig/pkg/config"
	"github.com/rs/zerolog"
)

func ExampleLoader_Load() {
	loader := config.NewLoader(config.WithLogger(zerolog.Nop()))

	result, err := loader.Load(context.Background(), config.FileName, []byte(`
homeRegion: us-east-1
enabledRegions: [us-east-1, eu-west-1]
cloudwatchLogRetentionInDays: 90
`))
	if err != nil {
		fmt.Println(err)
		return
	}

	cfg := result.Config
	fmt.Println(result.State)
	fmt.Println(cfg.Logging.Account, cfg.ControlTower.Enable, cfg.CloudwatchLogRetentionInDays)
	// Output:
	// semantically-validated
	// LogArchive true 90
}

func ExampleLoader_Load_semanticError() {
	loader := config.NewLoader(config.WithLogger(zerolog.Nop()))

	_, err := loader.Load(context.Background(), config.FileName, []byte(`
homeRegion: eu-west-1
enabledRegions: [eu-west-1]
cloudwatchLogRetentionInDays: 90
`))

	var semErr *config.SemanticValidationError
	if errors.As(err, &semErr) {
		fmt.Println(err)
	}
	// Output:
	// global-config.yaml has 1 issues:
	// us-east-1 must be included in enabled regions when the home region is eu-west-1
}

func ExampleLoader_LoadFromString() {
	loader := config.NewLoader(config.WithLogger(zerolog.Nop()))

	cfg := loader.LoadFromString(context.Background(), "homeRegion: [")
	fmt.Println(cfg == nil)
	// Output: true
}

func ExampleDefaultGlobalConfig() {
	cfg := config.DefaultGlobalConfig("us-gov-west-1")
	fmt.Println(cfg.EnabledRegions, cfg.ManagementAccountAccessRole)
	// Output: [us-gov-west-1] AWSControlTowerExecution
}
