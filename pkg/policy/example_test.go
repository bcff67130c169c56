package policy_test

import (
	"context"
	"fmt"

	"github.com/openfroyo/lzconfig/pkg/config"
	"github.com/openfroyo/lzconfig/pkg/policy"
	"github.com/rs/zerolog"
)

func ExampleEngine_Evaluate() {
	eng, err := policy.NewEngine(zerolog.Nop())
	if err != nil {
		fmt.Println(err)
		return
	}

	cfg := config.DefaultGlobalConfig("us-east-1")
	cfg.EnabledRegions = []string{"eu-west-1"}
	cfg.Logging.SessionManager.SendToS3 = true

	result, err := eng.Evaluate(context.Background(), cfg)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(result.Allowed)
	for _, v := range result.Warnings {
		fmt.Println(v)
	}
	// Output:
	// true
	// [home-region-enabled] enabledRegions: homeRegion us-east-1 must be included in enabledRegions
}
