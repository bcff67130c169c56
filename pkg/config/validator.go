package config

import (
	"context"
	"fmt"
	"slices"

	"github.com/openfroyo/lzconfig/pkg/schema"
)

// Home regions of the partitions whose global services live in one region.
const (
	GovCloudHomeRegion   = "us-gov-west-1"
	CommercialHomeRegion = "us-east-1"
)

// Rule is a cross-field check run after structural validation. Check
// returns one message per violation, or nil when the rule holds.
//
// values is the parsed input the configuration was built from; it is nil
// when the configuration holds defaults only.
type Rule interface {
	Name() string
	Check(ctx context.Context, cfg *GlobalConfig, values schema.Object) []string
}

type ruleFunc struct {
	name  string
	check func(ctx context.Context, cfg *GlobalConfig, values schema.Object) []string
}

func (r ruleFunc) Name() string { return r.name }

func (r ruleFunc) Check(ctx context.Context, cfg *GlobalConfig, values schema.Object) []string {
	return r.check(ctx, cfg, values)
}

// NewRule adapts a function to the Rule interface.
func NewRule(name string, check func(ctx context.Context, cfg *GlobalConfig, values schema.Object) []string) Rule {
	return ruleFunc{name: name, check: check}
}

// PartitionRule enforces the home region of the partition the configured
// home region belongs to. It only applies when the parsed input supplied
// both homeRegion and cloudwatchLogRetentionInDays.
var PartitionRule = NewRule("partition-home-region", checkPartition)

func checkPartition(_ context.Context, cfg *GlobalConfig, values schema.Object) []string {
	if values == nil || !values.Has("homeRegion") || !values.Has("cloudwatchLogRetentionInDays") {
		return nil
	}

	if schema.PartitionOf(cfg.HomeRegion) == schema.PartitionGovCloud {
		if cfg.HomeRegion != GovCloudHomeRegion {
			return []string{fmt.Sprintf(
				"homeRegion %s is not supported in the GovCloud partition, the home region must be %s",
				cfg.HomeRegion, GovCloudHomeRegion)}
		}
		return nil
	}

	if cfg.HomeRegion != CommercialHomeRegion && !slices.Contains(cfg.EnabledRegions, CommercialHomeRegion) {
		return []string{fmt.Sprintf(
			"%s must be included in enabled regions when the home region is %s",
			CommercialHomeRegion, cfg.HomeRegion)}
	}
	return nil
}

// SemanticValidator runs the built-in partition rule followed by any
// extra rules and aggregates their issues.
type SemanticValidator struct {
	rules []Rule
}

// NewSemanticValidator returns a validator with the built-in rules and extra.
func NewSemanticValidator(extra ...Rule) *SemanticValidator {
	rules := make([]Rule, 0, len(extra)+1)
	rules = append(rules, PartitionRule)
	for _, r := range extra {
		if r != nil {
			rules = append(rules, r)
		}
	}
	return &SemanticValidator{rules: rules}
}

// Rules returns the rules in evaluation order.
func (v *SemanticValidator) Rules() []Rule {
	return slices.Clone(v.rules)
}

// Validate runs every rule and returns a *SemanticValidationError naming
// file when any rule reports an issue.
func (v *SemanticValidator) Validate(ctx context.Context, file string, cfg *GlobalConfig, values schema.Object) error {
	var issues []string
	for _, r := range v.rules {
		if err := ctx.Err(); err != nil {
			return err
		}
		issues = append(issues, r.Check(ctx, cfg, values)...)
	}
	if len(issues) == 0 {
		return nil
	}
	return &SemanticValidationError{File: file, Issues: issues}
}
