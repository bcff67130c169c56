package config

import (
	"errors"
	"slices"
	"testing"

	"github.com/openfroyo/lzconfig/pkg/schema"
)

func TestSchemaRegistry_Names(t *testing.T) {
	sr := NewSchemaRegistry()
	names := sr.Names()

	want := []string{
		SchemaBudgetNotification, SchemaBudgetReport, SchemaCloudtrail, SchemaControlTower,
		SchemaCostAndUsageReport, SchemaDataProtection, SchemaGlobalConfig, SchemaLogging,
		SchemaPerimeter, SchemaReport, SchemaSessionManager,
	}
	slices.Sort(want)
	if !slices.Equal(names, want) {
		t.Errorf("Names() = %v, want %v", names, want)
	}

	for _, name := range names {
		if _, ok := sr.Get(name); !ok {
			t.Errorf("Get(%q) failed", name)
		}
	}
	if _, ok := sr.Get("Missing"); ok {
		t.Error("unexpected schema")
	}
}

func TestDefaultRegistryIsShared(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Fatal("DefaultRegistry should return the same instance")
	}
	if DefaultRegistry().GlobalConfig().Name() != SchemaGlobalConfig {
		t.Fatal("unexpected root schema")
	}
}

func TestGlobalConfigRequiredFields(t *testing.T) {
	root := DefaultRegistry().GlobalConfig()

	var required []string
	for _, f := range root.Fields() {
		if f.Required() {
			required = append(required, f.Name)
		}
	}
	if !slices.Equal(required, []string{"homeRegion", "enabledRegions"}) {
		t.Errorf("required fields = %v", required)
	}
}

func TestGlobalConfigSchema_Violations(t *testing.T) {
	root := DefaultRegistry().GlobalConfig()

	tests := []struct {
		name  string
		input map[string]any
		paths []string
	}{
		{
			name:  "missing required",
			input: map[string]any{},
			paths: []string{"homeRegion", "enabledRegions"},
		},
		{
			name: "empty home region and bad enabled region",
			input: map[string]any{
				"homeRegion":     "",
				"enabledRegions": []any{"us-east-1", "mars-1"},
			},
			paths: []string{"homeRegion", "enabledRegions[1]"},
		},
		{
			name: "nested sections",
			input: map[string]any{
				"homeRegion":     "us-east-1",
				"enabledRegions": []any{"us-east-1"},
				"controlTower":   map[string]any{"enable": "yes"},
				"logging": map[string]any{
					"account":        "LogArchive",
					"cloudtrail":     map[string]any{"enable": true},
					"sessionManager": map[string]any{"sendToCloudWatchLogs": false, "sendToS3": false},
				},
			},
			paths: []string{"controlTower.enable", "logging.cloudtrail.organizationTrail"},
		},
		{
			name: "budget notification enum",
			input: map[string]any{
				"homeRegion":     "us-east-1",
				"enabledRegions": []any{"us-east-1"},
				"reports": map[string]any{
					"budgets": map[string]any{
						"amount":           1,
						"budgetName":       "b",
						"budgetType":       "COST",
						"timeUnit":         "WEEKLY",
						"subscriptionType": "EMAIL",
						"notifications": []any{
							map[string]any{"notificationType": "ACTUAL", "thresholdType": "PERCENTAGE", "comparisonOperator": "ABOVE"},
						},
					},
				},
			},
			paths: []string{"reports.budgets.timeUnit", "reports.budgets.notifications[0].comparisonOperator"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.ParseObject(root, tt.input)
			var schemaErr *schema.SchemaValidationError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaValidationError, got %v", err)
			}
			var paths []string
			for _, v := range schemaErr.Violations {
				paths = append(paths, v.Path)
			}
			if !slices.Equal(paths, tt.paths) {
				t.Errorf("violation paths = %v, want %v", paths, tt.paths)
			}
		})
	}
}

func fullDefaultConfig() *GlobalConfig {
	cfg := DefaultGlobalConfig("us-east-1")
	cfg.DataProtection = NewDataProtectionConfig(nil)
	cfg.Reports = &ReportConfig{
		CostAndUsageReport: NewCostAndUsageReportConfig(nil),
		Budgets:            NewBudgetReportConfig(nil),
	}
	return cfg
}

func TestDefaultsRoundTrip(t *testing.T) {
	root := DefaultRegistry().GlobalConfig()

	for name, cfg := range map[string]*GlobalConfig{
		"defaults":      DefaultGlobalConfig("us-east-1"),
		"all sections":  fullDefaultConfig(),
		"govcloud home": DefaultGlobalConfig("us-gov-west-1"),
	} {
		t.Run(name, func(t *testing.T) {
			generic, err := cfg.Generic()
			if err != nil {
				t.Fatalf("Generic: %v", err)
			}
			values, err := schema.ParseObject(root, generic)
			if err != nil {
				t.Fatalf("defaults should be schema-valid: %v", err)
			}
			if err := schema.ValidateCUE(root, generic); err != nil {
				t.Fatalf("defaults should satisfy the CUE export: %v", err)
			}

			rebuilt := buildGlobalConfig(GlobalConfigProps{}, values)
			if err := CheckModel(rebuilt); err != nil {
				t.Fatalf("rebuilt model failed integrity check: %v", err)
			}
			if rebuilt.HomeRegion != cfg.HomeRegion || rebuilt.CloudwatchLogRetentionInDays != cfg.CloudwatchLogRetentionInDays {
				t.Errorf("round trip changed values: %+v", rebuilt)
			}
		})
	}
}
