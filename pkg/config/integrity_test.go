package config

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/openfroyo/lzconfig/pkg/schema"
)

func TestCheckModel(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GlobalConfig)
		paths  []string
	}{
		{name: "full defaults", mutate: func(*GlobalConfig) {}},
		{
			name:   "missing home region",
			mutate: func(c *GlobalConfig) { c.HomeRegion = "" },
			paths:  []string{"homeRegion"},
		},
		{
			name:   "unsupported enabled region",
			mutate: func(c *GlobalConfig) { c.EnabledRegions = []string{"us-east-1", "moon-1"} },
			paths:  []string{"enabledRegions[1]"},
		},
		{
			name: "bad enums",
			mutate: func(c *GlobalConfig) {
				c.Reports.CostAndUsageReport.Compression = "RAR"
				c.Reports.Budgets.Notifications[0].ComparisonOperator = "ABOVE"
			},
			paths: []string{
				"reports.costAndUsageReport.compression",
				"reports.budgets.notifications[0].comparisonOperator",
			},
		},
		{
			name:   "empty log archive account",
			mutate: func(c *GlobalConfig) { c.Logging.Account = "" },
			paths:  []string{"logging.account"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fullDefaultConfig()
			tt.mutate(cfg)

			err := CheckModel(cfg)
			if len(tt.paths) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var schemaErr *schema.SchemaValidationError
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected SchemaValidationError, got %v", err)
			}
			if schemaErr.Schema != "GlobalConfig" {
				t.Errorf("Schema = %q", schemaErr.Schema)
			}
			var paths []string
			for _, v := range schemaErr.Violations {
				paths = append(paths, v.Path)
			}
			if !slices.Equal(paths, tt.paths) {
				t.Errorf("paths = %v, want %v", paths, tt.paths)
			}
		})
	}
}

func TestCheckModel_EnumMessage(t *testing.T) {
	cur := NewCostAndUsageReportConfig(nil)
	cur.TimeUnit = "WEEKLY"

	err := CheckModel(cur)
	if err == nil {
		t.Fatal("expected error")
	}
	want := `timeUnit: value "WEEKLY" is not a valid CurTimeUnit; allowed values: HOURLY, DAILY, MONTHLY`
	if !strings.Contains(err.Error(), want) {
		t.Errorf("Error() = %q, want it to contain %q", err.Error(), want)
	}
}
