package config

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/openfroyo/lzconfig/pkg/schema"
)

func TestDefaultGlobalConfig(t *testing.T) {
	cfg := DefaultGlobalConfig("eu-west-1")

	if cfg.HomeRegion != "eu-west-1" {
		t.Errorf("HomeRegion = %q", cfg.HomeRegion)
	}
	if !reflect.DeepEqual(cfg.EnabledRegions, []string{"eu-west-1"}) {
		t.Errorf("EnabledRegions = %v, want [eu-west-1]", cfg.EnabledRegions)
	}
	if cfg.ManagementAccountAccessRole != "AWSControlTowerExecution" {
		t.Errorf("ManagementAccountAccessRole = %q", cfg.ManagementAccountAccessRole)
	}
	if cfg.CloudwatchLogRetentionInDays != 365 {
		t.Errorf("CloudwatchLogRetentionInDays = %d", cfg.CloudwatchLogRetentionInDays)
	}
	if !cfg.ControlTower.Enable {
		t.Error("ControlTower.Enable should default to true")
	}
	if cfg.Logging.Account != "LogArchive" {
		t.Errorf("Logging.Account = %q", cfg.Logging.Account)
	}
	if cfg.Logging.Cloudtrail.Enable || cfg.Logging.Cloudtrail.OrganizationTrail {
		t.Error("cloudtrail flags should default to false")
	}
	if cfg.Logging.SessionManager.SendToCloudWatchLogs || cfg.Logging.SessionManager.SendToS3 {
		t.Error("session manager flags should default to false")
	}
	if cfg.DataProtection != nil || cfg.Reports != nil {
		t.Error("optional sections should be absent by default")
	}
}

func TestSectionDefaults(t *testing.T) {
	cur := NewCostAndUsageReportConfig(nil)
	want := &CostAndUsageReportConfig{
		Compression:              "Parquet",
		Format:                   "Parquet",
		ReportName:               "accelerator-cur",
		S3Prefix:                 "cur",
		TimeUnit:                 "DAILY",
		AdditionalSchemaElements: []string{"RESOURCES"},
		AdditionalArtifacts:      []string{"ATHENA"},
		RefreshClosedReports:     true,
		ReportVersioning:         "OVERWRITE_REPORT",
	}
	if !reflect.DeepEqual(cur, want) {
		t.Errorf("cost and usage report defaults = %+v, want %+v", cur, want)
	}

	budget := NewBudgetReportConfig(nil)
	if budget.Amount != 2000 || budget.BudgetName != "accel-budget" || budget.BudgetType != "COST" {
		t.Errorf("unexpected budget defaults: %+v", budget)
	}
	if !budget.IncludeTax || budget.IncludeRefund || budget.UseBlended {
		t.Errorf("unexpected budget inclusion defaults: %+v", budget)
	}
	if len(budget.Notifications) != 1 || budget.Notifications[0].Threshold != 90 {
		t.Errorf("expected one default notification at 90, got %+v", budget.Notifications)
	}

	dp := NewDataProtectionConfig(nil)
	if dp.Enable || dp.IdentityPerimeter.Enable || dp.ResourcePerimeter.Enable || dp.NetworkPerimeter.Enable {
		t.Errorf("data protection should default to disabled: %+v", dp)
	}

	if r := NewReportConfig(nil); r.CostAndUsageReport != nil || r.Budgets != nil {
		t.Errorf("report sections should be absent by default: %+v", r)
	}
}

func TestSectionOverlay(t *testing.T) {
	ct := NewControlTowerConfig(schema.Object{"enable": false})
	if ct.Enable {
		t.Error("present field should overwrite the default")
	}

	budget := NewBudgetReportConfig(schema.Object{"amount": 50.0, "includeTax": false})
	if budget.Amount != 50 || budget.IncludeTax {
		t.Errorf("overlay not applied: %+v", budget)
	}
	if budget.BudgetName != "accel-budget" || !budget.IncludeSupport {
		t.Errorf("absent fields should keep their defaults: %+v", budget)
	}
}

func TestNestedSectionReplacesDefaults(t *testing.T) {
	values := schema.Object{
		"homeRegion":     "us-east-1",
		"enabledRegions": []any{"us-east-1"},
		"logging": schema.Object{
			"account":    "Logs",
			"cloudtrail": schema.Object{"enable": true, "organizationTrail": true},
			"sessionManager": schema.Object{
				"sendToCloudWatchLogs": true,
				"sendToS3":             false,
				"excludeRegions":       []any{"eu-west-1"},
			},
		},
		"reports": schema.Object{
			"budgets": schema.Object{
				"amount":           10.0,
				"budgetName":       "small",
				"budgetType":       "COST",
				"timeUnit":         "MONTHLY",
				"subscriptionType": "SNS",
			},
		},
	}

	cfg := buildGlobalConfig(GlobalConfigProps{}, values)

	if cfg.Logging.Account != "Logs" || !cfg.Logging.Cloudtrail.OrganizationTrail {
		t.Errorf("logging not overlaid: %+v", cfg.Logging)
	}
	if !reflect.DeepEqual(cfg.Logging.SessionManager.ExcludeRegions, []string{"eu-west-1"}) {
		t.Errorf("ExcludeRegions = %v", cfg.Logging.SessionManager.ExcludeRegions)
	}

	// A supplied section starts from zero values, not the section defaults.
	b := cfg.Reports.Budgets
	if b.Notifications != nil {
		t.Errorf("budgets without notifications should have none, got %+v", b.Notifications)
	}
	if b.Unit != "" || b.IncludeTax {
		t.Errorf("omitted budget fields should be zero: %+v", b)
	}
	if cfg.Reports.CostAndUsageReport != nil {
		t.Error("absent cost and usage report should stay absent")
	}
	if cfg.ManagementAccountAccessRole != DefaultManagementAccountAccessRole {
		t.Error("absent top-level fields should keep their defaults")
	}
}

func TestNotificationsOverlay(t *testing.T) {
	budget := NewBudgetReportConfig(schema.Object{
		"notifications": []any{
			schema.Object{"notificationType": "FORECASTED", "thresholdType": "ABSOLUTE_VALUE", "comparisonOperator": "EQUAL_TO"},
			map[string]any{"notificationType": "ACTUAL", "thresholdType": "PERCENTAGE", "comparisonOperator": "LESS_THAN", "threshold": 10},
		},
	})

	want := []BudgetNotificationConfig{
		{NotificationType: "FORECASTED", ThresholdType: "ABSOLUTE_VALUE", ComparisonOperator: "EQUAL_TO"},
		{NotificationType: "ACTUAL", ThresholdType: "PERCENTAGE", ComparisonOperator: "LESS_THAN", Threshold: 10},
	}
	if !reflect.DeepEqual(budget.Notifications, want) {
		t.Errorf("Notifications = %+v, want %+v", budget.Notifications, want)
	}
}

func TestRetentionKeepsDefaultForNonInteger(t *testing.T) {
	for _, v := range []any{29.6, math.NaN(), math.Inf(1)} {
		cfg := buildGlobalConfig(GlobalConfigProps{HomeRegion: "us-east-1"}, schema.Object{
			"cloudwatchLogRetentionInDays": v,
		})
		if cfg.CloudwatchLogRetentionInDays != DefaultCloudwatchLogRetentionInDays {
			t.Errorf("retention %v: CloudwatchLogRetentionInDays = %d, want default", v, cfg.CloudwatchLogRetentionInDays)
		}
	}

	cfg := buildGlobalConfig(GlobalConfigProps{HomeRegion: "us-east-1"}, schema.Object{
		"cloudwatchLogRetentionInDays": 30,
	})
	if cfg.CloudwatchLogRetentionInDays != 30 {
		t.Errorf("CloudwatchLogRetentionInDays = %d, want 30", cfg.CloudwatchLogRetentionInDays)
	}
}

func TestNewGlobalConfig(t *testing.T) {
	t.Run("defaults only skip semantic rules", func(t *testing.T) {
		cfg, err := NewGlobalConfig(GlobalConfigProps{HomeRegion: "eu-west-1"}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.HomeRegion != "eu-west-1" {
			t.Errorf("HomeRegion = %q", cfg.HomeRegion)
		}
	})

	t.Run("semantic failure returns no config", func(t *testing.T) {
		cfg, err := NewGlobalConfig(GlobalConfigProps{ConfigFile: "accounts/global-config.yaml"}, schema.Object{
			"homeRegion":                   "us-gov-east-1",
			"enabledRegions":               []any{"us-gov-east-1"},
			"cloudwatchLogRetentionInDays": 90.0,
		})
		if cfg != nil {
			t.Error("expected no config on failure")
		}
		var semErr *SemanticValidationError
		if !errors.As(err, &semErr) {
			t.Fatalf("expected SemanticValidationError, got %v", err)
		}
		if semErr.File != "accounts/global-config.yaml" {
			t.Errorf("File = %q", semErr.File)
		}
	})

	t.Run("config file defaults to global-config.yaml", func(t *testing.T) {
		_, err := NewGlobalConfig(GlobalConfigProps{}, schema.Object{
			"homeRegion":                   "eu-west-1",
			"enabledRegions":               []any{"eu-west-1"},
			"cloudwatchLogRetentionInDays": 90.0,
		})
		if err == nil || !strings.HasPrefix(err.Error(), "global-config.yaml has 1 issues:") {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestGlobalConfigYAML(t *testing.T) {
	cfg := DefaultGlobalConfig("us-east-1")
	data, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}
	out := string(data)
	for _, want := range []string{"homeRegion: us-east-1", "managementAccountAccessRole: AWSControlTowerExecution", "account: LogArchive"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "dataProtection") {
		t.Errorf("absent sections should be omitted:\n%s", out)
	}
}
