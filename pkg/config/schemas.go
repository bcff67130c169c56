package config

import (
	"slices"
	"sync"

	"github.com/openfroyo/lzconfig/pkg/schema"
)

// Schema names held by the registry.
const (
	SchemaGlobalConfig       = "GlobalConfig"
	SchemaControlTower       = "ControlTowerConfig"
	SchemaLogging            = "LoggingConfig"
	SchemaCloudtrail         = "CloudtrailConfig"
	SchemaSessionManager     = "SessionManagerConfig"
	SchemaDataProtection     = "DataProtectionConfig"
	SchemaPerimeter          = "PerimeterConfig"
	SchemaReport             = "ReportConfig"
	SchemaCostAndUsageReport = "CostAndUsageReportConfig"
	SchemaBudgetReport       = "BudgetReportConfig"
	SchemaBudgetNotification = "BudgetNotificationConfig"
)

// SchemaRegistry holds the named interface descriptors of the global
// configuration document. It is built once and never mutated, so it is
// safe for concurrent use without locking.
type SchemaRegistry struct {
	schemas map[string]*schema.InterfaceType
}

var defaultRegistry = sync.OnceValue(NewSchemaRegistry)

// DefaultRegistry returns the process-wide registry, building it on first use.
func DefaultRegistry() *SchemaRegistry {
	return defaultRegistry()
}

// NewSchemaRegistry composes every section schema into the global
// configuration schema.
func NewSchemaRegistry() *SchemaRegistry {
	sr := &SchemaRegistry{schemas: make(map[string]*schema.InterfaceType)}

	controlTower := sr.register(schema.Interface(SchemaControlTower,
		schema.F("enable", schema.Boolean()),
	))

	cloudtrail := sr.register(schema.Interface(SchemaCloudtrail,
		schema.F("enable", schema.Boolean()),
		schema.F("organizationTrail", schema.Boolean()),
	))

	sessionManager := sr.register(schema.Interface(SchemaSessionManager,
		schema.F("sendToCloudWatchLogs", schema.Boolean()),
		schema.F("sendToS3", schema.Boolean()),
		schema.F("excludeRegions", schema.Optional(schema.Array(schema.Region()))),
		schema.F("excludeAccounts", schema.Optional(schema.Array(schema.String()))),
	))

	logging := sr.register(schema.Interface(SchemaLogging,
		schema.F("account", schema.NonEmptyString()),
		schema.F("cloudtrail", cloudtrail),
		schema.F("sessionManager", sessionManager),
	))

	perimeter := sr.register(schema.Interface(SchemaPerimeter,
		schema.F("enable", schema.Boolean()),
	))

	dataProtection := sr.register(schema.Interface(SchemaDataProtection,
		schema.F("enable", schema.Boolean()),
		schema.F("identityPerimeter", schema.Optional(perimeter)),
		schema.F("resourcePerimeter", schema.Optional(perimeter)),
		schema.F("networkPerimeter", schema.Optional(perimeter)),
	))

	costAndUsageReport := sr.register(schema.Interface(SchemaCostAndUsageReport,
		schema.F("compression", CurCompression),
		schema.F("format", CurFormat),
		schema.F("reportName", schema.NonEmptyString()),
		schema.F("s3Prefix", schema.NonEmptyString()),
		schema.F("timeUnit", CurTimeUnit),
		schema.F("additionalSchemaElements", schema.Optional(schema.Array(schema.String()))),
		schema.F("additionalArtifacts", schema.Optional(schema.Array(CurAdditionalArtifact))),
		schema.F("refreshClosedReports", schema.Boolean()),
		schema.F("reportVersioning", CurReportVersioning),
	))

	notification := sr.register(schema.Interface(SchemaBudgetNotification,
		schema.F("notificationType", NotificationType),
		schema.F("thresholdType", ThresholdType),
		schema.F("comparisonOperator", ComparisonOperatorEnum),
		schema.F("threshold", schema.Optional(schema.Number())),
	))

	budgets := sr.register(schema.Interface(SchemaBudgetReport,
		schema.F("amount", schema.Number()),
		schema.F("budgetName", schema.NonEmptyString()),
		schema.F("budgetType", BudgetType),
		schema.F("timeUnit", BudgetTimeUnit),
		schema.F("subscriptionType", SubscriptionType),
		schema.F("unit", schema.Optional(schema.NonEmptyString())),
		schema.F("includeUpfront", schema.Optional(schema.Boolean())),
		schema.F("includeTax", schema.Optional(schema.Boolean())),
		schema.F("includeSupport", schema.Optional(schema.Boolean())),
		schema.F("includeOtherSubscription", schema.Optional(schema.Boolean())),
		schema.F("includeSubscription", schema.Optional(schema.Boolean())),
		schema.F("includeRecurring", schema.Optional(schema.Boolean())),
		schema.F("includeDiscount", schema.Optional(schema.Boolean())),
		schema.F("includeRefund", schema.Optional(schema.Boolean())),
		schema.F("includeCredit", schema.Optional(schema.Boolean())),
		schema.F("useAmortized", schema.Optional(schema.Boolean())),
		schema.F("useBlended", schema.Optional(schema.Boolean())),
		schema.F("address", schema.Optional(schema.NonEmptyString())),
		schema.F("notifications", schema.Optional(schema.Array(notification))),
	))

	report := sr.register(schema.Interface(SchemaReport,
		schema.F("costAndUsageReport", schema.Optional(costAndUsageReport)),
		schema.F("budgets", schema.Optional(budgets)),
	))

	// Fields with a documented default are optional on the wire.
	sr.register(schema.Interface(SchemaGlobalConfig,
		schema.F("homeRegion", schema.NonEmptyString()),
		schema.F("enabledRegions", schema.Array(schema.Region())),
		schema.F("managementAccountAccessRole", schema.Optional(schema.NonEmptyString())),
		schema.F("cloudwatchLogRetentionInDays", schema.Optional(schema.IntegerRange(1, schema.MaxInteger))),
		schema.F("controlTower", schema.Optional(controlTower)),
		schema.F("logging", schema.Optional(logging)),
		schema.F("dataProtection", schema.Optional(dataProtection)),
		schema.F("reports", schema.Optional(report)),
	))

	return sr
}

func (sr *SchemaRegistry) register(d *schema.InterfaceType) *schema.InterfaceType {
	sr.schemas[d.Name()] = d
	return d
}

// GlobalConfig returns the root schema of the global configuration document.
func (sr *SchemaRegistry) GlobalConfig() *schema.InterfaceType {
	return sr.schemas[SchemaGlobalConfig]
}

// Get retrieves a schema by name.
func (sr *SchemaRegistry) Get(name string) (*schema.InterfaceType, bool) {
	d, ok := sr.schemas[name]
	return d, ok
}

// Names returns all registered schema names, sorted.
func (sr *SchemaRegistry) Names() []string {
	names := make([]string, 0, len(sr.schemas))
	for name := range sr.schemas {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
