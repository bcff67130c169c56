package config

import (
	"context"

	"github.com/openfroyo/lzconfig/pkg/schema"
	"gopkg.in/yaml.v3"
)

// FileName is the fixed name of the global configuration document.
const FileName = "global-config.yaml"

// Documented defaults.
const (
	DefaultManagementAccountAccessRole  = "AWSControlTowerExecution"
	DefaultCloudwatchLogRetentionInDays = 365
	DefaultLogArchiveAccount            = "LogArchive"
)

// GlobalConfig is the validated, defaulted global configuration. The root
// exclusively owns every nested section.
//
// Values are overlaid shallowly: a section present in the input replaces
// the default section wholesale, so fields the input leaves out of that
// section take their zero value rather than the section default.
type GlobalConfig struct {
	// HomeRegion is the region control-plane resources are deployed to.
	HomeRegion string `yaml:"homeRegion" json:"homeRegion" validate:"required"`

	// EnabledRegions lists every region governed by this configuration.
	EnabledRegions []string `yaml:"enabledRegions" json:"enabledRegions" validate:"dive,region"`

	// ManagementAccountAccessRole is assumed in member accounts.
	ManagementAccountAccessRole string `yaml:"managementAccountAccessRole" json:"managementAccountAccessRole" validate:"required"`

	// CloudwatchLogRetentionInDays applies to every managed log group.
	CloudwatchLogRetentionInDays int `yaml:"cloudwatchLogRetentionInDays" json:"cloudwatchLogRetentionInDays"`

	ControlTower ControlTowerConfig `yaml:"controlTower" json:"controlTower"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`

	DataProtection *DataProtectionConfig `yaml:"dataProtection,omitempty" json:"dataProtection,omitempty"`

	Reports *ReportConfig `yaml:"reports,omitempty" json:"reports,omitempty"`
}

// GlobalConfigProps are the construction parameters that have no default.
type GlobalConfigProps struct {
	// HomeRegion is used when no parsed values supply one.
	HomeRegion string

	// ConfigFile names the source document in semantic errors. Defaults to FileName.
	ConfigFile string
}

func (p GlobalConfigProps) configFile() string {
	if p.ConfigFile == "" {
		return FileName
	}
	return p.ConfigFile
}

// DefaultGlobalConfig returns a configuration holding only documented defaults.
func DefaultGlobalConfig(homeRegion string) *GlobalConfig {
	return buildGlobalConfig(GlobalConfigProps{HomeRegion: homeRegion}, nil)
}

// NewGlobalConfig builds the defaulted configuration and overlays values on
// it. When values are supplied the built-in semantic rules run and any
// issue fails construction; no partially valid configuration is returned.
func NewGlobalConfig(props GlobalConfigProps, values schema.Object) (*GlobalConfig, error) {
	cfg := buildGlobalConfig(props, values)
	if err := NewSemanticValidator().Validate(context.Background(), props.configFile(), cfg, values); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildGlobalConfig(props GlobalConfigProps, values schema.Object) *GlobalConfig {
	c := &GlobalConfig{
		HomeRegion:                   props.HomeRegion,
		EnabledRegions:               []string{},
		ManagementAccountAccessRole:  DefaultManagementAccountAccessRole,
		CloudwatchLogRetentionInDays: DefaultCloudwatchLogRetentionInDays,
		ControlTower:                 *NewControlTowerConfig(nil),
		Logging:                      *NewLoggingConfig(nil),
	}
	if props.HomeRegion != "" {
		c.EnabledRegions = []string{props.HomeRegion}
	}
	if values != nil {
		c.apply(values)
	}
	return c
}

func (c *GlobalConfig) apply(values schema.Object) {
	if v, ok := values.String("homeRegion"); ok {
		c.HomeRegion = v
	}
	if v, ok := values.Strings("enabledRegions"); ok {
		c.EnabledRegions = v
	}
	if v, ok := values.String("managementAccountAccessRole"); ok {
		c.ManagementAccountAccessRole = v
	}
	if v, ok := values.Int("cloudwatchLogRetentionInDays"); ok {
		c.CloudwatchLogRetentionInDays = v
	}
	if v, ok := values.Object("controlTower"); ok {
		c.ControlTower = *fromValues[ControlTowerConfig](v)
	}
	if v, ok := values.Object("logging"); ok {
		c.Logging = *fromValues[LoggingConfig](v)
	}
	if v, ok := values.Object("dataProtection"); ok {
		c.DataProtection = fromValues[DataProtectionConfig](v)
	}
	if v, ok := values.Object("reports"); ok {
		c.Reports = fromValues[ReportConfig](v)
	}
}

// YAML renders the configuration in the persisted document format.
func (c *GlobalConfig) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Generic renders the configuration as a generic value tree, the same
// shape the deserializer produces for a document.
func (c *GlobalConfig) Generic() (any, error) {
	data, err := c.YAML()
	if err != nil {
		return nil, err
	}
	return Deserialize(data)
}

// ControlTowerConfig controls the Control Tower landing zone.
type ControlTowerConfig struct {
	Enable bool `yaml:"enable" json:"enable"`
}

// NewControlTowerConfig returns the default section overlaid with values.
func NewControlTowerConfig(values schema.Object) *ControlTowerConfig {
	c := &ControlTowerConfig{Enable: true}
	c.apply(values)
	return c
}

func (c *ControlTowerConfig) apply(values schema.Object) {
	if v, ok := values.Bool("enable"); ok {
		c.Enable = v
	}
}

// LoggingConfig configures centralized logging.
type LoggingConfig struct {
	// Account is the name of the log archive account.
	Account        string               `yaml:"account" json:"account" validate:"required"`
	Cloudtrail     CloudtrailConfig     `yaml:"cloudtrail" json:"cloudtrail"`
	SessionManager SessionManagerConfig `yaml:"sessionManager" json:"sessionManager"`
}

// NewLoggingConfig returns the default section overlaid with values.
func NewLoggingConfig(values schema.Object) *LoggingConfig {
	c := &LoggingConfig{
		Account:        DefaultLogArchiveAccount,
		Cloudtrail:     *NewCloudtrailConfig(nil),
		SessionManager: *NewSessionManagerConfig(nil),
	}
	c.apply(values)
	return c
}

func (c *LoggingConfig) apply(values schema.Object) {
	if v, ok := values.String("account"); ok {
		c.Account = v
	}
	if v, ok := values.Object("cloudtrail"); ok {
		c.Cloudtrail = *fromValues[CloudtrailConfig](v)
	}
	if v, ok := values.Object("sessionManager"); ok {
		c.SessionManager = *fromValues[SessionManagerConfig](v)
	}
}

// CloudtrailConfig configures the organization trail.
type CloudtrailConfig struct {
	Enable            bool `yaml:"enable" json:"enable"`
	OrganizationTrail bool `yaml:"organizationTrail" json:"organizationTrail"`
}

// NewCloudtrailConfig returns the default section overlaid with values.
func NewCloudtrailConfig(values schema.Object) *CloudtrailConfig {
	c := &CloudtrailConfig{}
	c.apply(values)
	return c
}

func (c *CloudtrailConfig) apply(values schema.Object) {
	if v, ok := values.Bool("enable"); ok {
		c.Enable = v
	}
	if v, ok := values.Bool("organizationTrail"); ok {
		c.OrganizationTrail = v
	}
}

// SessionManagerConfig configures session log delivery.
type SessionManagerConfig struct {
	SendToCloudWatchLogs bool     `yaml:"sendToCloudWatchLogs" json:"sendToCloudWatchLogs"`
	SendToS3             bool     `yaml:"sendToS3" json:"sendToS3"`
	ExcludeRegions       []string `yaml:"excludeRegions,omitempty" json:"excludeRegions,omitempty" validate:"dive,region"`
	ExcludeAccounts      []string `yaml:"excludeAccounts,omitempty" json:"excludeAccounts,omitempty"`
}

// NewSessionManagerConfig returns the default section overlaid with values.
func NewSessionManagerConfig(values schema.Object) *SessionManagerConfig {
	c := &SessionManagerConfig{}
	c.apply(values)
	return c
}

func (c *SessionManagerConfig) apply(values schema.Object) {
	if v, ok := values.Bool("sendToCloudWatchLogs"); ok {
		c.SendToCloudWatchLogs = v
	}
	if v, ok := values.Bool("sendToS3"); ok {
		c.SendToS3 = v
	}
	if v, ok := values.Strings("excludeRegions"); ok {
		c.ExcludeRegions = v
	}
	if v, ok := values.Strings("excludeAccounts"); ok {
		c.ExcludeAccounts = v
	}
}

// DataProtectionConfig configures the data perimeter guardrails.
type DataProtectionConfig struct {
	Enable            bool            `yaml:"enable" json:"enable"`
	IdentityPerimeter PerimeterConfig `yaml:"identityPerimeter" json:"identityPerimeter"`
	ResourcePerimeter PerimeterConfig `yaml:"resourcePerimeter" json:"resourcePerimeter"`
	NetworkPerimeter  PerimeterConfig `yaml:"networkPerimeter" json:"networkPerimeter"`
}

// PerimeterConfig toggles one perimeter.
type PerimeterConfig struct {
	Enable bool `yaml:"enable" json:"enable"`
}

// NewDataProtectionConfig returns the default section overlaid with values.
func NewDataProtectionConfig(values schema.Object) *DataProtectionConfig {
	c := &DataProtectionConfig{}
	c.apply(values)
	return c
}

func (c *DataProtectionConfig) apply(values schema.Object) {
	if v, ok := values.Bool("enable"); ok {
		c.Enable = v
	}
	if v, ok := values.Object("identityPerimeter"); ok {
		c.IdentityPerimeter = *fromValues[PerimeterConfig](v)
	}
	if v, ok := values.Object("resourcePerimeter"); ok {
		c.ResourcePerimeter = *fromValues[PerimeterConfig](v)
	}
	if v, ok := values.Object("networkPerimeter"); ok {
		c.NetworkPerimeter = *fromValues[PerimeterConfig](v)
	}
}

func (c *PerimeterConfig) apply(values schema.Object) {
	if v, ok := values.Bool("enable"); ok {
		c.Enable = v
	}
}

// ReportConfig configures cost reporting.
type ReportConfig struct {
	CostAndUsageReport *CostAndUsageReportConfig `yaml:"costAndUsageReport,omitempty" json:"costAndUsageReport,omitempty"`
	Budgets            *BudgetReportConfig       `yaml:"budgets,omitempty" json:"budgets,omitempty"`
}

// NewReportConfig returns the default section overlaid with values.
func NewReportConfig(values schema.Object) *ReportConfig {
	c := &ReportConfig{}
	c.apply(values)
	return c
}

func (c *ReportConfig) apply(values schema.Object) {
	if v, ok := values.Object("costAndUsageReport"); ok {
		c.CostAndUsageReport = fromValues[CostAndUsageReportConfig](v)
	}
	if v, ok := values.Object("budgets"); ok {
		c.Budgets = fromValues[BudgetReportConfig](v)
	}
}

// CostAndUsageReportConfig configures the Cost and Usage Report.
type CostAndUsageReportConfig struct {
	Compression              string   `yaml:"compression" json:"compression" validate:"enum=CurCompression"`
	Format                   string   `yaml:"format" json:"format" validate:"enum=CurFormat"`
	ReportName               string   `yaml:"reportName" json:"reportName" validate:"required"`
	S3Prefix                 string   `yaml:"s3Prefix" json:"s3Prefix" validate:"required"`
	TimeUnit                 string   `yaml:"timeUnit" json:"timeUnit" validate:"enum=CurTimeUnit"`
	AdditionalSchemaElements []string `yaml:"additionalSchemaElements,omitempty" json:"additionalSchemaElements,omitempty"`
	AdditionalArtifacts      []string `yaml:"additionalArtifacts,omitempty" json:"additionalArtifacts,omitempty" validate:"dive,enum=CurAdditionalArtifact"`
	RefreshClosedReports     bool     `yaml:"refreshClosedReports" json:"refreshClosedReports"`
	ReportVersioning         string   `yaml:"reportVersioning" json:"reportVersioning" validate:"enum=CurReportVersioning"`
}

// NewCostAndUsageReportConfig returns the default section overlaid with values.
func NewCostAndUsageReportConfig(values schema.Object) *CostAndUsageReportConfig {
	c := &CostAndUsageReportConfig{
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
	c.apply(values)
	return c
}

func (c *CostAndUsageReportConfig) apply(values schema.Object) {
	if v, ok := values.String("compression"); ok {
		c.Compression = v
	}
	if v, ok := values.String("format"); ok {
		c.Format = v
	}
	if v, ok := values.String("reportName"); ok {
		c.ReportName = v
	}
	if v, ok := values.String("s3Prefix"); ok {
		c.S3Prefix = v
	}
	if v, ok := values.String("timeUnit"); ok {
		c.TimeUnit = v
	}
	if v, ok := values.Strings("additionalSchemaElements"); ok {
		c.AdditionalSchemaElements = v
	}
	if v, ok := values.Strings("additionalArtifacts"); ok {
		c.AdditionalArtifacts = v
	}
	if v, ok := values.Bool("refreshClosedReports"); ok {
		c.RefreshClosedReports = v
	}
	if v, ok := values.String("reportVersioning"); ok {
		c.ReportVersioning = v
	}
}

// BudgetReportConfig configures an AWS Budgets report.
type BudgetReportConfig struct {
	Amount                   float64                    `yaml:"amount" json:"amount"`
	BudgetName               string                     `yaml:"budgetName" json:"budgetName" validate:"required"`
	BudgetType               string                     `yaml:"budgetType" json:"budgetType" validate:"enum=BudgetType"`
	TimeUnit                 string                     `yaml:"timeUnit" json:"timeUnit" validate:"enum=BudgetTimeUnit"`
	SubscriptionType         string                     `yaml:"subscriptionType" json:"subscriptionType" validate:"enum=SubscriptionType"`
	Unit                     string                     `yaml:"unit,omitempty" json:"unit,omitempty"`
	IncludeUpfront           bool                       `yaml:"includeUpfront" json:"includeUpfront"`
	IncludeTax               bool                       `yaml:"includeTax" json:"includeTax"`
	IncludeSupport           bool                       `yaml:"includeSupport" json:"includeSupport"`
	IncludeOtherSubscription bool                       `yaml:"includeOtherSubscription" json:"includeOtherSubscription"`
	IncludeSubscription      bool                       `yaml:"includeSubscription" json:"includeSubscription"`
	IncludeRecurring         bool                       `yaml:"includeRecurring" json:"includeRecurring"`
	IncludeDiscount          bool                       `yaml:"includeDiscount" json:"includeDiscount"`
	IncludeRefund            bool                       `yaml:"includeRefund" json:"includeRefund"`
	IncludeCredit            bool                       `yaml:"includeCredit" json:"includeCredit"`
	UseAmortized             bool                       `yaml:"useAmortized" json:"useAmortized"`
	UseBlended               bool                       `yaml:"useBlended" json:"useBlended"`
	Address                  string                     `yaml:"address,omitempty" json:"address,omitempty"`
	Notifications            []BudgetNotificationConfig `yaml:"notifications,omitempty" json:"notifications,omitempty" validate:"dive"`
}

// NewBudgetReportConfig returns the default section overlaid with values.
func NewBudgetReportConfig(values schema.Object) *BudgetReportConfig {
	c := &BudgetReportConfig{
		Amount:                   2000,
		BudgetName:               "accel-budget",
		BudgetType:               "COST",
		TimeUnit:                 "MONTHLY",
		SubscriptionType:         "EMAIL",
		Unit:                     "USD",
		IncludeUpfront:           true,
		IncludeTax:               true,
		IncludeSupport:           true,
		IncludeOtherSubscription: true,
		IncludeSubscription:      true,
		IncludeRecurring:         true,
		IncludeDiscount:          true,
		Notifications: []BudgetNotificationConfig{{
			NotificationType:   "ACTUAL",
			ThresholdType:      "PERCENTAGE",
			ComparisonOperator: "GREATER_THAN",
			Threshold:          90,
		}},
	}
	c.apply(values)
	return c
}

func (c *BudgetReportConfig) apply(values schema.Object) {
	if v, ok := values.Number("amount"); ok {
		c.Amount = v
	}
	if v, ok := values.String("budgetName"); ok {
		c.BudgetName = v
	}
	if v, ok := values.String("budgetType"); ok {
		c.BudgetType = v
	}
	if v, ok := values.String("timeUnit"); ok {
		c.TimeUnit = v
	}
	if v, ok := values.String("subscriptionType"); ok {
		c.SubscriptionType = v
	}
	if v, ok := values.String("unit"); ok {
		c.Unit = v
	}
	flags := []struct {
		key string
		dst *bool
	}{
		{"includeUpfront", &c.IncludeUpfront},
		{"includeTax", &c.IncludeTax},
		{"includeSupport", &c.IncludeSupport},
		{"includeOtherSubscription", &c.IncludeOtherSubscription},
		{"includeSubscription", &c.IncludeSubscription},
		{"includeRecurring", &c.IncludeRecurring},
		{"includeDiscount", &c.IncludeDiscount},
		{"includeRefund", &c.IncludeRefund},
		{"includeCredit", &c.IncludeCredit},
		{"useAmortized", &c.UseAmortized},
		{"useBlended", &c.UseBlended},
	}
	for _, f := range flags {
		if v, ok := values.Bool(f.key); ok {
			*f.dst = v
		}
	}
	if v, ok := values.String("address"); ok {
		c.Address = v
	}
	if v, ok := values.Objects("notifications"); ok {
		c.Notifications = make([]BudgetNotificationConfig, 0, len(v))
		for _, n := range v {
			c.Notifications = append(c.Notifications, *fromValues[BudgetNotificationConfig](n))
		}
	}
}

// BudgetNotificationConfig is one budget alert.
type BudgetNotificationConfig struct {
	NotificationType   string  `yaml:"notificationType" json:"notificationType" validate:"enum=NotificationType"`
	ThresholdType      string  `yaml:"thresholdType" json:"thresholdType" validate:"enum=ThresholdType"`
	ComparisonOperator string  `yaml:"comparisonOperator" json:"comparisonOperator" validate:"enum=ComparisonOperator"`
	Threshold          float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`
}

func (c *BudgetNotificationConfig) apply(values schema.Object) {
	if v, ok := values.String("notificationType"); ok {
		c.NotificationType = v
	}
	if v, ok := values.String("thresholdType"); ok {
		c.ThresholdType = v
	}
	if v, ok := values.String("comparisonOperator"); ok {
		c.ComparisonOperator = v
	}
	if v, ok := values.Number("threshold"); ok {
		c.Threshold = v
	}
}

// fromValues builds a section from parsed values alone. Nested sections in
// the input replace the parent's default wholesale, so they start from the
// zero value rather than the section defaults.
func fromValues[T any, P interface {
	*T
	apply(schema.Object)
}](values schema.Object) *T {
	var section T
	P(&section).apply(values)
	return &section
}
