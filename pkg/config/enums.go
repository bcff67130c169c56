package config

import "github.com/openfroyo/lzconfig/pkg/schema"

// Enumerations used by the report sections. Each is shared by the schema
// registry and the model integrity tags (validate:"enum=<Name>").
var (
	CurCompression        = schema.Enum("CurCompression", "ZIP", "GZIP", "Parquet")
	CurFormat             = schema.Enum("CurFormat", "textORcsv", "Parquet")
	CurTimeUnit           = schema.Enum("CurTimeUnit", "HOURLY", "DAILY", "MONTHLY")
	CurReportVersioning   = schema.Enum("CurReportVersioning", "CREATE_NEW_REPORT", "OVERWRITE_REPORT")
	CurAdditionalArtifact = schema.Enum("CurAdditionalArtifact", "REDSHIFT", "QUICKSIGHT", "ATHENA")

	BudgetType             = schema.Enum("BudgetType", "USAGE", "COST", "RI_UTILIZATION", "RI_COVERAGE", "SAVINGS_PLANS_UTILIZATION", "SAVINGS_PLANS_COVERAGE")
	BudgetTimeUnit         = schema.Enum("BudgetTimeUnit", "DAILY", "MONTHLY", "QUARTERLY", "ANNUALLY")
	SubscriptionType       = schema.Enum("SubscriptionType", "EMAIL", "SNS")
	NotificationType       = schema.Enum("NotificationType", "ACTUAL", "FORECASTED")
	ThresholdType          = schema.Enum("ThresholdType", "PERCENTAGE", "ABSOLUTE_VALUE")
	ComparisonOperatorEnum = schema.Enum("ComparisonOperator", "GREATER_THAN", "LESS_THAN", "EQUAL_TO")
)

var enumsByName = func() map[string]*schema.EnumType {
	m := make(map[string]*schema.EnumType)
	for _, e := range []*schema.EnumType{
		CurCompression, CurFormat, CurTimeUnit, CurReportVersioning, CurAdditionalArtifact,
		BudgetType, BudgetTimeUnit, SubscriptionType, NotificationType, ThresholdType, ComparisonOperatorEnum,
	} {
		m[e.Name()] = e
	}
	return m
}()
