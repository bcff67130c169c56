package policy

import (
	"time"
)

// Built-in policy names.
const (
	PolicyLogRetention      = "log-retention-values"
	PolicyHomeRegionEnabled = "home-region-enabled"
	PolicySessionLogging    = "session-logging"
)

// GetBuiltinPolicies returns all built-in policies.
func GetBuiltinPolicies() []Policy {
	return []Policy{
		logRetentionPolicy(),
		homeRegionEnabledPolicy(),
		sessionLoggingPolicy(),
	}
}

// logRetentionPolicy flags retention periods CloudWatch Logs cannot apply.
func logRetentionPolicy() Policy {
	return Policy{
		Name:        PolicyLogRetention,
		Description: "cloudwatchLogRetentionInDays must be a retention period supported by CloudWatch Logs",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"logging"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package lzconfig.policies.retention

import rego.v1

valid_retention := {
	1, 3, 5, 7, 14, 30, 60, 90, 120, 150, 180, 365, 400, 545,
	731, 1096, 1827, 2192, 2557, 2922, 3288, 3653,
}

deny contains violation if {
	days := input.config.cloudwatchLogRetentionInDays
	not valid_retention[days]
	violation := {
		"message": sprintf("%v is not a CloudWatch Logs retention period", [days]),
		"severity": "warning",
		"path": "cloudwatchLogRetentionInDays",
	}
}
`,
	}
}

// homeRegionEnabledPolicy flags a home region that is not governed. It is
// advisory: the partition rule alone decides which home regions load.
func homeRegionEnabledPolicy() Policy {
	return Policy{
		Name:        PolicyHomeRegionEnabled,
		Description: "homeRegion must be one of the enabledRegions",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"regions"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package lzconfig.policies.home_region

import rego.v1

deny contains violation if {
	home := input.config.homeRegion
	not home in input.config.enabledRegions
	violation := {
		"message": sprintf("homeRegion %s must be included in enabledRegions", [home]),
		"severity": "warning",
		"path": "enabledRegions",
	}
}
`,
	}
}

// sessionLoggingPolicy warns when session logs are delivered nowhere.
func sessionLoggingPolicy() Policy {
	return Policy{
		Name:        PolicySessionLogging,
		Description: "Session Manager logs should be sent to CloudWatch Logs or S3",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"logging"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package lzconfig.policies.session_logging

import rego.v1

deny contains violation if {
	sm := input.config.logging.sessionManager
	not sm.sendToCloudWatchLogs
	not sm.sendToS3
	violation := {
		"message": "session manager logs are not sent to CloudWatch Logs or S3",
		"severity": "warning",
		"path": "logging.sessionManager",
	}
}
`,
	}
}
