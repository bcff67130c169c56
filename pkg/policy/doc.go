// Package policy evaluates Open Policy Agent (OPA) Rego policies against
// validated landing zone global configurations.
//
// Policies complement the structural and partition checks in package
// config with organization-specific guardrails. Each policy is a Rego
// module declaring a deny set; the engine queries data.<package>.deny with
// the configuration as input.config.
//
// # Usage
//
//	eng, err := policy.NewEngine(logger)
//	if err != nil {
//	    return err
//	}
//	if err := eng.LoadPolicies(ctx, []string{"/etc/lzconfig/policies"}); err != nil {
//	    return err
//	}
//
//	loader := config.NewLoader(config.WithRules(eng.Rule()))
//	cfg, err := loader.LoadFromDirectory(ctx, dir)
//
// Registered as a rule, blocking violations (error and critical) become
// semantic issues of the load. Warnings are logged.
//
// # Built-in Policies
//
//  1. home-region-enabled - homeRegion must appear in enabledRegions (warning)
//  2. log-retention-values - retention must be a CloudWatch Logs period (warning)
//  3. session-logging - Session Manager logs must go somewhere (warning)
//
// # Custom Policies
//
//	# Require an organization trail.
//	# severity: error
//	package custom.org_trail
//
//	import rego.v1
//
//	deny contains violation if {
//	    not input.config.logging.cloudtrail.organizationTrail
//	    violation := {
//	        "message": "organization trail is disabled",
//	        "path": "logging.cloudtrail.organizationTrail",
//	    }
//	}
//
// Deny elements may be plain strings or objects with message, severity and
// path keys. A missing severity falls back to the policy's own.
//
// # Hot Reload
//
// Engine.Watch reloads user policies whenever .rego or .json files under
// the watched paths change.
package policy
