// Package config loads and validates the landing zone global configuration
// document, global-config.yaml.
//
// # Overview
//
// A load runs a fixed pipeline:
//
//	bytes -> Deserialize -> schema.ParseObject -> GlobalConfig defaults + overlay -> semantic rules
//
// Every structural problem in a document is reported at once in a
// *schema.SchemaValidationError. Cross-field rules run only after the
// document is structurally valid and are aggregated in a
// *SemanticValidationError. Both are wrapped in a *LoadError carrying the
// failing stage.
//
// # Components
//
// SchemaRegistry: the read-only descriptor graph of the document, built once
// and shared by every load (DefaultRegistry).
//
// GlobalConfig: the defaulted model. A section present in the document
// replaces the default section wholesale; fields it omits take their zero
// value rather than the section default. Budgets supplied without
// notifications, for example, have no notifications.
//
// SemanticValidator: the partition rule plus any extra Rule values. In the
// GovCloud partition the home region must be us-gov-west-1; elsewhere
// us-east-1 must be the home region or one of the enabled regions.
//
// Loader: LoadFromDirectory and LoadFile return every failure;
// LoadFromString logs the failure and returns nil instead.
//
// Watcher: reloads the document when it changes on disk.
//
// # Usage Example
//
//	cfg, err := config.LoadFromDirectory("./config")
//	if err != nil {
//	    var semErr *config.SemanticValidationError
//	    if errors.As(err, &semErr) {
//	        // semErr.Issues lists every violated rule
//	    }
//	    return err
//	}
//	fmt.Println(cfg.HomeRegion)
package config
