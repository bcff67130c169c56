package schema_test

import (
	"fmt"

	"github.com/openfroyo/lzconfig/pkg/schema"
)

func ExampleParse() {
	trail := schema.Interface("CloudtrailConfig",
		schema.F("enable", schema.Boolean()),
		schema.F("organizationTrail", schema.Boolean()),
	)

	_, err := schema.Parse(trail, map[string]any{"enable": "yes"})
	fmt.Println(err)
	// Output:
	// 2 validation errors:
	//   - enable: expected boolean, got string
	//   - organizationTrail: required field "organizationTrail" is missing from CloudtrailConfig
}

func ExampleExportCUE() {
	tower := schema.Interface("ControlTowerConfig",
		schema.F("enable", schema.Boolean()),
	)
	fmt.Print(schema.ExportCUE(tower))
	// Output:
	// #ControlTowerConfig: {
	// 	enable: bool
	// 	...
	// }
}
