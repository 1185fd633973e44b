package compat_test

import (
	"fmt"

	"github.com/matzehuels/licensetower/pkg/compat"
)

func ExampleCheck() {
	p := compat.Check("mit", "Apache License 2.0")
	fmt.Println(p.LicenseA, p.LicenseB, p.Compatible)
	// Output: MIT Apache-2.0 true
}

func ExampleAnalyze() {
	a := compat.Analyze([]string{"MIT", "GPL-2.0", "Apache-2.0"})
	fmt.Println("compatible:", a.OverallCompatible)
	for _, issue := range a.Issues {
		fmt.Println(issue.LicenseA, "x", issue.LicenseB)
	}
	fmt.Println("risk:", compat.RiskLevel([]string{"MIT", "GPL-2.0", "Apache-2.0"}))
	// Output:
	// compatible: false
	// GPL-2.0 x Apache-2.0
	// risk: high
}
