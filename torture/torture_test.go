//go:build torture
// +build torture

package torture

import (
	"os"
	"testing"

	"github.com/flightrecorder/flightrecorder/torture/scenarios"
)

func TestTorture(t *testing.T) {
	iterations := 10
	if testing.Short() {
		iterations = 10
	} else if os.Getenv("TORTURE_PRODUCTION") == "true" {
		iterations = 100000
	} else {
		iterations = 1000
	}

	cfg := Config{
		Iterations:    iterations,
		StopOnFailure: false,
		Verbose:       testing.Verbose(),
	}

	suite := NewSuite(cfg)
	suite.RegisterScenario(scenarios.NewOverflowSaturation())
	suite.RegisterScenario(scenarios.NewCrossRecorderOrdering())

	report, err := suite.Run()
	if err != nil {
		t.Fatalf("Torture test failed: %v", err)
	}

	report.PrintReport()

	if !report.Success {
		t.Errorf("Torture tests failed")
		for name, result := range report.Scenarios {
			if result.Failed > 0 {
				t.Errorf("Scenario %s: %d failures", name, result.Failed)
				if len(result.Errors) > 0 {
					t.Errorf("  Last error: %v", result.Errors[len(result.Errors)-1])
				}
			}
		}
	}
}
