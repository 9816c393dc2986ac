package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/bfjit/internal/ir"
)

// Snapshot captures the observable outcome of a scenario.
// Serialized with canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName string   `json:"scenario_name"`
	Listing      []string `json:"listing"`
	Output       string   `json:"output"`
	Steps        int64    `json:"steps"`
	Error        string   `json:"error,omitempty"`
}

// NewSnapshot builds the snapshot of a result.
func NewSnapshot(scenarioName string, result *Result) Snapshot {
	listing := result.Listing
	if listing == nil {
		listing = []string{}
	}
	return Snapshot{
		ScenarioName: scenarioName,
		Listing:      listing,
		Output:       result.Output,
		Steps:        result.Steps,
		Error:        result.ErrorKind,
	}
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON serialization.
func (s Snapshot) toCanonicalMap() map[string]any {
	m := map[string]any{
		"scenario_name": s.ScenarioName,
		"listing":       s.Listing,
		"output":        s.Output,
		"steps":         s.Steps,
	}
	if s.Error != "" {
		m["error"] = s.Error
	}
	return m
}

// MarshalCanonical returns the snapshot's canonical JSON encoding.
func (s Snapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := NewSnapshot(scenarioName, result).MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
