package viz

import (
	"strings"
	"testing"

	"github.com/drivesim/drivesim/internal/env"
	"github.com/drivesim/drivesim/internal/scml"
)

func testInfo() scml.SystemInfo {
	return scml.SystemInfo{
		StateNames:     []string{"omega", "torque", "i"},
		StatePositions: map[string]int{"omega": 0, "torque": 1, "i": 2},
	}
}

func TestTraceCallbackResolvesState(t *testing.T) {
	c := NewTraceCallback("i")
	if err := c.Configure(testInfo()); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	if c.index != 2 {
		t.Errorf("expected index 2, got %d", c.index)
	}

	c = NewTraceCallback("u_dc")
	if err := c.Configure(testInfo()); err == nil {
		t.Error("expected error for unknown state")
	}
}

func TestTraceCallbackRecordsEpisode(t *testing.T) {
	c := NewTraceCallback("omega")
	if err := c.Configure(testInfo()); err != nil {
		t.Fatal(err)
	}

	c.OnResetBegin()
	c.OnResetEnd(env.Observation{State: []float64{0.1, 0, 0}, Reference: []float64{0.5}})
	if c.View() != "" {
		t.Error("expected empty view after a single sample")
	}

	for i := 0; i < 5; i++ {
		c.OnStepEnd(i, &env.StepResult{Observation: env.Observation{
			State:     []float64{0.1 * float64(i), 0, 0},
			Reference: []float64{0.5},
		}})
	}

	view := c.View()
	if !strings.Contains(view, "omega") || !strings.Contains(view, "reference") {
		t.Errorf("view missing captions:\n%s", view)
	}

	c.OnResetBegin()
	if c.View() != "" {
		t.Error("expected trace cleared on reset")
	}
}
