package converter

import (
	"errors"
	"math"
	"testing"

	"github.com/drivesim/drivesim/internal/scml"
)

func TestFinite1QCConversion(t *testing.T) {
	c := NewFinite1QC()
	c.Reset()
	uSup := []float64{60}

	// Transistor on: the supply voltage reaches the motor for both current
	// directions, negative current flows through the free wheeling diode.
	if _, err := c.SetAction(scml.SwitchAction(1), 0); err != nil {
		t.Fatal(err)
	}
	if u := c.Convert(0, []float64{-1}, uSup)[0]; u != 60 {
		t.Errorf("on, i=-1: u = %f, want 60", u)
	}
	if u := c.Convert(0, []float64{1}, uSup)[0]; u != 60 {
		t.Errorf("on, i=+1: u = %f, want 60", u)
	}
	if i := c.SupplyCurrent([]float64{1})[0]; i != 1 {
		t.Errorf("on: i_sup = %f, want 1", i)
	}

	// Transistor off: output clamps to zero for positive current and no
	// supply current flows.
	if _, err := c.SetAction(scml.SwitchAction(0), 1e-4); err != nil {
		t.Fatal(err)
	}
	if u := c.Convert(1e-4, []float64{1}, uSup)[0]; u != 0 {
		t.Errorf("off, i=+1: u = %f, want 0", u)
	}
	if i := c.SupplyCurrent([]float64{1})[0]; i != 0 {
		t.Errorf("off: i_sup = %f, want 0", i)
	}
}

func TestFinite1QCSwitchingTimes(t *testing.T) {
	c := NewFinite1QC(WithTau(1e-4))
	times, err := c.SetAction(scml.SwitchAction(1), 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if len(times) != 1 || math.Abs(times[0]-0.5001) > 1e-12 {
		t.Errorf("times = %v, want [0.5001]", times)
	}
}

func TestFinite1QCRejectsInvalidSwitch(t *testing.T) {
	c := NewFinite1QC()
	if _, err := c.SetAction(scml.SwitchAction(2), 0); !errors.Is(err, scml.ErrInvalidAction) {
		t.Errorf("err = %v, want ErrInvalidAction", err)
	}
}

func TestFinite2QCStates(t *testing.T) {
	c := NewFinite2QC()
	c.Reset()
	uSup := []float64{60}

	// Upper transistor on: supply voltage, supply current equals output.
	c.SetAction(scml.SwitchAction(1), 0)
	if u := c.Convert(0, []float64{1}, uSup)[0]; u != 60 {
		t.Errorf("state 1: u = %f, want 60", u)
	}
	if i := c.SupplyCurrent([]float64{2})[0]; i != 2 {
		t.Errorf("state 1: i_sup = %f, want 2", i)
	}

	// Lower transistor on: output shorted, no supply current.
	c.SetAction(scml.SwitchAction(2), 1e-4)
	if u := c.Convert(1e-4, []float64{1}, uSup)[0]; u != 0 {
		t.Errorf("state 2: u = %f, want 0", u)
	}
	if i := c.SupplyCurrent([]float64{2})[0]; i != 0 {
		t.Errorf("state 2: i_sup = %f, want 0", i)
	}

	// Both off: diodes conduct only negative current back into the supply.
	c.SetAction(scml.SwitchAction(0), 2e-4)
	if u := c.Convert(2e-4, []float64{-1}, uSup)[0]; u != 60 {
		t.Errorf("state 0, i<0: u = %f, want 60", u)
	}
	if u := c.Convert(2e-4, []float64{1}, uSup)[0]; u != 0 {
		t.Errorf("state 0, i>=0: u = %f, want 0", u)
	}
	if i := c.SupplyCurrent([]float64{-2})[0]; i != -2 {
		t.Errorf("state 0, i<0: i_sup = %f, want -2", i)
	}
	if i := c.SupplyCurrent([]float64{2})[0]; i != 0 {
		t.Errorf("state 0, i>0: i_sup = %f, want 0", i)
	}
}

func TestFinite2QCInterlockingPattern(t *testing.T) {
	c := NewFinite2QC(WithTau(1e-4), WithInterlockingTime(1e-6))
	c.Reset()
	uSup := []float64{60}

	// Establish state 1 first.
	c.SetAction(scml.SwitchAction(1), 0)
	c.Convert(0, []float64{1}, uSup)

	// Transition 1 -> 2 passes through the off state: an extra switching
	// time appears at the interlocking boundary.
	times, err := c.SetAction(scml.SwitchAction(2), 1e-4)
	if err != nil {
		t.Fatal(err)
	}
	if len(times) != 2 {
		t.Fatalf("times = %v, want two boundaries", times)
	}
	if math.Abs(times[0]-(1e-4+1e-6)) > 1e-12 || math.Abs(times[1]-2e-4) > 1e-12 {
		t.Errorf("times = %v", times)
	}

	// Inside the interlocking window both transistors are off.
	if u := c.Convert(1e-4+5e-7, []float64{1}, uSup)[0]; u != 0 {
		t.Errorf("interlock window, i>0: u = %f, want 0", u)
	}
	// After the window the new state conducts.
	if u := c.Convert(1e-4+2e-6, []float64{1}, uSup)[0]; u != 0 {
		t.Errorf("state 2 after interlock: u = %f, want 0", u)
	}
	if c.state != 2 {
		t.Errorf("switching state %d, want 2", c.state)
	}
}

func TestFinite2QCNoInterlockWithoutTime(t *testing.T) {
	c := NewFinite2QC(WithTau(1e-4))
	c.Reset()
	c.SetAction(scml.SwitchAction(1), 0)
	c.Convert(0, []float64{1}, []float64{60})

	times, _ := c.SetAction(scml.SwitchAction(2), 1e-4)
	if len(times) != 1 {
		t.Errorf("times = %v, want a single boundary", times)
	}
}

func TestFinite4QCOutputPolarity(t *testing.T) {
	c := NewFinite4QC()
	c.Reset()
	uSup := []float64{60}

	cases := []struct {
		action int
		want   float64
	}{
		{0, 0},   // both outputs low
		{1, 60},  // positive output
		{2, -60}, // negative output
		{3, 0},   // both outputs high
	}
	for _, tc := range cases {
		if _, err := c.SetAction(scml.SwitchAction(tc.action), 0); err != nil {
			t.Fatal(err)
		}
		if u := c.Convert(0, []float64{1}, uSup)[0]; u != tc.want {
			t.Errorf("action %d: u = %f, want %f", tc.action, u, tc.want)
		}
	}
}

func TestFinite4QCMergesSwitchingTimes(t *testing.T) {
	c := NewFinite4QC(WithTau(1e-4), WithInterlockingTime(1e-6))
	c.Reset()
	c.SetAction(scml.SwitchAction(1), 0)
	c.Convert(0, []float64{1}, []float64{60})

	// 1 -> 2 flips both half bridges, but shared boundaries collapse.
	times, err := c.SetAction(scml.SwitchAction(2), 1e-4)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			t.Fatalf("times not strictly increasing: %v", times)
		}
	}
	if times[len(times)-1] != 2e-4 {
		t.Errorf("last boundary %f, want 2e-4", times[len(times)-1])
	}
}

func TestCont1QCAveragedVoltage(t *testing.T) {
	c := NewCont1QC()
	c.Reset()
	uSup := []float64{60}

	c.SetAction(scml.DutyAction(0.5), 0)
	if u := c.Convert(0, []float64{1}, uSup)[0]; u != 30 {
		t.Errorf("duty 0.5: u = %f, want 30", u)
	}
	if i := c.SupplyCurrent([]float64{2})[0]; i != 1 {
		t.Errorf("duty 0.5: i_sup = %f, want 1", i)
	}
	// Negative current: the diode conducts the full supply voltage.
	if u := c.Convert(0, []float64{-1}, uSup)[0]; u != 60 {
		t.Errorf("duty 0.5, i<0: u = %f, want 60", u)
	}
}

func TestCont1QCClampsDuty(t *testing.T) {
	c := NewCont1QC()
	c.Reset()
	c.SetAction(scml.DutyAction(1.5), 0)
	if u := c.Convert(0, []float64{1}, []float64{60})[0]; u != 60 {
		t.Errorf("clamped duty: u = %f, want 60", u)
	}
	c.SetAction(scml.DutyAction(-0.5), 1e-4)
	if u := c.Convert(1e-4, []float64{1}, []float64{60})[0]; u != 0 {
		t.Errorf("clamped duty: u = %f, want 0", u)
	}
}

func TestCont2QCInterlockDiscount(t *testing.T) {
	tau := 1e-4
	c := NewCont2QC(WithTau(tau), WithInterlockingTime(1e-6))
	c.Reset()
	uSup := []float64{60}

	c.SetAction(scml.DutyAction(0.5), 0)
	// Positive current: the discount lowers the output voltage.
	want := (0.5 - 1e-6/tau) * 60
	if u := c.Convert(0, []float64{1}, uSup)[0]; math.Abs(u-want) > 1e-9 {
		t.Errorf("i>0: u = %f, want %f", u, want)
	}
	// Negative current: the discount raises it.
	want = (0.5 + 1e-6/tau) * 60
	if u := c.Convert(0, []float64{-1}, uSup)[0]; math.Abs(u-want) > 1e-9 {
		t.Errorf("i<0: u = %f, want %f", u, want)
	}
}

func TestCont2QCSupplyCurrent(t *testing.T) {
	c := NewCont2QC()
	c.Reset()
	c.SetAction(scml.DutyAction(0.75), 0)
	if i := c.SupplyCurrent([]float64{2})[0]; math.Abs(i-1.5) > 1e-12 {
		t.Errorf("i_sup = %f, want 1.5", i)
	}
}

func TestContDoubleStacksSubConverters(t *testing.T) {
	c := NewContDouble(NewCont2QC(), NewCont1QC())
	c.Reset()
	uSup := []float64{60}

	if c.OutputShape() != 2 {
		t.Fatalf("output shape %d, want 2", c.OutputShape())
	}
	space := c.ActionSpace()
	if space.Discrete() || len(space.Low) != 2 {
		t.Fatalf("action space %+v, want a two dimensional box", space)
	}

	if _, err := c.SetAction(scml.DutyAction(0.5, 0.25), 0); err != nil {
		t.Fatal(err)
	}
	u := c.Convert(0, []float64{1, 1}, uSup)
	if u[0] != 30 || u[1] != 15 {
		t.Errorf("u = %v, want [30 15]", u)
	}
	if i := c.SupplyCurrent([]float64{1, 1})[0]; math.Abs(i-0.75) > 1e-12 {
		t.Errorf("i_sup = %f, want 0.75", i)
	}
}

func TestContDoubleRejectsWrongArity(t *testing.T) {
	c := NewContDouble(NewCont2QC(), NewCont1QC())
	if _, err := c.SetAction(scml.DutyAction(0.5), 0); !errors.Is(err, scml.ErrInvalidAction) {
		t.Errorf("err = %v, want ErrInvalidAction", err)
	}
}
