// Package supply provides the voltage supplies feeding the converter.
package supply

import (
	"github.com/drivesim/drivesim/internal/scml"
)

// Ideal is a stiff DC source whose voltage never sags under load.
type Ideal struct {
	uNominal float64
	obs      [1]float64
}

// NewIdeal builds an ideal DC supply; uNominal <= 0 selects the 600V default.
func NewIdeal(uNominal float64) *Ideal {
	if uNominal <= 0 {
		uNominal = 600
	}
	return &Ideal{uNominal: uNominal}
}

func (s *Ideal) ObservationNames() []string { return []string{"u_sup"} }

func (s *Ideal) ObservationSpace() scml.Box { return scml.UnitBox(1) }

func (s *Ideal) Limits() []float64 { return []float64{s.uNominal} }

func (s *Ideal) NominalState() []float64 { return []float64{s.uNominal} }

func (s *Ideal) SupplyShape() int { return 1 }

func (s *Ideal) Reset() { s.obs[0] = s.uNominal }

func (s *Ideal) Voltage(t float64, iSup []float64) []float64 {
	s.obs[0] = s.uNominal
	return s.obs[:]
}

func (s *Ideal) Observation() []float64 { return s.obs[:] }
