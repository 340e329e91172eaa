package supply

import (
	log "github.com/sirupsen/logrus"

	"github.com/drivesim/drivesim/internal/scml"
)

// RCParams describe the output filter of a non-ideal DC source.
type RCParams struct {
	R float64 // source resistance [Ohm]
	C float64 // buffer capacitance [F]
}

// DefaultRCParams returns the default filter constants.
func DefaultRCParams() RCParams { return RCParams{R: 1, C: 4e-3} }

// RC is a DC source behind a first-order RC filter. The buffer voltage sags
// under load current and recovers towards the ideal source voltage:
//
//	du/dt = (u0 - u - R*i) / (R*C)
//
// The filter ODE is integrated internally with subdivided Euler steps, so
// the supply voltage the converter sees lags the load by one cycle.
type RC struct {
	uNominal float64
	params   RCParams

	u     float64
	lastT float64
	obs   [1]float64
}

func NewRC(uNominal float64, params RCParams) *RC {
	if uNominal <= 0 {
		uNominal = 600
	}
	if params.R*params.C < 10*scml.DefaultTau {
		log.WithFields(log.Fields{
			"r": params.R,
			"c": params.C,
		}).Warn("supply: RC time constant close to the cycle time, filter integration may be coarse")
	}
	s := &RC{uNominal: uNominal, params: params}
	s.Reset()
	return s
}

func (s *RC) ObservationNames() []string { return []string{"u_sup"} }

func (s *RC) ObservationSpace() scml.Box { return scml.UnitBox(1) }

func (s *RC) Limits() []float64 { return []float64{s.uNominal} }

func (s *RC) NominalState() []float64 { return []float64{s.uNominal} }

func (s *RC) SupplyShape() int { return 1 }

func (s *RC) Reset() {
	s.u = s.uNominal
	s.lastT = 0
	s.obs[0] = s.u
}

const rcSubSteps = 10

func (s *RC) Voltage(t float64, iSup []float64) []float64 {
	if t > s.lastT {
		i := 0.0
		for _, v := range iSup {
			i += v
		}
		h := (t - s.lastT) / rcSubSteps
		tau := s.params.R * s.params.C
		for k := 0; k < rcSubSteps; k++ {
			s.u += h * (s.uNominal - s.u - s.params.R*i) / tau
		}
		s.lastT = t
	}
	s.obs[0] = s.u
	return s.obs[:]
}

func (s *RC) Observation() []float64 { return s.obs[:] }
