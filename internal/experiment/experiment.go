// Package experiment builds environments from configs and runs scripted
// episodes with a random policy, recording the trajectories.
package experiment

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/drivesim/drivesim/internal/config"
	"github.com/drivesim/drivesim/internal/env"
	"github.com/drivesim/drivesim/internal/metrics"
	"github.com/drivesim/drivesim/internal/reward"
	"github.com/drivesim/drivesim/internal/rng"
	"github.com/drivesim/drivesim/internal/scml"
)

// Result holds everything one experiment run produced.
type Result struct {
	StateNames  []string
	RootEntropy uint64
	Episodes    []EpisodeResult
}

// EpisodeResult is the recorded trajectory of one episode.
type EpisodeResult struct {
	Steps      int                `json:"steps"`
	Return     float64            `json:"return"`
	Terminated bool               `json:"terminated"`
	Metrics    map[string]float64 `json:"metrics"`
	Times      []float64          `json:"times"`
	States     [][]float64        `json:"states"`
	References []float64          `json:"references"`
}

type Experiment struct {
	cfg       *config.Config
	e         *env.Environment
	policy    *rng.Component
	observers []metrics.Observer
}

// New assembles the environment described by the config.
func New(cfg *config.Config, callbacks ...env.Callback) (*Experiment, error) {
	registry := NewRegistry()

	sup, err := registry.GetSupply(cfg)
	if err != nil {
		return nil, err
	}
	conv, err := registry.GetConverter(cfg)
	if err != nil {
		return nil, err
	}
	mot, err := registry.GetMotor(cfg)
	if err != nil {
		return nil, err
	}
	ld, err := registry.GetLoad(cfg)
	if err != nil {
		return nil, err
	}
	slv, err := registry.GetSolver(cfg)
	if err != nil {
		return nil, err
	}

	sys, err := scml.NewSystem(scml.Config{
		Supply:    sup,
		Converter: conv,
		Motor:     mot,
		Load:      ld,
		Solver:    slv,
		Tau:       cfg.Tau,
	})
	if err != nil {
		return nil, err
	}

	refGen, err := registry.GetReference(cfg)
	if err != nil {
		return nil, err
	}
	mon, err := registry.GetMonitor(cfg)
	if err != nil {
		return nil, err
	}

	e, err := env.New(sys, refGen, reward.NewWeightedSumOfErrors(cfg.RewardWeights), mon, callbacks...)
	if err != nil {
		return nil, err
	}

	tracked := sys.Info().StatePositions[cfg.ReferenceParams.State]
	exp := &Experiment{
		cfg:    cfg,
		e:      e,
		policy: &rng.Component{},
		observers: []metrics.Observer{
			metrics.NewTrackingError(tracked),
			metrics.NewControlEffort(),
			metrics.NewPeak(),
		},
	}
	exp.seed()
	return exp, nil
}

func (x *Experiment) seed() {
	root := x.e.Seed(x.cfg.RootSeed())
	// The policy draws from its own root so it never shares a stream with
	// the environment's children; the hash spread keeps root and root+1
	// statistically independent.
	policySeed := root + 1
	x.policy.Seed(rng.NewTree(&policySeed))
	log.WithField("entropy", root).Info("experiment seeded")
}

// Environment exposes the assembled environment, for callers attaching
// their own policies.
func (x *Experiment) Environment() *env.Environment { return x.e }

// Run plays the configured number of episodes with a uniform random policy
// and records the normalized trajectories. The context cancels between
// cycles.
func (x *Experiment) Run(ctx context.Context) (*Result, error) {
	info := x.e.System().Info()
	result := &Result{
		StateNames:  info.StateNames,
		RootEntropy: x.e.RootEntropy(),
	}

	x.policy.NextGenerator()
	space := x.e.ActionSpace()

	for episode := 0; episode < x.cfg.Episodes; episode++ {
		obs := x.e.Reset()
		for _, obsv := range x.observers {
			obsv.Reset()
		}

		ep := EpisodeResult{
			Times:      []float64{0},
			States:     [][]float64{append([]float64(nil), obs.State...)},
			References: []float64{obs.Reference[0]},
		}

		for step := 0; step < x.cfg.Steps; step++ {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			action := space.Sample(x.policy.Rand())
			res, err := x.e.Step(action)
			if err != nil {
				return nil, err
			}

			ep.Steps++
			ep.Return += res.Reward
			ep.Times = append(ep.Times, x.e.System().T())
			ep.States = append(ep.States, append([]float64(nil), res.Observation.State...))
			ep.References = append(ep.References, res.Observation.Reference[0])
			for _, obsv := range x.observers {
				obsv.Observe(res.Observation.State, res.Observation.Reference, action)
			}

			if res.Done {
				ep.Terminated = true
				break
			}
		}

		ep.Metrics = make(map[string]float64, len(x.observers))
		for _, obsv := range x.observers {
			ep.Metrics[obsv.Name()] = obsv.Value()
		}

		log.WithFields(log.Fields{
			"episode":    episode,
			"steps":      ep.Steps,
			"return":     ep.Return,
			"terminated": ep.Terminated,
		}).Info("episode finished")
		result.Episodes = append(result.Episodes, ep)
	}

	return result, nil
}
