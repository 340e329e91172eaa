package experiment

import (
	"fmt"

	"github.com/drivesim/drivesim/internal/config"
	"github.com/drivesim/drivesim/internal/converter"
	"github.com/drivesim/drivesim/internal/env"
	"github.com/drivesim/drivesim/internal/load"
	"github.com/drivesim/drivesim/internal/monitor"
	"github.com/drivesim/drivesim/internal/motor"
	"github.com/drivesim/drivesim/internal/reference"
	"github.com/drivesim/drivesim/internal/scml"
	"github.com/drivesim/drivesim/internal/solver"
	"github.com/drivesim/drivesim/internal/supply"
)

// Registry maps config names onto component constructors. Every constructor
// receives the full config so variants can pick the parameters they need.
type Registry struct {
	supplies   map[string]func(*config.Config) scml.Supply
	converters map[string]func(*config.Config) scml.Converter
	motors     map[string]func(*config.Config) scml.Motor
	loads      map[string]func(*config.Config) scml.Load
	solvers    map[string]func(*config.Config) scml.Solver
	references map[string]func(*config.Config) env.ReferenceGenerator
}

func NewRegistry() *Registry {
	r := &Registry{
		supplies:   make(map[string]func(*config.Config) scml.Supply),
		converters: make(map[string]func(*config.Config) scml.Converter),
		motors:     make(map[string]func(*config.Config) scml.Motor),
		loads:      make(map[string]func(*config.Config) scml.Load),
		solvers:    make(map[string]func(*config.Config) scml.Solver),
		references: make(map[string]func(*config.Config) env.ReferenceGenerator),
	}

	r.supplies["ideal"] = func(cfg *config.Config) scml.Supply {
		return supply.NewIdeal(cfg.SupplyParams.Voltage)
	}
	r.supplies["rc"] = func(cfg *config.Config) scml.Supply {
		return supply.NewRC(cfg.SupplyParams.Voltage, supply.RCParams{
			R: cfg.SupplyParams.R,
			C: cfg.SupplyParams.C,
		})
	}
	r.supplies["ac"] = func(cfg *config.Config) scml.Supply {
		return supply.NewAC(cfg.SupplyParams.Voltage, cfg.SupplyParams.Frequency)
	}

	r.converters["finite_1qc"] = func(cfg *config.Config) scml.Converter {
		return converter.NewFinite1QC(converterOpts(cfg)...)
	}
	r.converters["finite_2qc"] = func(cfg *config.Config) scml.Converter {
		return converter.NewFinite2QC(converterOpts(cfg)...)
	}
	r.converters["finite_4qc"] = func(cfg *config.Config) scml.Converter {
		return converter.NewFinite4QC(converterOpts(cfg)...)
	}
	r.converters["cont_1qc"] = func(cfg *config.Config) scml.Converter {
		return converter.NewCont1QC(converterOpts(cfg)...)
	}
	r.converters["cont_2qc"] = func(cfg *config.Config) scml.Converter {
		return converter.NewCont2QC(converterOpts(cfg)...)
	}
	r.converters["cont_double"] = func(cfg *config.Config) scml.Converter {
		opts := converterOpts(cfg)
		return converter.NewContDouble(
			converter.NewCont2QC(opts...),
			converter.NewCont1QC(opts...),
			opts...,
		)
	}

	r.motors["permex_dc"] = func(cfg *config.Config) scml.Motor {
		return motor.NewPermExDC()
	}
	r.motors["extex_dc"] = func(cfg *config.Config) scml.Motor {
		return motor.NewExtExDC()
	}

	r.loads["polynomial"] = func(cfg *config.Config) scml.Load {
		return load.NewPolynomial(load.WithPolynomialParams(load.PolynomialParams{
			A:     cfg.LoadParams.A,
			B:     cfg.LoadParams.B,
			C:     cfg.LoadParams.C,
			JLoad: cfg.LoadParams.J,
		}))
	}
	r.loads["const_speed"] = func(cfg *config.Config) scml.Load {
		return load.NewConstSpeed(cfg.ReferenceParams.Setpoint * 400)
	}

	r.solvers["euler"] = func(cfg *config.Config) scml.Solver {
		return solver.NewEuler(10)
	}
	r.solvers["rk4"] = func(cfg *config.Config) scml.Solver {
		return solver.NewRK4(4)
	}
	r.solvers["rk45"] = func(cfg *config.Config) scml.Solver {
		return solver.NewRK45(1e-8)
	}
	r.solvers["implicit_euler"] = func(cfg *config.Config) scml.Solver {
		return solver.NewImplicitEuler(10)
	}

	r.references["wiener"] = func(cfg *config.Config) env.ReferenceGenerator {
		return reference.NewWiener(cfg.ReferenceParams.State, cfg.ReferenceParams.Sigma)
	}
	r.references["sinus"] = func(cfg *config.Config) env.ReferenceGenerator {
		return reference.NewSinus(cfg.ReferenceParams.State, cfg.ReferenceParams.FreqLow, cfg.ReferenceParams.FreqHigh)
	}
	r.references["const"] = func(cfg *config.Config) env.ReferenceGenerator {
		return reference.NewConstant(cfg.ReferenceParams.State, cfg.ReferenceParams.Setpoint, cfg.ReferenceParams.EpisodeLength)
	}

	return r
}

func converterOpts(cfg *config.Config) []converter.Option {
	opts := []converter.Option{converter.WithTau(cfg.Tau)}
	if cfg.Interlock > 0 {
		opts = append(opts, converter.WithInterlockingTime(cfg.Interlock))
	}
	return opts
}

func (r *Registry) GetSupply(cfg *config.Config) (scml.Supply, error) {
	fn, ok := r.supplies[cfg.Supply]
	if !ok {
		return nil, fmt.Errorf("unknown supply: %s", cfg.Supply)
	}
	return fn(cfg), nil
}

func (r *Registry) GetConverter(cfg *config.Config) (scml.Converter, error) {
	fn, ok := r.converters[cfg.Converter]
	if !ok {
		return nil, fmt.Errorf("unknown converter: %s", cfg.Converter)
	}
	return fn(cfg), nil
}

func (r *Registry) GetMotor(cfg *config.Config) (scml.Motor, error) {
	fn, ok := r.motors[cfg.Motor]
	if !ok {
		return nil, fmt.Errorf("unknown motor: %s", cfg.Motor)
	}
	return fn(cfg), nil
}

func (r *Registry) GetLoad(cfg *config.Config) (scml.Load, error) {
	fn, ok := r.loads[cfg.Load]
	if !ok {
		return nil, fmt.Errorf("unknown load: %s", cfg.Load)
	}
	return fn(cfg), nil
}

func (r *Registry) GetSolver(cfg *config.Config) (scml.Solver, error) {
	fn, ok := r.solvers[cfg.Solver]
	if !ok {
		return nil, fmt.Errorf("unknown solver: %s", cfg.Solver)
	}
	return fn(cfg), nil
}

func (r *Registry) GetReference(cfg *config.Config) (env.ReferenceGenerator, error) {
	fn, ok := r.references[cfg.Reference]
	if !ok {
		return nil, fmt.Errorf("unknown reference generator: %s", cfg.Reference)
	}
	return fn(cfg), nil
}

// GetMonitor builds the constraint monitor from the config.
func (r *Registry) GetMonitor(cfg *config.Config) (env.ConstraintMonitor, error) {
	var merge monitor.MergeMode
	switch cfg.Monitor.Mode {
	case "", "max":
		merge = monitor.MergeMax
	case "product":
		merge = monitor.MergeProduct
	default:
		return nil, fmt.Errorf("unknown monitor mode: %s", cfg.Monitor.Mode)
	}
	constraints := []monitor.Constraint{
		monitor.NewLimit(cfg.Monitor.States...),
	}
	if cfg.Monitor.Margin > 0 && cfg.Monitor.Margin < 1 {
		constraints = append(constraints, monitor.NewSquared(cfg.Monitor.Margin, cfg.Monitor.States...))
	}
	return monitor.New(merge, constraints...), nil
}

func (r *Registry) ListMotors() []string {
	names := make([]string, 0, len(r.motors))
	for name := range r.motors {
		names = append(names, name)
	}
	return names
}

func (r *Registry) ListConverters() []string {
	names := make([]string, 0, len(r.converters))
	for name := range r.converters {
		names = append(names, name)
	}
	return names
}

func (r *Registry) ListSolvers() []string {
	names := make([]string, 0, len(r.solvers))
	for name := range r.solvers {
		names = append(names, name)
	}
	return names
}
