package config

var Presets = map[string]map[string]*Config{
	"permex_dc": {
		"chopper": {
			Motor: "permex_dc", Converter: "finite_1qc", Supply: "ideal",
			Load: "polynomial", Solver: "euler", Reference: "wiener",
			Tau: 1e-4, Episodes: 1, Steps: 10000,
		},
		"bridge": {
			Motor: "permex_dc", Converter: "finite_4qc", Supply: "ideal",
			Load: "polynomial", Solver: "rk4", Reference: "wiener",
			Tau: 1e-4, Interlock: 1e-6, Episodes: 1, Steps: 10000,
		},
		"pwm": {
			Motor: "permex_dc", Converter: "cont_2qc", Supply: "ideal",
			Load: "polynomial", Solver: "rk45", Reference: "sinus",
			Tau: 1e-4, Episodes: 1, Steps: 10000,
		},
		"sagging": {
			Motor: "permex_dc", Converter: "finite_2qc", Supply: "rc",
			Load: "polynomial", Solver: "rk4", Reference: "wiener",
			Tau: 1e-4, Episodes: 1, Steps: 10000,
		},
		"stiff": {
			Motor: "permex_dc", Converter: "cont_1qc", Supply: "ideal",
			Load: "polynomial", Solver: "implicit_euler", Reference: "const",
			Tau: 1e-3, Episodes: 1, Steps: 2000,
		},
	},
	"extex_dc": {
		"double": {
			Motor: "extex_dc", Converter: "cont_double", Supply: "ideal",
			Load: "polynomial", Solver: "rk4", Reference: "wiener",
			Tau: 1e-4, Episodes: 1, Steps: 10000,
		},
		"dyno": {
			Motor: "extex_dc", Converter: "cont_double", Supply: "ideal",
			Load: "const_speed", Solver: "rk4", Reference: "const",
			Tau: 1e-4, Episodes: 1, Steps: 5000,
		},
	},
}

func GetPreset(motor, preset string) *Config {
	motorPresets, ok := Presets[motor]
	if !ok {
		return nil
	}
	cfg, ok := motorPresets[preset]
	if !ok {
		return nil
	}
	return merged(cfg)
}

func ListPresets(motor string) []string {
	motorPresets, ok := Presets[motor]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(motorPresets))
	for name := range motorPresets {
		names = append(names, name)
	}
	return names
}

// merged fills preset gaps with the defaults so presets only spell out what
// deviates.
func merged(p *Config) *Config {
	cfg := DefaultConfig()
	cfg.Motor = p.Motor
	cfg.Converter = p.Converter
	cfg.Supply = p.Supply
	cfg.Load = p.Load
	cfg.Solver = p.Solver
	cfg.Reference = p.Reference
	if p.Tau > 0 {
		cfg.Tau = p.Tau
	}
	cfg.Interlock = p.Interlock
	if p.Episodes > 0 {
		cfg.Episodes = p.Episodes
	}
	if p.Steps > 0 {
		cfg.Steps = p.Steps
	}
	return cfg
}
