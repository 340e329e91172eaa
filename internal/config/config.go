package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTau      = 1e-4
	DefaultEpisodes = 1
	DefaultSteps    = 5000
	DefaultVoltage  = 60.0
	DefaultSigma    = 1.0
)

type Config struct {
	Motor     string  `yaml:"motor"`
	Converter string  `yaml:"converter"`
	Supply    string  `yaml:"supply"`
	Load      string  `yaml:"load"`
	Solver    string  `yaml:"solver"`
	Reference string  `yaml:"reference"`
	Tau       float64 `yaml:"tau"`
	Interlock float64 `yaml:"interlock"`
	Episodes  int     `yaml:"episodes"`
	Steps     int     `yaml:"steps"`
	// Seed <= 0 draws the root entropy from the OS.
	Seed int64 `yaml:"seed"`

	SupplyParams    SupplyConfig       `yaml:"supply_params"`
	LoadParams      LoadConfig         `yaml:"load_params"`
	ReferenceParams ReferenceConfig    `yaml:"reference_params"`
	RewardWeights   map[string]float64 `yaml:"reward_weights"`
	Monitor         MonitorConfig      `yaml:"monitor"`
}

type SupplyConfig struct {
	Voltage   float64 `yaml:"voltage"`
	R         float64 `yaml:"r"`
	C         float64 `yaml:"c"`
	Frequency float64 `yaml:"frequency"`
}

type LoadConfig struct {
	A float64 `yaml:"a"`
	B float64 `yaml:"b"`
	C float64 `yaml:"c"`
	J float64 `yaml:"j"`
}

type ReferenceConfig struct {
	State         string  `yaml:"state"`
	Sigma         float64 `yaml:"sigma"`
	FreqLow       float64 `yaml:"freq_low"`
	FreqHigh      float64 `yaml:"freq_high"`
	Setpoint      float64 `yaml:"setpoint"`
	EpisodeLength int     `yaml:"episode_length"`
}

type MonitorConfig struct {
	// Mode is "max" or "product".
	Mode   string   `yaml:"mode"`
	Margin float64  `yaml:"margin"`
	States []string `yaml:"states"`
}

func DefaultConfig() *Config {
	return &Config{
		Motor:     "permex_dc",
		Converter: "finite_1qc",
		Supply:    "ideal",
		Load:      "polynomial",
		Solver:    "euler",
		Reference: "wiener",
		Tau:       DefaultTau,
		Episodes:  DefaultEpisodes,
		Steps:     DefaultSteps,
		SupplyParams: SupplyConfig{
			Voltage:   DefaultVoltage,
			R:         1,
			C:         4e-3,
			Frequency: 50,
		},
		LoadParams: LoadConfig{
			A: 0.01, B: 0.05, C: 0.1, J: 0.1,
		},
		ReferenceParams: ReferenceConfig{
			State:    "omega",
			Sigma:    DefaultSigma,
			FreqLow:  1,
			FreqHigh: 100,
			Setpoint: 0.5,
		},
		RewardWeights: map[string]float64{"omega": 1},
		Monitor: MonitorConfig{
			Mode:   "max",
			Margin: 0.95,
			States: []string{"i"},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RootSeed maps the config seed onto the environment's optional seed: nil
// requests OS entropy.
func (c *Config) RootSeed() *uint64 {
	if c.Seed <= 0 {
		return nil
	}
	s := uint64(c.Seed)
	return &s
}
