// Package config holds the immutable tuning constants of a match.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Leader conquest variants.
const (
	LeaderAbsorb = "absorb" // the whole defeated team joins the victor
	LeaderWeaken = "weaken" // only the leader joins; subordinates go independent
)

// Config is the tuning value object injected into the simulation at
// construction. It is never mutated after Load or Default returns.
type Config struct {
	CyclePeriod uint64       `yaml:"cycle_period"`
	Phases      PhaseOffsets `yaml:"phases"`
	Economy     Economy      `yaml:"economy"`
	Conquest    Conquest     `yaml:"conquest"`
	Combat      Combat       `yaml:"combat"`
	Bounty      Bounty       `yaml:"bounty"`
	Coalition   Coalition    `yaml:"coalition"`
	Respawn     Respawn      `yaml:"respawn"`
}

// PhaseOffsets places each scheduled phase within the cycle.
type PhaseOffsets struct {
	Elimination   uint64 `yaml:"elimination"`
	Migration     uint64 `yaml:"migration"`
	TruceExpiry   uint64 `yaml:"truce_expiry"`
	Promotion     uint64 `yaml:"promotion"`
	Rivals        uint64 `yaml:"rivals"`
	Tribute       uint64 `yaml:"tribute"`
	Generosity    uint64 `yaml:"generosity"`
	Rewards       uint64 `yaml:"rewards"`
	Bounty        uint64 `yaml:"bounty"`
	Coalition     uint64 `yaml:"coalition"`
	BattleSummary uint64 `yaml:"battle_summary"`
	GameEnd       uint64 `yaml:"game_end"`
}

// Economy tunes tribute, generosity, rewards and promotion.
type Economy struct {
	StartingPower float64 `yaml:"starting_power"`

	TributeEnabled          bool    `yaml:"tribute_enabled"`
	TributeBaseLimit        float64 `yaml:"tribute_base_limit"`
	TributePowerFactor      float64 `yaml:"tribute_power_factor"`
	TributeBasePopulation   float64 `yaml:"tribute_base_population"`
	TributePopulationFactor float64 `yaml:"tribute_population_factor"`

	GenerosityEnabled   bool    `yaml:"generosity_enabled"`
	GenerosityThreshold float64 `yaml:"generosity_threshold"`

	PowerExchange   bool    `yaml:"power_exchange"`
	ExchangeRate    float64 `yaml:"exchange_rate"`    // power points per resource unit moved
	PopulationValue float64 `yaml:"population_value"` // resource units one head of population is worth

	RewardsEnabled           bool    `yaml:"rewards_enabled"`
	MinRewardPower           float64 `yaml:"min_reward_power"`
	RewardPercent            float64 `yaml:"reward_percent"`
	RewardGoldPerPoint       float64 `yaml:"reward_gold_per_point"`
	RewardPopulationPerPoint float64 `yaml:"reward_population_per_point"`

	PromotionMargin float64 `yaml:"promotion_margin"`
}

// Conquest tunes the migration resolver.
type Conquest struct {
	LeaderMode                string  `yaml:"leader_mode"`
	LeaderSpoilFraction       float64 `yaml:"leader_spoil_fraction"`
	SubordinateSpoilFraction  float64 `yaml:"subordinate_spoil_fraction"`
	WeakenLeaderSpoilFraction float64 `yaml:"weaken_leader_spoil_fraction"`
	TruceDuration             uint64  `yaml:"truce_duration"`
}

// Combat tunes how damage converts into power score.
type Combat struct {
	DamagePowerRate  float64 `yaml:"damage_power_rate"`
	DamagePowerLoss  float64 `yaml:"damage_power_loss"`
	RivalMultiplier  float64 `yaml:"rival_multiplier"`
	BountyMultiplier float64 `yaml:"bounty_multiplier"`
}

// Bounty tunes the rotating bounty target.
type Bounty struct {
	Enabled bool   `yaml:"enabled"`
	Period  uint64 `yaml:"period"`
}

// Coalition toggles counter-coalition formation.
type Coalition struct {
	Enabled bool `yaml:"enabled"`
}

// Respawn tunes castle placement.
type Respawn struct {
	Footprint    int `yaml:"footprint"`
	SearchRadius int `yaml:"search_radius"`
}

// Default returns the stock tuning.
func Default() Config {
	return Config{
		CyclePeriod: 100,
		Phases: PhaseOffsets{
			Elimination:   5,
			Migration:     10,
			TruceExpiry:   20,
			Promotion:     30,
			Rivals:        40,
			Tribute:       50,
			Generosity:    60,
			Rewards:       70,
			Bounty:        75,
			Coalition:     80,
			BattleSummary: 90,
			GameEnd:       95,
		},
		Economy: Economy{
			StartingPower:            100,
			TributeEnabled:           true,
			TributeBaseLimit:         500,
			TributePowerFactor:       2,
			TributeBasePopulation:    50,
			TributePopulationFactor:  0.2,
			GenerosityEnabled:        true,
			GenerosityThreshold:      2000,
			PowerExchange:            true,
			ExchangeRate:             0.01,
			PopulationValue:          10,
			RewardsEnabled:           true,
			MinRewardPower:           10,
			RewardPercent:            5,
			RewardGoldPerPoint:       20,
			RewardPopulationPerPoint: 0.5,
			PromotionMargin:          10,
		},
		Conquest: Conquest{
			LeaderMode:                LeaderAbsorb,
			LeaderSpoilFraction:       0.5,
			SubordinateSpoilFraction:  0.25,
			WeakenLeaderSpoilFraction: 0.2,
			TruceDuration:             300,
		},
		Combat: Combat{
			DamagePowerRate:  0.01,
			DamagePowerLoss:  0.005,
			RivalMultiplier:  2,
			BountyMultiplier: 3,
		},
		Bounty: Bounty{
			Enabled: true,
			Period:  1000,
		},
		Coalition: Coalition{
			Enabled: true,
		},
		Respawn: Respawn{
			Footprint:    1,
			SearchRadius: 6,
		},
	}
}

// Load reads a YAML file on top of Default. Fields absent from the file keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// Marshal renders cfg as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// PhaseOffset pairs a phase name with its offset for validation and listing.
type PhaseOffset struct {
	Name   string
	Offset uint64
}

// Ordered returns every phase sorted by offset.
func (p PhaseOffsets) Ordered() []PhaseOffset {
	out := []PhaseOffset{
		{"elimination", p.Elimination},
		{"migration", p.Migration},
		{"truce_expiry", p.TruceExpiry},
		{"promotion", p.Promotion},
		{"rivals", p.Rivals},
		{"tribute", p.Tribute},
		{"generosity", p.Generosity},
		{"rewards", p.Rewards},
		{"bounty", p.Bounty},
		{"coalition", p.Coalition},
		{"battle_summary", p.BattleSummary},
		{"game_end", p.GameEnd},
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// Validate checks ranges and the phase ordering constraints.
func (c Config) Validate() error {
	if c.CyclePeriod == 0 {
		return fmt.Errorf("cycle_period must be positive")
	}

	seen := make(map[uint64]string)
	for _, ph := range c.Phases.Ordered() {
		if ph.Offset >= c.CyclePeriod {
			return fmt.Errorf("phase %s offset %d outside cycle of %d", ph.Name, ph.Offset, c.CyclePeriod)
		}
		if other, dup := seen[ph.Offset]; dup {
			return fmt.Errorf("phases %s and %s share offset %d", other, ph.Name, ph.Offset)
		}
		seen[ph.Offset] = ph.Name
	}

	p := c.Phases
	if p.Elimination >= p.Migration {
		return fmt.Errorf("elimination must run before migration")
	}
	if p.Migration >= p.Rivals {
		return fmt.Errorf("migration must run before rivals")
	}
	if p.Promotion >= p.Rivals {
		return fmt.Errorf("promotion must run before rivals")
	}

	switch strings.ToLower(c.Conquest.LeaderMode) {
	case LeaderAbsorb, LeaderWeaken:
	default:
		return fmt.Errorf("unknown leader_mode: %q", c.Conquest.LeaderMode)
	}

	fractions := map[string]float64{
		"leader_spoil_fraction":        c.Conquest.LeaderSpoilFraction,
		"subordinate_spoil_fraction":   c.Conquest.SubordinateSpoilFraction,
		"weaken_leader_spoil_fraction": c.Conquest.WeakenLeaderSpoilFraction,
	}
	for name, f := range fractions {
		if f < 0 || f > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", name, f)
		}
	}

	if c.Economy.PromotionMargin < 0 {
		return fmt.Errorf("promotion_margin must not be negative")
	}
	if c.Economy.RewardPercent < 0 || c.Economy.RewardPercent > 100 {
		return fmt.Errorf("reward_percent must be within [0, 100]")
	}
	if c.Bounty.Enabled && c.Bounty.Period == 0 {
		return fmt.Errorf("bounty period must be positive when bounty is enabled")
	}
	if c.Respawn.Footprint < 0 || c.Respawn.SearchRadius < 0 {
		return fmt.Errorf("respawn footprint and search_radius must not be negative")
	}
	return nil
}

// WeakenMode reports whether only the leader migrates on leader conquest.
func (c Config) WeakenMode() bool {
	return strings.EqualFold(c.Conquest.LeaderMode, LeaderWeaken)
}
