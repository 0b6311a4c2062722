package engine

import (
	"fmt"
	"time"
)

const (
	// InitialEnergy and MaxPurity are the values every freshly minted or forged token starts with.
	InitialEnergy int64 = 100
	MaxPurity           = 100

	// StreakBonusAfter is the streak length at which energize starts paying the bonus.
	StreakBonusAfter int64 = 7

	// MaxTraitPage caps getTokenTraitsPaginated responses.
	MaxTraitPage = 50
)

// Rules holds the tunable constants of the token lifecycle.
type Rules struct {
	MintPrice             Gwei
	CleanseCost           Gwei
	EvolutionThreshold    int64
	DailyEnergyGain       int64
	StreakBonusMultiplier int64
	MaxSupply             int64

	InfusionPurityPenalty int
	CleansePurityRestore  int
	MinEvolvePurity       int
	MaxTraitLength        int

	Cooldown     time.Duration
	StreakWindow time.Duration
}

func DefaultRules() Rules {
	return Rules{
		MintPrice:             1_000_000,  // 0.001 ETH
		CleanseCost:           10_000_000, // 0.01 ETH
		EvolutionThreshold:    500,
		DailyEnergyGain:       50,
		StreakBonusMultiplier: 2,
		MaxSupply:             10_000,

		InfusionPurityPenalty: 10,
		CleansePurityRestore:  10,
		MinEvolvePurity:       80,
		MaxTraitLength:        64,

		Cooldown:     24 * time.Hour,
		StreakWindow: 48 * time.Hour,
	}
}

func (r Rules) Validate() error {
	switch {
	case r.MintPrice < 0 || r.CleanseCost < 0:
		return fmt.Errorf("rules: prices must not be negative")
	case r.EvolutionThreshold < 0:
		return fmt.Errorf("rules: evolution threshold must not be negative")
	case r.DailyEnergyGain <= 0:
		return fmt.Errorf("rules: daily energy gain must be positive")
	case r.StreakBonusMultiplier < 1:
		return fmt.Errorf("rules: streak bonus multiplier must be at least 1")
	case r.MaxSupply <= 0:
		return fmt.Errorf("rules: max supply must be positive")
	case r.InfusionPurityPenalty < 0 || r.InfusionPurityPenalty > MaxPurity:
		return fmt.Errorf("rules: infusion purity penalty must be within 0..%d", MaxPurity)
	case r.CleansePurityRestore < 0 || r.CleansePurityRestore > MaxPurity:
		return fmt.Errorf("rules: cleanse purity restore must be within 0..%d", MaxPurity)
	case r.MinEvolvePurity < 0 || r.MinEvolvePurity > MaxPurity:
		return fmt.Errorf("rules: min evolve purity must be within 0..%d", MaxPurity)
	case r.MaxTraitLength <= 0:
		return fmt.Errorf("rules: max trait length must be positive")
	case r.Cooldown <= 0:
		return fmt.Errorf("rules: cooldown must be positive")
	case r.StreakWindow < r.Cooldown:
		return fmt.Errorf("rules: streak window %s is shorter than cooldown %s", r.StreakWindow, r.Cooldown)
	}
	return nil
}

func (r Rules) Constants() Constants {
	return Constants{
		MintPrice:             r.MintPrice,
		CleanseCost:           r.CleanseCost,
		EvolutionThreshold:    r.EvolutionThreshold,
		DailyEnergyGain:       r.DailyEnergyGain,
		StreakBonusMultiplier: r.StreakBonusMultiplier,
		MaxSupply:             r.MaxSupply,
	}
}

// EnergyGain returns the energy an energize pays given the streak before it.
func (r Rules) EnergyGain(streak int64) int64 {
	if streak >= StreakBonusAfter {
		return r.DailyEnergyGain * r.StreakBonusMultiplier
	}
	return r.DailyEnergyGain
}

// NextStreak returns the streak after an energize that happens elapsed after the previous one.
func (r Rules) NextStreak(streak int64, elapsed time.Duration) int64 {
	if elapsed <= r.StreakWindow {
		return streak + 1
	}
	return 1
}

// NextEnergizeAt is the earliest time a token last energized at last can energize again.
func (r Rules) NextEnergizeAt(last time.Time) time.Time {
	return last.Add(r.Cooldown)
}

func (r Rules) CanEnergize(last, now time.Time) bool {
	return !now.Before(r.NextEnergizeAt(last))
}

// PurityAfterInfusion applies the infusion penalty, floored at 0.
func (r Rules) PurityAfterInfusion(purity int) int {
	p := purity - r.InfusionPurityPenalty
	if p < 0 {
		return 0
	}
	return p
}

// PurityAfterCleanse applies the cleanse restore, capped at MaxPurity.
func (r Rules) PurityAfterCleanse(purity int) int {
	p := purity + r.CleansePurityRestore
	if p > MaxPurity {
		return MaxPurity
	}
	return p
}

// ForgedGeneration is one step above the higher of the two inputs, capped.
func ForgedGeneration(a, b Generation) Generation {
	if b > a {
		a = b
	}
	return a.Next()
}
