package engine

import (
	"context"
	"time"
)

type EnergizeResult struct {
	TokenID        int64
	Gain           int64
	EnergyLevel    int64
	Streak         int64
	NextEnergizeAt time.Time
}

// Energize is the daily action. It pays DailyEnergyGain, multiplied once the
// streak has reached StreakBonusAfter, and extends the streak when the previous
// energize was within the streak window.
func (s *Service) Energize(ctx context.Context, caller Address, tokenID int64) (*EnergizeResult, error) {
	caller = caller.Canonical()
	if err := validateCaller(opEnergize, caller); err != nil {
		return nil, err
	}

	var res *EnergizeResult
	err := s.mutate(ctx, opEnergize, func(t *txn) error {
		tok, err := t.ownedToken(opEnergize, caller, tokenID)
		if err != nil {
			return err
		}

		last := unixTime(tok.LastEnergized)
		if !s.rules.CanEnergize(last, t.now) {
			next := s.rules.NextEnergizeAt(last)
			return reject(KindCooldownActive, opEnergize, "token %d can energize in %s", tokenID, next.Sub(t.now))
		}

		gain := s.rules.EnergyGain(tok.CurrentStreak)
		tok.EnergyLevel += gain
		tok.CurrentStreak = s.rules.NextStreak(tok.CurrentStreak, t.now.Sub(last))
		tok.LastEnergized = t.now.Unix()
		if err := t.tokens.Update(t.ctx, tok); err != nil {
			return err
		}

		if err := t.emit(EventEnergized, &tokenID, EnergizedData{TokenID: tokenID, Gain: gain, Streak: tok.CurrentStreak}); err != nil {
			return err
		}
		res = &EnergizeResult{
			TokenID:        tokenID,
			Gain:           gain,
			EnergyLevel:    tok.EnergyLevel,
			Streak:         tok.CurrentStreak,
			NextEnergizeAt: s.rules.NextEnergizeAt(t.now),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
