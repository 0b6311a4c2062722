package engine

import "context"

type EvolveResult struct {
	TokenID    int64
	Generation Generation
}

// Evolve is a one-way upgrade: energy and purity gates must hold, and a token
// evolves at most once. Generation advances one step, capped at Gen-5.
func (s *Service) Evolve(ctx context.Context, caller Address, tokenID int64) (*EvolveResult, error) {
	caller = caller.Canonical()
	if err := validateCaller(opEvolve, caller); err != nil {
		return nil, err
	}

	var res *EvolveResult
	err := s.mutate(ctx, opEvolve, func(t *txn) error {
		tok, err := t.ownedToken(opEvolve, caller, tokenID)
		if err != nil {
			return err
		}
		if tok.EnergyLevel < s.rules.EvolutionThreshold {
			return reject(KindInsufficientEnergy, opEvolve, "energy %d, need %d", tok.EnergyLevel, s.rules.EvolutionThreshold)
		}
		if tok.Evolved {
			return reject(KindAlreadyEvolved, opEvolve, "token %d", tokenID)
		}
		if tok.Purity < s.rules.MinEvolvePurity {
			return reject(KindInsufficientPurity, opEvolve, "purity %d, need %d", tok.Purity, s.rules.MinEvolvePurity)
		}

		gen := Generation(tok.Generation).Next()
		tok.Evolved = true
		tok.Generation = int(gen)
		if err := t.tokens.Update(t.ctx, tok); err != nil {
			return err
		}
		t.contract.TotalEvolved++

		if err := t.emit(EventEvolution, &tokenID, EvolutionData{TokenID: tokenID, Generation: gen}); err != nil {
			return err
		}
		res = &EvolveResult{TokenID: tokenID, Generation: gen}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
