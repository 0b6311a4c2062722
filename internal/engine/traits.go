package engine

import "context"

type InfuseResult struct {
	TokenID    int64
	Trait      string
	Purity     int
	TraitCount int
}

type CleanseResult struct {
	TokenID    int64
	Trait      string
	Purity     int
	TraitCount int
	Paid       Gwei
}

// Infuse appends a trait sourced from a whitelisted partner token, at the cost of purity.
func (s *Service) Infuse(ctx context.Context, caller Address, tokenID int64, partner Address, trait string) (*InfuseResult, error) {
	caller, partner = caller.Canonical(), partner.Canonical()
	if err := validateCaller(opInfuse, caller); err != nil {
		return nil, err
	}
	name, err := normalizeTrait(trait, s.rules.MaxTraitLength)
	if err != nil {
		return nil, reject(KindInvalidInput, opInfuse, "%v", err)
	}

	var res *InfuseResult
	err = s.mutate(ctx, opInfuse, func(t *txn) error {
		tok, err := t.ownedToken(opInfuse, caller, tokenID)
		if err != nil {
			return err
		}
		p, err := t.partners.Get(t.ctx, string(partner))
		if err != nil {
			return err
		}
		if partner.IsZero() || p == nil || !p.Whitelisted {
			return reject(KindTokenNotWhitelisted, opInfuse, "%s", partner)
		}

		if _, err := t.traits.Append(t.ctx, tokenID, name, string(partner), t.now.Unix()); err != nil {
			return err
		}
		tok.Purity = s.rules.PurityAfterInfusion(tok.Purity)
		if err := t.tokens.Update(t.ctx, tok); err != nil {
			return err
		}
		n, err := t.traits.Count(t.ctx, tokenID)
		if err != nil {
			return err
		}

		if err := t.emit(EventInfused, &tokenID, InfusedData{TokenID: tokenID, Partner: partner, Trait: name, Purity: tok.Purity}); err != nil {
			return err
		}
		res = &InfuseResult{TokenID: tokenID, Trait: name, Purity: tok.Purity, TraitCount: n}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Cleanse removes the trait at traitIndex (remaining traits keep their order)
// and restores purity. payment must cover CleanseCost.
func (s *Service) Cleanse(ctx context.Context, caller Address, tokenID int64, traitIndex int, payment Gwei) (*CleanseResult, error) {
	caller = caller.Canonical()
	if err := validateCaller(opCleanse, caller); err != nil {
		return nil, err
	}

	var res *CleanseResult
	err := s.mutate(ctx, opCleanse, func(t *txn) error {
		tok, err := t.ownedToken(opCleanse, caller, tokenID)
		if err != nil {
			return err
		}
		if payment < s.rules.CleanseCost {
			return reject(KindInsufficientPayment, opCleanse, "sent %s, cost %s", payment, s.rules.CleanseCost)
		}
		n, err := t.traits.Count(t.ctx, tokenID)
		if err != nil {
			return err
		}
		if traitIndex < 0 || traitIndex >= n {
			return reject(KindIndexOutOfRange, opCleanse, "index %d, token %d has %d traits", traitIndex, tokenID, n)
		}
		tr, err := t.traits.At(t.ctx, tokenID, traitIndex)
		if err != nil {
			return err
		}
		if tr == nil {
			return reject(KindIndexOutOfRange, opCleanse, "index %d", traitIndex)
		}
		if err := t.deposit(opCleanse, payment); err != nil {
			return err
		}
		if err := t.traits.Delete(t.ctx, tr.ID); err != nil {
			return err
		}

		tok.Purity = s.rules.PurityAfterCleanse(tok.Purity)
		if err := t.tokens.Update(t.ctx, tok); err != nil {
			return err
		}

		if err := t.emit(EventCleansed, &tokenID, CleansedData{TokenID: tokenID, Trait: tr.Trait, Purity: tok.Purity}); err != nil {
			return err
		}
		res = &CleanseResult{TokenID: tokenID, Trait: tr.Trait, Purity: tok.Purity, TraitCount: n - 1, Paid: payment}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
