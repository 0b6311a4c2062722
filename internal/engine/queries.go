package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"chronoforge/internal/storage"
)

func (s *Service) Constants() Constants { return s.rules.Constants() }

func (s *Service) contract(ctx context.Context, op string) (*storage.Contract, error) {
	c, err := s.read.contracts.Get(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, reject(KindNotDeployed, op, "")
	}
	return c, nil
}

func (s *Service) token(ctx context.Context, op string, id int64) (*storage.Token, error) {
	tok, err := s.read.tokens.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, reject(KindTokenNotFound, op, "token %d", id)
	}
	return tok, nil
}

// Owner returns the contract administrator.
func (s *Service) Owner(ctx context.Context) (Address, error) {
	c, err := s.contract(ctx, "owner")
	if err != nil {
		return "", err
	}
	return Address(c.Owner), nil
}

// Treasury returns the balance withdrawable by the owner.
func (s *Service) Treasury(ctx context.Context) (Gwei, error) {
	c, err := s.contract(ctx, "treasury")
	if err != nil {
		return 0, err
	}
	return Gwei(c.Treasury), nil
}

func (s *Service) BasicStats(ctx context.Context) (BasicStats, error) {
	c, err := s.contract(ctx, "getBasicStats")
	if err != nil {
		return BasicStats{}, err
	}
	return BasicStats{TotalMinted: c.TotalMinted, TotalEvolved: c.TotalEvolved}, nil
}

// TotalSupply counts live (unburned) tokens.
func (s *Service) TotalSupply(ctx context.Context) (int64, error) {
	return s.read.tokens.Count(ctx)
}

// UserTokens returns the ids owned by owner in ascending order.
func (s *Service) UserTokens(ctx context.Context, owner Address) ([]int64, error) {
	owner = owner.Canonical()
	toks, err := s.read.tokens.ListByOwner(ctx, string(owner))
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(toks))
	for _, t := range toks {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func (s *Service) BalanceOf(ctx context.Context, owner Address) (int64, error) {
	owner = owner.Canonical()
	if owner.IsZero() {
		return 0, reject(KindInvalidInput, "balanceOf", "zero address")
	}
	return s.read.tokens.CountByOwner(ctx, string(owner))
}

func (s *Service) OwnerOf(ctx context.Context, tokenID int64) (Address, error) {
	tok, err := s.token(ctx, "ownerOf", tokenID)
	if err != nil {
		return "", err
	}
	return Address(tok.Owner), nil
}

func (s *Service) TokenBasicInfo(ctx context.Context, tokenID int64) (*TokenBasicInfo, error) {
	tok, err := s.token(ctx, "getTokenBasicInfo", tokenID)
	if err != nil {
		return nil, err
	}
	return &TokenBasicInfo{
		EnergyLevel:  tok.EnergyLevel,
		Purity:       tok.Purity,
		CoreElement:  Element(tok.CoreElement),
		Generation:   Generation(tok.Generation),
		Evolved:      tok.Evolved,
		CreationTime: unixTime(tok.CreationTime),
	}, nil
}

func (s *Service) TokenEnergyInfo(ctx context.Context, tokenID int64) (*TokenEnergyInfo, error) {
	tok, err := s.token(ctx, "getTokenEnergyInfo", tokenID)
	if err != nil {
		return nil, err
	}
	return &TokenEnergyInfo{
		LastEnergized: unixTime(tok.LastEnergized),
		CurrentStreak: tok.CurrentStreak,
	}, nil
}

// TokenTraitsPaginated returns at most count (capped at MaxTraitPage) traits
// starting at start. A start past the end yields an empty page.
func (s *Service) TokenTraitsPaginated(ctx context.Context, tokenID int64, start, count int) ([]string, error) {
	if start < 0 || count < 0 {
		return nil, reject(KindInvalidInput, "getTokenTraitsPaginated", "start %d, count %d", start, count)
	}
	if _, err := s.token(ctx, "getTokenTraitsPaginated", tokenID); err != nil {
		return nil, err
	}
	if count > MaxTraitPage {
		count = MaxTraitPage
	}
	out := []string{}
	if count == 0 {
		return out, nil
	}
	page, err := s.read.traits.Page(ctx, tokenID, start, count)
	if err != nil {
		return nil, err
	}
	for _, t := range page {
		out = append(out, t.Trait)
	}
	return out, nil
}

// TokenAttributes returns the whole record with the first page of traits.
func (s *Service) TokenAttributes(ctx context.Context, tokenID int64) (*TokenAttributes, error) {
	tok, err := s.token(ctx, "tokenAttributes", tokenID)
	if err != nil {
		return nil, err
	}
	traits, err := s.TokenTraitsPaginated(ctx, tokenID, 0, MaxTraitPage)
	if err != nil {
		return nil, err
	}
	n, err := s.read.traits.Count(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	return &TokenAttributes{
		ID:            tok.ID,
		Owner:         Address(tok.Owner),
		EnergyLevel:   tok.EnergyLevel,
		Purity:        tok.Purity,
		CoreElement:   Element(tok.CoreElement),
		Generation:    Generation(tok.Generation),
		InfusedTraits: traits,
		TraitCount:    n,
		LastEnergized: unixTime(tok.LastEnergized),
		CurrentStreak: tok.CurrentStreak,
		Evolved:       tok.Evolved,
		CreationTime:  unixTime(tok.CreationTime),
	}, nil
}

func (s *Service) IsWhitelisted(ctx context.Context, partner Address) (bool, error) {
	partner = partner.Canonical()
	p, err := s.read.partners.Get(ctx, string(partner))
	if err != nil {
		return false, err
	}
	return p != nil && p.Whitelisted, nil
}

// WhitelistedPartners lists partner tokens currently usable by Infuse.
func (s *Service) WhitelistedPartners(ctx context.Context) ([]Address, error) {
	rows, err := s.read.partners.ListWhitelisted(ctx)
	if err != nil {
		return nil, fmt.Errorf("list partners: %w", err)
	}
	out := make([]Address, 0, len(rows))
	for _, p := range rows {
		out = append(out, Address(p.Address))
	}
	return out, nil
}

// EventsAfter returns up to limit committed events with a sequence above after.
// Data is left as the stored JSON payload.
func (s *Service) EventsAfter(ctx context.Context, after int64, limit int) ([]Event, error) {
	rows, err := s.read.events.ListAfter(ctx, after, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Event, 0, len(rows))
	for _, e := range rows {
		out = append(out, Event{
			Seq:     e.ID,
			Kind:    EventKind(e.Kind),
			TokenID: e.TokenID,
			At:      unixTime(e.At),
			Data:    json.RawMessage(e.Payload),
		})
	}
	return out, nil
}

// LastEventSeq is the sequence number of the newest committed event.
func (s *Service) LastEventSeq(ctx context.Context) (int64, error) {
	return s.read.events.LastID(ctx)
}
