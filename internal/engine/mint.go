package engine

import (
	"context"
	"time"
)

type MintResult struct {
	TokenID int64
	Owner   Address
	Element Element
	Paid    Gwei
}

// Mint creates a new Gen-1 token owned by caller. payment must cover MintPrice;
// the full payment goes to the treasury.
func (s *Service) Mint(ctx context.Context, caller Address, payment Gwei) (*MintResult, error) {
	caller = caller.Canonical()
	if err := validateCaller(opMint, caller); err != nil {
		return nil, err
	}

	var res *MintResult
	err := s.mutate(ctx, opMint, func(t *txn) error {
		if payment < s.rules.MintPrice {
			return reject(KindInsufficientPayment, opMint, "sent %s, price %s", payment, s.rules.MintPrice)
		}
		supply, err := t.tokens.Count(t.ctx)
		if err != nil {
			return err
		}
		if supply >= s.rules.MaxSupply {
			return reject(KindMaxSupplyReached, opMint, "supply %d", supply)
		}

		if err := t.deposit(opMint, payment); err != nil {
			return err
		}

		element := s.pickElement(caller, t.contract.NextTokenID, t.now)
		if !element.IsValid() {
			element = ElementNone
		}
		tok, err := t.mintToken(caller, element, Gen1)
		if err != nil {
			return err
		}
		id := tok.ID
		if err := t.emit(EventMinted, &id, MintedData{TokenID: id, Owner: caller, Element: element}); err != nil {
			return err
		}
		res = &MintResult{TokenID: id, Owner: caller, Element: element, Paid: payment}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// unixTime converts stored unix seconds back to UTC time.
func unixTime(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
