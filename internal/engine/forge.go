package engine

import "context"

type ForgeResult struct {
	Burned     [2]int64
	TokenID    int64
	Generation Generation
	Element    Element
}

// Forge burns two evolved tokens owned by caller and mints one fresh token a
// generation above the higher input. The new token keeps the first input's element.
func (s *Service) Forge(ctx context.Context, caller Address, tokenID1, tokenID2 int64) (*ForgeResult, error) {
	caller = caller.Canonical()
	if err := validateCaller(opForge, caller); err != nil {
		return nil, err
	}
	if tokenID1 == tokenID2 {
		return nil, reject(KindInvalidInput, opForge, "cannot forge token %d with itself", tokenID1)
	}

	var res *ForgeResult
	err := s.mutate(ctx, opForge, func(t *txn) error {
		a, err := t.ownedToken(opForge, caller, tokenID1)
		if err != nil {
			return err
		}
		b, err := t.ownedToken(opForge, caller, tokenID2)
		if err != nil {
			return err
		}
		if !a.Evolved || !b.Evolved {
			return reject(KindNotEvolved, opForge, "tokens %d and %d", tokenID1, tokenID2)
		}

		if err := t.burnToken(a); err != nil {
			return err
		}
		if err := t.burnToken(b); err != nil {
			return err
		}

		gen := ForgedGeneration(Generation(a.Generation), Generation(b.Generation))
		element := Element(a.CoreElement)
		tok, err := t.mintToken(caller, element, gen)
		if err != nil {
			return err
		}

		newID := tok.ID
		if err := t.emit(EventForged, &newID, ForgedData{TokenID1: tokenID1, TokenID2: tokenID2, NewTokenID: newID}); err != nil {
			return err
		}
		res = &ForgeResult{Burned: [2]int64{tokenID1, tokenID2}, TokenID: newID, Generation: gen, Element: element}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
