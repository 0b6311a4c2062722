package engine

import (
	"context"

	"chronoforge/internal/storage"
)

// Deploy initializes the ledger with its administrator. It succeeds once.
func (s *Service) Deploy(ctx context.Context, owner Address) error {
	owner = owner.Canonical()
	if owner.IsZero() {
		return reject(KindInvalidInput, opDeploy, "owner address is required")
	}
	return s.mutate(ctx, opDeploy, func(t *txn) error {
		if t.contract != nil {
			return reject(KindAlreadyDeployed, opDeploy, "owner %s", t.contract.Owner)
		}
		if err := t.contracts.Insert(t.ctx, string(owner), t.now.Unix()); err != nil {
			return err
		}
		c, err := t.contracts.Get(t.ctx)
		if err != nil {
			return err
		}
		t.contract = c
		return t.emit(EventDeployed, nil, DeployedData{Owner: owner})
	})
}

// WhitelistPartnerToken adds or removes a partner token usable by Infuse. Owner only.
func (s *Service) WhitelistPartnerToken(ctx context.Context, caller Address, partner Address, whitelisted bool) error {
	caller, partner = caller.Canonical(), partner.Canonical()
	if partner.IsZero() {
		return reject(KindInvalidInput, opWhitelist, "partner address is required")
	}
	return s.mutate(ctx, opWhitelist, func(t *txn) error {
		if err := t.requireOwner(opWhitelist, caller); err != nil {
			return err
		}
		if err := t.partners.Upsert(t.ctx, partnerRow(partner, whitelisted, t.now.Unix())); err != nil {
			return err
		}
		return t.emit(EventPartnerWhitelisted, nil, PartnerWhitelistedData{Partner: partner, Whitelisted: whitelisted})
	})
}

// Withdraw pays the whole treasury out to the owner and returns the amount. Owner only.
func (s *Service) Withdraw(ctx context.Context, caller Address) (Gwei, error) {
	caller = caller.Canonical()
	var amount Gwei
	err := s.mutate(ctx, opWithdraw, func(t *txn) error {
		if err := t.requireOwner(opWithdraw, caller); err != nil {
			return err
		}
		amount = Gwei(t.contract.Treasury)
		t.contract.Treasury = 0
		return t.emit(EventWithdrawn, nil, WithdrawnData{To: caller, Amount: amount})
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}

func partnerRow(partner Address, whitelisted bool, at int64) storage.Partner {
	return storage.Partner{Address: string(partner), Whitelisted: whitelisted, UpdatedAt: at}
}
