package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"chronoforge/internal/storage"
)

// ElementPicker chooses the core element of a freshly minted token.
type ElementPicker func(owner Address, tokenID int64, at time.Time) Element

// HashElement derives the element from (owner, id, time) so replays are deterministic.
func HashElement(owner Address, tokenID int64, at time.Time) Element {
	h := xxhash.Sum64String(string(owner) + ":" + strconv.FormatInt(tokenID, 10) + ":" + strconv.FormatInt(at.Unix(), 10))
	return ElementAqua + Element(h%uint64(ElementUmbra))
}

type repos struct {
	contracts *storage.ContractRepo
	tokens    *storage.TokenRepo
	traits    *storage.TraitRepo
	partners  *storage.PartnerRepo
	events    *storage.EventRepo
}

func newRepos(db storage.DBTX) repos {
	return repos{
		contracts: storage.NewContractRepo(db),
		tokens:    storage.NewTokenRepo(db),
		traits:    storage.NewTraitRepo(db),
		partners:  storage.NewPartnerRepo(db),
		events:    storage.NewEventRepo(db),
	}
}

// Service is the token lifecycle engine. Mutations are applied one at a time,
// each inside a single transaction.
type Service struct {
	db   *sql.DB
	read repos

	rules       Rules
	clock       Clock
	log         *zap.Logger
	sinks       []EventSink
	pickElement ElementPicker
	imageBase   string

	mu sync.Mutex
}

type Option func(*Service)

func WithRules(r Rules) Option            { return func(s *Service) { s.rules = r } }
func WithClock(c Clock) Option            { return func(s *Service) { s.clock = c } }
func WithLogger(l *zap.Logger) Option     { return func(s *Service) { s.log = l } }
func WithSinks(sinks ...EventSink) Option { return func(s *Service) { s.sinks = append(s.sinks, sinks...) } }
func WithElementPicker(p ElementPicker) Option {
	return func(s *Service) { s.pickElement = p }
}

// WithImageBaseURI sets the prefix used for the image field of token metadata.
func WithImageBaseURI(uri string) Option { return func(s *Service) { s.imageBase = uri } }

func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:          db,
		read:        newRepos(db),
		rules:       DefaultRules(),
		clock:       SystemClock,
		log:         zap.NewNop(),
		pickElement: HashElement,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Rules() Rules                        { return s.rules }
func (s *Service) TokenRepo() *storage.TokenRepo       { return s.read.tokens }
func (s *Service) EventRepo() *storage.EventRepo       { return s.read.events }
func (s *Service) ContractRepo() *storage.ContractRepo { return s.read.contracts }

// Now is the ledger clock, truncated the same way mutations see it.
func (s *Service) Now() time.Time { return s.clock.Now().UTC().Truncate(time.Second) }

// AddSink registers an additional event sink. Not safe to call concurrently with mutations.
func (s *Service) AddSink(sink EventSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// txn is the state visible to one mutation.
type txn struct {
	repos
	ctx      context.Context
	now      time.Time
	contract *storage.Contract
	pending  []Event
}

func (t *txn) emit(kind EventKind, tokenID *int64, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", kind, err)
	}
	seq, err := t.events.Append(t.ctx, string(kind), tokenID, string(payload), t.now.Unix())
	if err != nil {
		return err
	}
	t.pending = append(t.pending, Event{Seq: seq, Kind: kind, TokenID: tokenID, At: t.now, Data: data})
	return nil
}

// ownedToken loads id and checks that caller owns it.
func (t *txn) ownedToken(op string, caller Address, id int64) (*storage.Token, error) {
	tok, err := t.tokens.Get(t.ctx, id)
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, reject(KindTokenNotFound, op, "token %d", id)
	}
	if Address(tok.Owner) != caller {
		return nil, reject(KindNotOwner, op, "token %d", id)
	}
	return tok, nil
}

func (t *txn) requireOwner(op string, caller Address) error {
	if caller != Address(t.contract.Owner) {
		return reject(KindUnauthorized, op, "")
	}
	return nil
}

// deposit credits payment to the treasury, rejecting amounts that would overflow it.
func (t *txn) deposit(op string, payment Gwei) error {
	if payment < 0 || int64(payment) > math.MaxInt64-t.contract.Treasury {
		return reject(KindInvalidInput, op, "payment %s overflows treasury %s", payment, Gwei(t.contract.Treasury))
	}
	t.contract.Treasury += int64(payment)
	return nil
}

// mintToken creates a fresh token for owner and emits its Transfer from the zero address.
func (t *txn) mintToken(owner Address, element Element, generation Generation) (*storage.Token, error) {
	tok := storage.Token{
		ID:            t.contract.NextTokenID,
		Owner:         string(owner),
		EnergyLevel:   InitialEnergy,
		Purity:        MaxPurity,
		CoreElement:   int(element),
		Generation:    int(generation),
		LastEnergized: t.now.Unix(),
		CurrentStreak: 0,
		Evolved:       false,
		CreationTime:  t.now.Unix(),
	}
	if err := t.tokens.Insert(t.ctx, tok); err != nil {
		return nil, err
	}
	t.contract.NextTokenID++
	t.contract.TotalMinted++

	id := tok.ID
	if err := t.emit(EventTransfer, &id, TransferData{From: ZeroAddress, To: owner, TokenID: id}); err != nil {
		return nil, err
	}
	return &tok, nil
}

func (t *txn) burnToken(tok *storage.Token) error {
	if err := t.tokens.Delete(t.ctx, tok.ID); err != nil {
		return err
	}
	id := tok.ID
	return t.emit(EventTransfer, &id, TransferData{From: Address(tok.Owner), To: ZeroAddress, TokenID: id})
}

func validateCaller(op string, caller Address) error {
	if caller.IsZero() {
		return reject(KindInvalidInput, op, "caller address is required")
	}
	return nil
}

// mutate runs fn as one atomic ledger operation and publishes its events after commit.
func (s *Service) mutate(ctx context.Context, op string, fn func(t *txn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().UTC().Truncate(time.Second)
	var committed []Event

	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		t := &txn{repos: newRepos(tx), ctx: ctx, now: now}
		c, err := t.contracts.Get(ctx)
		if err != nil {
			return err
		}
		t.contract = c
		if c == nil && op != opDeploy {
			return reject(KindNotDeployed, op, "")
		}

		if err := fn(t); err != nil {
			return err
		}
		if t.contract != nil {
			if err := t.contracts.Update(ctx, t.contract); err != nil {
				return err
			}
		}
		committed = t.pending
		return nil
	})
	if err != nil {
		if kind := KindOf(err); kind != "" {
			s.log.Debug("operation rejected", zap.String("op", op), zap.String("kind", string(kind)), zap.Error(err))
		} else {
			s.log.Error("operation failed", zap.String("op", op), zap.Error(err))
		}
		return err
	}

	for _, ev := range committed {
		s.log.Info("event", zap.String("kind", string(ev.Kind)), zap.Int64("seq", ev.Seq), zap.Any("data", ev.Data))
		for _, sink := range s.sinks {
			if err := sink.Publish(ctx, ev); err != nil {
				s.log.Warn("event sink failed", zap.String("kind", string(ev.Kind)), zap.Int64("seq", ev.Seq), zap.Error(err))
			}
		}
	}
	return nil
}

const (
	opDeploy    = "deploy"
	opMint      = "mint"
	opEnergize  = "energize"
	opEvolve    = "evolve"
	opForge     = "forge"
	opInfuse    = "infuse"
	opCleanse   = "cleanse"
	opWhitelist = "whitelistPartnerToken"
	opWithdraw  = "withdraw"
)
