package engine

import (
	"context"
	"time"
)

type EventKind string

const (
	EventDeployed           EventKind = "Deployed"
	EventTransfer           EventKind = "Transfer"
	EventMinted             EventKind = "AetheriumMinted"
	EventEnergized          EventKind = "Energized"
	EventEvolution          EventKind = "Evolution"
	EventForged             EventKind = "Forged"
	EventInfused            EventKind = "Infused"
	EventCleansed           EventKind = "Cleansed"
	EventPartnerWhitelisted EventKind = "PartnerWhitelisted"
	EventWithdrawn          EventKind = "Withdrawn"
)

// Event is a committed state change. Seq is the ledger's event row id.
type Event struct {
	Seq     int64     `json:"seq"`
	Kind    EventKind `json:"kind"`
	TokenID *int64    `json:"token_id,omitempty"`
	At      time.Time `json:"at"`
	Data    any       `json:"data"`
}

type DeployedData struct {
	Owner Address `json:"owner"`
}

type TransferData struct {
	From    Address `json:"from"`
	To      Address `json:"to"`
	TokenID int64   `json:"token_id"`
}

type MintedData struct {
	TokenID int64   `json:"token_id"`
	Owner   Address `json:"owner"`
	Element Element `json:"element"`
}

type EnergizedData struct {
	TokenID int64 `json:"token_id"`
	Gain    int64 `json:"gain"`
	Streak  int64 `json:"streak"`
}

type EvolutionData struct {
	TokenID    int64      `json:"token_id"`
	Generation Generation `json:"generation"`
}

type ForgedData struct {
	TokenID1   int64 `json:"token_id_1"`
	TokenID2   int64 `json:"token_id_2"`
	NewTokenID int64 `json:"new_token_id"`
}

type InfusedData struct {
	TokenID int64   `json:"token_id"`
	Partner Address `json:"partner"`
	Trait   string  `json:"trait"`
	Purity  int     `json:"purity"`
}

type CleansedData struct {
	TokenID int64  `json:"token_id"`
	Trait   string `json:"trait"`
	Purity  int    `json:"purity"`
}

type PartnerWhitelistedData struct {
	Partner     Address `json:"partner"`
	Whitelisted bool    `json:"whitelisted"`
}

type WithdrawnData struct {
	To     Address `json:"to"`
	Amount Gwei    `json:"amount_gwei"`
}

// EventSink receives events after their transaction commits, in commit order.
type EventSink interface {
	Publish(ctx context.Context, ev Event) error
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, ev Event) error

func (f EventSinkFunc) Publish(ctx context.Context, ev Event) error { return f(ctx, ev) }
