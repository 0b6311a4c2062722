package engine

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindInsufficientPayment ErrorKind = "InsufficientPayment"
	KindNotOwner            ErrorKind = "NotOwner"
	KindCooldownActive      ErrorKind = "CooldownActive"
	KindInsufficientEnergy  ErrorKind = "InsufficientEnergy"
	KindInsufficientPurity  ErrorKind = "InsufficientPurity"
	KindAlreadyEvolved      ErrorKind = "AlreadyEvolved"
	KindNotEvolved          ErrorKind = "NotEvolved"
	KindTokenNotWhitelisted ErrorKind = "TokenNotWhitelisted"
	KindIndexOutOfRange     ErrorKind = "IndexOutOfRange"
	KindUnauthorized        ErrorKind = "Unauthorized"
	KindTokenNotFound       ErrorKind = "TokenNotFound"
	KindMaxSupplyReached    ErrorKind = "MaxSupplyReached"
	KindInvalidInput        ErrorKind = "InvalidInput"
	KindNotDeployed         ErrorKind = "NotDeployed"
	KindAlreadyDeployed     ErrorKind = "AlreadyDeployed"
)

var kindMessages = map[ErrorKind]string{
	KindInsufficientPayment: "insufficient payment",
	KindNotOwner:            "not token owner",
	KindCooldownActive:      "cannot energize yet",
	KindInsufficientEnergy:  "insufficient energy",
	KindInsufficientPurity:  "insufficient purity",
	KindAlreadyEvolved:      "already evolved",
	KindNotEvolved:          "both tokens must be evolved",
	KindTokenNotWhitelisted: "partner token not whitelisted",
	KindIndexOutOfRange:     "trait index out of range",
	KindUnauthorized:        "caller is not the contract owner",
	KindTokenNotFound:       "token does not exist",
	KindMaxSupplyReached:    "max supply reached",
	KindInvalidInput:        "invalid input",
	KindNotDeployed:         "ledger is not deployed",
	KindAlreadyDeployed:     "ledger is already deployed",
}

// Error is a rejected operation. A rejection never leaves partial state behind.
type Error struct {
	Kind   ErrorKind
	Op     string
	Detail string
}

func (e Error) Error() string {
	msg := kindMessages[e.Kind]
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

// Is matches on Kind so errors.Is(err, ErrCooldownActive) works for any op.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInsufficientPayment = Error{Kind: KindInsufficientPayment}
	ErrNotOwner            = Error{Kind: KindNotOwner}
	ErrCooldownActive      = Error{Kind: KindCooldownActive}
	ErrInsufficientEnergy  = Error{Kind: KindInsufficientEnergy}
	ErrInsufficientPurity  = Error{Kind: KindInsufficientPurity}
	ErrAlreadyEvolved      = Error{Kind: KindAlreadyEvolved}
	ErrNotEvolved          = Error{Kind: KindNotEvolved}
	ErrTokenNotWhitelisted = Error{Kind: KindTokenNotWhitelisted}
	ErrIndexOutOfRange     = Error{Kind: KindIndexOutOfRange}
	ErrUnauthorized        = Error{Kind: KindUnauthorized}
	ErrTokenNotFound       = Error{Kind: KindTokenNotFound}
	ErrMaxSupplyReached    = Error{Kind: KindMaxSupplyReached}
	ErrInvalidInput        = Error{Kind: KindInvalidInput}
	ErrNotDeployed         = Error{Kind: KindNotDeployed}
	ErrAlreadyDeployed     = Error{Kind: KindAlreadyDeployed}
)

// KindOf returns the rejection kind of err, or "" for infrastructure errors.
func KindOf(err error) ErrorKind {
	var e Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func reject(kind ErrorKind, op string, format string, args ...any) error {
	detail := ""
	if format != "" {
		detail = fmt.Sprintf(format, args...)
	}
	return Error{Kind: kind, Op: op, Detail: detail}
}
