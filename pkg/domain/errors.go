package domain

import "errors"

// ErrTokenNotFound is returned when a token ID cannot be found in the ledger.
var ErrTokenNotFound = errors.New("token not found")

// ErrAlreadyTerminal is returned when resolving or cancelling a token that
// has already reached a terminal status. Terminal timestamps are permanent.
var ErrAlreadyTerminal = errors.New("token already terminal")

// ErrCorruptDocument is returned when a persisted document exists but cannot
// be decoded. Recovery surfaces it instead of silently starting from an
// empty ledger.
var ErrCorruptDocument = errors.New("corrupt persisted document")
