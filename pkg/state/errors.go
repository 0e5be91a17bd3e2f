package state

import "errors"

var (
	ErrOpenStore = errors.New("state: open violation store")
	ErrMigrate   = errors.New("state: apply migrations")
	ErrRecord    = errors.New("state: record violation")
	ErrList      = errors.New("state: list violations")
)
