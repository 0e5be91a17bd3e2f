package api

import "errors"

var (
	ErrBlocked           = errors.New("network request blocked by policy")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrInstall           = errors.New("interceptor installation failed")
	ErrNotAttached       = errors.New("agent not attached")
	ErrAlreadyRegistered = errors.New("agent already linked to a check entry point")
)
