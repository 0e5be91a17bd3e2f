package main

import "errors"

var (
	ErrLoadConfig   = errors.New("load configuration")
	ErrHostsBlocked = errors.New("hosts blocked")
	ErrRunCommand   = errors.New("run command")
)
