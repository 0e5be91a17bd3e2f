package bridge

import "errors"

var (
	ErrEncodeHandoff = errors.New("bridge: encode policy handoff")
	ErrDecodeHandoff = errors.New("bridge: decode policy handoff")
)
