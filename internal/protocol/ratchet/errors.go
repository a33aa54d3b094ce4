package ratchet

import "errors"

var (
	errNoChains          = errors.New("ratchet has neither sending nor receiving chain")
	errUnknownRatchetKey = errors.New("unknown ratchet key")
)
