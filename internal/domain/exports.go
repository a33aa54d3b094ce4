package domain

import (
	interfaces "olmkit/internal/domain/interfaces"
	types "olmkit/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	Username         = types.Username
	Fingerprint      = types.Fingerprint
	KeyID            = types.KeyID
	KeyState         = types.KeyState
	MessageType      = types.MessageType
	Role             = types.Role
	Identity         = types.Identity
	IdentityKeys     = types.IdentityKeys
	OneTimeKey       = types.OneTimeKey
	OneTimeKeyPublic = types.OneTimeKeyPublic
	AccountState     = types.AccountState
	SessionState     = types.SessionState
	Handshake        = types.Handshake
	RatchetHeader    = types.RatchetHeader
	RatchetState     = types.RatchetState
	SenderChain      = types.SenderChain
	ReceiverChain    = types.ReceiverChain
	SkippedKey       = types.SkippedKey
	Envelope         = types.Envelope
	DecryptedMessage = types.DecryptedMessage
	PublishedKeys    = types.PublishedKeys
	ClaimedKey       = types.ClaimedKey
	X25519Public     = types.X25519Public
	X25519Private    = types.X25519Private
	Ed25519Public    = types.Ed25519Public
	Ed25519Private   = types.Ed25519Private
	Error            = types.Error
	ErrorKind        = types.ErrorKind
)

const (
	MessageHandshake = types.MessageHandshake
	MessageOrdinary  = types.MessageOrdinary
	RoleInitiator    = types.RoleInitiator
	RoleResponder    = types.RoleResponder
	KeyUnpublished   = types.KeyUnpublished
	KeyPublished     = types.KeyPublished
	KeyUsed          = types.KeyUsed

	KindUnknown              = types.KindUnknown
	KindEntropyUnavailable   = types.KindEntropyUnavailable
	KindMalformedKeyMaterial = types.KindMalformedKeyMaterial
	KindUnknownOneTimeKey    = types.KindUnknownOneTimeKey
	KindOneTimeKeyExhausted  = types.KindOneTimeKeyExhausted
	KindAuthenticationFailed = types.KindAuthenticationFailed
	KindAlreadyDecrypted     = types.KindAlreadyDecrypted
	KindBadPassphrase        = types.KindBadPassphrase
	KindUnsupportedVersion   = types.KindUnsupportedVersion
	KindCapacityExceeded     = types.KindCapacityExceeded
	KindMalformedMessage     = types.KindMalformedMessage
	KindStaleHandle          = types.KindStaleHandle
)

// Error constructors and helpers.
var (
	NewError = types.NewError
	KindOf   = types.KindOf
)

// Key parsing helpers.
var (
	ParseKeyID         = types.ParseKeyID
	DecodeKey          = types.DecodeKey
	EncodeKey          = types.EncodeKey
	ParseX25519Public  = types.ParseX25519Public
	ParseEd25519Public = types.ParseEd25519Public
)

// Error sentinels for errors.Is.
var (
	ErrEntropyUnavailable   = types.ErrEntropyUnavailable
	ErrMalformedKeyMaterial = types.ErrMalformedKeyMaterial
	ErrUnknownOneTimeKey    = types.ErrUnknownOneTimeKey
	ErrOneTimeKeyExhausted  = types.ErrOneTimeKeyExhausted
	ErrAuthenticationFailed = types.ErrAuthenticationFailed
	ErrAlreadyDecrypted     = types.ErrAlreadyDecrypted
	ErrBadPassphrase        = types.ErrBadPassphrase
	ErrUnsupportedVersion   = types.ErrUnsupportedVersion
	ErrCapacityExceeded     = types.ErrCapacityExceeded
	ErrMalformedMessage     = types.ErrMalformedMessage
	ErrStaleHandle          = types.ErrStaleHandle
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	Primitives     = interfaces.Primitives
	PickleStore    = interfaces.PickleStore
	RelayClient    = interfaces.RelayClient
	AccountService = interfaces.AccountService
	MessageService = interfaces.MessageService
)
