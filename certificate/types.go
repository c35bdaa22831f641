// Package certificate implements read-time verification of certificates
// anchored on the registry contract: discovering token IDs from the Minted
// event log, reading the on-chain record, fetching and hashing the off-chain
// metadata, and classifying the result.
package certificate

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Role identifies the position an address occupies relative to a certificate.
type Role uint8

const (
	// RoleHolder is the address a certificate was minted to.
	RoleHolder Role = iota
	// RoleIssuer is the address that minted a certificate.
	RoleIssuer
	// RoleAdmin is the registry's DEFAULT_ADMIN_ROLE capability.
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleHolder:
		return "holder"
	case RoleIssuer:
		return "issuer"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// AuthoritativeRecord is the registry's on-chain record for one token ID.
// All fields except Revoked are immutable after issuance; Revoked only ever
// transitions false to true.
type AuthoritativeRecord struct {
	TokenID      *big.Int
	Issuer       common.Address
	MetadataHash common.Hash
	TokenURI     string
	IssuedAt     uint64
	Revoked      bool
}

// EventLogEntry is one decoded Minted event. It is emitted once per issuance
// and used only to discover token IDs; revocation state is never read from
// it.
type EventLogEntry struct {
	TokenID      *big.Int
	Holder       common.Address
	Issuer       common.Address
	TokenURI     string
	MetadataHash common.Hash
	BlockNumber  uint64
}

// EventFilter selects Minted events where Participant occupies the given
// role. Only RoleHolder and RoleIssuer are valid scan roles.
type EventFilter struct {
	Participant common.Address
	Role        Role
}

// CertificateRecord is the derived, per-request projection of one
// certificate. It is never authoritative and is recomputed on every
// verification.
type CertificateRecord struct {
	TokenID      *big.Int               `json:"tokenId"`
	Holder       common.Address         `json:"holder"`
	Issuer       common.Address         `json:"issuer"`
	TokenURI     string                 `json:"tokenURI"`
	IssuedAt     uint64                 `json:"issuedAt"`
	Revoked      bool                   `json:"revoked"`
	OnchainHash  common.Hash            `json:"onchainMetadataHash"`
	ComputedHash common.Hash            `json:"computedMetadataHash"`
	Status       Status                 `json:"status"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	// Error carries a human-readable cause when Status is StatusError.
	Error string `json:"error,omitempty"`
}

// LedgerReader is the read-only view of the registry contract. A single
// implementation is constructed at startup and shared by all workers; all
// methods are safe for concurrent use.
type LedgerReader interface {
	// ScanEvents returns every Minted entry matching the filter, from the
	// contract's deploy block to the current head. The order is stable but
	// not necessarily chain order; callers re-sort. A partial scan is never
	// returned silently: provider range limits are paginated internally or
	// the scan fails with ErrLedgerUnavailable.
	ScanEvents(ctx context.Context, filter EventFilter) ([]EventLogEntry, error)

	// ReadRecord returns the authoritative record for a token ID. A token
	// that was never issued fails with ErrNotFound; transport faults fail
	// with ErrLedgerUnavailable. Callers must distinguish the two.
	ReadRecord(ctx context.Context, tokenID *big.Int) (*AuthoritativeRecord, error)

	// HasRole reports whether addr holds the given capability role
	// (RoleIssuer or RoleAdmin) on the registry.
	HasRole(ctx context.Context, addr common.Address, role Role) (bool, error)
}

// ContentFetcher resolves a token URI to its raw bytes. Implementations are
// single-shot: no retries, one bounded network call.
type ContentFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}
