package certificate

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultLimit caps how many discovered certificates a list call resolves.
const DefaultLimit = 50

// Verifier is the caller-facing entry point: verify one certificate, or
// discover and verify everything held or issued by an address. The ledger
// and fetcher are injected once at construction and shared read-only by all
// workers.
type Verifier struct {
	ledger      LedgerReader
	resolver    *Resolver
	concurrency int
	limit       int
}

// VerifierOpt configures a Verifier.
type VerifierOpt func(*Verifier)

// WithConcurrency overrides the batch concurrency bound.
func WithConcurrency(n int) VerifierOpt {
	return func(v *Verifier) {
		if n > 0 {
			v.concurrency = n
		}
	}
}

// WithLimit overrides how many newest certificates a list call resolves.
// Zero or negative means no limit.
func WithLimit(n int) VerifierOpt {
	return func(v *Verifier) {
		v.limit = n
	}
}

// NewVerifier creates a Verifier over the given ledger reader and content
// fetcher.
func NewVerifier(ledger LedgerReader, fetcher ContentFetcher, opts ...VerifierOpt) *Verifier {
	v := &Verifier{
		ledger:      ledger,
		resolver:    NewResolver(ledger, fetcher),
		concurrency: DefaultConcurrency,
		limit:       DefaultLimit,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify resolves and classifies a single token ID. It never fails; the
// outcome is always a record whose Status says what happened.
func (v *Verifier) Verify(ctx context.Context, tokenID *big.Int) *CertificateRecord {
	return v.resolver.Resolve(ctx, tokenID)
}

// CertificatesByHolder discovers every certificate minted to holder and
// verifies each one, newest first. It fails only when discovery itself
// fails; per-certificate failures are classified records in the result.
func (v *Verifier) CertificatesByHolder(ctx context.Context, holder common.Address) ([]*CertificateRecord, error) {
	ids, holderByID, err := discoverEntries(ctx, v.ledger, holder, RoleHolder)
	if err != nil {
		return nil, err
	}
	return v.loadWithHolders(ctx, ids, holderByID), nil
}

// CertificatesByIssuer discovers every certificate minted by issuer and
// verifies each one, newest first. Holder addresses come from the event log
// hints.
func (v *Verifier) CertificatesByIssuer(ctx context.Context, issuer common.Address) ([]*CertificateRecord, error) {
	ids, holderByID, err := discoverEntries(ctx, v.ledger, issuer, RoleIssuer)
	if err != nil {
		return nil, err
	}
	return v.loadWithHolders(ctx, ids, holderByID), nil
}

func (v *Verifier) loadWithHolders(ctx context.Context, ids []*big.Int, holderByID map[string]common.Address) []*CertificateRecord {
	if v.limit > 0 && len(ids) > v.limit {
		ids = ids[:v.limit]
	}
	records := loadBatch(ctx, v.resolver, ids, v.concurrency)
	for _, rec := range records {
		if rec.TokenID == nil {
			continue
		}
		if holder, ok := holderByID[rec.TokenID.String()]; ok {
			rec.Holder = holder
		}
	}
	return records
}
