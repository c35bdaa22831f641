package certificate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/certchain/go-certregistry-sdk/certificate/common/canonical"
)

// Resolver turns one token ID into a fully classified CertificateRecord by
// reading the on-chain record, fetching the off-chain metadata and comparing
// the recomputed hash against the anchored one. It is read-only and
// idempotent.
type Resolver struct {
	ledger  LedgerReader
	fetcher ContentFetcher
}

// NewResolver creates a resolver over the given ledger and fetcher. Both are
// shared read-only across concurrent resolutions.
func NewResolver(ledger LedgerReader, fetcher ContentFetcher) *Resolver {
	return &Resolver{ledger: ledger, fetcher: fetcher}
}

// Resolve never fails: every failure mode is folded into the record's
// status. A token that was never issued yields StatusNotFound; transport and
// parse faults yield StatusError with the cause attached. On-chain fields
// already obtained survive downstream failures.
func (r *Resolver) Resolve(ctx context.Context, tokenID *big.Int) *CertificateRecord {
	rec := &CertificateRecord{TokenID: tokenID}

	record, err := r.ledger.ReadRecord(ctx, tokenID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			rec.Status = Classify(Classification{Found: false})
			return rec
		}
		rec.Status = Classify(Classification{Found: true, ReadErr: err})
		rec.Error = err.Error()
		return rec
	}

	rec.Issuer = record.Issuer
	rec.TokenURI = record.TokenURI
	rec.IssuedAt = record.IssuedAt
	rec.Revoked = record.Revoked
	rec.OnchainHash = record.MetadataHash

	metadata, computed, err := r.loadMetadata(ctx, record.TokenURI)
	if err != nil {
		rec.Status = Classify(Classification{Found: true, ReadErr: err, Revoked: record.Revoked})
		rec.Error = err.Error()
		return rec
	}

	rec.Metadata = metadata
	rec.ComputedHash = computed
	rec.Status = Classify(Classification{
		Found:     true,
		Revoked:   record.Revoked,
		HashMatch: computed == record.MetadataHash,
	})
	return rec
}

// loadMetadata fetches, parses, canonicalizes and hashes the metadata at
// uri.
func (r *Resolver) loadMetadata(ctx context.Context, uri string) (map[string]interface{}, common.Hash, error) {
	raw, err := r.fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, common.Hash{}, err
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, common.Hash{}, fmt.Errorf("%w: metadata at %s is not a JSON object: %v", ErrMalformedContent, uri, err)
	}

	computed, err := canonical.HashValue(metadata)
	if err != nil {
		return nil, common.Hash{}, fmt.Errorf("%w: %v", ErrMalformedContent, err)
	}
	return metadata, computed, nil
}
