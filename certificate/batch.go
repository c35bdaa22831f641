package certificate

import (
	"context"
	"math/big"
	"sync"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many resolutions run at once. The registry
// RPC endpoint and the metadata gateway are shared, rate-limited resources;
// a small constant keeps batch loads from blasting either.
const DefaultConcurrency = 5

// loadBatch resolves every token ID with at most concurrency resolutions in
// flight. A single item's failure never aborts the batch: it surfaces as a
// record with StatusNotFound or StatusError. Results are re-sorted by token
// ID descending so callers observe a deterministic order regardless of
// completion timing.
func loadBatch(ctx context.Context, r *Resolver, tokenIDs []*big.Int, concurrency int) []*CertificateRecord {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var (
		mu      sync.Mutex
		records = make([]*CertificateRecord, 0, len(tokenIDs))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, id := range tokenIDs {
		g.Go(func() error {
			rec := r.Resolve(ctx, id)
			mu.Lock()
			records = append(records, rec)
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	sortRecordsDesc(records)
	return records
}

func sortRecordsDesc(records []*CertificateRecord) {
	slices.SortFunc(records, func(a, b *CertificateRecord) int {
		return b.TokenID.Cmp(a.TokenID)
	})
}
