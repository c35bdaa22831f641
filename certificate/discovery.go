package certificate

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/exp/slices"
)

// Discover scans the Minted event log for every token ID where participant
// occupies the given role (RoleHolder or RoleIssuer), deduplicates and
// returns them newest-first. Token IDs are assigned monotonically, so
// descending ID order is descending issuance order; the ordering is stable
// and part of the caller contract.
func Discover(ctx context.Context, ledger LedgerReader, participant common.Address, role Role) ([]*big.Int, error) {
	ids, _, err := discoverEntries(ctx, ledger, participant, role)
	return ids, err
}

// discoverEntries additionally returns a tokenID -> holder map taken from
// the events, used by the issuer view to show recipients without another
// chain read. The log is treated as untrusted: duplicate entries for one
// token ID collapse to a single discovery.
func discoverEntries(ctx context.Context, ledger LedgerReader, participant common.Address, role Role) ([]*big.Int, map[string]common.Address, error) {
	if role != RoleHolder && role != RoleIssuer {
		return nil, nil, fmt.Errorf("cannot scan events by role %s", role)
	}

	entries, err := ledger.ScanEvents(ctx, EventFilter{Participant: participant, Role: role})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to discover certificates for %s as %s: %w", participant.Hex(), role, err)
	}

	seen := make(map[string]struct{}, len(entries))
	holderByID := make(map[string]common.Address, len(entries))
	ids := make([]*big.Int, 0, len(entries))
	for _, e := range entries {
		if e.TokenID == nil {
			continue
		}
		key := e.TokenID.String()
		holderByID[key] = e.Holder
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ids = append(ids, new(big.Int).Set(e.TokenID))
	}

	slices.SortFunc(ids, func(a, b *big.Int) int {
		return b.Cmp(a)
	})
	return ids, holderByID, nil
}
