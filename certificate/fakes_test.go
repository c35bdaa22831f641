package certificate

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// fakeLedger is an in-memory LedgerReader with injectable per-token latency
// and failures.
type fakeLedger struct {
	mu      sync.Mutex
	records map[string]*AuthoritativeRecord
	events  []EventLogEntry
	scanErr error
	readErr map[string]error
	delay   map[string]time.Duration
	roles   map[string]map[Role]bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		records: make(map[string]*AuthoritativeRecord),
		readErr: make(map[string]error),
		delay:   make(map[string]time.Duration),
		roles:   make(map[string]map[Role]bool),
	}
}

func (f *fakeLedger) ScanEvents(_ context.Context, filter EventFilter) ([]EventLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scanErr != nil {
		return nil, f.scanErr
	}
	var out []EventLogEntry
	for _, e := range f.events {
		switch filter.Role {
		case RoleHolder:
			if e.Holder == filter.Participant {
				out = append(out, e)
			}
		case RoleIssuer:
			if e.Issuer == filter.Participant {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func (f *fakeLedger) ReadRecord(ctx context.Context, tokenID *big.Int) (*AuthoritativeRecord, error) {
	key := tokenID.String()

	f.mu.Lock()
	d := f.delay[key]
	err := f.readErr[key]
	rec := f.records[key]
	f.mu.Unlock()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, ctx.Err())
		}
	}
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: token %s was never issued", ErrNotFound, key)
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeLedger) HasRole(_ context.Context, addr common.Address, role Role) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[addr.Hex()][role], nil
}

// fakeFetcher serves metadata bytes by URI.
type fakeFetcher struct {
	mu      sync.Mutex
	bodies  map[string][]byte
	failErr map[string]error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		bodies:  make(map[string][]byte),
		failErr: make(map[string]error),
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, uri string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failErr[uri]; err != nil {
		return nil, err
	}
	body, ok := f.bodies[uri]
	if !ok {
		return nil, fmt.Errorf("%w: no metadata at %s", ErrContentUnavailable, uri)
	}
	return body, nil
}
