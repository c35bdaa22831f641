package blockchain

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"

	"github.com/certchain/go-certregistry-sdk/registry/config"
)

// fakeBackend implements Backend in memory. Call results are keyed by the
// 4-byte method selector; logs are filtered the way a provider would.
type fakeBackend struct {
	head      uint64
	logs      []types.Log
	callOut   map[string][]byte
	callErr   map[string]error
	filterErr error

	filterCalls []ethereum.FilterQuery
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		callOut: make(map[string][]byte),
		callErr: make(map[string]error),
	}
}

func (b *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x01}, nil
}

func (b *fakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if len(call.Data) < 4 {
		return nil, errors.New("malformed calldata")
	}
	sel := string(call.Data[:4])
	if err := b.callErr[sel]; err != nil {
		return nil, err
	}
	out, ok := b.callOut[sel]
	if !ok {
		return nil, errors.New("unexpected call")
	}
	return out, nil
}

func (b *fakeBackend) FilterLogs(_ context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	b.filterCalls = append(b.filterCalls, q)
	if b.filterErr != nil {
		return nil, b.filterErr
	}

	var out []types.Log
	for _, lg := range b.logs {
		if q.FromBlock != nil && lg.BlockNumber < q.FromBlock.Uint64() {
			continue
		}
		if q.ToBlock != nil && lg.BlockNumber > q.ToBlock.Uint64() {
			continue
		}
		if !topicsMatch(q.Topics, lg.Topics) {
			continue
		}
		out = append(out, lg)
	}
	return out, nil
}

func topicsMatch(query [][]common.Hash, topics []common.Hash) bool {
	for i, alts := range query {
		if len(alts) == 0 {
			continue
		}
		if i >= len(topics) {
			return false
		}
		found := false
		for _, alt := range alts {
			if topics[i] == alt {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (b *fakeBackend) BlockNumber(context.Context) (uint64, error) {
	return b.head, nil
}

func testRegistry(t *testing.T, backend Backend) *Registry {
	t.Helper()
	r, err := NewRegistryWithBackend(backend, config.New(config.Config{
		ContractAddress: "0x00000000000000000000000000000000000000cc",
		ChainID:         1337,
		DeployBlock:     1,
	}))
	require.NoError(t, err)
	return r
}

func testABI(t *testing.T) abi.ABI {
	t.Helper()
	a, err := loadABI()
	require.NoError(t, err)
	return a
}

// selector returns the map key for a method's call result.
func selector(t *testing.T, method string) string {
	return string(testABI(t).Methods[method].ID[:4])
}

// packOutputs ABI-encodes a method's return values.
func packOutputs(t *testing.T, method string, values ...interface{}) []byte {
	t.Helper()
	out, err := testABI(t).Methods[method].Outputs.Pack(values...)
	require.NoError(t, err)
	return out
}

// mintedLog builds a Minted log the way the contract emits it.
func mintedLog(t *testing.T, block uint64, tokenID int64, holder, issuer common.Address, uri string, hash common.Hash) types.Log {
	t.Helper()
	ev := testABI(t).Events["Minted"]
	data, err := ev.Inputs.NonIndexed().Pack(uri, [32]byte(hash))
	require.NoError(t, err)
	return types.Log{
		Topics: []common.Hash{
			ev.ID,
			common.BigToHash(big.NewInt(tokenID)),
			common.BytesToHash(holder.Bytes()),
			common.BytesToHash(issuer.Bytes()),
		},
		Data:        data,
		BlockNumber: block,
	}
}
