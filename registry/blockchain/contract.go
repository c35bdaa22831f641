// Package blockchain implements the on-chain side of the certificate
// registry: record reads, role checks, Minted event scans and pre-built
// mint/revoke transactions.
package blockchain

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/certchain/go-certregistry-sdk/certificate"
	"github.com/certchain/go-certregistry-sdk/registry/config"
)

// -- Embeds & ABI Handling --

//go:embed registry-contract/cert_registry_abi.json
var smcABIJSON []byte

var (
	parsedABI    abi.ABI
	parseABIOnce sync.Once
	errParseABI  error
)

// loadABI ensures the ABI is parsed exactly once.
func loadABI() (abi.ABI, error) {
	parseABIOnce.Do(func() {
		type hardhatArtifact struct {
			ABI json.RawMessage `json:"abi"`
		}
		var artifact hardhatArtifact
		if err := json.Unmarshal(smcABIJSON, &artifact); err != nil {
			errParseABI = fmt.Errorf("failed to unmarshal artifact JSON: %w", err)
			return
		}
		parsedABI, errParseABI = abi.JSON(strings.NewReader(string(artifact.ABI)))
	})
	return parsedABI, errParseABI
}

// Backend is the slice of the Ethereum client the registry needs. It is
// satisfied by *ethclient.Client and by fakes in tests.
type Backend interface {
	bind.ContractCaller
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// Registry is a read client for the certificate registry contract plus a
// builder for its write transactions. A single instance is safe for
// concurrent use.
type Registry struct {
	backend      Backend
	contract     *bind.BoundContract
	contractAddr common.Address
	chainID      *big.Int
	deployBlock  uint64
	gasPrice     *big.Int
	gasLimit     uint64

	roleMu  sync.Mutex
	roleIDs map[certificate.Role]common.Hash
}

var _ certificate.LedgerReader = (*Registry)(nil)

// NewRegistry dials the configured RPC endpoint and binds the registry
// contract.
func NewRegistry(cfg *config.Config) (*Registry, error) {
	client, err := ethclient.Dial(cfg.RPC)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC %s: %w", cfg.RPC, err)
	}
	return NewRegistryWithBackend(client, cfg)
}

// NewRegistryWithBackend binds the registry contract over an existing
// backend. Tests inject fakes here.
func NewRegistryWithBackend(backend Backend, cfg *config.Config) (*Registry, error) {
	if cfg.ContractAddress == "" {
		return nil, errors.New("contract address is required")
	}

	contractABI, err := loadABI()
	if err != nil {
		return nil, err
	}

	addr := common.HexToAddress(cfg.ContractAddress)
	contract := bind.NewBoundContract(addr, contractABI, backend, nil, nil)

	return &Registry{
		backend:      backend,
		contract:     contract,
		contractAddr: addr,
		chainID:      big.NewInt(cfg.ChainID),
		deployBlock:  cfg.DeployBlock,
		gasPrice:     big.NewInt(0),
		gasLimit:     200000,
		roleIDs:      make(map[certificate.Role]common.Hash),
	}, nil
}

// ReadRecord reads getCertificate(tokenId). A revert (or an empty record,
// which some providers return instead of reverting) means the token was
// never issued and maps to certificate.ErrNotFound; transport failures map
// to certificate.ErrLedgerUnavailable.
func (r *Registry) ReadRecord(ctx context.Context, tokenID *big.Int) (*certificate.AuthoritativeRecord, error) {
	var out []interface{}
	err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getCertificate", tokenID)
	if err != nil {
		if isRevert(err) {
			return nil, fmt.Errorf("%w: token %s was never issued", certificate.ErrNotFound, tokenID)
		}
		return nil, fmt.Errorf("%w: getCertificate(%s): %v", certificate.ErrLedgerUnavailable, tokenID, err)
	}
	if len(out) != 5 {
		return nil, fmt.Errorf("%w: getCertificate(%s) returned %d values, want 5", certificate.ErrLedgerUnavailable, tokenID, len(out))
	}

	issuer, ok0 := out[0].(common.Address)
	hash, ok1 := out[1].([32]byte)
	uri, ok2 := out[2].(string)
	issuedAt, ok3 := out[3].(uint64)
	revoked, ok4 := out[4].(bool)
	if !ok0 || !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, fmt.Errorf("%w: getCertificate(%s) returned unexpected types", certificate.ErrLedgerUnavailable, tokenID)
	}

	if issuer == (common.Address{}) {
		return nil, fmt.Errorf("%w: token %s was never issued", certificate.ErrNotFound, tokenID)
	}

	return &certificate.AuthoritativeRecord{
		TokenID:      new(big.Int).Set(tokenID),
		Issuer:       issuer,
		MetadataHash: common.Hash(hash),
		TokenURI:     uri,
		IssuedAt:     issuedAt,
		Revoked:      revoked,
	}, nil
}

// HasRole checks whether addr holds the given capability on the registry.
// Only RoleIssuer and RoleAdmin exist as on-chain capabilities.
func (r *Registry) HasRole(ctx context.Context, addr common.Address, role certificate.Role) (bool, error) {
	roleID, err := r.roleID(ctx, role)
	if err != nil {
		return false, err
	}

	var out []interface{}
	if err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, "hasRole", [32]byte(roleID), addr); err != nil {
		return false, fmt.Errorf("%w: hasRole: %v", certificate.ErrLedgerUnavailable, err)
	}
	if len(out) != 1 {
		return false, fmt.Errorf("%w: hasRole returned %d values, want 1", certificate.ErrLedgerUnavailable, len(out))
	}
	has, ok := out[0].(bool)
	if !ok {
		return false, fmt.Errorf("%w: hasRole returned unexpected type", certificate.ErrLedgerUnavailable)
	}
	return has, nil
}

// roleID resolves the bytes32 identifier for a role, reading it from the
// contract once and caching it for the client's lifetime. Role identifiers
// are compile-time constants of the contract, so the cache never goes stale.
func (r *Registry) roleID(ctx context.Context, role certificate.Role) (common.Hash, error) {
	var method string
	switch role {
	case certificate.RoleIssuer:
		method = "ISSUER_ROLE"
	case certificate.RoleAdmin:
		method = "DEFAULT_ADMIN_ROLE"
	default:
		return common.Hash{}, fmt.Errorf("role %s has no on-chain capability", role)
	}

	r.roleMu.Lock()
	defer r.roleMu.Unlock()
	if id, ok := r.roleIDs[role]; ok {
		return id, nil
	}

	var out []interface{}
	if err := r.contract.Call(&bind.CallOpts{Context: ctx}, &out, method); err != nil {
		return common.Hash{}, fmt.Errorf("%w: %s: %v", certificate.ErrLedgerUnavailable, method, err)
	}
	if len(out) != 1 {
		return common.Hash{}, fmt.Errorf("%w: %s returned %d values, want 1", certificate.ErrLedgerUnavailable, method, len(out))
	}
	raw, ok := out[0].([32]byte)
	if !ok {
		return common.Hash{}, fmt.Errorf("%w: %s returned unexpected type", certificate.ErrLedgerUnavailable, method)
	}

	id := common.Hash(raw)
	r.roleIDs[role] = id
	return id, nil
}

// isRevert reports whether a call error is a contract revert rather than a
// transport fault. Providers word revert errors differently, so this matches
// on the common substrings.
func isRevert(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "execution reverted") ||
		strings.Contains(msg, "revert") ||
		strings.Contains(msg, "not found")
}
