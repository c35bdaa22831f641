package blockchain

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/certchain/go-certregistry-sdk/registry/signer"
)

// SubmitTxResult represents a pre-built registry transaction. It is
// intentionally decoupled from any broadcasting logic so that callers can
// decide how and when to submit the transaction on-chain.
type SubmitTxResult struct {
	TxHex  string // Hex-encoded RLP transaction
	TxHash string // Transaction hash
}

// MintRequest carries the inputs for a mintCertificate transaction. The
// MetadataHash must be the canonical hash of the document stored at
// TokenURI; the contract anchors it verbatim.
type MintRequest struct {
	Recipient    string
	TokenURI     string
	MetadataHash common.Hash
	TxProvider   signer.SignerProvider
	Nonce        uint64
}

// MintCertificateTx builds a signed mintCertificate transaction without
// sending it. Minting requires the issuer capability on-chain; this builder
// does not pre-check it.
func (r *Registry) MintCertificateTx(ctx context.Context, req MintRequest) (*SubmitTxResult, error) {
	if req.Recipient == "" {
		return nil, fmt.Errorf("recipient is required")
	}
	if req.TokenURI == "" {
		return nil, fmt.Errorf("token URI is required")
	}

	auth, err := r.getTransactOpts(ctx, req.TxProvider, int64(req.Nonce))
	if err != nil {
		return nil, err
	}

	tx, err := r.contract.Transact(
		auth,
		"mintCertificate",
		common.HexToAddress(req.Recipient),
		req.TokenURI,
		[32]byte(req.MetadataHash),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate mintCertificate Tx: %w", err)
	}

	return serializeTx(tx)
}

// RevokeCertificateTx builds a signed revoke transaction without sending it.
// Revocation is one-way on-chain; there is no un-revoke.
func (r *Registry) RevokeCertificateTx(ctx context.Context, provider signer.SignerProvider, tokenID *big.Int, nonce uint64) (*SubmitTxResult, error) {
	if tokenID == nil {
		return nil, fmt.Errorf("token ID is required")
	}

	auth, err := r.getTransactOpts(ctx, provider, int64(nonce))
	if err != nil {
		return nil, err
	}

	tx, err := r.contract.Transact(auth, "revoke", tokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate revoke Tx: %w", err)
	}

	return serializeTx(tx)
}

// -- Helpers --

func serializeTx(tx *types.Transaction) (*SubmitTxResult, error) {
	var buf bytes.Buffer
	if err := rlp.Encode(&buf, tx); err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return &SubmitTxResult{
		TxHex:  hex.EncodeToString(buf.Bytes()),
		TxHash: tx.Hash().Hex(),
	}, nil
}

// TxFromHex decodes a transaction previously serialized by serializeTx.
func TxFromHex(rawTxHex string) (*types.Transaction, error) {
	b, err := hex.DecodeString(rawTxHex)
	if err != nil {
		return nil, fmt.Errorf("failed to decode hex string: %w", err)
	}
	var tx types.Transaction
	if err := rlp.DecodeBytes(b, &tx); err != nil {
		return nil, fmt.Errorf("failed to decode RLP: %w", err)
	}
	return &tx, nil
}

// getTransactOpts creates the auth options for a transaction.
func (r *Registry) getTransactOpts(ctx context.Context, provider signer.SignerProvider, nonce int64) (*bind.TransactOpts, error) {
	if provider == nil {
		return nil, fmt.Errorf("signer provider is required")
	}

	fromAddress := common.HexToAddress(provider.GetAddress())
	signerFn := func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
		eip155Signer := types.NewEIP155Signer(r.chainID)
		h := eip155Signer.Hash(tx)
		sig, err := provider.Sign(h.Bytes())
		if err != nil {
			return nil, err
		}
		return tx.WithSignature(eip155Signer, sig)
	}

	return &bind.TransactOpts{
		From:     fromAddress,
		Nonce:    big.NewInt(nonce),
		Value:    big.NewInt(0),
		GasLimit: r.gasLimit,
		GasPrice: r.gasPrice,
		Context:  ctx,
		Signer:   signerFn,
		NoSend:   true, // We are returning the raw TX, not sending it immediately
	}, nil
}
