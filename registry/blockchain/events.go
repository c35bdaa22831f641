package blockchain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/certchain/go-certregistry-sdk/certificate"
)

// defaultScanChunk is the widest block range requested per eth_getLogs call.
// Public providers cap range scans; chunking keeps each request under those
// caps so the full range is always reassembled.
const defaultScanChunk = 10_000

// mintedEvent mirrors the Minted event for log unpacking.
type mintedEvent struct {
	TokenId      *big.Int
	To           common.Address
	Issuer       common.Address
	TokenURI     string
	MetadataHash [32]byte
}

// ScanEvents returns every Minted entry where the filter's participant
// occupies the given role, scanning from the deploy block to the current
// head. The scan is paginated internally; any failed chunk fails the whole
// scan with certificate.ErrLedgerUnavailable rather than returning a
// truncated set.
func (r *Registry) ScanEvents(ctx context.Context, filter certificate.EventFilter) ([]certificate.EventLogEntry, error) {
	contractABI, err := loadABI()
	if err != nil {
		return nil, err
	}
	mintedTopic := contractABI.Events["Minted"].ID

	// Minted topics: [sig, tokenId, to, issuer].
	participantTopic := common.BytesToHash(filter.Participant.Bytes())
	var topics [][]common.Hash
	switch filter.Role {
	case certificate.RoleHolder:
		topics = [][]common.Hash{{mintedTopic}, nil, {participantTopic}}
	case certificate.RoleIssuer:
		topics = [][]common.Hash{{mintedTopic}, nil, nil, {participantTopic}}
	default:
		return nil, fmt.Errorf("cannot scan events by role %s", filter.Role)
	}

	head, err := r.backend.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read chain head: %v", certificate.ErrLedgerUnavailable, err)
	}

	var entries []certificate.EventLogEntry
	for from := r.deployBlock; from <= head; from += defaultScanChunk {
		to := from + defaultScanChunk - 1
		if to > head {
			to = head
		}

		logs, err := r.backend.FilterLogs(ctx, ethereum.FilterQuery{
			Addresses: []common.Address{r.contractAddr},
			Topics:    topics,
			FromBlock: new(big.Int).SetUint64(from),
			ToBlock:   new(big.Int).SetUint64(to),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan blocks %d-%d: %v", certificate.ErrLedgerUnavailable, from, to, err)
		}

		for _, lg := range logs {
			entry, err := r.decodeMinted(lg)
			if err != nil {
				slog.WarnContext(ctx, "skipping undecodable Minted log",
					"block", lg.BlockNumber, "tx", lg.TxHash.Hex(), "error", err)
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func (r *Registry) decodeMinted(lg types.Log) (certificate.EventLogEntry, error) {
	var ev mintedEvent
	if err := r.contract.UnpackLog(&ev, "Minted", lg); err != nil {
		return certificate.EventLogEntry{}, fmt.Errorf("failed to unpack Minted log: %w", err)
	}
	return certificate.EventLogEntry{
		TokenID:      ev.TokenId,
		Holder:       ev.To,
		Issuer:       ev.Issuer,
		TokenURI:     ev.TokenURI,
		MetadataHash: common.Hash(ev.MetadataHash),
		BlockNumber:  lg.BlockNumber,
	}, nil
}
