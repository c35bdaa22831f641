package certificate

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/certchain/go-certregistry-sdk/certificate/common/canonical"
	"github.com/certchain/go-certregistry-sdk/certificate/common/schema"
)

// Student identifies the person a certificate was issued to.
type Student struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Metadata is the off-chain certificate document. Its canonical keccak256
// hash is what the registry anchors at mint time.
type Metadata struct {
	Type           string  `json:"type"`
	Name           string  `json:"name"`
	Specialization string  `json:"specialization"`
	Recipient      string  `json:"recipient"`
	IssuedBy       string  `json:"issuedBy"`
	IssuedDate     string  `json:"issuedDate"`
	Student        Student `json:"student"`
}

// BuildMetadata validates m against the certificate schema and returns it
// unchanged. Issuance paths call this before uploading and hashing, so a
// malformed document never reaches the content store.
func BuildMetadata(m Metadata) (*Metadata, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := schema.ValidateMetadata(raw); err != nil {
		return nil, err
	}
	return &m, nil
}

// MetadataHash returns the canonical hash of m, the exact bytes32 the
// registry expects at mint time.
func MetadataHash(m *Metadata) (common.Hash, error) {
	return canonical.HashValue(m)
}
