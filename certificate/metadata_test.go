package certificate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certchain/go-certregistry-sdk/certificate/common/canonical"
)

func validMetadata() Metadata {
	return Metadata{
		Type:           "degree",
		Name:           "BSc Computer Science",
		Specialization: "Distributed Systems",
		Recipient:      "0x1111111111111111111111111111111111111111",
		IssuedBy:       "Example University",
		IssuedDate:     "2026-06-15",
		Student:        Student{ID: "s-1024", Name: "Ada Lovelace"},
	}
}

func TestBuildMetadata(t *testing.T) {
	m, err := BuildMetadata(validMetadata())
	require.NoError(t, err)
	assert.Equal(t, "degree", m.Type)
}

func TestBuildMetadataRejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Metadata)
	}{
		{"empty name", func(m *Metadata) { m.Name = "" }},
		{"bad recipient", func(m *Metadata) { m.Recipient = "not-an-address" }},
		{"empty student id", func(m *Metadata) { m.Student.ID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMetadata()
			tt.mutate(&m)
			_, err := BuildMetadata(m)
			assert.Error(t, err)
		})
	}
}

// The issuance-side hash must equal the verification-side hash of the same
// document fetched back as generic JSON.
func TestMetadataHashRoundTrip(t *testing.T) {
	m := validMetadata()
	issued, err := MetadataHash(&m)
	require.NoError(t, err)

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	var fetched map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fetched))

	verified, err := canonical.HashValue(fetched)
	require.NoError(t, err)
	assert.Equal(t, issued, verified)
}
