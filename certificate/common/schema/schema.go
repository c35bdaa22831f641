// Package schema validates certificate metadata before it is hashed and
// anchored on-chain.
package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// metadataSchema mirrors the issuance form rules: every descriptive field is
// required and non-empty, and the recipient must be a 20-byte hex address.
const metadataSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["type", "name", "specialization", "recipient", "issuedBy", "issuedDate", "student"],
  "properties": {
    "type":           {"type": "string", "minLength": 1},
    "name":           {"type": "string", "minLength": 1},
    "specialization": {"type": "string", "minLength": 1},
    "recipient":      {"type": "string", "pattern": "^0x[0-9a-fA-F]{40}$"},
    "issuedBy":       {"type": "string", "minLength": 1},
    "issuedDate":     {"type": "string", "minLength": 1},
    "student": {
      "type": "object",
      "required": ["id", "name"],
      "properties": {
        "id":   {"type": "string", "minLength": 1},
        "name": {"type": "string", "minLength": 1}
      }
    }
  }
}`

// ValidateMetadata checks raw JSON metadata against the certificate schema
// and returns a single error listing every violation.
func ValidateMetadata(raw []byte) error {
	schemaLoader := gojsonschema.NewStringLoader(metadataSchema)
	docLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("failed to validate metadata: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("metadata is invalid: %s", strings.Join(msgs, "; "))
}
