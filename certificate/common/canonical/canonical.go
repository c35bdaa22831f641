// Package canonical produces the deterministic JSON encoding the registry
// hashes at issuance time: object keys sorted lexicographically at every
// depth, arrays in order, compact separators, no HTML escaping. The metadata
// hash accepted on-chain is keccak256 over these UTF-8 bytes, so the byte
// format here must match the issuance side bit for bit.
package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Canonicalize serializes v deterministically. Two semantically equal values
// yield identical bytes regardless of key insertion order. Unserializable
// input (cycles, channels, funcs) fails; a hash is never produced from a
// best-effort encoding.
func Canonicalize(v interface{}) ([]byte, error) {
	doc, err := normalize(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := writeCanonical(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Hash computes keccak256 over b, matching the contract's bytes32
// metadataHash.
func Hash(b []byte) common.Hash {
	return common.BytesToHash(crypto.Keccak256(b))
}

// HashValue canonicalizes v and hashes the result in one step.
func HashValue(v interface{}) (common.Hash, error) {
	b, err := Canonicalize(v)
	if err != nil {
		return common.Hash{}, err
	}
	return Hash(b), nil
}

// normalize round-trips v through encoding/json so that arbitrary structs,
// typed maps and numbers all collapse to the same generic document model.
// Marshal is also what rejects cyclic or unsupported input.
func normalize(v interface{}) (interface{}, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("value is not canonicalizable: %w", err)
	}

	dec := json.NewDecoder(&buf)
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to normalize value: %w", err)
	}
	return doc, nil
}

func writeCanonical(buf *bytes.Buffer, v interface{}) error {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeScalar(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil

	case []interface{}:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil

	case json.Number:
		buf.WriteString(canonicalNumber(val))
		return nil

	default:
		return writeScalar(buf, val)
	}
}

// canonicalNumber collapses equivalent numeric literals ("1.0", "1e0", "1")
// to a single form. Integral values keep full precision; everything else
// takes the shortest float64 encoding.
func canonicalNumber(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	f, err := n.Float64()
	if err != nil {
		// Out-of-range literal, keep it verbatim.
		return n.String()
	}
	out, err := json.Marshal(f)
	if err != nil {
		return n.String()
	}
	return string(out)
}

// writeScalar encodes strings, booleans and null without HTML escaping and
// without a trailing newline.
func writeScalar(buf *bytes.Buffer, v interface{}) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode scalar: %w", err)
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}
