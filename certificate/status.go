package certificate

// Status is the verification state of one certificate.
type Status string

const (
	StatusValid    Status = "VALID"
	StatusRevoked  Status = "REVOKED"
	StatusInvalid  Status = "INVALID"
	StatusNotFound Status = "NOT_FOUND"
	StatusError    Status = "ERROR"
)

// IssuerLabel returns the issuer-facing name for the status. The issuer
// dashboard shows a valid certificate as "ACTIVE"; it is the same
// classification, only the label differs.
func (s Status) IssuerLabel() string {
	if s == StatusValid {
		return "ACTIVE"
	}
	return string(s)
}

// Classification is the input to Classify, collected by the resolver.
type Classification struct {
	// Found is false when the registry reported the token as never issued.
	Found bool
	// ReadErr is the first transport or parse failure hit while resolving,
	// nil if every step succeeded.
	ReadErr error
	// Revoked is the on-chain revocation flag.
	Revoked bool
	// HashMatch is true when the recomputed metadata hash equals the
	// on-chain hash.
	HashMatch bool
}

// Classify maps a classification to exactly one status. Precedence, earlier
// wins: NOT_FOUND, ERROR, REVOKED, INVALID, VALID. Revocation outranks a
// hash mismatch: a revoked certificate is reported as revoked, never as
// tampered.
func Classify(c Classification) Status {
	switch {
	case !c.Found:
		return StatusNotFound
	case c.ReadErr != nil:
		return StatusError
	case c.Revoked:
		return StatusRevoked
	case !c.HashMatch:
		return StatusInvalid
	default:
		return StatusValid
	}
}
