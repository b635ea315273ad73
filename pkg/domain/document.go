package domain

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	dErrors "landshare/pkg/domain-errors"
)

// DocumentPointer is an opaque reference into off-chain document storage
// (typically a content hash or URI). The core never fetches or parses the
// document it points at.
type DocumentPointer []byte

// ParseDocumentPointer rejects empty pointers; everything else is opaque.
func ParseDocumentPointer(raw []byte) (DocumentPointer, error) {
	if len(raw) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document pointer is required")
	}
	return DocumentPointer(raw), nil
}

// Digest returns the hex-encoded SHA3-256 of the pointer. Audit events log
// the digest rather than the raw pointer so log sinks never hold URIs.
func (p DocumentPointer) Digest() string {
	sum := sha3.Sum256(p)
	return hex.EncodeToString(sum[:])
}
