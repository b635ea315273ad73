package domain

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"

	dErrors "landshare/pkg/domain-errors"
)

// Address is a caller identity as supplied by the auth collaborator: a
// 0x-prefixed, lowercase, 20-byte hex string. The core trusts addresses as
// already authenticated and never verifies keys itself.
type Address string

const addressHexLen = 40

func (a Address) String() string { return string(a) }

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool { return a == "" }

// ParseAddress validates the canonical address form. Uppercase hex is
// accepted and normalized to lowercase.
func ParseAddress(raw string) (Address, error) {
	if raw == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address is required")
	}
	if !strings.HasPrefix(raw, "0x") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address must be 0x-prefixed")
	}
	body := strings.ToLower(raw[2:])
	if len(body) != addressHexLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address must encode 20 bytes")
	}
	if _, err := hex.DecodeString(body); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInvalidInput, "address is not valid hex")
	}
	return Address("0x" + body), nil
}

// DeriveAddress computes an address from public key material: the low 20
// bytes of the Keccak-256 digest, hex encoded. Matches the convention the
// wallet collaborator uses on its side.
func DeriveAddress(pub []byte) Address {
	h := sha3.NewLegacyKeccak256()
	h.Write(pub)
	sum := h.Sum(nil)
	return Address("0x" + hex.EncodeToString(sum[len(sum)-20:]))
}
