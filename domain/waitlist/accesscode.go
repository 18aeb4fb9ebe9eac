package waitlist

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	accessCodePrefix = "PS-"
	accessCodeLength = 8

	// Uppercase letters and digits minus the lookalikes (0/O, 1/I).
	// Codes are typed by hand during activation, so every character
	// must be unambiguous.
	accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// GenerateAccessCode returns a fresh "PS-XXXXXXXX" code. With 32^8
// possible codes, collisions are treated as negligible; uniqueness is
// enforced on email, not on the code itself.
func GenerateAccessCode() (string, error) {
	max := big.NewInt(int64(len(accessCodeAlphabet)))
	code := make([]byte, accessCodeLength)

	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate access code: %w", err)
		}
		code[i] = accessCodeAlphabet[n.Int64()]
	}

	return accessCodePrefix + string(code), nil
}
