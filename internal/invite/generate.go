package invite

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateCode draws CodeLength independent uniform symbols from the
// kind's alphabet. Invitation codes are bearer capabilities, so the
// source must be unpredictable: crypto/rand, with rand.Int to keep the
// draw unbiased for alphabets that do not divide 256.
func GenerateCode(kind CodeKind) (string, error) {
	alphabet := SafeAlphabet
	if kind == CodeKindLegacy {
		alphabet = LegacyAlphabet
	}

	max := big.NewInt(int64(len(alphabet)))
	code := make([]byte, CodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating invitation code: %w", err)
		}
		code[i] = alphabet[n.Int64()]
	}
	return string(code), nil
}
