// Package otp implements the one-time passcode challenge used to verify
// a user's email at login: code generation, issuance with delivery, and
// single-use verification.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// CodeGenerator produces fixed-length numeric passcodes
type CodeGenerator interface {
	Generate() (string, error)
}

type randomCodeGenerator struct {
	length int
}

// NewCodeGenerator returns a generator producing uniformly distributed
// codes of the given digit length from crypto/rand.
func NewCodeGenerator(length int) CodeGenerator {
	return &randomCodeGenerator{length: length}
}

func (g *randomCodeGenerator) Generate() (string, error) {
	bound := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(g.length)), nil)
	n, err := rand.Int(rand.Reader, bound)
	if err != nil {
		return "", fmt.Errorf("failed to generate random code: %w", err)
	}
	// Left-pad so "42" becomes "000042"
	return fmt.Sprintf("%0*d", g.length, n), nil
}
