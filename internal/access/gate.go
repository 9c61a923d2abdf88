// Package access holds the shared passcode that gates every telemetry and
// process-control request.
package access

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"

	constants "pimonitor/config"
)

// ErrInvalidPasscode is returned for operator-supplied passcodes that cannot gate anything
var ErrInvalidPasscode = errors.New("invalid passcode")

// Generate returns a fresh passcode drawn uniformly from the hex alphabet
func Generate() (string, error) {
	alphabet := constants.PASSCODE_ALPHABET
	limit := big.NewInt(int64(len(alphabet)))

	var b strings.Builder
	b.Grow(constants.PASSCODE_LENGTH)
	for i := 0; i < constants.PASSCODE_LENGTH; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		b.WriteByte(alphabet[n.Int64()])
	}
	return b.String(), nil
}

// Gate authorizes requests against one passcode fixed at construction
type Gate struct {
	passcode []byte
}

// NewGate builds a gate from an operator-supplied passcode, or generates one when empty
func NewGate(passcode string) (*Gate, error) {
	if passcode == "" {
		generated, err := Generate()
		if err != nil {
			return nil, err
		}
		passcode = generated
	}
	if strings.TrimSpace(passcode) != passcode {
		return nil, fmt.Errorf("%w: surrounding whitespace", ErrInvalidPasscode)
	}
	return &Gate{passcode: []byte(passcode)}, nil
}

// Passcode returns the credential this gate accepts
func (g *Gate) Passcode() string {
	return string(g.passcode)
}

// Authorize reports whether provided matches exactly, in constant time.
// An empty value never matches.
func (g *Gate) Authorize(provided string) bool {
	if provided == "" || len(g.passcode) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), g.passcode) == 1
}
