// Package solana holds Solana address helpers used to vet upstream token addresses.
package solana

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// PublicKeyLength is the decoded size of a Solana public key.
const PublicKeyLength = 32

// Well-known mints.
const (
	WSOLMint = "So11111111111111111111111111111111111111112"
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// ErrInvalidAddress is returned for strings that are not base58 Solana public keys.
var ErrInvalidAddress = errors.New("invalid solana address")

// ValidateAddress checks that addr is base58 and decodes to a 32-byte public key.
func ValidateAddress(addr string) error {
	if addr == "" || strings.TrimSpace(addr) != addr {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}
	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidAddress, addr, err)
	}
	if len(decoded) != PublicKeyLength {
		return fmt.Errorf("%w: %q decodes to %d bytes", ErrInvalidAddress, addr, len(decoded))
	}
	return nil
}

// IsValidAddress reports whether addr is a valid Solana public key.
func IsValidAddress(addr string) bool {
	return ValidateAddress(addr) == nil
}
