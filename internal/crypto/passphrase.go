package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"unicode"
)

// PassphraseCheck reports every violated strength rule, not just the first,
// so callers can render a complete checklist.
type PassphraseCheck struct {
	IsValid bool
	Errors  []string
}

// ValidatePassphrase enforces minimum length 12 and one character from each
// of the lowercase/uppercase/digit/symbol classes.
func ValidatePassphrase(passphrase string) PassphraseCheck {
	var errors []string

	if len(passphrase) < 12 {
		errors = append(errors, "passphrase must be at least 12 characters long")
	}

	var lower, upper, digit, symbol bool
	for _, r := range passphrase {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if !lower {
		errors = append(errors, "passphrase must contain lowercase letters")
	}
	if !upper {
		errors = append(errors, "passphrase must contain uppercase letters")
	}
	if !digit {
		errors = append(errors, "passphrase must contain numbers")
	}
	if !symbol {
		errors = append(errors, "passphrase must contain special characters")
	}

	return PassphraseCheck{IsValid: len(errors) == 0, Errors: errors}
}

const passphraseAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*"

// GeneratePassphrase returns a random passphrase of the given length.
func GeneratePassphrase(length int) (string, error) {
	if length <= 0 {
		length = 32
	}
	b, err := Rand(length)
	if err != nil {
		return "", err
	}
	out := make([]byte, length)
	for i, v := range b {
		out[i] = passphraseAlphabet[int(v)%len(passphraseAlphabet)]
	}
	return string(out), nil
}

// HashPassphrase returns a base64 SHA-256 digest for verification records.
// Not a substitute for the KDF: never used to derive encryption keys.
func HashPassphrase(passphrase string) string {
	sum := sha256.Sum256([]byte(passphrase))
	return base64.StdEncoding.EncodeToString(sum[:])
}
