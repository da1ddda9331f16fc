package keypad

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultDigits is the code length used when nothing else is configured.
	DefaultDigits = 9
	// MaxDigits keeps 10^n inside an int64.
	MaxDigits = 18
)

var (
	ErrDigitCount   = errors.New("digit count out of range")
	ErrSecretLength = errors.New("secret has wrong length")
	ErrSecretFormat = errors.New("secret is not a non-negative decimal number")
)

// ValidateDigits reports whether n is a usable code length.
func ValidateDigits(n int) error {
	if n < 1 || n > MaxDigits {
		return errors.Wrapf(ErrDigitCount, "got %d, want 1..%d", n, MaxDigits)
	}
	return nil
}

// Space returns the number of distinct n-digit codes, 10^n.
func Space(n int) int64 {
	space := int64(1)
	for i := 0; i < n; i++ {
		space *= 10
	}
	return space
}

// Format renders value as a zero-padded n-digit decimal string.
func Format(value int64, n int) string {
	return fmt.Sprintf("%0*d", n, value)
}

// Decompose splits secret into n digits, most significant first.
func Decompose(secret int64, n int) []int {
	digits := make([]int, 0, n)
	divisor := Space(n - 1)
	for i := 0; i < n; i++ {
		digits = append(digits, int(secret/divisor))
		secret %= divisor
		divisor /= 10
	}
	return digits
}

// Compose is the inverse of Decompose.
func Compose(digits []int) int64 {
	var value int64
	for _, d := range digits {
		value = value*10 + int64(d)
	}
	return value
}

// ParseSecret validates user input as an n-digit passcode.
func ParseSecret(input string, n int) (int64, error) {
	input = strings.TrimSpace(input)
	if len(input) != n {
		return 0, errors.Wrapf(ErrSecretLength, "%q has %d characters, want %d", input, len(input), n)
	}
	var value int64
	for _, r := range input {
		if r < '0' || r > '9' {
			return 0, errors.Wrapf(ErrSecretFormat, "%q", input)
		}
		value = value*10 + int64(r-'0')
	}
	return value, nil
}

// RandomSecret draws a uniformly distributed n-digit secret.
func RandomSecret(n int) (int64, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(Space(n)))
	if err != nil {
		return 0, errors.Wrap(err, "generate random secret")
	}
	return v.Int64(), nil
}
