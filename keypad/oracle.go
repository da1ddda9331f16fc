package keypad

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
)

// ErrPositionOrder is the panic value (wrapped) raised when CheckDigit is
// called out of order, on a resolved position, or after unlock.
var ErrPositionOrder = errors.New("digit position probed out of order")

// Keypad is what both lock variants expose besides their guess operation.
type Keypad interface {
	Digits() int
	Unlocked() bool
	Attempts() int64
}

// Outcome is the answer of an Incremental keypad to a single digit.
type Outcome int

const (
	Miss Outcome = iota
	Match
	Complete
)

func (o Outcome) String() string {
	switch o {
	case Miss:
		return "miss"
	case Match:
		return "match"
	case Complete:
		return "complete"
	default:
		return "outcome(" + strconv.Itoa(int(o)) + ")"
	}
}

// Full only reacts once every digit has been entered.
// Submit may be called from several goroutines.
type Full struct {
	secret   int64
	digits   int
	unlocked atomic.Bool
	attempts atomic.Int64
}

func NewFull(secret int64, digits int) *Full {
	return &Full{secret: secret, digits: digits}
}

// Submit unlocks the keypad iff guess equals the secret.
func (k *Full) Submit(guess int64) bool {
	k.attempts.Add(1)
	if guess != k.secret {
		return false
	}
	k.unlocked.Store(true)
	return true
}

func (k *Full) Format(value int64) string { return Format(value, k.digits) }
func (k *Full) Digits() int { return k.digits }
func (k *Full) Unlocked() bool { return k.unlocked.Load() }
func (k *Full) Attempts() int64 { return k.attempts.Load() }

// Incremental reacts to each digit as it is entered. It is not safe for
// concurrent use.
type Incremental struct {
	secret    []int
	confirmed []int
	unlocked  bool
	attempts  int64
}

func NewIncremental(secret int64, digits int) *Incremental {
	return &Incremental{
		secret:    Decompose(secret, digits),
		confirmed: make([]int, 0, digits),
	}
}

// CheckDigit compares guess with the secret digit at position. Positions must
// be probed in increasing order and not revisited once they matched; anything
// else panics with an error wrapping ErrPositionOrder.
func (k *Incremental) CheckDigit(guess, position int) Outcome {
	if k.unlocked || position != len(k.confirmed) {
		panic(errors.Wrapf(ErrPositionOrder, "position %d probed with %d of %d digits confirmed",
			position, len(k.confirmed), len(k.secret)))
	}
	k.attempts++
	if guess != k.secret[position] {
		return Miss
	}
	k.confirmed = append(k.confirmed, guess)
	if len(k.confirmed) == len(k.secret) {
		k.unlocked = true
		return Complete
	}
	return Match
}

// Code returns the digits confirmed so far.
func (k *Incremental) Code() string {
	var b strings.Builder
	for _, d := range k.confirmed {
		b.WriteString(strconv.Itoa(d))
	}
	return b.String()
}

func (k *Incremental) Digits() int { return len(k.secret) }
func (k *Incremental) Unlocked() bool { return k.unlocked }
func (k *Incremental) Attempts() int64 { return k.attempts }
