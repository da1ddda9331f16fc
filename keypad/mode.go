package keypad

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrUnknownMode = errors.New("unknown keypad mode")

// Mode selects the lock variant and with it the search strategy.
type Mode int

const (
	// ModeExhaustive is a keypad that only checks a complete submission.
	ModeExhaustive Mode = iota
	// ModeGreedy is a keypad that checks the answer digit by digit.
	ModeGreedy
)

func (m Mode) String() string {
	switch m {
	case ModeExhaustive:
		return "exhaustive"
	case ModeGreedy:
		return "greedy"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ParseMode accepts the numeric selector used at the prompt ("0", "1") or the
// mode name.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "exhaustive":
		return ModeExhaustive, nil
	case "1", "greedy":
		return ModeGreedy, nil
	}
	return 0, errors.Wrapf(ErrUnknownMode, "%q", s)
}

// Stats describes the work a search did.
type Stats struct {
	Attempts int64
	Duration time.Duration
}

// Crack builds the keypad for mode, breaks it and returns the code.
func Crack(mode Mode, secret int64, digits int) (string, Stats, error) {
	if err := ValidateDigits(digits); err != nil {
		return "", Stats{}, err
	}
	if secret < 0 || secret >= Space(digits) {
		return "", Stats{}, errors.Wrapf(ErrSecretFormat, "%d does not fit in %d digits", secret, digits)
	}

	start := time.Now()
	var (
		code string
		k    Keypad
	)
	switch mode {
	case ModeExhaustive:
		full := NewFull(secret, digits)
		code, k = Exhaustive(full), full
	case ModeGreedy:
		inc := NewIncremental(secret, digits)
		code, k = Greedy(inc), inc
	default:
		return "", Stats{}, errors.Wrapf(ErrUnknownMode, "%d", int(mode))
	}
	return code, Stats{Attempts: k.Attempts(), Duration: time.Since(start)}, nil
}
