package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"keypad-cracker/keypad"
)

type crackOptions struct {
	secret string
	mode   string
}

func (a *app) runCrack(cmd *cobra.Command, opts crackOptions) error {
	digits := a.cfg.Digits
	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	var (
		secret int64
		err    error
	)
	if opts.secret != "" {
		if secret, err = keypad.ParseSecret(opts.secret, digits); err != nil {
			return errors.Wrap(err, "--secret")
		}
	} else if secret, err = promptSecret(reader, out, digits); err != nil {
		return err
	}

	var mode keypad.Mode
	if opts.mode != "" {
		if mode, err = keypad.ParseMode(opts.mode); err != nil {
			return errors.Wrap(err, "--mode")
		}
	} else if mode, err = promptMode(reader, out, digits); err != nil {
		return err
	}

	code, st, err := keypad.Crack(mode, secret, digits)
	if err != nil {
		return err
	}
	a.logger.Debug("keypad cracked",
		zap.Stringer("mode", mode),
		zap.Int("digits", digits),
		zap.Int64("attempts", st.Attempts),
		zap.Duration("duration", st.Duration))

	fmt.Fprintf(out, "\n\nPASSCODE IS: %s\n", code)
	fmt.Fprintln(out, "KEYPAD UNLOCKED. BASK IN YOUR WEALTH.")
	return nil
}

func promptSecret(reader *bufio.Reader, out io.Writer, digits int) (int64, error) {
	for {
		fmt.Fprintf(out, "Please set %d-digit passcode for keypad: ", digits)
		input, readErr := readLine(reader)
		fmt.Fprintln(out)
		if input != "" {
			if secret, err := keypad.ParseSecret(input, digits); err == nil {
				return secret, nil
			}
		}
		if readErr != nil {
			return 0, readErr
		}
		fmt.Fprint(out, "Invalid passcode format please use another passcode.\n\n")
	}
}

func promptMode(reader *bufio.Reader, out io.Writer, digits int) (keypad.Mode, error) {
	for {
		fmt.Fprintf(out, "\n\nEnter type of lock:\n"+
			"1: Keypad that only checks guess upon submitting all %d digits (enter '0')\n"+
			"2: Checks answer digit by digit as it goes (enter '1')\n\nENTER TYPE: ", digits)
		input, readErr := readLine(reader)
		if input != "" {
			if mode, err := keypad.ParseMode(input); err == nil {
				return mode, nil
			}
		}
		if readErr != nil {
			return 0, readErr
		}
		fmt.Fprint(out, "Invalid type format please try again.\n\n")
	}
}

// readLine returns the next trimmed line. A final line without a newline is
// returned together with io.EOF wrapped.
func readLine(reader *bufio.Reader) (string, error) {
	input, err := reader.ReadString('\n')
	input = strings.TrimSpace(input)
	if err != nil {
		return input, errors.Wrap(err, "read input")
	}
	return input, nil
}
