package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"keypad-cracker/config"
	"keypad-cracker/keypad"
	"keypad-cracker/report"
)

type app struct {
	configPath string
	digits     int
	verbose    bool

	cfg         config.Config
	logger      *zap.Logger
	newUploader func(context.Context, config.StorageConfig, *zap.Logger) (report.Uploader, error)
}

func newRootCmd() *cobra.Command {
	a := &app{newUploader: report.NewUploader}
	var crack crackOptions

	root := &cobra.Command{
		Use:   "keypad-cracker",
		Short: "Brute-force a numeric keypad passcode",
		Long: `Sets a passcode on a simulated keypad and breaks it by brute force.

Lock type 0 only checks a guess once every digit is entered, so every
combination is tried in order. Lock type 1 checks each digit as it is
entered, so each position is solved on its own.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCrack(cmd, crack)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to YAML config file")
	root.PersistentFlags().IntVar(&a.digits, "digits", keypad.DefaultDigits, "passcode length")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.Flags().StringVar(&crack.secret, "secret", "", "passcode to set instead of prompting")
	root.Flags().StringVar(&crack.mode, "mode", "", "lock type instead of prompting: 0|exhaustive or 1|greedy")

	root.AddCommand(newBenchCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("digits") {
		cfg.Digits = a.digits
	}
	if err := keypad.ValidateDigits(cfg.Digits); err != nil {
		return errors.Wrap(err, "--digits")
	}
	a.cfg = cfg

	if a.logger == nil {
		zcfg := zap.NewProductionConfig()
		if a.verbose || cfg.Logging.Verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err := zcfg.Build()
		if err != nil {
			return errors.Wrap(err, "initialize logger")
		}
		a.logger = logger
		zap.ReplaceGlobals(logger)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
