package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"keypad-cracker/config"
	"keypad-cracker/keypad"
	"keypad-cracker/report"
)

type benchOptions struct {
	digits     int
	runs       int
	workers    int
	secret     string
	algorithms []string
	outputDir  string
	compress   bool
}

func newBenchCmd(a *app) *cobra.Command {
	var (
		opts       benchOptions
		algorithms string
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Compare search strategies and write a CSV report",
		Long: `Cracks the same passcode several times with each algorithm and records
time, attempts, guesses per second and allocated memory per run.

Algorithms: exhaustive, exhaustive-parallel, greedy.
The report is uploaded when S3 or GCS storage is enabled in the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			resolved := benchOptions{
				digits:     a.cfg.Digits,
				runs:       a.cfg.Bench.Runs,
				workers:    a.cfg.Bench.Workers,
				secret:     opts.secret,
				algorithms: a.cfg.Bench.Algorithms,
				outputDir:  a.cfg.Bench.OutputDir,
				compress:   a.cfg.Bench.Compress,
			}
			if flags.Changed("runs") {
				resolved.runs = opts.runs
			}
			if flags.Changed("workers") {
				resolved.workers = opts.workers
			}
			if flags.Changed("output-dir") {
				resolved.outputDir = opts.outputDir
			}
			if flags.Changed("compress") {
				resolved.compress = opts.compress
			}
			if flags.Changed("algorithms") {
				resolved.algorithms = strings.Split(algorithms, ",")
			}
			return a.runBench(cmd.Context(), cmd.OutOrStdout(), resolved)
		},
	}
	cmd.Flags().IntVar(&opts.runs, "runs", 0, "number of runs per algorithm")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "workers for exhaustive-parallel (0 = all CPUs)")
	cmd.Flags().StringVar(&opts.secret, "secret", "", "passcode to crack (random when empty)")
	cmd.Flags().StringVar(&algorithms, "algorithms", "", "comma-separated algorithms to run")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "directory for the CSV report")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "also write a zstd-compressed report")
	return cmd
}

func (a *app) runBench(ctx context.Context, out io.Writer, opts benchOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.runs <= 0 {
		return errors.Errorf("runs must be positive, got %d", opts.runs)
	}
	if opts.workers <= 0 {
		opts.workers = runtime.NumCPU()
	}
	algorithms := make([]string, 0, len(opts.algorithms))
	for _, name := range opts.algorithms {
		name = strings.ToLower(strings.TrimSpace(name))
		if !config.ValidAlgorithm(name) {
			return errors.Errorf("unknown algorithm %q", name)
		}
		algorithms = append(algorithms, name)
	}

	secret, err := benchSecret(opts.secret, opts.digits)
	if err != nil {
		return err
	}
	password := keypad.Format(secret, opts.digits)
	searchSpace := keypad.Space(opts.digits)
	fmt.Fprintf(out, "Password length set to %d. Search space is %d.\n", opts.digits, searchSpace)
	fmt.Fprintf(out, "Using password for all runs: %s\n", password)

	uploader, err := a.newUploader(ctx, a.cfg.Storage, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := uploader.Close(); err != nil {
			a.logger.Warn("close uploader", zap.Error(err))
		}
	}()

	var results []report.TestResult
	numCores := 1
	for _, algorithm := range algorithms {
		cores := 1
		if algorithm == config.AlgorithmExhaustiveParallel {
			cores = opts.workers
			numCores = opts.workers
		}
		rs, err := runAlgorithmTests(ctx, out, a.logger, algorithm, secret, opts.digits, opts.runs, cores)
		if err != nil {
			return err
		}
		results = append(results, rs...)
	}

	return a.handleFileOutput(ctx, out, uploader, results, opts.outputDir, report.FileName(numCores), opts.compress)
}

func benchSecret(input string, digits int) (int64, error) {
	if input != "" {
		secret, err := keypad.ParseSecret(input, digits)
		return secret, errors.Wrap(err, "--secret")
	}
	searchSpace := keypad.Space(digits)
	minPasswordValue := searchSpace / 4
	return minPasswordValue + rand.Int64N(searchSpace-minPasswordValue), nil
}

func runAlgorithmTests(ctx context.Context, out io.Writer, logger *zap.Logger, algorithm string, secret int64, digits, numTestRuns, numCores int) ([]report.TestResult, error) {
	var results []report.TestResult
	password := keypad.Format(secret, digits)
	fmt.Fprintf(out, "\n--- Starting %s (%d cores) Performance Tests ---\n", algorithm, numCores)

	for runID := 1; runID <= numTestRuns; runID++ {
		runtime.GC()
		var startMemStats runtime.MemStats
		runtime.ReadMemStats(&startMemStats)

		code, attempts, duration, err := crackOnce(ctx, algorithm, secret, digits, numCores)
		if err != nil {
			return nil, errors.Wrapf(err, "%s run %d", algorithm, runID)
		}
		if code != password {
			return nil, errors.Errorf("%s run %d: cracked %s, want %s", algorithm, runID, code, password)
		}

		var endMemStats runtime.MemStats
		runtime.ReadMemStats(&endMemStats)
		memAlloc := float64(endMemStats.TotalAlloc-startMemStats.TotalAlloc) / (1024 * 1024)
		var gps float64
		if duration > 0 {
			gps = float64(attempts) / duration.Seconds()
		}

		results = append(results, report.TestResult{
			RunID:            runID,
			AlgorithmType:    algorithm,
			Password:         password,
			NumCores:         numCores,
			TimeToCrackSec:   duration.Seconds(),
			Attempts:         attempts,
			GuessesPerSecond: gps,
			MemAllocMB:       memAlloc,
		})
		logger.Debug("bench run finished",
			zap.String("algorithm", algorithm),
			zap.Int("run", runID),
			zap.Int64("attempts", attempts),
			zap.Duration("duration", duration))
		fmt.Fprintf(out, "  -> Run %d/%d found in: %.4f seconds; Attempts: %d; Guesses per second: %.4f\n",
			runID, numTestRuns, duration.Seconds(), attempts, gps)
	}
	return results, nil
}

func crackOnce(ctx context.Context, algorithm string, secret int64, digits, numCores int) (string, int64, time.Duration, error) {
	switch algorithm {
	case config.AlgorithmExhaustive:
		code, st, err := keypad.Crack(keypad.ModeExhaustive, secret, digits)
		return code, st.Attempts, st.Duration, err
	case config.AlgorithmGreedy:
		code, st, err := keypad.Crack(keypad.ModeGreedy, secret, digits)
		return code, st.Attempts, st.Duration, err
	case config.AlgorithmExhaustiveParallel:
		start := time.Now()
		k := keypad.NewFull(secret, digits)
		code, err := keypad.ExhaustiveParallel(ctx, k, numCores)
		return code, k.Attempts(), time.Since(start), err
	}
	return "", 0, 0, errors.Errorf("unknown algorithm %q", algorithm)
}

func (a *app) handleFileOutput(ctx context.Context, out io.Writer, uploader report.Uploader, results []report.TestResult, dir, fileName string, compress bool) error {
	path, err := report.SaveCSV(results, dir, fileName)
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	fmt.Fprintf(out, "Performance data saved to %s\n", path)

	files := []string{path}
	if compress {
		compressed, err := report.Compress(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Compressed report saved to %s\n", compressed)
		files = append(files, compressed)
	}
	if !uploader.Enabled() {
		return nil
	}

	batchID, err := uuid.NewV7()
	if err != nil {
		return errors.Wrap(err, "generate batch id")
	}
	for _, file := range files {
		location, err := uploader.UploadFile(ctx, file, batchID.String()+"/"+filepath.Base(file))
		if err != nil {
			a.logger.Error("report upload failed", zap.String("file", file), zap.Error(err))
			return err
		}
		fmt.Fprintf(out, "Successfully uploaded %s to %s\n", file, location)
	}
	return nil
}
