package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"keypad-cracker/config"
	"keypad-cracker/keypad"
	"keypad-cracker/report"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCrackWithFlags(t *testing.T) {
	out, err := execute(t, "", "--digits", "4", "--secret", "0007", "--mode", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "PASSCODE IS: 0007\n")
	assert.Contains(t, out, "KEYPAD UNLOCKED. BASK IN YOUR WEALTH.")

	out, err = execute(t, "", "--digits", "3", "--secret", "999", "--mode", "exhaustive")
	require.NoError(t, err)
	assert.Contains(t, out, "PASSCODE IS: 999\n")
}

func TestCrackInteractiveReprompts(t *testing.T) {
	stdin := "12\nabcd\n0042\n7\n0\n"
	out, err := execute(t, stdin, "--digits", "4")
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(out, "Invalid passcode format please use another passcode."))
	assert.Equal(t, 1, strings.Count(out, "Invalid type format please try again."))
	assert.Contains(t, out, "Please set 4-digit passcode for keypad: ")
	assert.Contains(t, out, "ENTER TYPE: ")
	assert.Contains(t, out, "PASSCODE IS: 0042\n")
}

func TestCrackInteractiveDefaultDigits(t *testing.T) {
	out, err := execute(t, "000000005\n1\n")
	require.NoError(t, err)
	assert.Contains(t, out, "Please set 9-digit passcode for keypad: ")
	assert.Contains(t, out, "PASSCODE IS: 000000005\n")
}

func TestCrackInteractiveLastLineWithoutNewline(t *testing.T) {
	out, err := execute(t, "1234\n1", "--digits", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "PASSCODE IS: 1234\n")
}

func TestCrackInteractiveEOF(t *testing.T) {
	_, err := execute(t, "12\n", "--digits", "4")
	require.Error(t, err)

	_, err = execute(t, "1234\n", "--digits", "4")
	require.Error(t, err)
}

func TestCrackRejectsBadFlags(t *testing.T) {
	_, err := execute(t, "", "--digits", "4", "--secret", "12", "--mode", "1")
	assert.True(t, errors.Is(err, keypad.ErrSecretLength))

	_, err = execute(t, "", "--digits", "4", "--secret", "1234", "--mode", "2")
	assert.True(t, errors.Is(err, keypad.ErrUnknownMode))

	_, err = execute(t, "", "--digits", "0")
	assert.True(t, errors.Is(err, keypad.ErrDigitCount))
}

func TestCrackUsesConfigDigits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("digits: 2\n"), 0o644))

	out, err := execute(t, "", "--config", path, "--secret", "05", "--mode", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "PASSCODE IS: 05\n")
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestBenchCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "", "bench", "--digits", "3", "--runs", "2", "--workers", "2",
		"--secret", "042", "--output-dir", dir, "--compress")
	require.NoError(t, err)
	assert.Contains(t, out, "Search space is 1000.")
	assert.Contains(t, out, "Using password for all runs: 042")

	path := filepath.Join(dir, "performance_data_2_cores.csv")
	rows := readCSV(t, path)
	require.Len(t, rows, 7)

	counts := map[string]int{}
	for _, row := range rows[1:] {
		counts[row[1]]++
		assert.Equal(t, "042", row[2])
		switch row[1] {
		case config.AlgorithmExhaustive:
			assert.Equal(t, "43", row[5])
		case config.AlgorithmGreedy:
			// 0 on the first try, 4 on the fifth, 2 on the third
			assert.Equal(t, "9", row[5])
		case config.AlgorithmExhaustiveParallel:
			assert.Equal(t, "2", row[3])
		}
	}
	assert.Equal(t, map[string]int{
		config.AlgorithmExhaustive:         2,
		config.AlgorithmExhaustiveParallel: 2,
		config.AlgorithmGreedy:             2,
	}, counts)

	_, err = os.Stat(path + ".zst")
	require.NoError(t, err)
}

func TestBenchSingleAlgorithm(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "", "bench", "--digits", "2", "--runs", "3", "--algorithms", "greedy", "--output-dir", dir)
	require.NoError(t, err)

	rows := readCSV(t, filepath.Join(dir, "performance_data_1_cores.csv"))
	require.Len(t, rows, 4)
	for _, row := range rows[1:] {
		assert.Equal(t, config.AlgorithmGreedy, row[1])
		assert.Len(t, row[2], 2)
	}
}

func TestBenchRejectsUnknownAlgorithm(t *testing.T) {
	_, err := execute(t, "", "bench", "--digits", "2", "--algorithms", "greedy,rainbow", "--output-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rainbow")
}

func TestBenchSecretRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		s, err := benchSecret("", 2)
		require.NoError(t, err)
		require.GreaterOrEqual(t, s, int64(25))
		require.Less(t, s, int64(100))
	}
	s, err := benchSecret("07", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(7), s)

	_, err = benchSecret("7", 2)
	assert.True(t, errors.Is(err, keypad.ErrSecretLength))
}

type recordingUploader struct {
	keys   []string
	closed bool
}

func (r *recordingUploader) Enabled() bool { return true }

func (r *recordingUploader) UploadFile(_ context.Context, path, key string) (string, error) {
	r.keys = append(r.keys, key)
	return "mem://" + key, nil
}

func (r *recordingUploader) Close() error {
	r.closed = true
	return nil
}

func TestHandleFileOutputUploads(t *testing.T) {
	a := &app{logger: zap.NewNop()}
	up := &recordingUploader{}
	var out bytes.Buffer
	results := []report.TestResult{{RunID: 1, AlgorithmType: config.AlgorithmGreedy, Password: "12", NumCores: 1}}

	err := a.handleFileOutput(context.Background(), &out, up, results, t.TempDir(), report.FileName(1), true)
	require.NoError(t, err)
	require.Len(t, up.keys, 2)
	batch := strings.SplitN(up.keys[0], "/", 2)[0]
	id, err := uuid.Parse(batch)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.Equal(t, batch+"/performance_data_1_cores.csv", up.keys[0])
	assert.Equal(t, batch+"/performance_data_1_cores.csv.zst", up.keys[1])
	assert.Contains(t, out.String(), "Successfully uploaded")
}

func TestPromptMode(t *testing.T) {
	var out bytes.Buffer
	mode, err := promptMode(bufio.NewReader(strings.NewReader("x\n\ngreedy\n")), &out, 4)
	require.NoError(t, err)
	assert.Equal(t, keypad.ModeGreedy, mode)
	assert.Equal(t, 2, strings.Count(out.String(), "Invalid type format"))
	assert.Contains(t, out.String(), "submitting all 4 digits")
}

func TestBenchClosesUploader(t *testing.T) {
	up := &recordingUploader{}
	a := &app{
		logger: zap.NewNop(),
		newUploader: func(context.Context, config.StorageConfig, *zap.Logger) (report.Uploader, error) {
			return up, nil
		},
	}
	var out bytes.Buffer
	err := a.runBench(context.Background(), &out, benchOptions{
		digits:     2,
		runs:       1,
		workers:    1,
		secret:     "31",
		algorithms: []string{config.AlgorithmGreedy},
		outputDir:  t.TempDir(),
	})
	require.NoError(t, err)
	assert.True(t, up.closed)
	require.Len(t, up.keys, 1)
	assert.True(t, strings.HasSuffix(up.keys[0], "/performance_data_1_cores.csv"))
}
