package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// TestResult is one benchmark run of one algorithm.
type TestResult struct {
	RunID            int
	AlgorithmType    string
	Password         string
	NumCores         int
	TimeToCrackSec   float64
	Attempts         int64
	GuessesPerSecond float64
	MemAllocMB       float64
}

var header = []string{"RunID", "AlgorithmType", "Password", "NumCores", "TimeToCrackSec", "Attempts", "GuessesPerSecond", "MemAllocMB"}

// FileName names the CSV for a batch run with numCores workers.
func FileName(numCores int) string {
	return fmt.Sprintf("performance_data_%d_cores.csv", numCores)
}

// SaveCSV writes results to dir/fileName and returns the full path. Nothing is
// written for an empty result set.
func SaveCSV(results []TestResult, dir, fileName string) (path string, err error) {
	if len(results) == 0 {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create output dir %s", dir)
	}
	path = filepath.Join(dir, fileName)
	file, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "create file %s", path)
	}
	defer func() {
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = errors.Wrapf(closeErr, "close %s", path)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return "", errors.Wrapf(err, "write header to %s", path)
	}
	for _, r := range results {
		row := []string{
			strconv.Itoa(r.RunID), r.AlgorithmType, r.Password,
			strconv.Itoa(r.NumCores), fmt.Sprintf("%.6f", r.TimeToCrackSec),
			strconv.FormatInt(r.Attempts, 10),
			fmt.Sprintf("%.2f", r.GuessesPerSecond), fmt.Sprintf("%.6f", r.MemAllocMB),
		}
		if err := writer.Write(row); err != nil {
			return "", errors.Wrapf(err, "write row to %s", path)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", errors.Wrapf(err, "flush %s", path)
	}
	return path, nil
}
