package report

import (
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Compress writes a zstd copy of path next to it and returns the new path.
// No partial output is left behind on failure.
func Compress(path string) (out string, err error) {
	src, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "open %s", path)
	}
	defer closeWithErr(src, path)

	out = path + ".zst"
	dst, err := os.Create(out)
	if err != nil {
		return "", errors.Wrapf(err, "create %s", out)
	}
	defer func() {
		if closeErr := dst.Close(); err == nil && closeErr != nil {
			err = errors.Wrapf(closeErr, "close %s", out)
		}
		if err != nil {
			_ = os.Remove(out)
			out = ""
		}
	}()

	return out, compressTo(dst, src, path, out)
}

func compressTo(dst io.Writer, src io.Reader, path, out string) error {
	zw, err := zstd.NewWriter(dst)
	if err != nil {
		return errors.Wrap(err, "zstd writer")
	}
	if _, err := io.Copy(zw, src); err != nil {
		_ = zw.Close()
		return errors.Wrapf(err, "compress %s", path)
	}
	if err := zw.Close(); err != nil {
		return errors.Wrapf(err, "finish %s", out)
	}
	return nil
}
