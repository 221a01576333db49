// Package squash compresses and restores whole files with zstd. It is the
// standalone compression mode that sits beside the segmenter: inputs and
// finished segments get squashed as-is, never rewritten.
package squash

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

const ext = ".zst"

// Compress writes src compressed to src.zst and returns that path. The
// target is create-only; an existing file aborts with fs.ErrExist.
func Compress(src string) (string, error) {
	dst := src + ext

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open source %s: %w", src, err)
	}
	defer in.Close()

	out, err := createExcl(dst)
	if err != nil {
		return "", err
	}

	encoder, err := zstd.NewWriter(out)
	if err != nil {
		out.Close()
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := io.Copy(encoder, in); err != nil {
		encoder.Close()
		out.Close()
		return "", fmt.Errorf("compress %s: %w", src, err)
	}
	if err := encoder.Close(); err != nil {
		out.Close()
		return "", fmt.Errorf("finalize compression of %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", dst, err)
	}

	return dst, nil
}

// Decompress restores src (a .zst file) to its original name and returns
// that path, under the same create-only rule.
func Decompress(src string) (string, error) {
	dst := strings.TrimSuffix(src, ext)
	if dst == src {
		return "", fmt.Errorf("%s is not a %s file", src, ext)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open archive %s: %w", src, err)
	}
	defer in.Close()

	decoder, err := zstd.NewReader(in)
	if err != nil {
		return "", fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	out, err := createExcl(dst)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(out, decoder); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("decompress %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", dst, err)
	}

	return dst, nil
}

func createExcl(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("target %s already exists: %w", path, fs.ErrExist)
		}
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}
