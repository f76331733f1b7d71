package cartridge

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
)

// ErrEmptyArchive indicates a compressed ROM archive contains no files.
var ErrEmptyArchive = errors.New("archive contains no files")

// Load reads a ROM image from disk, decompressing .gz, .zip and .7z files.
// Archives yield their first regular file.
func Load(path string) ([]byte, error) {
	// #nosec G304 - path is provided by the user via CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer r.Close()
		return io.ReadAll(r)

	case ".zip":
		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("failed to open zip archive: %w", err)
		}
		for _, f := range zr.File {
			if f.FileInfo().IsDir() {
				continue
			}
			return readArchived(f.Open)
		}
		return nil, ErrEmptyArchive

	case ".7z":
		sr, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("failed to open 7z archive: %w", err)
		}
		for _, f := range sr.File {
			if f.FileInfo().IsDir() {
				continue
			}
			return readArchived(f.Open)
		}
		return nil, ErrEmptyArchive

	default:
		return data, nil
	}
}

// Open loads a ROM image from disk and parses it into a Cartridge.
func Open(path string) (*Cartridge, error) {
	data, err := Load(path)
	if err != nil {
		return nil, err
	}
	return New(data)
}

func readArchived(open func() (io.ReadCloser, error)) ([]byte, error) {
	rc, err := open()
	if err != nil {
		return nil, fmt.Errorf("failed to open archived ROM: %w", err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
