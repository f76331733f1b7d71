package cartridge

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadPlain(t *testing.T) {
	rom := newTestROM(0x8000, 0x00, 0x00, 0x00)
	path := writeFile(t, "game.gb", rom)

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(got, rom) {
		t.Error("Load() returned different bytes")
	}
}

func TestLoadGzip(t *testing.T) {
	rom := newTestROM(0x8000, 0x00, 0x00, 0x00)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(rom); err != nil {
		t.Fatalf("gzip Write() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip Close() error = %v", err)
	}

	got, err := Load(writeFile(t, "game.gb.gz", buf.Bytes()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !bytes.Equal(got, rom) {
		t.Error("Load() returned different bytes")
	}
}

func TestLoadZip(t *testing.T) {
	rom := newTestROM(0x8000, 0x00, 0x00, 0x00)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("roms/"); err != nil {
		t.Fatalf("zip Create(dir) error = %v", err)
	}
	w, err := zw.Create("roms/game.gb")
	if err != nil {
		t.Fatalf("zip Create() error = %v", err)
	}
	if _, err := w.Write(rom); err != nil {
		t.Fatalf("zip Write() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip Close() error = %v", err)
	}

	cart, err := Open(writeFile(t, "game.zip", buf.Bytes()))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !bytes.Equal(cart.ROM, rom) {
		t.Error("Open() returned different bytes")
	}
}

func TestLoadEmptyZip(t *testing.T) {
	var buf bytes.Buffer
	if err := zip.NewWriter(&buf).Close(); err != nil {
		t.Fatalf("zip Close() error = %v", err)
	}

	if _, err := Load(writeFile(t, "empty.zip", buf.Bytes())); err != ErrEmptyArchive {
		t.Errorf("Load() error = %v, want %v", err, ErrEmptyArchive)
	}
}

func TestLoadCorrupt7z(t *testing.T) {
	if _, err := Load(writeFile(t, "game.7z", []byte("not an archive"))); err == nil {
		t.Error("Load() of corrupt .7z expected error, got nil")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.gb")); err == nil {
		t.Error("Load() of missing file expected error, got nil")
	}
}
