package cartridge

import (
	"errors"
	"testing"

	"github.com/cespare/xxhash"
)

func TestNew(t *testing.T) {
	rom := newTestROM(0x8000, 0x00, 0x00, 0x00)

	cart, err := New(rom)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if cart.Header.Type != TypeROMOnly {
		t.Errorf("Type = %v, want %v", cart.Header.Type, TypeROMOnly)
	}
	if len(cart.ROM) != len(rom) {
		t.Errorf("len(ROM) = %d, want %d", len(cart.ROM), len(rom))
	}
	if cart.Fingerprint != xxhash.Sum64(rom) {
		t.Errorf("Fingerprint = %x, want %x", cart.Fingerprint, xxhash.Sum64(rom))
	}
	if len(cart.FingerprintString()) != 16 {
		t.Errorf("FingerprintString() = %q, want 16 hex digits", cart.FingerprintString())
	}
	if !cart.HeaderChecksumValid() {
		t.Error("HeaderChecksumValid() = false, want true")
	}
}

func TestNewFingerprintDistinguishesImages(t *testing.T) {
	a := newTestROM(0x8000, 0x00, 0x00, 0x00)
	b := newTestROM(0x8000, 0x00, 0x00, 0x00)
	b[0x4000] = 0x01

	cartA, err := New(a)
	if err != nil {
		t.Fatalf("New(a) error = %v", err)
	}
	cartB, err := New(b)
	if err != nil {
		t.Fatalf("New(b) error = %v", err)
	}

	if cartA.Fingerprint == cartB.Fingerprint {
		t.Error("different images produced the same fingerprint")
	}
}

func TestNewErrors(t *testing.T) {
	tests := []struct {
		name    string
		rom     []byte
		wantErr error
	}{
		{"too small", make([]byte, 0x0100), ErrInvalidROMSize},
		{"too large", make([]byte, 8*1024*1024+1), ErrROMTooLarge},
		{"shorter than header size", newTestROM(0x8000, 0x01, 0x02, 0x00), ErrROMSizeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.rom)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want error wrapping %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewAcceptsUnknownCodes(t *testing.T) {
	// Unknown type and ROM size codes degrade instead of failing.
	rom := newTestROM(0x8000, 0x77, 0x66, 0x55)

	cart, err := New(rom)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cart.Header.Type != TypeUnknown {
		t.Errorf("Type = %v, want %v", cart.Header.Type, TypeUnknown)
	}
	if cart.Header.KnownROMSize() {
		t.Error("KnownROMSize() = true, want false")
	}
	if !cart.Header.RAM.None() {
		t.Errorf("RAM = %+v, want none", cart.Header.RAM)
	}
}

func TestNewAcceptsBadChecksum(t *testing.T) {
	rom := newTestROM(0x8000, 0x00, 0x00, 0x00)
	rom[0x014D]++

	cart, err := New(rom)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cart.HeaderChecksumValid() {
		t.Error("HeaderChecksumValid() = true, want false")
	}
}
