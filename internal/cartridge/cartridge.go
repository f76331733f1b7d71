package cartridge

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash"
)

// Cartridge is a loaded ROM image together with its decoded header.
// Both are immutable once loaded.
type Cartridge struct {
	Header *Header
	ROM    []byte

	// Fingerprint is the xxhash64 of the whole image. It identifies a dump
	// independently of the header, which many homebrew ROMs leave blank.
	Fingerprint uint64
}

// ErrInvalidROMSize indicates the ROM data is too small to contain a header.
var ErrInvalidROMSize = errors.New("ROM too small: must be at least 336 bytes (0x0150)")

// ErrROMSizeMismatch indicates the ROM size doesn't match the header.
var ErrROMSizeMismatch = errors.New("ROM size does not match header")

// ErrROMTooLarge indicates the ROM size exceeds the maximum allowed size.
var ErrROMTooLarge = errors.New("ROM size exceeds maximum allowed size of 8 MiB")

// maxROMSize is the largest image any supported controller can address.
const maxROMSize = 8 * 1024 * 1024

// New creates a cartridge from ROM data.
// Unknown type or size codes are accepted; only images that are too short
// for their header, or shorter than a recognised header size, are rejected.
func New(rom []byte) (*Cartridge, error) {
	if len(rom) > maxROMSize {
		return nil, fmt.Errorf("%w: got %d bytes", ErrROMTooLarge, len(rom))
	}
	if len(rom) < HeaderEnd {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidROMSize, len(rom))
	}

	header := ParseHeader(rom)

	if header.KnownROMSize() && len(rom) < int(header.ROMSize) {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d",
			ErrROMSizeMismatch, header.ROMSize, len(rom))
	}

	return &Cartridge{
		Header:      header,
		ROM:         rom,
		Fingerprint: xxhash.Sum64(rom),
	}, nil
}

// HeaderChecksumValid reports whether the header checksum at 0x014D matches.
func (c *Cartridge) HeaderChecksumValid() bool {
	return c.Header.VerifyHeaderChecksum(c.ROM)
}

// GlobalChecksumValid reports whether the global checksum at 0x014E matches.
func (c *Cartridge) GlobalChecksumValid() bool {
	return c.Header.VerifyGlobalChecksum(c.ROM)
}

// FingerprintString returns the fingerprint as fixed-width hex.
func (c *Cartridge) FingerprintString() string {
	return fmt.Sprintf("%016x", c.Fingerprint)
}
