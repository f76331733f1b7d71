// Package cartridge implements Game Boy cartridge header parsing and ROM image loading.
package cartridge

import (
	"fmt"
	"math"
)

// Header field offsets.
const (
	titleStart        = 0x0134
	titleEnd          = 0x0143
	manufacturerStart = 0x013F
	manufacturerEnd   = 0x0143
	cgbFlagAddr       = 0x0143
	sgbFlagAddr       = 0x0146
	typeAddr          = 0x0147
	romSizeAddr       = 0x0148
	ramSizeAddr       = 0x0149
	destinationAddr   = 0x014A
	oldLicenseeAddr   = 0x014B
	versionAddr       = 0x014C
	headerSumAddr     = 0x014D
	globalSumAddr     = 0x014E

	// HeaderEnd is the first byte past the cartridge header.
	HeaderEnd = 0x0150
)

// ROMBankSize is the size of one switchable ROM bank (16 KiB).
const ROMBankSize = 0x4000

// RAMBankSize is the size of one external RAM bank (8 KiB).
const RAMBankSize = 0x2000

// ROMSizeUnknown is reported for ROM size codes outside the lookup table.
const ROMSizeUnknown uint32 = math.MaxUint32

// Type represents the type of cartridge and MBC found at 0x0147.
type Type uint16

// Cartridge types as defined in the header at 0x0147.
const (
	TypeROMOnly                    Type = 0x00
	TypeMBC1                       Type = 0x01
	TypeMBC1RAM                    Type = 0x02
	TypeMBC1RAMBattery             Type = 0x03
	TypeMBC2                       Type = 0x05
	TypeMBC2Battery                Type = 0x06
	TypeROMRAM                     Type = 0x08
	TypeROMRAMBattery              Type = 0x09
	TypeMMM01                      Type = 0x0B
	TypeMMM01RAM                   Type = 0x0C
	TypeMMM01RAMBattery            Type = 0x0D
	TypeMBC3TimerBattery           Type = 0x0F
	TypeMBC3TimerRAMBattery        Type = 0x10
	TypeMBC3                       Type = 0x11
	TypeMBC3RAM                    Type = 0x12
	TypeMBC3RAMBattery             Type = 0x13
	TypeMBC5                       Type = 0x19
	TypeMBC5RAM                    Type = 0x1A
	TypeMBC5RAMBattery             Type = 0x1B
	TypeMBC5Rumble                 Type = 0x1C
	TypeMBC5RumbleRAM              Type = 0x1D
	TypeMBC5RumbleRAMBattery       Type = 0x1E
	TypeMBC6                       Type = 0x20
	TypeMBC7SensorRumbleRAMBattery Type = 0x22
	TypePocketCamera               Type = 0xFC
	TypeBandaiTAMA5                Type = 0xFD
	TypeHuC3                       Type = 0xFE
	TypeHuC1RAMBattery             Type = 0xFF

	// TypeUnknown is used for codes that name no known cartridge. It lies
	// outside the byte range so it can never collide with a real code.
	TypeUnknown Type = 0x100
)

var typeNames = map[Type]string{
	TypeROMOnly:                    "ROM ONLY",
	TypeMBC1:                       "MBC1",
	TypeMBC1RAM:                    "MBC1+RAM",
	TypeMBC1RAMBattery:             "MBC1+RAM+BATTERY",
	TypeMBC2:                       "MBC2",
	TypeMBC2Battery:                "MBC2+BATTERY",
	TypeROMRAM:                     "ROM+RAM",
	TypeROMRAMBattery:              "ROM+RAM+BATTERY",
	TypeMMM01:                      "MMM01",
	TypeMMM01RAM:                   "MMM01+RAM",
	TypeMMM01RAMBattery:            "MMM01+RAM+BATTERY",
	TypeMBC3TimerBattery:           "MBC3+TIMER+BATTERY",
	TypeMBC3TimerRAMBattery:        "MBC3+TIMER+RAM+BATTERY",
	TypeMBC3:                       "MBC3",
	TypeMBC3RAM:                    "MBC3+RAM",
	TypeMBC3RAMBattery:             "MBC3+RAM+BATTERY",
	TypeMBC5:                       "MBC5",
	TypeMBC5RAM:                    "MBC5+RAM",
	TypeMBC5RAMBattery:             "MBC5+RAM+BATTERY",
	TypeMBC5Rumble:                 "MBC5+RUMBLE",
	TypeMBC5RumbleRAM:              "MBC5+RUMBLE+RAM",
	TypeMBC5RumbleRAMBattery:       "MBC5+RUMBLE+RAM+BATTERY",
	TypeMBC6:                       "MBC6",
	TypeMBC7SensorRumbleRAMBattery: "MBC7+SENSOR+RUMBLE+RAM+BATTERY",
	TypePocketCamera:               "POCKET CAMERA",
	TypeBandaiTAMA5:                "BANDAI TAMA5",
	TypeHuC3:                       "HuC3",
	TypeHuC1RAMBattery:             "HuC1+RAM+BATTERY",
}

// TypeFromCode maps a header type byte to its Type, or TypeUnknown.
func TypeFromCode(code byte) Type {
	t := Type(code)
	if _, ok := typeNames[t]; ok {
		return t
	}
	return TypeUnknown
}

// String returns a human-readable name for the cartridge type.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// HasRAM returns true if the cartridge type includes RAM.
func (t Type) HasRAM() bool {
	switch t {
	case TypeMBC1RAM, TypeMBC1RAMBattery,
		TypeMBC2, TypeMBC2Battery, // MBC2 has built-in RAM
		TypeROMRAM, TypeROMRAMBattery,
		TypeMMM01RAM, TypeMMM01RAMBattery,
		TypeMBC3TimerRAMBattery, TypeMBC3RAM, TypeMBC3RAMBattery,
		TypeMBC5RAM, TypeMBC5RAMBattery,
		TypeMBC5RumbleRAM, TypeMBC5RumbleRAMBattery,
		TypeMBC7SensorRumbleRAMBattery,
		TypeHuC1RAMBattery:
		return true
	default:
		return false
	}
}

// HasBattery returns true if the cartridge type includes a battery for save data.
func (t Type) HasBattery() bool {
	switch t {
	case TypeMBC1RAMBattery,
		TypeMBC2Battery,
		TypeROMRAMBattery,
		TypeMMM01RAMBattery,
		TypeMBC3TimerBattery, TypeMBC3TimerRAMBattery, TypeMBC3RAMBattery,
		TypeMBC5RAMBattery, TypeMBC5RumbleRAMBattery,
		TypeMBC7SensorRumbleRAMBattery,
		TypeHuC1RAMBattery:
		return true
	default:
		return false
	}
}

// RAMSpec describes the external RAM fitted to a cartridge.
// A zero Banks value means the cartridge has no RAM.
type RAMSpec struct {
	BankSize int
	Banks    int
}

// None reports whether the cartridge has no external RAM.
func (r RAMSpec) None() bool {
	return r.Banks == 0
}

// Size returns the total RAM size in bytes.
func (r RAMSpec) Size() int {
	return r.BankSize * r.Banks
}

// Destination is the region the cartridge was sold in.
type Destination uint8

// Destination codes.
const (
	DestinationJapanese Destination = iota
	DestinationOverseas
)

func (d Destination) String() string {
	if d == DestinationJapanese {
		return "Japanese"
	}
	return "Non-Japanese"
}

// Header represents the decoded Game Boy cartridge header (0x0134-0x014F).
type Header struct {
	Title        string
	Manufacturer string

	// CGB flag (0x0143)
	// 0x80 = Game supports CGB functions, but works on old Game Boy
	// 0xC0 = Game works on CGB only
	CGBFlag byte

	// SGB flag (0x0146), 0x03 = Game supports SGB functions
	SGBFlag byte

	TypeCode byte
	Type     Type

	ROMSizeCode byte
	ROMSize     uint32 // bytes, or ROMSizeUnknown

	RAMSizeCode byte
	RAM         RAMSpec

	DestinationCode byte
	Destination     Destination

	OldLicenseeCode byte
	Version         byte

	HeaderChecksum byte
	GlobalChecksum uint16
}

// ParseHeader decodes the cartridge header from a ROM image.
// rom must be at least HeaderEnd bytes long. Unrecognised codes decode to
// explicit unknown values rather than failing.
func ParseHeader(rom []byte) *Header {
	return &Header{
		Title:           trimTitle(rom[titleStart:titleEnd]),
		Manufacturer:    trimTitle(rom[manufacturerStart:manufacturerEnd]),
		CGBFlag:         rom[cgbFlagAddr],
		SGBFlag:         rom[sgbFlagAddr],
		TypeCode:        rom[typeAddr],
		Type:            TypeFromCode(rom[typeAddr]),
		ROMSizeCode:     rom[romSizeAddr],
		ROMSize:         romSizeBytes(rom[romSizeAddr]),
		RAMSizeCode:     rom[ramSizeAddr],
		RAM:             ramSpec(rom[ramSizeAddr]),
		DestinationCode: rom[destinationAddr],
		Destination:     destination(rom[destinationAddr]),
		OldLicenseeCode: rom[oldLicenseeAddr],
		Version:         rom[versionAddr],
		HeaderChecksum:  rom[headerSumAddr],
		GlobalChecksum:  uint16(rom[globalSumAddr])<<8 | uint16(rom[globalSumAddr+1]),
	}
}

// trimTitle cuts a fixed-width header string at its first NUL byte.
func trimTitle(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func romSizeBytes(code byte) uint32 {
	switch {
	case code <= 0x08:
		return (32 * 1024) << code
	case code == 0x52:
		return 72 * ROMBankSize
	case code == 0x53:
		return 80 * ROMBankSize
	case code == 0x54:
		return 96 * ROMBankSize
	default:
		return ROMSizeUnknown
	}
}

func ramSpec(code byte) RAMSpec {
	switch code {
	case 0x01:
		return RAMSpec{BankSize: 0x800, Banks: 1} // unofficial 2 KiB
	case 0x02:
		return RAMSpec{BankSize: RAMBankSize, Banks: 1}
	case 0x03:
		return RAMSpec{BankSize: RAMBankSize, Banks: 4}
	case 0x04:
		return RAMSpec{BankSize: RAMBankSize, Banks: 16}
	case 0x05:
		return RAMSpec{BankSize: RAMBankSize, Banks: 8}
	default:
		return RAMSpec{}
	}
}

func destination(code byte) Destination {
	if code == 0x00 {
		return DestinationJapanese
	}
	return DestinationOverseas
}

// KnownROMSize reports whether the ROM size code was recognised.
func (h *Header) KnownROMSize() bool {
	return h.ROMSize != ROMSizeUnknown
}

// ROMBanks returns the number of 16 KiB ROM banks, or 0 if the size is unknown.
func (h *Header) ROMBanks() int {
	if !h.KnownROMSize() {
		return 0
	}
	return int(h.ROMSize / ROMBankSize)
}

// String summarises the header on one line.
func (h *Header) String() string {
	return fmt.Sprintf("%q %s (0x%02X)", h.Title, h.Type, h.TypeCode)
}

// VerifyHeaderChecksum verifies the header checksum.
// The checksum is calculated over bytes 0x0134-0x014C.
// Formula: checksum = 0; for each byte: checksum = checksum - byte - 1.
func (h *Header) VerifyHeaderChecksum(rom []byte) bool {
	checksum := byte(0)
	for addr := titleStart; addr < headerSumAddr; addr++ {
		checksum = checksum - rom[addr] - 1
	}
	return checksum == h.HeaderChecksum
}

// VerifyGlobalChecksum verifies the global checksum.
// The global checksum is a 16-bit checksum of the entire ROM excluding the checksum bytes.
// Note: Many commercial games have incorrect global checksums, so this is often not enforced.
func (h *Header) VerifyGlobalChecksum(rom []byte) bool {
	sum := uint16(0)
	for i, b := range rom {
		if i == globalSumAddr || i == globalSumAddr+1 {
			continue
		}
		sum += uint16(b)
	}
	return sum == h.GlobalChecksum
}
