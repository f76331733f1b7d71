// Package memory implements the Game Boy memory bus and address space mapping.
package memory

import (
	"github.com/richardwooding/sm83emu/internal/cartridge"
	"github.com/richardwooding/sm83emu/internal/log"
)

// Bus decodes the 16-bit address space onto the cartridge banks and the
// console's fixed memory regions. Writes into 0x0000-0x7FFF are bank control
// commands for the fitted controller.
//
// Memory map:
//   - 0x0000-0x3FFF: ROM bank 0 (fixed)
//   - 0x4000-0x7FFF: ROM, active bank
//   - 0x8000-0x9FFF: video RAM
//   - 0xA000-0xBFFF: cartridge RAM, active bank
//   - 0xC000-0xDFFF: work RAM
//   - 0xE000-0xFDFF: echo of 0xC000-0xDDFF
//   - 0xFE00-0xFE9F: OAM
//   - 0xFEA0-0xFEFF: unusable, any access panics with *AccessError
//   - 0xFF00-0xFF7F: I/O registers
//   - 0xFF80-0xFFFE: high RAM
//   - 0xFFFF: interrupt enable
type Bus struct {
	cart       *cartridge.Cartridge
	controller Controller

	rom *BankedMemory
	ram *BankedMemory // nil when the cartridge has no RAM

	// Bank state, changed only by control writes.
	ramEnabled  bool
	romBank     int // requested bank before wrapping
	ramBank     int
	bankingMode uint8
	rtcSelected bool

	vram [0x2000]uint8
	wram [0x2000]uint8
	oam  [0xA0]uint8
	io   [0x80]uint8
	hram [0x7F]uint8
	ie   uint8

	log log.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for bank switch and fallback diagnostics.
func WithLogger(l log.Logger) Option {
	return func(b *Bus) {
		b.log = l
	}
}

// NewBus maps cart into a new address space. A nil cart behaves as an
// empty ROM-only cartridge whose bytes all read 0xFF.
func NewBus(cart *cartridge.Cartridge, opts ...Option) *Bus {
	b := &Bus{
		cart: cart,
		log:  log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}

	var image []byte
	if cart != nil {
		image = cart.ROM

		controller, ok := ControllerFor(cart.Header.Type)
		if !ok {
			b.log.Infof("no bank controller for cartridge type %s (0x%02X), using none",
				cart.Header.Type, cart.Header.TypeCode)
		}
		b.controller = controller

		switch {
		case controller == ControllerMBC2:
			b.ram = NewBankedMemory(0, mbc2RAMSize, 1)
		case !cart.Header.RAM.None():
			b.ram = NewBankedMemory(0, cart.Header.RAM.BankSize, cart.Header.RAM.Banks)
		}
	}
	b.rom = NewBankedMemoryFrom(image, cartridge.ROMBankSize, 1)
	b.resetBanks()

	return b
}

func (b *Bus) resetBanks() {
	b.romBank = 1
	b.rom.SetActive(1)
	b.ramBank = 0
	if b.ram != nil {
		b.ram.SetActive(0)
	}
	b.bankingMode = 0
	b.rtcSelected = false
	// Without a controller there is nothing to gate the RAM.
	b.ramEnabled = b.controller == ControllerNone && b.ram != nil
}

// Read reads a byte from the memory bus.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x4000:
		return b.rom.ReadBank(0, int(addr))
	case addr < 0x8000:
		return b.rom.ReadActive(int(addr - 0x4000))
	case addr < 0xA000:
		return b.vram[addr-0x8000]
	case addr < 0xC000:
		return b.readRAM(int(addr - 0xA000))
	case addr < 0xE000:
		return b.wram[addr-0xC000]
	case addr < 0xFE00:
		return b.wram[addr-0xE000]
	case addr < 0xFEA0:
		return b.oam[addr-0xFE00]
	case addr < 0xFF00:
		panic(&AccessError{Addr: addr, Err: ErrUnusableAddress})
	case addr < 0xFF80:
		return b.io[addr-0xFF00]
	case addr < 0xFFFF:
		return b.hram[addr-0xFF80]
	default:
		return b.ie
	}
}

// Write writes a byte to the memory bus.
func (b *Bus) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x8000:
		b.writeControl(addr, value)
	case addr < 0xA000:
		b.vram[addr-0x8000] = value
	case addr < 0xC000:
		b.writeRAM(int(addr-0xA000), value)
	case addr < 0xE000:
		b.wram[addr-0xC000] = value
	case addr < 0xFE00:
		b.wram[addr-0xE000] = value
	case addr < 0xFEA0:
		b.oam[addr-0xFE00] = value
	case addr < 0xFF00:
		panic(&AccessError{Addr: addr, Write: true, Err: ErrUnusableAddress})
	case addr < 0xFF80:
		b.io[addr-0xFF00] = value
	case addr < 0xFFFF:
		b.hram[addr-0xFF80] = value
	default:
		b.ie = value
	}
}

// ReadNext8 reads the byte following pc.
func (b *Bus) ReadNext8(pc uint16) uint8 {
	return b.Read(pc + 1)
}

// ReadNext16 reads the little-endian word following pc.
func (b *Bus) ReadNext16(pc uint16) uint16 {
	return uint16(b.Read(pc+1)) | uint16(b.Read(pc+2))<<8
}

// ReadRange reads the half-open range [start, end). It returns an empty
// slice when end <= start.
func (b *Bus) ReadRange(start, end uint16) []byte {
	if end <= start {
		return []byte{}
	}
	out := make([]byte, 0, int(end-start))
	for addr := start; addr < end; addr++ {
		out = append(out, b.Read(addr))
	}
	return out
}

// Cartridge returns the mapped cartridge, or nil.
func (b *Bus) Cartridge() *cartridge.Cartridge {
	return b.cart
}

// Controller returns the bank controller in use.
func (b *Bus) Controller() Controller {
	return b.controller
}

// RAMEnabled reports whether cartridge RAM is currently accessible.
func (b *Bus) RAMEnabled() bool {
	return b.ramEnabled
}

// ActiveROMBank returns the ROM bank mapped at 0x4000-0x7FFF.
func (b *Bus) ActiveROMBank() int {
	return b.rom.Active()
}

// ActiveRAMBank returns the RAM bank mapped at 0xA000-0xBFFF, or the last
// selected bank number when the cartridge has no RAM.
func (b *Bus) ActiveRAMBank() int {
	if b.ram == nil {
		return b.ramBank
	}
	return b.ram.Active()
}

// BankingMode returns the last value written to the mode register.
func (b *Bus) BankingMode() uint8 {
	return b.bankingMode
}

// Reset clears all console RAM and the bank registers while keeping the
// cartridge loaded. Cartridge RAM is not cleared as it may be battery-backed.
func (b *Bus) Reset() {
	clear(b.vram[:])
	clear(b.wram[:])
	clear(b.oam[:])
	clear(b.io[:])
	clear(b.hram[:])
	b.ie = 0
	b.resetBanks()
}
