package memory

import "github.com/richardwooding/sm83emu/internal/cartridge"

// Controller identifies the bank controller family fitted to a cartridge.
// The set is closed; types the bus cannot emulate fall back to ControllerNone.
type Controller uint8

// Supported bank controllers.
const (
	ControllerNone Controller = iota
	ControllerMBC1
	ControllerMBC2
	ControllerMBC3
	ControllerMBC5
)

func (c Controller) String() string {
	switch c {
	case ControllerMBC1:
		return "MBC1"
	case ControllerMBC2:
		return "MBC2"
	case ControllerMBC3:
		return "MBC3"
	case ControllerMBC5:
		return "MBC5"
	default:
		return "none"
	}
}

// ControllerFor returns the controller for a cartridge type, and whether the
// type is one the bus actually emulates. Unsupported types report false and
// map to ControllerNone.
func ControllerFor(t cartridge.Type) (Controller, bool) {
	switch t {
	case cartridge.TypeROMOnly, cartridge.TypeROMRAM, cartridge.TypeROMRAMBattery:
		return ControllerNone, true
	case cartridge.TypeMBC1, cartridge.TypeMBC1RAM, cartridge.TypeMBC1RAMBattery:
		return ControllerMBC1, true
	case cartridge.TypeMBC2, cartridge.TypeMBC2Battery:
		return ControllerMBC2, true
	case cartridge.TypeMBC3, cartridge.TypeMBC3RAM, cartridge.TypeMBC3RAMBattery,
		cartridge.TypeMBC3TimerBattery, cartridge.TypeMBC3TimerRAMBattery:
		return ControllerMBC3, true
	case cartridge.TypeMBC5, cartridge.TypeMBC5RAM, cartridge.TypeMBC5RAMBattery,
		cartridge.TypeMBC5Rumble, cartridge.TypeMBC5RumbleRAM, cartridge.TypeMBC5RumbleRAMBattery:
		return ControllerMBC5, true
	default:
		return ControllerNone, false
	}
}

// mbc2RAMSize is the 512 half-byte cells built into MBC2.
const mbc2RAMSize = 0x200

// writeControl interprets a write into 0x0000-0x7FFF for the fitted controller.
func (b *Bus) writeControl(addr uint16, value uint8) {
	switch b.controller {
	case ControllerMBC1:
		b.writeMBC1(addr, value)
	case ControllerMBC2:
		b.writeMBC2(addr, value)
	case ControllerMBC3:
		b.writeMBC3(addr, value)
	case ControllerMBC5:
		b.writeMBC5(addr, value)
	default:
		b.log.Debugf("ignored ROM write 0x%02X to 0x%04X", value, addr)
	}
}

func (b *Bus) writeMBC1(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		b.setRAMEnabled(value)
	case addr < 0x4000:
		bank := int(value & 0x1F)
		if bank == 0 {
			bank = 1
		}
		b.selectROMBank(bank)
	case addr < 0x6000:
		b.selectRAMBank(int(value & 0x03))
	default:
		b.bankingMode = value & 0x03
	}
}

func (b *Bus) writeMBC2(addr uint16, value uint8) {
	if addr >= 0x4000 {
		return
	}
	// Address bit 8 picks the register.
	if addr&0x0100 == 0 {
		b.setRAMEnabled(value)
		return
	}
	bank := int(value & 0x0F)
	if bank == 0 {
		bank = 1
	}
	b.selectROMBank(bank)
}

func (b *Bus) writeMBC3(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		b.setRAMEnabled(value)
	case addr < 0x4000:
		bank := int(value & 0x7F)
		if bank == 0 {
			bank = 1
		}
		b.selectROMBank(bank)
	case addr < 0x6000:
		switch {
		case value <= 0x03:
			b.rtcSelected = false
			b.selectRAMBank(int(value))
		case value >= 0x08 && value <= 0x0C:
			b.rtcSelected = true
		default:
			b.log.Debugf("MBC3: ignored RAM bank select 0x%02X", value)
		}
	default:
		// Clock latch. There is no clock, so only the written value is kept.
		b.bankingMode = value & 0x03
	}
}

func (b *Bus) writeMBC5(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		b.setRAMEnabled(value)
	case addr < 0x3000:
		b.selectROMBank(b.romBank&0x100 | int(value))
	case addr < 0x4000:
		b.selectROMBank(int(value&0x01)<<8 | b.romBank&0xFF)
	case addr < 0x6000:
		b.selectRAMBank(int(value & 0x0F))
	}
}

func (b *Bus) setRAMEnabled(value uint8) {
	b.ramEnabled = value&0x0F == 0x0A
}

// selectROMBank records the requested bank and maps it into 0x4000-0x7FFF,
// wrapping to the number of banks the image actually has.
func (b *Bus) selectROMBank(bank int) {
	b.romBank = bank
	b.rom.SetActive(bank % b.rom.Banks())
	b.log.Debugf("ROM bank %d -> %d", bank, b.rom.Active())
}

func (b *Bus) selectRAMBank(bank int) {
	b.ramBank = bank
	if b.ram == nil {
		return
	}
	b.ram.SetActive(bank % b.ram.Banks())
}

// readRAM returns the byte at offset into 0xA000-0xBFFF.
func (b *Bus) readRAM(offset int) uint8 {
	if b.ram == nil || !b.ramEnabled || b.rtcSelected {
		return 0xFF
	}
	if b.controller == ControllerMBC2 {
		return b.ram.ReadActive(offset%mbc2RAMSize) | 0xF0
	}
	return b.ram.ReadActive(offset % b.ram.BankSize())
}

func (b *Bus) writeRAM(offset int, value uint8) {
	if b.ram == nil || !b.ramEnabled || b.rtcSelected {
		return
	}
	if b.controller == ControllerMBC2 {
		b.ram.WriteActive(offset%mbc2RAMSize, value&0x0F)
		return
	}
	b.ram.WriteActive(offset%b.ram.BankSize(), value)
}
