package memory

import (
	"testing"

	"github.com/richardwooding/sm83emu/internal/cartridge"
)

func TestControllerFor(t *testing.T) {
	tests := []struct {
		t         cartridge.Type
		want      Controller
		supported bool
	}{
		{cartridge.TypeROMOnly, ControllerNone, true},
		{cartridge.TypeROMRAMBattery, ControllerNone, true},
		{cartridge.TypeMBC1, ControllerMBC1, true},
		{cartridge.TypeMBC1RAMBattery, ControllerMBC1, true},
		{cartridge.TypeMBC2Battery, ControllerMBC2, true},
		{cartridge.TypeMBC3TimerRAMBattery, ControllerMBC3, true},
		{cartridge.TypeMBC5RumbleRAM, ControllerMBC5, true},
		{cartridge.TypeMMM01, ControllerNone, false},
		{cartridge.TypeMBC6, ControllerNone, false},
		{cartridge.TypeHuC1RAMBattery, ControllerNone, false},
		{cartridge.TypeUnknown, ControllerNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.t.String(), func(t *testing.T) {
			got, ok := ControllerFor(tt.t)
			if got != tt.want || ok != tt.supported {
				t.Errorf("ControllerFor(%v) = %v, %v, want %v, %v", tt.t, got, ok, tt.want, tt.supported)
			}
		})
	}
}

func TestUnsupportedControllerFallsBack(t *testing.T) {
	bus := NewBus(newTestCartridge(t, 0x20, 0x01, 0x00)) // MBC6

	if bus.Controller() != ControllerNone {
		t.Errorf("Controller() = %v, want %v", bus.Controller(), ControllerNone)
	}
	bus.Write(0x2000, 0x03)
	if got := bus.Read(0x4000); got != 0x01 {
		t.Errorf("Read(0x4000) = %02X, want 0x01 (bank writes ignored)", got)
	}
}

func TestNoControllerRAM(t *testing.T) {
	bus := NewBus(newTestCartridge(t, 0x08, 0x00, 0x02)) // ROM+RAM

	if !bus.RAMEnabled() {
		t.Fatal("RAMEnabled() should be true without a controller")
	}
	bus.Write(0xA010, 0x99)
	if got := bus.Read(0xA010); got != 0x99 {
		t.Errorf("Read(0xA010) = %02X, want 0x99", got)
	}
}

func TestMBC1RAMEnable(t *testing.T) {
	bus := NewBus(newTestCartridge(t, 0x03, 0x01, 0x02))

	if bus.RAMEnabled() {
		t.Fatal("RAM should start disabled")
	}

	bus.Write(0x0000, 0x0A)
	if !bus.RAMEnabled() {
		t.Error("writing 0x0A to 0x0000 should enable RAM")
	}
	bus.Write(0xA000, 0x42)
	if got := bus.Read(0xA000); got != 0x42 {
		t.Errorf("Read(0xA000) = %02X, want 0x42", got)
	}

	bus.Write(0x0000, 0x00)
	if bus.RAMEnabled() {
		t.Error("writing 0x00 to 0x0000 should disable RAM")
	}
	if got := bus.Read(0xA000); got != 0xFF {
		t.Errorf("Read(0xA000) with RAM disabled = %02X, want 0xFF", got)
	}

	// Writes while disabled are dropped.
	bus.Write(0xA000, 0x24)
	bus.Write(0x1FFF, 0x1A) // low nibble 0xA also enables
	if got := bus.Read(0xA000); got != 0x42 {
		t.Errorf("Read(0xA000) = %02X, want 0x42", got)
	}
}

func TestMBC1ROMBanking(t *testing.T) {
	bus := NewBus(newTestCartridge(t, 0x01, 0x02, 0x00)) // 8 banks

	tests := []struct {
		value uint8
		want  uint8
	}{
		{0x02, 0x02},
		{0x07, 0x07},
		{0x00, 0x01}, // bank 0 selects bank 1
		{0x08, 0x00}, // wraps to 8 banks
		{0xE3, 0x03}, // only the low 5 bits count
	}

	for _, tt := range tests {
		bus.Write(0x2000, tt.value)
		if got := bus.Read(0x4000); got != tt.want {
			t.Errorf("after writing 0x%02X, Read(0x4000) = %02X, want %02X", tt.value, got, tt.want)
		}
		// Bank 0 window never moves.
		if got := bus.Read(0x0000); got != 0x00 {
			t.Errorf("after writing 0x%02X, Read(0x0000) = %02X, want 0x00", tt.value, got)
		}
	}
}

func TestMBC1RAMBankingAndMode(t *testing.T) {
	bus := NewBus(newTestCartridge(t, 0x03, 0x01, 0x03)) // 4 RAM banks
	bus.Write(0x0000, 0x0A)

	for bank := range 4 {
		bus.Write(0x4000, uint8(bank))
		bus.Write(0xA000, uint8(0x10+bank))
	}
	for bank := range 4 {
		bus.Write(0x5FFF, uint8(bank)|0xFC)
		if bus.ActiveRAMBank() != bank {
			t.Errorf("ActiveRAMBank() = %d, want %d", bus.ActiveRAMBank(), bank)
		}
		if got := bus.Read(0xA000); got != uint8(0x10+bank) {
			t.Errorf("RAM bank %d Read(0xA000) = %02X, want %02X", bank, got, 0x10+bank)
		}
	}

	bus.Write(0x6000, 0x07)
	if bus.BankingMode() != 0x03 {
		t.Errorf("BankingMode() = %d, want 3", bus.BankingMode())
	}
}

func TestMBC2(t *testing.T) {
	bus := NewBus(newTestCartridge(t, 0x06, 0x02, 0x00))

	// Bit 8 clear: RAM enable.
	bus.Write(0x0000, 0x0A)
	if !bus.RAMEnabled() {
		t.Fatal("RAM should be enabled")
	}

	// Bit 8 set: ROM bank.
	bus.Write(0x0100, 0x05)
	if got := bus.Read(0x4000); got != 0x05 {
		t.Errorf("Read(0x4000) = %02X, want 0x05", got)
	}
	bus.Write(0x2100, 0x00)
	if bus.ActiveROMBank() != 1 {
		t.Errorf("ActiveROMBank() = %d, want 1", bus.ActiveROMBank())
	}

	// Built-in RAM stores nibbles and mirrors every 512 bytes.
	bus.Write(0xA001, 0xAB)
	if got := bus.Read(0xA001); got != 0xFB {
		t.Errorf("Read(0xA001) = %02X, want 0xFB", got)
	}
	if got := bus.Read(0xA201); got != 0xFB {
		t.Errorf("Read(0xA201) = %02X, want 0xFB", got)
	}
}

func TestMBC3(t *testing.T) {
	bus := NewBus(newTestCartridge(t, 0x13, 0x03, 0x03)) // 16 banks, 4 RAM banks
	bus.Write(0x0000, 0x0A)

	bus.Write(0x2000, 0x0F)
	if got := bus.Read(0x4000); got != 0x0F {
		t.Errorf("Read(0x4000) = %02X, want 0x0F", got)
	}
	bus.Write(0x2000, 0x00)
	if got := bus.Read(0x4000); got != 0x01 {
		t.Errorf("Read(0x4000) = %02X, want 0x01", got)
	}

	bus.Write(0x4000, 0x02)
	bus.Write(0xA000, 0x33)
	if got := bus.Read(0xA000); got != 0x33 {
		t.Errorf("Read(0xA000) = %02X, want 0x33", got)
	}

	// Clock registers are not emulated and read as open bus.
	bus.Write(0x4000, 0x08)
	if got := bus.Read(0xA000); got != 0xFF {
		t.Errorf("Read(0xA000) with RTC selected = %02X, want 0xFF", got)
	}

	bus.Write(0x4000, 0x02)
	if got := bus.Read(0xA000); got != 0x33 {
		t.Errorf("Read(0xA000) after reselecting RAM = %02X, want 0x33", got)
	}
}

func TestMBC5(t *testing.T) {
	bus := NewBus(newTestCartridge(t, 0x19, 0x08, 0x00)) // 512 banks

	bus.Write(0x2000, 0x00)
	if got := bus.Read(0x4000); got != 0x00 {
		t.Errorf("Read(0x4000) = %02X, want 0x00 (bank 0 is selectable)", got)
	}

	bus.Write(0x2000, 0x23)
	bus.Write(0x3000, 0x01)
	if bus.ActiveROMBank() != 0x123 {
		t.Errorf("ActiveROMBank() = 0x%X, want 0x123", bus.ActiveROMBank())
	}
	if got := bus.Read(0x4000); got != 0x23 {
		t.Errorf("Read(0x4000) = %02X, want 0x23", got)
	}

	bus.Write(0x3000, 0x00)
	if bus.ActiveROMBank() != 0x23 {
		t.Errorf("ActiveROMBank() = 0x%X, want 0x23", bus.ActiveROMBank())
	}
}
