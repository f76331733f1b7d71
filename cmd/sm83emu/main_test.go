package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/richardwooding/sm83emu/internal/cartridge"
)

func TestPrintInfo(t *testing.T) {
	rom := make([]byte, 64*1024)
	copy(rom[0x0134:], "TESTGAME")
	rom[0x0147] = 0x03 // MBC1+RAM+BATTERY
	rom[0x0148] = 0x01
	rom[0x0149] = 0x02

	cart, err := cartridge.New(rom)
	if err != nil {
		t.Fatalf("cartridge.New() error = %v", err)
	}

	var buf bytes.Buffer
	printInfo(&buf, cart)
	out := buf.String()

	for _, want := range []string{
		"TESTGAME",
		"Controller:      MBC1",
		"64 KiB (4 banks)",
		"8 KiB (1 banks)",
		"Has Battery:     true",
		"Header Checksum: 0x00 (invalid)",
		cart.FingerprintString(),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintInfoUnsupportedController(t *testing.T) {
	rom := make([]byte, 32*1024)
	rom[0x0147] = 0x20 // MBC6

	cart, err := cartridge.New(rom)
	if err != nil {
		t.Fatalf("cartridge.New() error = %v", err)
	}

	var buf bytes.Buffer
	printInfo(&buf, cart)
	if !strings.Contains(buf.String(), "unsupported, running as") {
		t.Errorf("info output should flag the unsupported controller:\n%s", buf.String())
	}
}

func TestFillRGBA(t *testing.T) {
	dst := make([]byte, 8)
	fillRGBA(dst, []uint8{0, 3})

	if c := dmgPalette[0]; dst[0] != c.R || dst[1] != c.G || dst[2] != c.B || dst[3] != 0xFF {
		t.Errorf("pixel 0 = %v, want %v", dst[:4], c)
	}
	if c := dmgPalette[3]; dst[4] != c.R || dst[5] != c.G || dst[6] != c.B || dst[7] != 0xFF {
		t.Errorf("pixel 1 = %v, want %v", dst[4:], c)
	}
}

func TestGlobalsLogger(t *testing.T) {
	g := &Globals{LogLevel: "info", Trace: true}
	if _, err := g.logger(&bytes.Buffer{}); err != nil {
		t.Fatalf("logger() error = %v", err)
	}
	if g.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug when tracing", g.LogLevel)
	}

	bad := &Globals{LogLevel: "loud"}
	if _, err := bad.logger(&bytes.Buffer{}); err == nil {
		t.Errorf("logger() with an unknown level should fail")
	}
}
