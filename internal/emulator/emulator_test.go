package emulator

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/richardwooding/sm83emu/internal/cpu"
	"github.com/richardwooding/sm83emu/internal/log"
)

// newROM returns a 32 KiB ROM-only image with program placed at 0x0100.
func newROM(program ...byte) []byte {
	rom := make([]byte, 32*1024)
	copy(rom[0x0100:], program)
	return rom
}

// serialProgram prints msg through the serial port, then spins forever.
func serialProgram(msg string) []byte {
	var prog []byte
	for _, ch := range []byte(msg) {
		prog = append(prog,
			0x3E, ch, // LD A,ch
			0xE0, 0x01, // LDH (SB),A
			0x3E, 0x81, // LD A,0x81
			0xE0, 0x02, // LDH (SC),A
		)
	}
	return append(prog, 0x18, 0xFE) // JR -2
}

func TestNew(t *testing.T) {
	emu, err := New(newROM())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if emu.CPU.PC != 0x0100 {
		t.Errorf("PC = %04X, want 0100", emu.CPU.PC)
	}
	if emu.Memory.Cartridge() != emu.Cart {
		t.Errorf("bus cartridge does not match emulator cartridge")
	}

	if _, err := New(make([]byte, 0x100)); err == nil {
		t.Errorf("New() with a short image should fail")
	}
}

func TestStep(t *testing.T) {
	emu, err := New(newROM(0x3E, 0x05, 0xC6, 0x03)) // LD A,5; ADD A,3
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	for i, want := range []uint8{8, 8} {
		cycles, err := emu.Step()
		if err != nil {
			t.Fatalf("step %d: error = %v", i, err)
		}
		if cycles != want {
			t.Errorf("step %d: cycles = %d, want %d", i, cycles, want)
		}
	}
	if emu.CPU.Registers.A != 0x08 {
		t.Errorf("A = %02X, want 08", emu.CPU.Registers.A)
	}
	if emu.CPU.PC != 0x0104 {
		t.Errorf("PC = %04X, want 0104", emu.CPU.PC)
	}
}

func TestSerialOutput(t *testing.T) {
	emu, err := New(newROM(serialProgram("Passed")...))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	out, err := emu.RunUntilOutput(time.Second)
	if err != nil {
		t.Fatalf("RunUntilOutput() error = %v", err)
	}
	if out != "Passed" {
		t.Errorf("output = %q, want %q", out, "Passed")
	}
	if got := emu.Memory.Read(addrSC); got != 0x01 {
		t.Errorf("SC = %02X, want 01 after transfer", got)
	}
}

func TestRunUntilOutputTimeout(t *testing.T) {
	emu, err := New(newROM(0x18, 0xFE)) // JR -2
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	_, err = emu.RunUntilOutput(10 * time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("RunUntilOutput() error = %v, want ErrTimeout", err)
	}
}

func TestRunCyclesStopped(t *testing.T) {
	emu, err := New(newROM(0x00, 0x10, 0x00)) // NOP; STOP
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := emu.RunCycles(100); !errors.Is(err, ErrStopped) {
		t.Errorf("RunCycles() error = %v, want ErrStopped", err)
	}
	if !emu.CPU.Stopped() {
		t.Errorf("CPU should be stopped")
	}
}

func TestRunStepsFault(t *testing.T) {
	emu, err := New(newROM(0x00, 0xD3)) // NOP; illegal
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	err = emu.RunSteps(10)
	var fault *cpu.Fault
	if !errors.As(err, &fault) {
		t.Fatalf("RunSteps() error = %v, want *cpu.Fault", err)
	}
	if fault.PC != 0x0101 || fault.Opcode != 0xD3 {
		t.Errorf("fault at %04X opcode %02X, want 0101 D3", fault.PC, fault.Opcode)
	}
	if !errors.Is(err, cpu.ErrIllegalOpcode) {
		t.Errorf("error %v does not wrap ErrIllegalOpcode", err)
	}
}

func TestReset(t *testing.T) {
	emu, err := New(newROM(serialProgram("Failed")...))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := emu.RunUntilOutput(time.Second); err != nil {
		t.Fatalf("RunUntilOutput() error = %v", err)
	}
	emu.Memory.Write(0xC000, 0x42)

	emu.Reset()

	if emu.SerialOutput() != "" {
		t.Errorf("SerialOutput() = %q after reset, want empty", emu.SerialOutput())
	}
	if emu.CPU.PC != 0x0100 || emu.CPU.Cycles != 0 {
		t.Errorf("PC = %04X cycles = %d after reset, want 0100 and 0", emu.CPU.PC, emu.CPU.Cycles)
	}
	if got := emu.Memory.Read(0xC000); got != 0 {
		t.Errorf("WRAM = %02X after reset, want 00", got)
	}
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf, slog.LevelDebug)

	emu, err := New(newROM(0x3E, 0x05), WithLogger(logger), WithTrace(true))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := emu.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if !strings.Contains(buf.String(), "LD A,d8") {
		t.Errorf("trace output %q does not name the instruction", buf.String())
	}

	buf.Reset()
	quiet, err := New(newROM(0x3E, 0x05), WithLogger(logger))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := quiet.Step(); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if strings.Contains(buf.String(), "LD A,d8") {
		t.Errorf("trace disabled but got %q", buf.String())
	}
}
