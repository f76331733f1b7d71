// Package emulator drives the CPU over a memory bus built from a cartridge
// and captures the serial output test ROMs print through.
package emulator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/richardwooding/sm83emu/internal/cartridge"
	"github.com/richardwooding/sm83emu/internal/cpu"
	"github.com/richardwooding/sm83emu/internal/log"
	"github.com/richardwooding/sm83emu/internal/memory"
)

var (
	// ErrTimeout indicates the operation timed out.
	ErrTimeout = errors.New("timeout waiting for serial output")

	// ErrStopped indicates the CPU executed STOP and will not make progress.
	ErrStopped = errors.New("cpu stopped")
)

// Serial port registers.
const (
	addrSB = 0xFF01
	addrSC = 0xFF02
)

// Emulator ties a cartridge, a memory bus and a CPU together.
type Emulator struct {
	CPU    *cpu.CPU
	Memory *memory.Bus
	Cart   *cartridge.Cartridge

	log    log.Logger
	trace  bool
	serial []byte
}

// Option configures an Emulator.
type Option func(*Emulator)

// WithLogger sets the logger handed to the bus and the CPU.
func WithLogger(l log.Logger) Option {
	return func(e *Emulator) {
		e.log = l
	}
}

// WithTrace enables the per-instruction trace. Trace lines are logged at
// debug level, so the logger must be configured to show them.
func WithTrace(enabled bool) Option {
	return func(e *Emulator) {
		e.trace = enabled
	}
}

// New creates an emulator for the given ROM image.
func New(rom []byte, opts ...Option) (*Emulator, error) {
	cart, err := cartridge.New(rom)
	if err != nil {
		return nil, fmt.Errorf("failed to load cartridge: %w", err)
	}
	return NewWithCartridge(cart, opts...), nil
}

// NewWithCartridge creates an emulator for an already loaded cartridge.
func NewWithCartridge(cart *cartridge.Cartridge, opts ...Option) *Emulator {
	e := &Emulator{
		Cart:   cart,
		log:    log.NewNullLogger(),
		serial: make([]byte, 0, 1024),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = log.With(e.log, "rom", cart.FingerprintString())

	e.Memory = memory.NewBus(cart, memory.WithLogger(log.With(e.log, "component", "bus")))

	cpuLog := log.NewNullLogger()
	if e.trace {
		cpuLog = log.With(e.log, "component", "cpu")
	}
	e.CPU = cpu.New(cpu.WithLogger(cpuLog))

	return e
}

// Step executes one CPU instruction and returns the number of cycles taken.
func (e *Emulator) Step() (uint8, error) {
	cycles, err := e.CPU.Step(e.Memory)
	if err != nil {
		return cycles, err
	}
	e.handleSerialOutput()
	return cycles, nil
}

// RunCycles runs the emulator for at least the given number of cycles.
// It returns early with the CPU fault, or ErrStopped after STOP.
func (e *Emulator) RunCycles(cycles uint64) error {
	target := e.CPU.Cycles + cycles
	for e.CPU.Cycles < target {
		if _, err := e.Step(); err != nil {
			return err
		}
		if e.CPU.Stopped() {
			return ErrStopped
		}
	}
	return nil
}

// RunSteps executes up to n instructions.
func (e *Emulator) RunSteps(n int) error {
	for range n {
		if _, err := e.Step(); err != nil {
			return err
		}
		if e.CPU.Stopped() {
			return ErrStopped
		}
	}
	return nil
}

// RunUntilOutput runs the emulator until the serial output reports a result
// or no new output arrives within timeout.
func (e *Emulator) RunUntilOutput(timeout time.Duration) (string, error) {
	start := time.Now()
	lastLen := 0

	for {
		if time.Since(start) > timeout {
			if len(e.serial) > 0 {
				return string(e.serial), nil
			}
			return "", ErrTimeout
		}

		if err := e.RunCycles(10000); err != nil {
			return string(e.serial), err
		}

		if len(e.serial) > lastLen {
			lastLen = len(e.serial)
			start = time.Now()
		}

		// Blargg's test ROMs finish with "Passed" or "Failed".
		out := string(e.serial)
		if strings.Contains(out, "Passed") || strings.Contains(out, "Failed") {
			return out, nil
		}
	}
}

// handleSerialOutput captures a byte whenever a transfer is requested on SC
// and completes the transfer immediately.
func (e *Emulator) handleSerialOutput() {
	sc := e.Memory.Read(addrSC)
	if sc&0x80 == 0 {
		return
	}
	e.serial = append(e.serial, e.Memory.Read(addrSB))
	e.Memory.Write(addrSC, sc&0x7F)
}

// SerialOutput returns the accumulated serial output.
func (e *Emulator) SerialOutput() string {
	return string(e.serial)
}

// Reset returns the bus and CPU to their power-on state.
func (e *Emulator) Reset() {
	e.Memory.Reset()
	e.CPU.Reset()
	e.serial = e.serial[:0]
}
