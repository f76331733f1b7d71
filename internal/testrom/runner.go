// Package testrom runs test ROMs headlessly and classifies their serial output.
package testrom

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/richardwooding/sm83emu/internal/cartridge"
	"github.com/richardwooding/sm83emu/internal/emulator"
)

// Result represents the result of running a test ROM.
type Result struct {
	Output  string
	Passed  bool
	Failed  bool
	Timeout bool
	Error   error
}

// Run loads the ROM at romPath (plain or archived) and runs it until it
// reports a result or stays silent for timeout.
func Run(romPath string, timeout time.Duration, opts ...emulator.Option) *Result {
	rom, err := cartridge.Load(romPath)
	if err != nil {
		return &Result{Error: fmt.Errorf("failed to read ROM: %w", err)}
	}
	return RunImage(rom, timeout, opts...)
}

// RunImage runs an in-memory ROM image.
func RunImage(rom []byte, timeout time.Duration, opts ...emulator.Option) *Result {
	result := &Result{}

	emu, err := emulator.New(rom, opts...)
	if err != nil {
		result.Error = fmt.Errorf("failed to create emulator: %w", err)
		return result
	}

	output, err := emu.RunUntilOutput(timeout)
	result.Output = output

	if err != nil {
		if errors.Is(err, emulator.ErrTimeout) {
			result.Timeout = true
		}
		result.Error = err
		return result
	}

	// "Failed" wins if a ROM prints both.
	result.Failed = strings.Contains(output, "Failed")
	result.Passed = strings.Contains(output, "Passed") && !result.Failed

	return result
}

// String returns a human-readable representation of the result.
func (r *Result) String() string {
	switch {
	case r.Timeout:
		return "TIMEOUT"
	case r.Error != nil:
		return fmt.Sprintf("ERROR: %v", r.Error)
	case r.Passed:
		return "PASSED"
	case r.Failed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the test passed.
func (r *Result) IsSuccess() bool {
	return r.Passed && !r.Failed && r.Error == nil
}
