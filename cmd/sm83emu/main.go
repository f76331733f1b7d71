// Package main provides the sm83emu CLI application.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/richardwooding/sm83emu/internal/cartridge"
	"github.com/richardwooding/sm83emu/internal/emulator"
	"github.com/richardwooding/sm83emu/internal/log"
	"github.com/richardwooding/sm83emu/internal/memory"
	"github.com/richardwooding/sm83emu/internal/testrom"
)

var (
	// ErrTestFailed indicates a test ROM failed.
	ErrTestFailed = errors.New("test failed")

	// ErrInvalidScale indicates the scale factor is out of valid range.
	ErrInvalidScale = errors.New("scale must be between 1 and 10")
)

// Globals holds the flags shared by every command.
type Globals struct {
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"warn" env:"SM83_LOG_LEVEL"`
	Trace    bool   `help:"Log every executed instruction (implies --log-level=debug)." env:"SM83_TRACE"`
}

// logger builds the logger selected by the global flags.
func (g *Globals) logger(w io.Writer) (log.Logger, error) {
	if g.Trace {
		g.LogLevel = "debug"
	}
	level, err := log.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, err
	}
	return log.New(w, level), nil
}

// emulatorOptions returns the emulator options selected by the global flags.
func (g *Globals) emulatorOptions() ([]emulator.Option, error) {
	l, err := g.logger(os.Stderr)
	if err != nil {
		return nil, err
	}
	return []emulator.Option{emulator.WithLogger(l), emulator.WithTrace(g.Trace)}, nil
}

// CLI represents the command-line interface structure.
type CLI struct {
	Globals

	Info InfoCmd `cmd:"" help:"Display cartridge information."`
	Run  RunCmd  `cmd:"" help:"Execute a ROM headlessly and print the final CPU state."`
	Test TestCmd `cmd:"" help:"Run a test ROM and report results."`
	View ViewCmd `cmd:"" help:"Run a ROM and show its tile data in a window."`
}

// InfoCmd displays cartridge header information.
type InfoCmd struct {
	ROM string `arg:"" type:"existingfile" help:"Path to ROM file (.gb, .gz, .zip, .7z)."`
}

// Run executes the info command.
func (c *InfoCmd) Run() error {
	cart, err := cartridge.Open(c.ROM)
	if err != nil {
		return fmt.Errorf("failed to load cartridge: %w", err)
	}
	printInfo(os.Stdout, cart)
	return nil
}

func printInfo(w io.Writer, cart *cartridge.Cartridge) {
	h := cart.Header
	controller, supported := memory.ControllerFor(h.Type)

	fmt.Fprintf(w, "ROM Information:\n")
	fmt.Fprintf(w, "  Title:           %s\n", h.Title)
	if h.Manufacturer != "" {
		fmt.Fprintf(w, "  Manufacturer:    %s\n", h.Manufacturer)
	}
	fmt.Fprintf(w, "  Cartridge Type:  %s (0x%02X)\n", h.Type, h.TypeCode)
	if supported {
		fmt.Fprintf(w, "  Controller:      %s\n", controller)
	} else {
		fmt.Fprintf(w, "  Controller:      unsupported, running as %s\n", controller)
	}
	if h.KnownROMSize() {
		fmt.Fprintf(w, "  ROM Size:        %d KiB (%d banks)\n", h.ROMSize/1024, h.ROMBanks())
	} else {
		fmt.Fprintf(w, "  ROM Size:        unknown (code 0x%02X)\n", h.ROMSizeCode)
	}
	fmt.Fprintf(w, "  RAM Size:        %d KiB (%d banks)\n", h.RAM.Size()/1024, h.RAM.Banks)
	fmt.Fprintf(w, "  Has Battery:     %v\n", h.Type.HasBattery())
	fmt.Fprintf(w, "  Destination:     %s\n", h.Destination)
	fmt.Fprintf(w, "  Version:         %d\n", h.Version)
	fmt.Fprintf(w, "  CGB Flag:        0x%02X\n", h.CGBFlag)
	fmt.Fprintf(w, "  SGB Flag:        0x%02X\n", h.SGBFlag)
	fmt.Fprintf(w, "  Header Checksum: 0x%02X (%s)\n", h.HeaderChecksum, validity(cart.HeaderChecksumValid()))
	fmt.Fprintf(w, "  Global Checksum: 0x%04X (%s)\n", h.GlobalChecksum, validity(cart.GlobalChecksumValid()))
	fmt.Fprintf(w, "  Fingerprint:     %s\n", cart.FingerprintString())
}

func validity(ok bool) string {
	if ok {
		return "valid"
	}
	return "invalid"
}

// RunCmd executes a ROM without a display.
type RunCmd struct {
	ROM   string `arg:"" type:"existingfile" help:"Path to ROM file."`
	Steps int    `help:"Number of instructions to execute." default:"1000000"`
}

// Run executes the run command.
func (c *RunCmd) Run(g *Globals) error {
	opts, err := g.emulatorOptions()
	if err != nil {
		return err
	}
	cart, err := cartridge.Open(c.ROM)
	if err != nil {
		return fmt.Errorf("failed to load cartridge: %w", err)
	}

	emu := emulator.NewWithCartridge(cart, opts...)
	runErr := emu.RunSteps(c.Steps)

	fmt.Printf("PC=%04X SP=%04X IME=%v cycles=%d\n", emu.CPU.PC, emu.CPU.SP, emu.CPU.IME, emu.CPU.Cycles)
	fmt.Printf("%s\n", emu.CPU.Registers)
	if out := emu.SerialOutput(); out != "" {
		fmt.Printf("\nSerial:\n%s\n", out)
	}

	if errors.Is(runErr, emulator.ErrStopped) {
		return nil
	}
	return runErr
}

// TestCmd runs a test ROM and reports results.
type TestCmd struct {
	ROM     string `arg:"" type:"existingfile" help:"Path to test ROM file."`
	Timeout int    `default:"30" help:"Timeout in seconds."`
	Verbose bool   `short:"v" help:"Show detailed output."`
}

// Run executes the test command.
func (c *TestCmd) Run(g *Globals) error {
	opts, err := g.emulatorOptions()
	if err != nil {
		return err
	}

	fmt.Printf("Running test ROM: %s\n", c.ROM)

	timeout := time.Duration(c.Timeout) * time.Second
	result := testrom.Run(c.ROM, timeout, opts...)

	fmt.Printf("Result: %s\n", result.String())

	if c.Verbose || !result.IsSuccess() {
		fmt.Printf("\nOutput:\n%s\n", result.Output)
	}

	if !result.IsSuccess() {
		return ErrTestFailed
	}

	return nil
}

// ViewCmd runs a ROM and displays video RAM as tiles.
type ViewCmd struct {
	ROM   string `arg:"" type:"existingfile" help:"Path to ROM file."`
	Scale int    `help:"Display scale factor (1-10)." default:"3"`
}

// Run executes the view command.
func (c *ViewCmd) Run(g *Globals) error {
	if c.Scale < 1 || c.Scale > 10 {
		return fmt.Errorf("%w: got %d", ErrInvalidScale, c.Scale)
	}

	opts, err := g.emulatorOptions()
	if err != nil {
		return err
	}
	cart, err := cartridge.Open(c.ROM)
	if err != nil {
		return fmt.Errorf("failed to load cartridge: %w", err)
	}

	display := NewDisplay(emulator.NewWithCartridge(cart, opts...))

	w, h := display.Layout(0, 0)
	ebiten.SetWindowTitle("sm83emu - " + cart.Header.Title)
	ebiten.SetWindowSize(w*c.Scale, h*c.Scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(display); err != nil {
		return fmt.Errorf("viewer error: %w", err)
	}
	return display.Err()
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("sm83emu"),
		kong.Description("An SM83 (Game Boy CPU) emulator core."),
		kong.UsageOnError(),
	)

	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
