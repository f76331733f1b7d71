package main

import (
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/richardwooding/sm83emu/internal/emulator"
	"github.com/richardwooding/sm83emu/internal/video"
)

// cyclesPerFrame is one DMG frame at 4.19 MHz.
const cyclesPerFrame = 70224

// DMG palette colors (classic Game Boy green tones).
var dmgPalette = [4]color.RGBA{
	{0xE0, 0xF8, 0xD0, 0xFF}, // White (lightest)
	{0x88, 0xC0, 0x70, 0xFF}, // Light gray
	{0x34, 0x68, 0x56, 0xFF}, // Dark gray
	{0x08, 0x18, 0x20, 0xFF}, // Black (darkest)
}

type viewMode int

const (
	viewTiles viewMode = iota
	viewBackground
)

// layer is an offscreen image with its reusable RGBA buffer.
type layer struct {
	image  *ebiten.Image
	pixels []byte
	width  int
	height int
}

func newLayer(width, height int) *layer {
	return &layer{
		image:  ebiten.NewImage(width, height),
		pixels: make([]byte, width*height*4),
		width:  width,
		height: height,
	}
}

// update converts color indices to RGBA and uploads them.
func (l *layer) update(indices []uint8) {
	fillRGBA(l.pixels, indices)
	l.image.WritePixels(l.pixels)
}

func fillRGBA(dst []byte, indices []uint8) {
	for i, index := range indices {
		c := dmgPalette[index&0x03]
		offset := i * 4
		dst[offset] = c.R
		dst[offset+1] = c.G
		dst[offset+2] = c.B
		dst[offset+3] = c.A
	}
}

// Display implements the Ebiten game interface. Each tick runs one frame
// worth of cycles and redraws video RAM. Tab switches between the tile
// sheet and the background map.
type Display struct {
	emulator *emulator.Emulator
	mode     viewMode
	paused   bool
	err      error

	tiles      *layer
	background *layer
}

// NewDisplay creates a new display for the emulator.
func NewDisplay(emu *emulator.Emulator) *Display {
	return &Display{
		emulator:   emu,
		tiles:      newLayer(video.SheetWidth, video.SheetHeight),
		background: newLayer(video.MapWidth, video.MapHeight),
	}
}

// Update runs one frame of emulation.
func (d *Display) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		d.mode = (d.mode + 1) % 2
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		d.paused = !d.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	// A fault or STOP freezes the CPU; the last picture stays on screen.
	if d.paused || d.err != nil {
		return nil
	}
	if err := d.emulator.RunCycles(cyclesPerFrame); err != nil {
		d.err = err
	}
	return nil
}

// Draw draws the selected view.
func (d *Display) Draw(screen *ebiten.Image) {
	bus := d.emulator.Memory
	switch d.mode {
	case viewBackground:
		lcdc := video.LCDC(bus.Read(video.AddrLCDC))
		d.background.update(video.Background(bus, lcdc, bus.Read(video.AddrBGP)))
		screen.DrawImage(d.background.image, nil)
	default:
		d.tiles.update(video.TileSheet(bus))
		screen.DrawImage(d.tiles.image, nil)
	}
}

// Layout returns the size of the selected view.
func (d *Display) Layout(_, _ int) (int, int) {
	if d.mode == viewBackground {
		return d.background.width, d.background.height
	}
	return d.tiles.width, d.tiles.height
}

// Err returns the error that stopped emulation, ignoring a clean STOP.
func (d *Display) Err() error {
	if errors.Is(d.err, emulator.ErrStopped) {
		return nil
	}
	return d.err
}
