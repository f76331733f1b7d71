// Package video decodes the tile data the game leaves in video RAM.
// It reads memory only through a bulk range reader and keeps no state.
package video

// Register addresses read by the video layer.
const (
	AddrLCDC = 0xFF40
	AddrBGP  = 0xFF47
)

// LCDC is the LCD control register (0xFF40).
type LCDC uint8

// LCDC bits.
const (
	LCDCBGWindowEnable LCDC = 1 << 0
	LCDCOBJEnable      LCDC = 1 << 1
	LCDCOBJSize        LCDC = 1 << 2
	LCDCBGTileMap      LCDC = 1 << 3
	LCDCBGTileData     LCDC = 1 << 4
	LCDCWindowEnable   LCDC = 1 << 5
	LCDCWindowTileMap  LCDC = 1 << 6
	LCDCLCDEnable      LCDC = 1 << 7
)

// Area is a half-open address range [Start, End).
type Area struct {
	Start uint16
	End   uint16
}

// Has reports whether flag is set.
func (l LCDC) Has(flag LCDC) bool {
	return l&flag != 0
}

// LCDEnabled reports whether the LCD and PPU are on.
func (l LCDC) LCDEnabled() bool { return l.Has(LCDCLCDEnable) }

// BGWindowEnabled reports whether the background and window layers are drawn.
func (l LCDC) BGWindowEnabled() bool { return l.Has(LCDCBGWindowEnable) }

// WindowEnabled reports whether the window layer is drawn.
func (l LCDC) WindowEnabled() bool { return l.Has(LCDCWindowEnable) }

// SpritesEnabled reports whether objects are drawn.
func (l LCDC) SpritesEnabled() bool { return l.Has(LCDCOBJEnable) }

// SpriteSize returns the object width and height in pixels.
func (l LCDC) SpriteSize() (width, height int) {
	if l.Has(LCDCOBJSize) {
		return 8, 16
	}
	return 8, 8
}

// BGTileMap returns the 32x32 tile map used by the background.
func (l LCDC) BGTileMap() Area {
	return tileMap(l.Has(LCDCBGTileMap))
}

// WindowTileMap returns the 32x32 tile map used by the window.
func (l LCDC) WindowTileMap() Area {
	return tileMap(l.Has(LCDCWindowTileMap))
}

func tileMap(high bool) Area {
	if high {
		return Area{0x9C00, 0xA000}
	}
	return Area{0x9800, 0x9C00}
}

// TileData returns the tile data block used by the background and window.
// With LCDC.4 set tiles are indexed unsigned from 0x8000; otherwise the
// index is signed relative to 0x9000.
func (l LCDC) TileData() Area {
	if l.Has(LCDCBGTileData) {
		return Area{0x8000, 0x9000}
	}
	return Area{0x8800, 0x9800}
}

// TileAddress returns the address of tile index in the background tile data.
func (l LCDC) TileAddress(index uint8) uint16 {
	if l.Has(LCDCBGTileData) {
		return 0x8000 + uint16(index)*TileBytes
	}
	return uint16(0x9000 + int(int8(index))*TileBytes) //nolint:gosec // G115: signed tile index is intended
}
