package video

// Tile geometry.
const (
	TileSize  = 8  // pixels per side
	TileBytes = 16 // two bytes per row
)

// TileRow holds the color indices (0-3) of one row, left to right.
type TileRow [TileSize]uint8

// Tile holds eight rows of color indices.
type Tile [TileSize]TileRow

// RangeReader is the bulk read the memory bus offers to the video layer.
type RangeReader interface {
	ReadRange(start, end uint16) []byte
}

// DecodeTileRow decodes one 2bpp row. lo holds bit 0 of every pixel and hi
// holds bit 1; the leftmost pixel is bit 7.
func DecodeTileRow(lo, hi uint8) TileRow {
	var row TileRow
	for x := range TileSize {
		bit := uint(7 - x) //nolint:gosec // G115: x < 8
		row[x] = (hi>>bit&1)<<1 | lo>>bit&1
	}
	return row
}

// DecodeTile decodes 16 bytes of tile data. Short input decodes the
// missing rows as color 0.
func DecodeTile(data []byte) Tile {
	var t Tile
	for y := range TileSize {
		if 2*y+1 >= len(data) {
			break
		}
		t[y] = DecodeTileRow(data[2*y], data[2*y+1])
	}
	return t
}

// ReadTile fetches and decodes the tile at addr.
func ReadTile(r RangeReader, addr uint16) Tile {
	return DecodeTile(r.ReadRange(addr, addr+TileBytes))
}

// ApplyPalette maps a color index through a DMG palette register such as BGP.
func ApplyPalette(index, palette uint8) uint8 {
	return (palette >> (index * 2)) & 0x03
}
