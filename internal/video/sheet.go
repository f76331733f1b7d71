package video

// Tile sheet layout: every tile in 0x8000-0x97FF, 16 tiles per row.
const (
	sheetColumns = 16
	sheetTiles   = 384

	SheetWidth  = sheetColumns * TileSize
	SheetHeight = sheetTiles / sheetColumns * TileSize
)

// Background map size: 32x32 tiles.
const (
	MapWidth  = 32 * TileSize
	MapHeight = 32 * TileSize
)

// TileSheet renders all of tile data as a SheetWidth x SheetHeight image of
// raw color indices.
func TileSheet(r RangeReader) []uint8 {
	data := r.ReadRange(0x8000, 0x8000+sheetTiles*TileBytes)
	pixels := make([]uint8, SheetWidth*SheetHeight)

	for i := range sheetTiles {
		start := min(i*TileBytes, len(data))
		tile := DecodeTile(data[start:min(start+TileBytes, len(data))])
		blit(pixels, SheetWidth, (i%sheetColumns)*TileSize, (i/sheetColumns)*TileSize, tile, 0xE4)
	}
	return pixels
}

// Background renders the full 256x256 background map selected by lcdc,
// with colors mapped through the palette bgp.
func Background(r RangeReader, lcdc LCDC, bgp uint8) []uint8 {
	area := lcdc.BGTileMap()
	indices := r.ReadRange(area.Start, area.End)
	pixels := make([]uint8, MapWidth*MapHeight)

	cache := make(map[uint8]Tile)
	for i, index := range indices {
		tile, ok := cache[index]
		if !ok {
			tile = ReadTile(r, lcdc.TileAddress(index))
			cache[index] = tile
		}
		blit(pixels, MapWidth, (i%32)*TileSize, (i/32)*TileSize, tile, bgp)
	}
	return pixels
}

func blit(dst []uint8, stride, x0, y0 int, t Tile, palette uint8) {
	for y, row := range t {
		offset := (y0+y)*stride + x0
		for x, index := range row {
			dst[offset+x] = ApplyPalette(index, palette)
		}
	}
}
