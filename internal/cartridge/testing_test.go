package cartridge

// newTestROM builds a ROM image of the given size with a valid header checksum.
func newTestROM(size int, cartType, romSize, ramSize byte) []byte {
	rom := make([]byte, size)
	rom[0x0147] = cartType
	rom[0x0148] = romSize
	rom[0x0149] = ramSize
	fixChecksum(rom)
	return rom
}

// fixChecksum recalculates the header checksum at 0x014D.
// Call this after modifying any header fields.
func fixChecksum(rom []byte) {
	checksum := byte(0)
	for addr := 0x0134; addr <= 0x014C; addr++ {
		checksum = checksum - rom[addr] - 1
	}
	rom[0x014D] = checksum
}
