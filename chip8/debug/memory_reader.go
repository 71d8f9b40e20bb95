package debug

// MemoryReader provides read-only access to emulator memory for debug tools.
type MemoryReader interface {
	// ReadMemory returns a copy of up to length bytes starting at addr.
	ReadMemory(addr uint16, length int) []byte
}

// MemorySize is the size of the CHIP-8 address space.
const MemorySize = 0x1000

// DefaultWindowSize is how many bytes the debug panel shows around PC.
const DefaultWindowSize = 32

// ExtractMemoryWindow reads size bytes centred on addr, clamped to the address
// space and aligned to an instruction boundary.
func ExtractMemoryWindow(reader MemoryReader, addr uint16, size int) *MemorySnapshot {
	if size <= 0 {
		return &MemorySnapshot{StartAddr: addr}
	}
	if size > MemorySize {
		size = MemorySize
	}

	start := int(addr) - size/2
	if start+size > MemorySize {
		start = MemorySize - size
	}
	if start < 0 {
		start = 0
	}
	start &^= 1

	return &MemorySnapshot{
		StartAddr: uint16(start),
		Bytes:     reader.ReadMemory(uint16(start), size),
	}
}
