package bit

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// Nibble returns the 4 bit group at the specified index of a 16 bit word.
// Index 0 is the most significant nibble, index 3 the least significant one.
func Nibble(index uint8, value uint16) uint8 {
	shift := (3 - index) * 4
	return uint8(value>>shift) & 0xF
}

// Address returns the lowest 12 bits of a 16 bit word.
func Address(value uint16) uint16 {
	return value & 0x0FFF
}

// CheckedAdd adds two 8 bit unsigned values and detects if an overflow happened.
func CheckedAdd(a, b uint8) (result uint8, overflow bool) {
	overflow = uint16(a)+uint16(b) > 0xFF
	result = a + b
	return
}

// CheckedSub subtracts two 8 bit unsigned values and detects if a borrow happened.
func CheckedSub(a, b uint8) (result uint8, borrow bool) {
	borrow = b > a
	result = a - b
	return
}

// IsSet will check if the bit at the specified index is Set to 1 or not.
func IsSet(index, byte uint8) bool {
	return ((byte >> index) & 1) == 1
}

// BCD splits a byte into its hundreds, tens and ones decimal digits.
func BCD(value uint8) (hundreds, tens, ones uint8) {
	return value / 100, (value / 10) % 10, value % 10
}
