package utils

// UintToBitsLE returns the n low bits of v, least significant first
func UintToBitsLE(v uint64, n int) []bool {
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = (v>>uint(i))&1 == 1
	}
	return bits
}

// BytesToBitsLE expands bytes into bits, least significant bit of each byte first
func BytesToBitsLE(b []byte) []bool {
	bits := make([]bool, 0, 8*len(b))
	for _, x := range b {
		for i := 0; i < 8; i++ {
			bits = append(bits, (x>>uint(i))&1 == 1)
		}
	}
	return bits
}

// BitsToBytesLE packs bits into bytes; a trailing partial byte is zero-padded
func BitsToBytesLE(bits []bool) []byte {
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return out
}

// DepthFor returns the smallest depth whose capacity holds n leaves, at least 1
func DepthFor(n uint64) int {
	depth := 1
	for depth < 64 && uint64(1)<<uint(depth) < n {
		depth++
	}
	return depth
}
