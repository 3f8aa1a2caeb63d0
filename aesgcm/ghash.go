package aesgcm

import "encoding/binary"

// element is a GF(2^128) field element in the bit-reflected representation
// GCM uses: bit 0 of the block is the most significant coefficient.
type element struct {
	hi, lo uint64
}

func loadElement(b []byte) element {
	return element{
		hi: binary.BigEndian.Uint64(b[0:8]),
		lo: binary.BigEndian.Uint64(b[8:16]),
	}
}

func (e element) store(b []byte) {
	binary.BigEndian.PutUint64(b[0:8], e.hi)
	binary.BigEndian.PutUint64(b[8:16], e.lo)
}

// gfMul128 multiplies x by y modulo the GHASH polynomial x^128+x^7+x^2+x+1.
// Bit-serial: slow but obviously aligned with the reference definition.
func gfMul128(x, y element) element {
	var z element
	v := x
	for i := 0; i < 128; i++ {
		var bit uint64
		if i < 64 {
			bit = y.hi >> (63 - i) & 1
		} else {
			bit = y.lo >> (127 - i) & 1
		}
		if bit == 1 {
			z.hi ^= v.hi
			z.lo ^= v.lo
		}
		carry := v.lo & 1
		v.lo = v.lo>>1 | v.hi<<63
		v.hi >>= 1
		if carry == 1 {
			v.hi ^= 0xe100000000000000
		}
	}
	return z
}

// ghash holds the running GHASH state for one authentication key.
type ghash struct {
	h element
	y element
}

func newGHASH(h []byte) *ghash {
	return &ghash{h: loadElement(h)}
}

// update absorbs data, zero-padding the final partial block.
func (g *ghash) update(data []byte) {
	for len(data) >= BlockSize {
		x := loadElement(data[:BlockSize])
		g.y.hi ^= x.hi
		g.y.lo ^= x.lo
		g.y = gfMul128(g.h, g.y)
		data = data[BlockSize:]
	}
	if len(data) > 0 {
		var block [BlockSize]byte
		copy(block[:], data)
		x := loadElement(block[:])
		g.y.hi ^= x.hi
		g.y.lo ^= x.lo
		g.y = gfMul128(g.h, g.y)
	}
}

// lengths absorbs the final block carrying the AAD and ciphertext bit lengths.
func (g *ghash) lengths(aadLen, textLen int) {
	var block [BlockSize]byte
	binary.BigEndian.PutUint64(block[0:8], uint64(aadLen)*8)
	binary.BigEndian.PutUint64(block[8:16], uint64(textLen)*8)
	g.update(block[:])
}

func (g *ghash) sum(out []byte) {
	g.y.store(out)
}

// reset zeroes the hash key and state.
func (g *ghash) reset() {
	g.h = element{}
	g.y = element{}
}
