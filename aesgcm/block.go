// Package aesgcm implements AES in Galois/Counter Mode from first principles.
//
// Provider payloads arrive encrypted with AES-GCM and the engine decrypts them
// without relying on a platform cipher, so the implementation is self
// contained: a table-driven AES block cipher, CTR keystream generation, and
// GHASH authentication over GF(2^128). Sensitive intermediate state is zeroed
// after use and tag verification is constant time.
package aesgcm

import (
	"encoding/binary"
	"fmt"
)

// BlockSize is the AES block size in bytes.
const BlockSize = 16

// sbox and invSbox are generated at init time by GF(2^8) exponentiation
// rather than embedded as literals.
var (
	sbox    [256]byte
	invSbox [256]byte
)

// Encryption and decryption round tables. teN is te0 rotated right by 8*N
// bits; likewise for tdN.
var (
	te0, te1, te2, te3 [256]uint32
	td0, td1, td2, td3 [256]uint32
)

// rcon holds the round constants for the key schedule.
var rcon = [10]byte{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80, 0x1b, 0x36}

// gfMul multiplies two elements of GF(2^8) modulo the AES polynomial x^8+x^4+x^3+x+1.
func gfMul(a, b byte) byte {
	var p byte
	for b > 0 {
		if b&1 == 1 {
			p ^= a
		}
		hi := a & 0x80
		a <<= 1
		if hi != 0 {
			a ^= 0x1b
		}
		b >>= 1
	}
	return p
}

// gfInv computes the multiplicative inverse in GF(2^8) as a^254, mapping 0 to 0.
func gfInv(a byte) byte {
	if a == 0 {
		return 0
	}
	result := byte(1)
	base := a
	for e := 254; e > 0; e >>= 1 {
		if e&1 == 1 {
			result = gfMul(result, base)
		}
		base = gfMul(base, base)
	}
	return result
}

func rotl8(x byte, n uint) byte {
	return x<<n | x>>(8-n)
}

func init() {
	// S-box: multiplicative inverse followed by the affine transform.
	for i := 0; i < 256; i++ {
		inv := gfInv(byte(i))
		s := inv ^ rotl8(inv, 1) ^ rotl8(inv, 2) ^ rotl8(inv, 3) ^ rotl8(inv, 4) ^ 0x63
		sbox[i] = s
		invSbox[s] = byte(i)
	}

	// Round tables fold SubBytes, ShiftRows and MixColumns into one lookup.
	for i := 0; i < 256; i++ {
		s := sbox[i]
		te0[i] = uint32(gfMul(s, 2))<<24 | uint32(s)<<16 | uint32(s)<<8 | uint32(gfMul(s, 3))
		te1[i] = te0[i]>>8 | te0[i]<<24
		te2[i] = te0[i]>>16 | te0[i]<<16
		te3[i] = te0[i]>>24 | te0[i]<<8

		si := invSbox[i]
		td0[i] = uint32(gfMul(si, 14))<<24 | uint32(gfMul(si, 9))<<16 |
			uint32(gfMul(si, 13))<<8 | uint32(gfMul(si, 11))
		td1[i] = td0[i]>>8 | td0[i]<<24
		td2[i] = td0[i]>>16 | td0[i]<<16
		td3[i] = td0[i]>>24 | td0[i]<<8
	}
}

// blockCipher holds the expanded key schedules for one AES key.
type blockCipher struct {
	enc []uint32
	dec []uint32
}

// newBlockCipher expands the key. Valid lengths are 16, 24 and 32 bytes for
// AES-128, AES-192 and AES-256 respectively.
func newBlockCipher(key []byte) (*blockCipher, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("aesgcm: invalid key size %d", len(key))
	}

	nk := len(key) / 4
	rounds := nk + 6
	c := &blockCipher{
		enc: make([]uint32, 4*(rounds+1)),
		dec: make([]uint32, 4*(rounds+1)),
	}

	for i := 0; i < nk; i++ {
		c.enc[i] = binary.BigEndian.Uint32(key[4*i:])
	}
	for i := nk; i < len(c.enc); i++ {
		t := c.enc[i-1]
		switch {
		case i%nk == 0:
			t = subWord(rotWord(t)) ^ uint32(rcon[i/nk-1])<<24
		case nk > 6 && i%nk == 4:
			t = subWord(t)
		}
		c.enc[i] = c.enc[i-nk] ^ t
	}

	// Decryption schedule: reversed round keys with InvMixColumns applied to
	// all but the first and last round.
	n := len(c.enc)
	for i := 0; i < n; i += 4 {
		ei := n - i - 4
		for j := 0; j < 4; j++ {
			x := c.enc[ei+j]
			if i > 0 && i+4 < n {
				x = td0[sbox[x>>24]] ^ td1[sbox[x>>16&0xff]] ^ td2[sbox[x>>8&0xff]] ^ td3[sbox[x&0xff]]
			}
			c.dec[i+j] = x
		}
	}

	return c, nil
}

func rotWord(w uint32) uint32 {
	return w<<8 | w>>24
}

func subWord(w uint32) uint32 {
	return uint32(sbox[w>>24])<<24 |
		uint32(sbox[w>>16&0xff])<<16 |
		uint32(sbox[w>>8&0xff])<<8 |
		uint32(sbox[w&0xff])
}

// rounds returns the number of AES rounds for the expanded schedule.
func (c *blockCipher) rounds() int {
	return len(c.enc)/4 - 1
}

// encrypt transforms one 16-byte block. dst and src may overlap.
func (c *blockCipher) encrypt(dst, src []byte) {
	s0 := binary.BigEndian.Uint32(src[0:4]) ^ c.enc[0]
	s1 := binary.BigEndian.Uint32(src[4:8]) ^ c.enc[1]
	s2 := binary.BigEndian.Uint32(src[8:12]) ^ c.enc[2]
	s3 := binary.BigEndian.Uint32(src[12:16]) ^ c.enc[3]

	nr := c.rounds()
	k := 4
	for r := 1; r < nr; r++ {
		t0 := c.enc[k] ^ te0[s0>>24] ^ te1[s1>>16&0xff] ^ te2[s2>>8&0xff] ^ te3[s3&0xff]
		t1 := c.enc[k+1] ^ te0[s1>>24] ^ te1[s2>>16&0xff] ^ te2[s3>>8&0xff] ^ te3[s0&0xff]
		t2 := c.enc[k+2] ^ te0[s2>>24] ^ te1[s3>>16&0xff] ^ te2[s0>>8&0xff] ^ te3[s1&0xff]
		t3 := c.enc[k+3] ^ te0[s3>>24] ^ te1[s0>>16&0xff] ^ te2[s1>>8&0xff] ^ te3[s2&0xff]
		s0, s1, s2, s3 = t0, t1, t2, t3
		k += 4
	}

	// Last round substitutes and shifts without mixing columns.
	t0 := uint32(sbox[s0>>24])<<24 | uint32(sbox[s1>>16&0xff])<<16 | uint32(sbox[s2>>8&0xff])<<8 | uint32(sbox[s3&0xff])
	t1 := uint32(sbox[s1>>24])<<24 | uint32(sbox[s2>>16&0xff])<<16 | uint32(sbox[s3>>8&0xff])<<8 | uint32(sbox[s0&0xff])
	t2 := uint32(sbox[s2>>24])<<24 | uint32(sbox[s3>>16&0xff])<<16 | uint32(sbox[s0>>8&0xff])<<8 | uint32(sbox[s1&0xff])
	t3 := uint32(sbox[s3>>24])<<24 | uint32(sbox[s0>>16&0xff])<<16 | uint32(sbox[s1>>8&0xff])<<8 | uint32(sbox[s2&0xff])

	binary.BigEndian.PutUint32(dst[0:4], t0^c.enc[k])
	binary.BigEndian.PutUint32(dst[4:8], t1^c.enc[k+1])
	binary.BigEndian.PutUint32(dst[8:12], t2^c.enc[k+2])
	binary.BigEndian.PutUint32(dst[12:16], t3^c.enc[k+3])
}

// decrypt transforms one 16-byte block. Unused by GCM itself but part of the
// cipher proper; kept exercised by the tests.
func (c *blockCipher) decrypt(dst, src []byte) {
	s0 := binary.BigEndian.Uint32(src[0:4]) ^ c.dec[0]
	s1 := binary.BigEndian.Uint32(src[4:8]) ^ c.dec[1]
	s2 := binary.BigEndian.Uint32(src[8:12]) ^ c.dec[2]
	s3 := binary.BigEndian.Uint32(src[12:16]) ^ c.dec[3]

	nr := c.rounds()
	k := 4
	for r := 1; r < nr; r++ {
		t0 := c.dec[k] ^ td0[s0>>24] ^ td1[s3>>16&0xff] ^ td2[s2>>8&0xff] ^ td3[s1&0xff]
		t1 := c.dec[k+1] ^ td0[s1>>24] ^ td1[s0>>16&0xff] ^ td2[s3>>8&0xff] ^ td3[s2&0xff]
		t2 := c.dec[k+2] ^ td0[s2>>24] ^ td1[s1>>16&0xff] ^ td2[s0>>8&0xff] ^ td3[s3&0xff]
		t3 := c.dec[k+3] ^ td0[s3>>24] ^ td1[s2>>16&0xff] ^ td2[s1>>8&0xff] ^ td3[s0&0xff]
		s0, s1, s2, s3 = t0, t1, t2, t3
		k += 4
	}

	t0 := uint32(invSbox[s0>>24])<<24 | uint32(invSbox[s3>>16&0xff])<<16 | uint32(invSbox[s2>>8&0xff])<<8 | uint32(invSbox[s1&0xff])
	t1 := uint32(invSbox[s1>>24])<<24 | uint32(invSbox[s0>>16&0xff])<<16 | uint32(invSbox[s3>>8&0xff])<<8 | uint32(invSbox[s2&0xff])
	t2 := uint32(invSbox[s2>>24])<<24 | uint32(invSbox[s1>>16&0xff])<<16 | uint32(invSbox[s0>>8&0xff])<<8 | uint32(invSbox[s3&0xff])
	t3 := uint32(invSbox[s3>>24])<<24 | uint32(invSbox[s2>>16&0xff])<<16 | uint32(invSbox[s1>>8&0xff])<<8 | uint32(invSbox[s0&0xff])

	binary.BigEndian.PutUint32(dst[0:4], t0^c.dec[k])
	binary.BigEndian.PutUint32(dst[4:8], t1^c.dec[k+1])
	binary.BigEndian.PutUint32(dst[8:12], t2^c.dec[k+2])
	binary.BigEndian.PutUint32(dst[12:16], t3^c.dec[k+3])
}

// destroy zeroes the expanded key schedules.
func (c *blockCipher) destroy() {
	for i := range c.enc {
		c.enc[i] = 0
	}
	for i := range c.dec {
		c.dec[i] = 0
	}
}
