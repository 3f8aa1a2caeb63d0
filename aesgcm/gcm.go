package aesgcm

import (
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// TagSize is the length of the authentication tag appended to ciphertexts.
	TagSize = 16

	// MinNonceSize is the shortest nonce accepted. Twelve bytes is the
	// standard size and takes the fast initial-counter path; longer nonces
	// are hashed down.
	MinNonceSize = 12
)

// ErrAuthentication reports a ciphertext whose tag failed verification.
// Callers receive no plaintext alongside it, partial or otherwise.
var ErrAuthentication = errors.New("aesgcm: message authentication failed")

// Seal encrypts plaintext and authenticates it together with additionalData.
// The result is ciphertext with the 16-byte tag appended.
func Seal(key, nonce, plaintext, additionalData []byte) ([]byte, error) {
	c, h, j0, err := setup(key, nonce)
	if err != nil {
		return nil, err
	}
	defer c.destroy()
	defer h.reset()

	out := make([]byte, len(plaintext)+TagSize)
	ctr := incremented(j0)
	ctrCrypt(c, &ctr, out[:len(plaintext)], plaintext)

	h.update(additionalData)
	h.update(out[:len(plaintext)])
	h.lengths(len(additionalData), len(plaintext))

	var tag [TagSize]byte
	h.sum(tag[:])
	var ekj0 [BlockSize]byte
	c.encrypt(ekj0[:], j0[:])
	for i := range tag {
		tag[i] ^= ekj0[i]
	}
	copy(out[len(plaintext):], tag[:])

	zero(ekj0[:])
	zero(ctr[:])
	return out, nil
}

// Open verifies and decrypts a ciphertext produced by Seal. On any tag
// mismatch it returns ErrAuthentication and nil plaintext.
func Open(key, nonce, ciphertext, additionalData []byte) ([]byte, error) {
	if len(ciphertext) < TagSize {
		return nil, ErrAuthentication
	}

	c, h, j0, err := setup(key, nonce)
	if err != nil {
		return nil, err
	}
	defer c.destroy()
	defer h.reset()

	text := ciphertext[:len(ciphertext)-TagSize]
	tag := ciphertext[len(ciphertext)-TagSize:]

	h.update(additionalData)
	h.update(text)
	h.lengths(len(additionalData), len(text))

	var expected [TagSize]byte
	h.sum(expected[:])
	var ekj0 [BlockSize]byte
	c.encrypt(ekj0[:], j0[:])
	for i := range expected {
		expected[i] ^= ekj0[i]
	}
	zero(ekj0[:])

	if subtle.ConstantTimeCompare(expected[:], tag) != 1 {
		zero(expected[:])
		return nil, ErrAuthentication
	}
	zero(expected[:])

	out := make([]byte, len(text))
	ctr := incremented(j0)
	ctrCrypt(c, &ctr, out, text)
	zero(ctr[:])

	return out, nil
}

// setup validates the inputs and derives the block cipher, the GHASH key and
// the pre-counter block J0.
func setup(key, nonce []byte) (*blockCipher, *ghash, [BlockSize]byte, error) {
	var j0 [BlockSize]byte

	c, err := newBlockCipher(key)
	if err != nil {
		return nil, nil, j0, err
	}
	if len(nonce) < MinNonceSize {
		c.destroy()
		return nil, nil, j0, fmt.Errorf("aesgcm: nonce too short: %d bytes", len(nonce))
	}

	var hk [BlockSize]byte
	c.encrypt(hk[:], hk[:])
	h := newGHASH(hk[:])
	zero(hk[:])

	if len(nonce) == MinNonceSize {
		copy(j0[:], nonce)
		j0[15] = 1
	} else {
		g := &ghash{h: h.h}
		g.update(nonce)
		g.lengths(0, len(nonce))
		g.sum(j0[:])
		g.reset()
	}

	return c, h, j0, nil
}

// ctrCrypt XORs src with the AES-CTR keystream starting at counter, writing to
// dst. The 32-bit counter in the last four bytes wraps big-endian.
func ctrCrypt(c *blockCipher, counter *[BlockSize]byte, dst, src []byte) {
	var keystream [BlockSize]byte
	for len(src) > 0 {
		c.encrypt(keystream[:], counter[:])
		inc32(counter)

		n := len(src)
		if n > BlockSize {
			n = BlockSize
		}
		for i := 0; i < n; i++ {
			dst[i] = src[i] ^ keystream[i]
		}
		dst = dst[n:]
		src = src[n:]
	}
	zero(keystream[:])
}

// inc32 increments the low 32 bits of the counter block.
func inc32(counter *[BlockSize]byte) {
	n := binary.BigEndian.Uint32(counter[12:16])
	binary.BigEndian.PutUint32(counter[12:16], n+1)
}

func incremented(block [BlockSize]byte) [BlockSize]byte {
	inc32(&block)
	return block
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
