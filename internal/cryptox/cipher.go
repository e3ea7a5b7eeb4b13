// Package cryptox implements the credential cipher used to hand devices an
// opaque, re-usable form of their CCXP password.
//
// The format is base64(IV) || base64(AES-256-CBC(PKCS#7(plaintext))). The IV
// segment is always 24 characters. CBC carries no authentication tag: a
// ciphertext of valid length produced under another key, or tampered with,
// may decrypt to garbage instead of failing. Decrypt rejects what it can
// detect (bad base64, bad length, bad padding, non UTF-8 output) with
// common.ErrDecryption.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
)

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

// IVEncodedLen is the length of the base64 IV prefix.
var IVEncodedLen = base64.StdEncoding.EncodedLen(aes.BlockSize)

// Key is an immutable AES-256 key.
type Key [KeySize]byte

// ParseKey decodes a 64-character hex string into a Key.
func ParseKey(s string) (Key, error) {
	var k Key
	raw, err := hex.DecodeString(s)
	if err != nil {
		return k, fmt.Errorf("cipher key is not hex: %w", err)
	}
	if len(raw) != KeySize {
		return k, fmt.Errorf("cipher key must be %d bytes, got %d", KeySize, len(raw))
	}
	copy(k[:], raw)
	common.WipeByteArray(raw)
	return k, nil
}

// Cipher encrypts and decrypts credential strings. It holds no mutable state
// and is safe for concurrent use.
type Cipher struct {
	block cipher.Block
	rand  io.Reader
}

// NewCipher builds a Cipher for key.
func NewCipher(key Key) (*Cipher, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return &Cipher{block: block, rand: rand.Reader}, nil
}

// ErrNotUTF8 is returned by Encrypt for plaintext that is not valid UTF-8.
var ErrNotUTF8 = errors.New("plaintext is not valid utf-8")

// Encrypt returns base64(IV) || base64(ciphertext) for plaintext under a
// fresh random IV, so equal inputs give different outputs. plaintext must be
// valid UTF-8, which keeps Decrypt(Encrypt(p)) == p for every accepted p.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if !utf8.ValidString(plaintext) {
		return "", ErrNotUTF8
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(c.rand, iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	buf := pad([]byte(plaintext))
	defer common.WipeByteArray(buf)

	out := make([]byte, len(buf))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(out, buf)

	return base64.StdEncoding.EncodeToString(iv) + base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt reverses Encrypt. Detectable corruption yields common.ErrDecryption,
// and so does a plaintext that is not UTF-8, which Encrypt never produces.
func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	if len(ciphertext) <= IVEncodedLen {
		return "", fmt.Errorf("%w: ciphertext too short", common.ErrDecryption)
	}

	iv, err := base64.StdEncoding.DecodeString(ciphertext[:IVEncodedLen])
	if err != nil || len(iv) != aes.BlockSize {
		return "", fmt.Errorf("%w: malformed iv", common.ErrDecryption)
	}
	body, err := base64.StdEncoding.DecodeString(ciphertext[IVEncodedLen:])
	if err != nil {
		return "", fmt.Errorf("%w: malformed body", common.ErrDecryption)
	}
	if len(body) == 0 || len(body)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: body is not a whole number of blocks", common.ErrDecryption)
	}

	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plain, body)
	defer common.WipeByteArray(plain)

	unpadded, ok := unpad(plain)
	if !ok {
		return "", fmt.Errorf("%w: bad padding", common.ErrDecryption)
	}
	if !utf8.Valid(unpadded) {
		return "", fmt.Errorf("%w: plaintext is not utf-8", common.ErrDecryption)
	}
	return string(unpadded), nil
}

func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	out := make([]byte, len(b), len(b)+n)
	copy(out, b)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, bool) {
	if len(b) == 0 {
		return nil, false
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, false
	}
	for _, v := range b[len(b)-n:] {
		if int(v) != n {
			return nil, false
		}
	}
	return b[:len(b)-n], true
}
