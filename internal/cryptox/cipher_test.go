package cryptox

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKeyHex  = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
	otherKeyHex = "f0e0d0c0b0a090807060504030201000ffeeddccbbaa99887766554433221100"
)

func newTestCipher(t *testing.T, keyHex string) *Cipher {
	t.Helper()
	k, err := ParseKey(keyHex)
	require.NoError(t, err)
	c, err := NewCipher(k)
	require.NoError(t, err)
	return c
}

func TestParseKey(t *testing.T) {
	k, err := ParseKey(testKeyHex)
	require.NoError(t, err)
	assert.Equal(t, byte(0x1f), k[31])

	_, err = ParseKey("zz")
	assert.Error(t, err)

	_, err = ParseKey("0011")
	assert.ErrorContains(t, err, "32 bytes")
}

func TestCipher_RoundTrip(t *testing.T) {
	c := newTestCipher(t, testKeyHex)

	inputs := []string{
		"",
		"a",
		"P@ssw0rd123",
		"exactly16bytes!!",
		strings.Repeat("x", 100),
		"密碼測試ü",
	}
	for _, p := range inputs {
		ct, err := c.Encrypt(p)
		require.NoError(t, err)

		got, err := c.Decrypt(ct)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
}

func TestCipher_EncryptRejectsInvalidUTF8(t *testing.T) {
	c := newTestCipher(t, testKeyHex)

	for _, p := range []string{"\xff", "pass\xc3word", string([]byte{0xed, 0xa0, 0x80})} {
		_, err := c.Encrypt(p)
		assert.ErrorIs(t, err, ErrNotUTF8, "%q", p)
	}
}

func TestCipher_EncryptUsesFreshIV(t *testing.T) {
	c := newTestCipher(t, testKeyHex)

	a, err := c.Encrypt("P@ssw0rd123")
	require.NoError(t, err)
	b, err := c.Encrypt("P@ssw0rd123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a[:IVEncodedLen], b[:IVEncodedLen])
}

func TestCipher_ConcreteLayout(t *testing.T) {
	c := newTestCipher(t, testKeyHex)

	ct, err := c.Encrypt("P@ssw0rd123")
	require.NoError(t, err)

	iv, err := base64.StdEncoding.DecodeString(ct[:24])
	require.NoError(t, err)
	assert.Len(t, iv, 16)

	// 11 bytes pad to one 16-byte block, 24 base64 characters
	assert.Len(t, ct, 24+4*((16+2)/3))

	got, err := c.Decrypt(ct)
	require.NoError(t, err)
	assert.Equal(t, "P@ssw0rd123", got)
}

func TestCipher_WrongKeyNeverYieldsPlaintext(t *testing.T) {
	enc := newTestCipher(t, testKeyHex)
	dec := newTestCipher(t, otherKeyHex)

	for i := 0; i < 50; i++ {
		ct, err := enc.Encrypt("P@ssw0rd123")
		require.NoError(t, err)

		got, err := dec.Decrypt(ct)
		if err != nil {
			assert.True(t, errors.Is(err, common.ErrDecryption))
			continue
		}
		assert.NotEqual(t, "P@ssw0rd123", got)
	}
}

func TestCipher_DecryptRejectsMalformed(t *testing.T) {
	c := newTestCipher(t, testKeyHex)
	valid, err := c.Encrypt("P@ssw0rd123")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"iv only", valid[:IVEncodedLen]},
		{"bad iv base64", "!!!!!!!!!!!!!!!!!!!!!!!!" + valid[IVEncodedLen:]},
		{"bad body base64", valid[:IVEncodedLen] + "***"},
		{"truncated body", valid[:IVEncodedLen] + base64.StdEncoding.EncodeToString([]byte("short"))},
		{"truncated string", valid[:len(valid)-4]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decrypt(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrDecryption)
		})
	}
}

func TestUnpad(t *testing.T) {
	_, ok := unpad([]byte{1, 2, 3, 0})
	assert.False(t, ok)
	_, ok = unpad([]byte{1, 2, 2, 3})
	assert.False(t, ok)
	out, ok := unpad([]byte{'a', 'b', 2, 2})
	assert.True(t, ok)
	assert.Equal(t, []byte("ab"), out)
}
