package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/ccxpauth/internal/common"
	"github.com/dmitrijs2005/ccxpauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProfile = models.Profile{
	StudentID:  "107012345",
	NameZH:     "王小明",
	NameEN:     "WANG, HSIAO-MING",
	Department: "資訊工程學系",
	Grade:      "3",
	Email:      "s107012345@m107.nthu.edu.tw",
}

func TestMintAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	m := NewJWTMinter(secret, "ccxpauth", time.Hour)

	tok, err := m.Mint(context.Background(), testProfile)
	require.NoError(t, err)

	claims, err := ParseToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, testProfile, claims.Profile())
	assert.Equal(t, "ccxpauth", claims.Issuer)
}

func TestMint_EmptySubject(t *testing.T) {
	t.Parallel()

	_, err := NewJWTMinter([]byte("k"), "", time.Hour).Mint(context.Background(), models.Profile{})
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	m := NewJWTMinter(secret, "", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	tok, err := m.Mint(context.Background(), testProfile)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewJWTMinter([]byte("right-secret"), "", time.Hour).Mint(context.Background(), testProfile)
	require.NoError(t, err)

	_, err = ParseToken(tok, []byte("wrong-secret"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "x"},
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := ParseToken("not.a.jwt", []byte("k"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}
