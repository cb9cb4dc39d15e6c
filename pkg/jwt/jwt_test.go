package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockledger-api/pkg/jwt"
)

func TestGenerateParse_ConservaUbicaciones(t *testing.T) {
	token, err := jwt.Generate("s3cret", "u-1", "storekeeper", []string{"loc-a", "loc-b"}, "stockledger", 5)
	require.NoError(t, err)

	claims, err := jwt.Parse("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, "stockledger", claims.Issuer)
	assert.Equal(t, "storekeeper", claims.Role)
	assert.Equal(t, []string{"loc-a", "loc-b"}, claims.LocationIDs)
}

func TestParse_Rechazos(t *testing.T) {
	valid, err := jwt.Generate("s3cret", "u-1", "admin", nil, "stockledger", 5)
	require.NoError(t, err)
	expired, err := jwt.Generate("s3cret", "u-1", "admin", nil, "stockledger", -1)
	require.NoError(t, err)
	noUser, err := jwt.Generate("s3cret", "", "admin", nil, "stockledger", 5)
	require.NoError(t, err)

	_, err = jwt.Parse("otro", valid)
	assert.ErrorIs(t, err, gojwt.ErrTokenSignatureInvalid)

	_, err = jwt.Parse("s3cret", expired)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)

	_, err = jwt.Parse("s3cret", noUser)
	assert.ErrorIs(t, err, jwt.ErrNoUser)

	_, err = jwt.Parse("", valid)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}

func TestParse_RechazaOtroAlgoritmo(t *testing.T) {
	claims := &jwt.Claims{UserID: "u-1", Role: "admin"}
	claims.ExpiresAt = gojwt.NewNumericDate(time.Now().Add(time.Hour))
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, claims).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = jwt.Parse("s3cret", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "u-1", "admin", nil, "stockledger", 5)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}
