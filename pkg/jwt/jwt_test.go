package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-series/pkg/jwt"
)

const secret = "secreto-de-pruebas-de-bodega-32-bytes"

func TestParse_SecretVacio(t *testing.T) {
	_, _, _, err := jwt.Parse("", "x")
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)

	_, err = jwt.Generate("", "u", "c", "admin", "api", 5)
	assert.ErrorIs(t, err, jwt.ErrEmptySecret)
}

func TestParse_TokenMalformado(t *testing.T) {
	_, _, _, err := jwt.Parse(secret, "no-es-un-token")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestParse_RechazaAlgoritmoDistinto(t *testing.T) {
	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS512, jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u1",
		Role:             "admin",
	})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)

	_, _, _, err = jwt.Parse(secret, signed)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestParse_UsaSubjectSiFaltaUserID(t *testing.T) {
	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "operador-7",
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "vendedor",
	})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)

	userID, _, role, err := jwt.Parse(secret, signed)
	require.NoError(t, err)
	assert.Equal(t, "operador-7", userID)
	assert.Equal(t, "vendedor", role)
}

func TestParse_SinUsuario(t *testing.T) {
	tok := gojwt.NewWithClaims(gojwt.SigningMethodHS256, jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)

	_, _, _, err = jwt.Parse(secret, signed)
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}
