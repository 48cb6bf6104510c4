package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse_RoundTrip(t *testing.T) {
	token, err := Generate("secreto", "user-1", "comp-1", "bodeguero", "inventario-ledger", 5)
	require.NoError(t, err)

	claims, err := Parse("secreto", "inventario-ledger", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "comp-1", claims.CompanyID)
	assert.Equal(t, "bodeguero", claims.Role)
}

func TestParse_Rechazos(t *testing.T) {
	token, err := Generate("secreto", "user-1", "comp-1", "admin", "otro-emisor", 5)
	require.NoError(t, err)

	_, err = Parse("otro-secreto", "", token)
	assert.Error(t, err, "firma incorrecta")

	_, err = Parse("secreto", "inventario-ledger", token)
	assert.Error(t, err, "emisor distinto")

	expired, err := Generate("secreto", "user-1", "comp-1", "admin", "", -1)
	require.NoError(t, err)
	_, err = Parse("secreto", "", expired)
	assert.Error(t, err, "token expirado")

	_, err = Generate("", "u", "c", "admin", "", 5)
	assert.Error(t, err)
}
