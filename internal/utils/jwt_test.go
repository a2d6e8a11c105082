package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vendora_back_end/internal/models"
)

const testSecret = "secret-de-test-suffisamment-long"

func testUser() models.User {
	return models.User{
		ID:    primitive.NewObjectID(),
		Email: "alice@example.com",
		Role:  models.RoleBuyer,
	}
}

func TestAccessToken_Roundtrip(t *testing.T) {
	u := testUser()

	token, jti, err := GenerateAccessToken(testSecret, time.Hour, u)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID.Hex(), claims.UserID)
	assert.Equal(t, u.Email, claims.Email)
	assert.Equal(t, models.RoleBuyer, claims.Role)
	assert.Equal(t, jti, claims.ID)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _, err := GenerateAccessToken(testSecret, time.Hour, testUser())
	require.NoError(t, err)

	_, err = ParseToken("autre-secret", token)
	assert.Error(t, err)
}

func TestParseToken_Expired(t *testing.T) {
	token, _, err := GenerateAccessToken(testSecret, -time.Minute, testUser())
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}

func TestParseToken_Garbage(t *testing.T) {
	for _, token := range []string{"", "pasuntoken", "a.b.c"} {
		_, err := ParseToken(testSecret, token)
		assert.Error(t, err, token)
	}
}

func TestRefreshToken_Roundtrip(t *testing.T) {
	userID := primitive.NewObjectID().Hex()

	token, err := GenerateRefreshToken(testSecret, time.Hour, userID)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}
