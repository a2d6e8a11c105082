package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(handler gin.HandlerFunc, user *AuthUser) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if user != nil {
		c.Set(authUserKey, *user)
	}
	handler(c)
	return w
}

func TestCurrentUser(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, ok := CurrentUser(c)
	assert.False(t, ok)

	c.Set(authUserKey, AuthUser{ID: "42", Email: "a@b.fr", Role: "buyer"})
	user, ok := CurrentUser(c)
	assert.True(t, ok)
	assert.Equal(t, "42", user.ID)
	assert.Equal(t, "buyer", user.Role)
}

func TestRequireRoles(t *testing.T) {
	handler := RequireRoles("seller", "admin")

	t.Run("non authentifié", func(t *testing.T) {
		w := performRequest(handler, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rôle refusé", func(t *testing.T) {
		w := performRequest(handler, &AuthUser{ID: "1", Role: "buyer"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("rôle autorisé", func(t *testing.T) {
		w := performRequest(handler, &AuthUser{ID: "1", Role: "seller"})
		assert.NotEqual(t, http.StatusForbidden, w.Code)
		assert.NotEqual(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("insensible à la casse de l'allow-list", func(t *testing.T) {
		handler := RequireRoles("Admin")
		w := performRequest(handler, &AuthUser{ID: "1", Role: "admin"})
		assert.NotEqual(t, http.StatusForbidden, w.Code)
	})
}
