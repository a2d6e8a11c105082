package apperr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_StatusMapping(t *testing.T) {
	tests := []struct {
		err    *Error
		kind   Kind
		status int
	}{
		{BadRequest("x"), KindBadRequest, http.StatusBadRequest},
		{Unauthorized("x"), KindUnauthorized, http.StatusUnauthorized},
		{Forbidden("x"), KindForbidden, http.StatusForbidden},
		{NotFound("x"), KindNotFound, http.StatusNotFound},
		{Conflict("x"), KindConflict, http.StatusConflict},
		{Internal(errors.New("boom")), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.status, tt.err.Status)
		})
	}
}

func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("mongo: connexion perdue")
	err := Internal(cause)

	assert.NotContains(t, err.Error(), "mongo")
	assert.ErrorIs(t, err, cause)
}

func TestFrom(t *testing.T) {
	t.Run("erreur métier inchangée", func(t *testing.T) {
		original := NotFound("Produit introuvable")
		assert.Same(t, original, From(original))
	})

	t.Run("erreur métier enveloppée", func(t *testing.T) {
		wrapped := fmtWrap(Forbidden("Accès refusé"))
		got := From(wrapped)
		require.NotNil(t, got)
		assert.Equal(t, KindForbidden, got.Kind)
	})

	t.Run("erreur inconnue devient interne", func(t *testing.T) {
		got := From(errors.New("boom"))
		assert.Equal(t, KindInternal, got.Kind)
		assert.Equal(t, http.StatusInternalServerError, got.Status)
	})
}

func fmtWrap(err error) error {
	return wrapped{err}
}

type wrapped struct{ err error }

func (w wrapped) Error() string { return "wrapped: " + w.err.Error() }
func (w wrapped) Unwrap() error { return w.err }
