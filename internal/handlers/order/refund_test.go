package order

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendora_back_end/internal/apperr"
)

func TestPendingRefundGuard(t *testing.T) {
	t.Run("aucune demande en cours", func(t *testing.T) {
		assert.Nil(t, pendingRefundGuard(0))
	})

	// Une seconde demande sur une commande avec un remboursement pending
	// est une violation de règle métier : 400, pas 409
	t.Run("demande déjà pending", func(t *testing.T) {
		err := pendingRefundGuard(1)
		require.NotNil(t, err)
		assert.Equal(t, apperr.KindBadRequest, err.Kind)
		assert.Equal(t, http.StatusBadRequest, err.Status)
	})
}
