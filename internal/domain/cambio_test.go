package domain_test

import (
	"testing"

	"github.com/comerciogt/pagos-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNuevoTipoCambio(t *testing.T) {
	t.Run("rejects zero rate", func(t *testing.T) {
		_, err := domain.NuevoTipoCambio(0, 0.02)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeConfiguracionInvalida))
	})

	t.Run("rejects negative rate", func(t *testing.T) {
		_, err := domain.NuevoTipoCambio(-7.80, 0.02)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeConfiguracionInvalida))
	})

	t.Run("rejects negative tolerance", func(t *testing.T) {
		_, err := domain.NuevoTipoCambio(7.80, -0.01)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeConfiguracionInvalida))
	})
}

func TestTipoCambio_Conciliar(t *testing.T) {
	cambio, err := domain.NuevoTipoCambio(7.80, domain.ToleranciaPredeterminada)
	require.NoError(t, err)

	t.Run("Q100 at 7.80 expects 12.82 USD", func(t *testing.T) {
		esperado := cambio.MontoEsperado(100.00)
		assert.Equal(t, 12.82, esperado)
	})

	t.Run("matching amount returns canonical value", func(t *testing.T) {
		canonico, err := cambio.Conciliar(100.00, 12.82)

		require.NoError(t, err)
		assert.Equal(t, 12.82, canonico)
	})

	t.Run("amount inside tolerance matches", func(t *testing.T) {
		canonico, err := cambio.Conciliar(100.00, 12.83)

		require.NoError(t, err)
		// canonical server-computed amount wins over the submitted one
		assert.Equal(t, 12.82, canonico)
	})

	t.Run("12.90 against 12.82 mismatches", func(t *testing.T) {
		_, err := cambio.Conciliar(100.00, 12.90)

		require.Error(t, err)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeMontoInvalido))
	})

	t.Run("mismatch carries expected and received amounts", func(t *testing.T) {
		_, err := cambio.Conciliar(100.00, 12.90)

		var domErr *domain.DomainError
		require.ErrorAs(t, err, &domErr)
		assert.Equal(t, "12.82", domErr.Detalles["esperado"])
		assert.Equal(t, "12.90", domErr.Detalles["recibido"])
	})

	t.Run("round trip identity within tolerance", func(t *testing.T) {
		for _, total := range []float64{1, 19.99, 100, 250.35, 780, 1234.56, 9999.99} {
			_, err := cambio.Conciliar(total, total/7.80)
			assert.NoError(t, err, "total %v should round-trip", total)
		}
	})

	t.Run("rate 1 compares base currency directly", func(t *testing.T) {
		sinCambio, err := domain.NuevoTipoCambio(1, domain.ToleranciaPredeterminada)
		require.NoError(t, err)

		canonico, err := sinCambio.Conciliar(250.00, 250.00)
		require.NoError(t, err)
		assert.Equal(t, 250.00, canonico)

		_, err = sinCambio.Conciliar(250.00, 249.00)
		assert.True(t, domain.IsErrorCode(err, domain.ErrCodeMontoInvalido))
	})
}
