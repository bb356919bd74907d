package domain

import (
	"fmt"
	"math"
)

// ToleranciaPredeterminada absorbs rounding artifacts from currency
// conversion. It is deliberate slack, not a derived value.
const ToleranciaPredeterminada = 0.02

// TipoCambio converts the order total from the store's base currency into
// a provider currency and decides whether a submitted amount matches it.
type TipoCambio struct {
	Tasa       float64
	Tolerancia float64
}

func NuevoTipoCambio(tasa, tolerancia float64) (TipoCambio, error) {
	if tasa <= 0 {
		return TipoCambio{}, NewConfiguracionInvalidaError(
			fmt.Sprintf("tasa de cambio debe ser positiva, recibida %v", tasa))
	}
	if tolerancia < 0 {
		return TipoCambio{}, NewConfiguracionInvalidaError(
			fmt.Sprintf("tolerancia no puede ser negativa, recibida %v", tolerancia))
	}
	return TipoCambio{Tasa: tasa, Tolerancia: tolerancia}, nil
}

// MontoEsperado converts the base-currency order total, rounded to cents.
func (tc TipoCambio) MontoEsperado(totalOrden float64) float64 {
	return math.Round(totalOrden/tc.Tasa*100) / 100
}

// Conciliar checks a client-submitted amount against the order total and
// returns the canonical server-computed amount. The submitted float is
// never trusted beyond the tolerance check: callers must persist the
// returned value, not the input.
func (tc TipoCambio) Conciliar(totalOrden, montoRecibido float64) (float64, error) {
	esperado := tc.MontoEsperado(totalOrden)
	if math.Abs(montoRecibido-esperado) > tc.Tolerancia {
		return 0, NewMontoInvalidoError(esperado, montoRecibido)
	}
	return esperado, nil
}
