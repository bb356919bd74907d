package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// toleranciaFirma bounds how old a signed timestamp may be before the
// delivery is treated as a replay.
const toleranciaFirma = 5 * time.Minute

// ValidadorFirma checks Stripe-Signature headers. The header carries
// t=<unix>,v1=<hex hmac> and the signed string is "<t>.<payload>".
type ValidadorFirma struct {
	secret string
	ahora  func() time.Time
}

func NewValidadorFirma(secret string) *ValidadorFirma {
	return &ValidadorFirma{secret: secret, ahora: time.Now}
}

func (v *ValidadorFirma) Validar(payload []byte, header string) bool {
	if header == "" || v.secret == "" {
		return false
	}

	ts, firmas := parsearHeader(header)
	if ts == "" || len(firmas) == 0 {
		return false
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}
	edad := v.ahora().Sub(time.Unix(unix, 0))
	if edad > toleranciaFirma || edad < -toleranciaFirma {
		return false
	}

	esperada := calcularHMAC(fmt.Sprintf("%s.%s", ts, payload), v.secret)
	for _, firma := range firmas {
		if hmac.Equal([]byte(firma), []byte(esperada)) {
			return true
		}
	}
	return false
}

// parsearHeader splits "t=1700000000,v1=abc,v1=def" into the timestamp
// and every v1 candidate. Stripe sends multiple v1 entries during secret
// rotation.
func parsearHeader(header string) (ts string, firmas []string) {
	for _, parte := range strings.Split(header, ",") {
		clave, valor, ok := strings.Cut(strings.TrimSpace(parte), "=")
		if !ok {
			continue
		}
		switch clave {
		case "t":
			ts = valor
		case "v1":
			firmas = append(firmas, valor)
		}
	}
	return ts, firmas
}

func calcularHMAC(manifiesto, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(manifiesto))
	return hex.EncodeToString(h.Sum(nil))
}
