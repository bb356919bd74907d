package recurrente

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const toleranciaFirma = 5 * time.Minute

// ValidadorFirma checks svix-style webhook signatures: the secret is
// "whsec_" plus a base64 key, the signed content is
// "<svix-id>.<svix-timestamp>.<payload>" and the Svix-Signature header
// holds space-separated "v1,<base64 hmac>" candidates.
type ValidadorFirma struct {
	clave []byte
	ahora func() time.Time
}

func NewValidadorFirma(secret string) (*ValidadorFirma, error) {
	clave, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, "whsec_"))
	if err != nil {
		return nil, fmt.Errorf("error decoding webhook secret: %w", err)
	}
	return &ValidadorFirma{clave: clave, ahora: time.Now}, nil
}

func (v *ValidadorFirma) Validar(payload []byte, headers http.Header) bool {
	id := headers.Get("Svix-Id")
	ts := headers.Get("Svix-Timestamp")
	firma := headers.Get("Svix-Signature")
	if id == "" || ts == "" || firma == "" {
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

	mac := hmac.New(sha256.New, v.clave)
	fmt.Fprintf(mac, "%s.%s.%s", id, ts, payload)
	esperada := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	for _, candidata := range strings.Fields(firma) {
		_, valor, ok := strings.Cut(candidata, ",")
		if !ok {
			continue
		}
		if hmac.Equal([]byte(valor), []byte(esperada)) {
			return true
		}
	}
	return false
}
