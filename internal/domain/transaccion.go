package domain

// TransaccionExterna links a Pago to the provider's own transaction record.
// Instances are immutable: reconciliation replaces the whole value, it
// never mutates one in place.
type TransaccionExterna struct {
	TransaccionID string
	Proveedor     string
	Estado        string
	Metadatos     map[string]string
}

func NuevaTransaccionExterna(transaccionID, proveedor, estado string, metadatos map[string]string) (TransaccionExterna, error) {
	if transaccionID == "" {
		return TransaccionExterna{}, NewCampoRequeridoError("transaccionId")
	}
	if proveedor == "" {
		return TransaccionExterna{}, NewCampoRequeridoError("proveedor")
	}
	return TransaccionExterna{
		TransaccionID: transaccionID,
		Proveedor:     proveedor,
		Estado:        estado,
		Metadatos:     metadatos,
	}, nil
}
