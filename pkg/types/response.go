package types

// ListEnvelope is the legacy list payload the frontend consumes.
type ListEnvelope struct {
	Success bool `json:"success"`
	Total   int  `json:"total"`
	Data    any  `json:"data"`
}

// MessageEnvelope carries a bare human-readable message.
type MessageEnvelope struct {
	Message string `json:"message"`
}

// ProductoEnvelope is returned by create/update with the affected record.
type ProductoEnvelope struct {
	Message  string `json:"message"`
	Producto any    `json:"producto"`
}

// ListErrorEnvelope is the list endpoint's failure payload.
type ListErrorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
