package public

// newTelemetry is what clients submit for inclusion in the chain. Metadata
// values may be any scalar. The timestamp is stamped server side when the
// reading is accepted.
type newTelemetry struct {
	NodeID   string         `json:"node_id" validate:"required"`
	Voltage  []float64      `json:"voltage_vector" validate:"required,min=1"`
	Current  []float64      `json:"current_vector" validate:"required,min=1"`
	Power    []float64      `json:"power_vector" validate:"required,min=1"`
	Metadata map[string]any `json:"metadata"`
}
