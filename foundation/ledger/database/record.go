package database

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Record represents one telemetry reading captured by a grid node: the three
// phase vectors, the reporting node and any extra metadata. Metadata values
// may be any scalar (string, number or boolean), e.g. a numeric sampling
// rate. Once a record is accepted into the pending queue it is never modified
// again; the block that mines it owns it from then on.
type Record struct {
	NodeID    string         `json:"node_id"`
	Voltage   []float64      `json:"voltage_vector"`
	Current   []float64      `json:"current_vector"`
	Power     []float64      `json:"power_vector"`
	TimeStamp uint64         `json:"timestamp"` // Unix time the record was accepted.
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Validate checks the record carries everything a block needs. The returned
// error names every missing field.
func (r Record) Validate() error {
	var missing []string

	if len(r.Voltage) == 0 {
		missing = append(missing, "voltage_vector")
	}
	if len(r.Current) == 0 {
		missing = append(missing, "current_vector")
	}
	if len(r.Power) == 0 {
		missing = append(missing, "power_vector")
	}
	if r.NodeID == "" {
		missing = append(missing, "node_id")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	// Metadata rides into the block digest, so only values with a fixed
	// canonical text form are allowed.
	for k, v := range r.Metadata {
		switch v.(type) {
		case string, float64, bool:
		default:
			return fmt.Errorf("metadata value for %q must be a string, number or boolean", k)
		}
	}

	return nil
}

// Canonical returns the serialization of the record that is hashed into a
// block. The format is part of the wire contract and can never change without
// breaking cross-node validation: fields appear in the fixed order timestamp,
// voltage, current, power, node_id, metadata; floats are formatted with
// strconv 'g'/-1/64; metadata keys are sorted lexicographically.
func (r Record) Canonical() string {
	var sb strings.Builder

	sb.WriteString("{timestamp:")
	sb.WriteString(strconv.FormatUint(r.TimeStamp, 10))
	sb.WriteString(",voltage:")
	writeVector(&sb, r.Voltage)
	sb.WriteString(",current:")
	writeVector(&sb, r.Current)
	sb.WriteString(",power:")
	writeVector(&sb, r.Power)
	sb.WriteString(",node_id:")
	sb.WriteString(r.NodeID)
	sb.WriteString(",metadata:{")

	keys := make([]string, 0, len(r.Metadata))
	for k := range r.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte(':')
		sb.WriteString(metadataText(r.Metadata[k]))
	}
	sb.WriteString("}}")

	return sb.String()
}

// metadataText returns the canonical text form of a scalar metadata value.
// JSON decoding delivers numbers as float64, so every node derives the same
// text for the same wire value.
func metadataText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// writeVector appends the canonical text form of a numeric vector.
func writeVector(sb *strings.Builder, vec []float64) {
	sb.WriteByte('[')
	for i, f := range vec {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	sb.WriteByte(']')
}
