package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

// TraceEvent is one append-only entry in a run's trace.
//
// In JSON the metadata keys sit beside the core fields rather than under a
// nested object, so each line reads as one flat record. A metadata key that
// collides with a core field is dropped on encode.
type TraceEvent struct {
	Timestamp time.Time      `json:"timestamp" yaml:"timestamp"`
	Role      Role           `json:"role" yaml:"role"`
	Sender    string         `json:"sender" yaml:"sender"`
	Content   string         `json:"content" yaml:"content"`
	Metadata  map[string]any `json:"-" yaml:"metadata,omitempty"`
}

// traceEventCore is the JSON shape of the fixed fields.
type traceEventCore struct {
	Timestamp time.Time `json:"timestamp"`
	Role      Role      `json:"role"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
}

func isCoreKey(k string) bool {
	switch k {
	case "timestamp", "role", "sender", "content":
		return true
	}
	return false
}

// MarshalJSON writes the core fields first, then metadata keys in sorted
// order.
func (e TraceEvent) MarshalJSON() ([]byte, error) {
	core, err := json.Marshal(traceEventCore{
		Timestamp: e.Timestamp,
		Role:      e.Role,
		Sender:    e.Sender,
		Content:   e.Content,
	})
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(e.Metadata))
	for k := range e.Metadata {
		if !isCoreKey(k) {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return core, nil
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.Write(core[:len(core)-1])
	for _, k := range keys {
		name, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Metadata[k])
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the core fields and collects every other key into
// Metadata.
func (e *TraceEvent) UnmarshalJSON(data []byte) error {
	var core traceEventCore
	if err := json.Unmarshal(data, &core); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k := range all {
		if isCoreKey(k) {
			delete(all, k)
		}
	}

	*e = TraceEvent{
		Timestamp: core.Timestamp,
		Role:      core.Role,
		Sender:    core.Sender,
		Content:   core.Content,
	}
	if len(all) > 0 {
		e.Metadata = all
	}
	return nil
}
