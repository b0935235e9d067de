package slots

import (
	"encoding/json"
	"strings"
)

// Slots is the top-level collected-information document: a mapping from slot
// name to Value, where nested maps are addressed with dot-notation paths such
// as "timing.date".
type Slots map[string]Value

// New returns an empty slot document.
func New() Slots { return Slots{} }

// Clone returns a copy of the document. Values are immutable so a shallow
// copy of the top-level map is sufficient.
func (s Slots) Clone() Slots {
	cp := make(Slots, len(s))
	for k, v := range s {
		cp[k] = v
	}
	return cp
}

// Merge folds update into existing and returns the merged document. For every
// key in update whose value is non-null: when both sides hold maps the maps
// are merged recursively, otherwise the update value wins. Keys present only
// in existing are preserved unchanged, and null update values never delete
// anything. Both inputs are left untouched.
func Merge(existing, update Slots) Slots {
	merged := existing.Clone()
	for key, updated := range update {
		if updated.IsNull() {
			continue
		}
		current, ok := merged[key]
		if ok && current.kind == KindMap && updated.kind == KindMap {
			merged[key] = Value{kind: KindMap, m: mergeMaps(current.m, updated.m)}
			continue
		}
		merged[key] = updated
	}
	return merged
}

func mergeMaps(existing, update map[string]Value) map[string]Value {
	merged := make(map[string]Value, len(existing)+len(update))
	for k, v := range existing {
		merged[k] = v
	}
	for key, updated := range update {
		if updated.IsNull() {
			continue
		}
		current, ok := merged[key]
		if ok && current.kind == KindMap && updated.kind == KindMap {
			merged[key] = Value{kind: KindMap, m: mergeMaps(current.m, updated.m)}
			continue
		}
		merged[key] = updated
	}
	return merged
}

// Get walks the document along a dot-notation path and returns the value at
// the end of it. The second return is false when any intermediate key is
// missing or the path descends into a non-map value; Get never panics.
func Get(s Slots, dotPath string) (Value, bool) {
	if dotPath == "" {
		return Value{}, false
	}
	parts := strings.Split(dotPath, ".")
	current, ok := s[parts[0]]
	if !ok {
		return Value{}, false
	}
	for _, part := range parts[1:] {
		if current.kind != KindMap {
			return Value{}, false
		}
		current, ok = current.m[part]
		if !ok {
			return Value{}, false
		}
	}
	return current, true
}

// Set places a value at a dot-notation path, creating intermediate maps as
// needed, and returns the updated document without mutating the receiver.
func (s Slots) Set(dotPath string, v Value) Slots {
	parts := strings.Split(dotPath, ".")
	update := v
	for i := len(parts) - 1; i > 0; i-- {
		update = Value{kind: KindMap, m: map[string]Value{parts[i]: update}}
	}
	return Merge(s, Slots{parts[0]: update})
}

// IsFilled reports whether the value at dotPath counts as an answer: present,
// not null, and not an empty or whitespace-only string.
func IsFilled(s Slots, dotPath string) bool {
	v, ok := Get(s, dotPath)
	if !ok || v.IsNull() {
		return false
	}
	if str, isStr := v.AsString(); isStr && strings.TrimSpace(str) == "" {
		return false
	}
	return true
}

// FromJSON decodes a JSON object into a slot document. Used by collaborator
// wrappers when folding extracted slot fragments out of LLM responses.
func FromJSON(data []byte) (Slots, error) {
	var s Slots
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s == nil {
		s = New()
	}
	return s, nil
}

// ToJSON encodes the document as a compact JSON object.
func (s Slots) ToJSON() ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}
