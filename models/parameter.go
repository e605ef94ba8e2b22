package models

import "sort"

// KeyValue is a single action parameter.
type KeyValue struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

// Parameters is an ordered parameter list. The platform treats it as a set,
// but the order is kept stable so two versions of an action compare cleanly.
type Parameters []KeyValue

// ParametersFromMap builds an ordered parameter list from a map, sorted by
// key so the result is deterministic.
func ParametersFromMap(values map[string]interface{}) Parameters {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	params := make(Parameters, 0, len(values))
	for _, key := range keys {
		params = append(params, KeyValue{Key: key, Value: values[key]})
	}
	return params
}

// Get returns the value for key and whether it is present.
func (p Parameters) Get(key string) (interface{}, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// ToMap flattens the list into a map.
func (p Parameters) ToMap() map[string]interface{} {
	values := make(map[string]interface{}, len(p))
	for _, kv := range p {
		values[kv.Key] = kv.Value
	}
	return values
}

// MergeParameters layers updates over existing: keys already present keep
// their relative position and take the new value, new keys are appended in
// the order the caller supplied them. Omitting a key never deletes it; a
// nil value is stored as-is, not treated as a tombstone.
func MergeParameters(existing, updates Parameters) Parameters {
	merged := make(Parameters, len(existing))
	copy(merged, existing)

	index := make(map[string]int, len(existing))
	for i, kv := range existing {
		index[kv.Key] = i
	}

	for _, kv := range updates {
		if i, ok := index[kv.Key]; ok {
			merged[i].Value = kv.Value
			continue
		}
		index[kv.Key] = len(merged)
		merged = append(merged, kv)
	}
	return merged
}
