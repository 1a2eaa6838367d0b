package coerce

import (
	"bytes"
	"encoding/json"
)

// Pair is one key/value row of a two-column table.
type Pair struct {
	Key   string
	Value string
}

// BodyFromPairs builds a JSON object from pairs, coercing every value.
// Keys appear in row order; a repeated key keeps its first position and last value.
func BodyFromPairs(pairs []Pair) ([]byte, error) {
	return encodeObject(pairs, func(raw string) ([]byte, error) {
		return Coerce(raw).MarshalJSON()
	})
}

// MapBody builds a JSON object from pairs, keeping every value as a JSON string.
func MapBody(pairs []Pair) ([]byte, error) {
	return encodeObject(pairs, func(raw string) ([]byte, error) {
		return json.Marshal(raw)
	})
}

func encodeObject(pairs []Pair, encode func(string) ([]byte, error)) ([]byte, error) {
	order := make([]string, 0, len(pairs))
	values := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if _, seen := values[p.Key]; !seen {
			order = append(order, p.Key)
		}
		values[p.Key] = p.Value
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		v, err := encode(values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}
