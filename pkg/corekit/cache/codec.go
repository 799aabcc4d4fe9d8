package cache

import "encoding/json"

// Codec converts cached values to and from the byte form a backing
// store persists.
type Codec[V any] interface {
	Encode(v V) ([]byte, error)
	Decode(data []byte) (V, error)
}

type jsonCodec[V any] struct{}

// JSONCodec persists values as JSON.
func JSONCodec[V any]() Codec[V] { return jsonCodec[V]{} }

func (jsonCodec[V]) Encode(v V) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec[V]) Decode(data []byte) (V, error) {
	var v V
	err := json.Unmarshal(data, &v)
	return v, err
}
