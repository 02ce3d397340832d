package codec

import "gopkg.in/yaml.v3"

// YAML encodes values with gopkg.in/yaml.v3.
type YAML[V any] struct{}

func (YAML[V]) Encode(v V) (b []byte, err error) {
	// yaml.v3 panics on some unsupported values (channels, funcs) instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, encodeErr("yaml", panicError{r})
		}
	}()

	b, err = yaml.Marshal(v)
	if err != nil {
		return nil, encodeErr("yaml", err)
	}
	return b, nil
}

func (YAML[V]) Decode(b []byte) (V, error) {
	var v V
	if err := yaml.Unmarshal(b, &v); err != nil {
		var zero V
		return zero, decodeErr("yaml", err)
	}
	return v, nil
}
