package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// Proto encodes protobuf messages in their binary wire format.
// M is a generated message pointer type such as *wrapperspb.StringValue.
type Proto[M proto.Message] struct{}

func (Proto[M]) Encode(m M) ([]byte, error) {
	b, err := proto.Marshal(m)
	if err != nil {
		return nil, encodeErr("protobuf", err)
	}
	return b, nil
}

func (Proto[M]) Decode(b []byte) (M, error) {
	var zero M
	// ProtoReflect is valid on a nil generated message and exposes its type.
	m, ok := zero.ProtoReflect().Type().New().Interface().(M)
	if !ok {
		return zero, decodeErr("protobuf", fmt.Errorf("cannot instantiate %T", zero))
	}
	if err := proto.Unmarshal(b, m); err != nil {
		return zero, decodeErr("protobuf", err)
	}
	return m, nil
}
