package remoteworkspace

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// toStruct encodes a Go value as a structpb.Struct by round-tripping it
// through JSON. structpb.Struct is a well-known protobuf message (part
// of google.golang.org/protobuf, no service-specific codegen needed),
// so it carries our request/response payloads over grpc's wire codec
// without a .proto-generated message per RPC.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("remoteworkspace: marshal: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("remoteworkspace: unmarshal to map: %w", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("remoteworkspace: new struct: %w", err)
	}
	return s, nil
}

// fromStruct decodes a structpb.Struct back into a Go value, the
// reverse of toStruct.
func fromStruct(s *structpb.Struct, out any) error {
	if s == nil {
		return nil
	}
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("remoteworkspace: marshal struct: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("remoteworkspace: unmarshal struct: %w", err)
	}
	return nil
}
