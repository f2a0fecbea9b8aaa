// Package grpcserver carries the order entry API over gRPC. The
// service descriptor and codec are written out by hand against the
// bookpb wire messages.
package grpcserver

import (
	"fmt"
)

// Message is implemented by every bookpb message.
type Message interface {
	Marshal(b []byte) []byte
	Unmarshal(b []byte) error
}

// Codec marshals bookpb messages for grpc. It is installed with
// grpc.ForceServerCodec on the server and grpc.ForceCodec per call on
// the client.
type Codec struct{}

// Name satisfies encoding.Codec.
func (Codec) Name() string { return "osprey-bookpb" }

func (Codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("grpcserver: cannot marshal %T", v)
	}
	return m.Marshal(nil), nil
}

func (Codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("grpcserver: cannot unmarshal into %T", v)
	}
	return m.Unmarshal(data)
}
