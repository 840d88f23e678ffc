// Package codec provides the serializers atoms use to turn values into the
// strings their storage adapter holds.
//
// A Codec is a stateless Encode/Decode pair. JSON is the default; YAML and
// protobuf JSON are provided for values that are already described in
// those formats, and Funcs adapts a pair of plain functions.
package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

// Codec encodes values of T to strings and back.
type Codec[T any] interface {
	Encode(value T) (string, error)
	Decode(data string) (T, error)
}

// JSON returns the default codec.
func JSON[T any]() Codec[T] {
	return jsonCodec[T]{}
}

type jsonCodec[T any] struct{}

func (jsonCodec[T]) Encode(value T) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (jsonCodec[T]) Decode(data string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(data), &v)
	return v, err
}

// YAML returns a codec backed by gopkg.in/yaml.v3.
func YAML[T any]() Codec[T] {
	return yamlCodec[T]{}
}

type yamlCodec[T any] struct{}

func (yamlCodec[T]) Encode(value T) (string, error) {
	b, err := yaml.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (yamlCodec[T]) Decode(data string) (T, error) {
	var v T
	err := yaml.Unmarshal([]byte(data), &v)
	return v, err
}

// ProtoJSON returns a codec for protobuf messages using the canonical
// protobuf JSON mapping. newMessage must return a fresh, non-nil message.
func ProtoJSON[M proto.Message](newMessage func() M) Codec[M] {
	return protoCodec[M]{newMessage: newMessage}
}

type protoCodec[M proto.Message] struct {
	newMessage func() M
}

func (c protoCodec[M]) Encode(value M) (string, error) {
	b, err := protojson.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c protoCodec[M]) Decode(data string) (M, error) {
	m := c.newMessage()
	if err := protojson.Unmarshal([]byte(data), m); err != nil {
		var zero M
		return zero, err
	}
	return m, nil
}

// Funcs adapts an encode/decode function pair into a Codec.
func Funcs[T any](encode func(T) (string, error), decode func(string) (T, error)) Codec[T] {
	return funcCodec[T]{encode: encode, decode: decode}
}

type funcCodec[T any] struct {
	encode func(T) (string, error)
	decode func(string) (T, error)
}

func (c funcCodec[T]) Encode(value T) (string, error) {
	if c.encode == nil {
		return "", fmt.Errorf("codec: no encode function")
	}
	return c.encode(value)
}

func (c funcCodec[T]) Decode(data string) (T, error) {
	if c.decode == nil {
		var zero T
		return zero, fmt.Errorf("codec: no decode function")
	}
	return c.decode(data)
}
