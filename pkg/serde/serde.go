// Package serde defines the serializer capability the record store
// delegates to, plus the serializers MuninDB ships with.
//
// The store never interprets payload bytes beyond their length; how a
// typed record becomes bytes, and what it means for two records to be
// equal, is entirely the serializer's business.
package serde

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// Serializer converts records of one type to and from their stored
// byte form and decides equality for compare-and-swap operations.
type Serializer[R any] interface {
	Serialize(record R) ([]byte, error)
	Deserialize(data []byte) (R, error)
	Equals(a, b R) bool
}

// Bytes passes payloads through untouched.
type Bytes struct{}

func (Bytes) Serialize(record []byte) ([]byte, error) { return record, nil }

func (Bytes) Deserialize(data []byte) ([]byte, error) { return data, nil }

func (Bytes) Equals(a, b []byte) bool { return bytes.Equal(a, b) }

// String stores strings as their UTF-8 bytes.
type String struct{}

func (String) Serialize(record string) ([]byte, error) { return []byte(record), nil }

func (String) Deserialize(data []byte) (string, error) { return string(data), nil }

func (String) Equals(a, b string) bool { return a == b }

// JSON serializes records of type T with encoding/json. Equality is
// structural, so records that marshal differently but compare equal
// (e.g. nil vs empty map fields after a round trip) still match.
type JSON[T any] struct{}

func (JSON[T]) Serialize(record T) ([]byte, error) { return json.Marshal(record) }

func (JSON[T]) Deserialize(data []byte) (T, error) {
	var record T
	err := json.Unmarshal(data, &record)
	return record, err
}

func (JSON[T]) Equals(a, b T) bool { return reflect.DeepEqual(a, b) }

// Msgpack serializes records of type T with MessagePack. Denser than
// JSON for the small payloads the store is built around.
type Msgpack[T any] struct{}

func (Msgpack[T]) Serialize(record T) ([]byte, error) { return msgpack.Marshal(record) }

func (Msgpack[T]) Deserialize(data []byte) (T, error) {
	var record T
	err := msgpack.Unmarshal(data, &record)
	return record, err
}

func (Msgpack[T]) Equals(a, b T) bool { return reflect.DeepEqual(a, b) }
