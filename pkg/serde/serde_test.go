package serde

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Name  string   `json:"name" msgpack:"name"`
	Count int      `json:"count" msgpack:"count"`
	Tags  []string `json:"tags,omitempty" msgpack:"tags,omitempty"`
}

func TestBytes(t *testing.T) {
	var ser Bytes

	payload := []byte{0x00, 0x01, 0xFF}
	encoded, err := ser.Serialize(payload)
	require.NoError(t, err)

	decoded, err := ser.Deserialize(encoded)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	assert.True(t, ser.Equals([]byte("a"), []byte("a")))
	assert.False(t, ser.Equals([]byte("a"), []byte("b")))
	assert.True(t, ser.Equals(nil, []byte{}), "nil and empty compare equal")
}

func TestString(t *testing.T) {
	var ser String

	encoded, err := ser.Serialize("héllo")
	require.NoError(t, err)

	decoded, err := ser.Deserialize(encoded)
	require.NoError(t, err)
	assert.Equal(t, "héllo", decoded)

	assert.True(t, ser.Equals("x", "x"))
	assert.False(t, ser.Equals("x", "y"))
}

func TestJSON_RoundTrip(t *testing.T) {
	var ser JSON[testRecord]

	record := testRecord{Name: "odin", Count: 2, Tags: []string{"raven"}}
	encoded, err := ser.Serialize(record)
	require.NoError(t, err)

	decoded, err := ser.Deserialize(encoded)
	require.NoError(t, err)
	assert.True(t, ser.Equals(record, decoded))
}

func TestJSON_DeserializeInvalid(t *testing.T) {
	var ser JSON[testRecord]

	_, err := ser.Deserialize([]byte("{not json"))
	assert.Error(t, err)
}

func TestMsgpack_RoundTrip(t *testing.T) {
	var ser Msgpack[testRecord]

	record := testRecord{Name: "munin", Count: 7}
	encoded, err := ser.Serialize(record)
	require.NoError(t, err)

	decoded, err := ser.Deserialize(encoded)
	require.NoError(t, err)
	assert.True(t, ser.Equals(record, decoded))
}

func TestMsgpack_SmallerThanJSON(t *testing.T) {
	record := testRecord{Name: "munin", Count: 7, Tags: []string{"memory", "raven"}}

	jsonBytes, err := JSON[testRecord]{}.Serialize(record)
	require.NoError(t, err)
	packBytes, err := Msgpack[testRecord]{}.Serialize(record)
	require.NoError(t, err)

	assert.Less(t, len(packBytes), len(jsonBytes))
}
