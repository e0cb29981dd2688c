package codec

import (
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/zeebo/errs"
)

// Error is the class of all value decoding failures.
var Error = errs.Class("codec")

// Codec converts typed values to and from HBase cell bytes.
type Codec interface {
	EncodeInt(int64) []byte
	DecodeInt([]byte) (int64, error)
	EncodeFloat(float64) []byte
	DecodeFloat([]byte) (float64, error)
	EncodeBool(bool) []byte
	DecodeBool([]byte) (bool, error)
	EncodeString(string) []byte
	DecodeString([]byte) (string, error)
	EncodeUint(uint64) []byte
	DecodeUint([]byte) (uint64, error)
	EncodeJSON(interface{}) ([]byte, error)
	DecodeJSON([]byte) (interface{}, error)
}

// DefaultCodec stores numbers as 8 byte big-endian values, the layout HBase's
// Bytes.toBytes(long) produces.
type DefaultCodec struct{}

var _ Codec = (*DefaultCodec)(nil)

func (*DefaultCodec) EncodeInt(n int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(n))
	return b
}

func (*DefaultCodec) DecodeInt(b []byte) (int64, error) {
	if len(b) != 8 {
		return 0, Error.New("invalid int encoding, %d bytes", len(b))
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (*DefaultCodec) EncodeFloat(n float64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(n))
	return b
}

func (*DefaultCodec) DecodeFloat(b []byte) (float64, error) {
	if len(b) != 8 {
		return 0, Error.New("invalid float encoding, %d bytes", len(b))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

func (*DefaultCodec) EncodeBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func (*DefaultCodec) DecodeBool(b []byte) (bool, error) {
	if len(b) != 1 {
		return false, Error.New("invalid bool encoding, %d bytes", len(b))
	}
	return b[0] != 0, nil
}

func (*DefaultCodec) EncodeString(s string) []byte {
	return []byte(s)
}

func (*DefaultCodec) DecodeString(b []byte) (string, error) {
	return string(b), nil
}

func (*DefaultCodec) EncodeUint(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func (*DefaultCodec) DecodeUint(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, Error.New("invalid uint encoding, %d bytes", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func (*DefaultCodec) EncodeJSON(v interface{}) ([]byte, error) {
	b, err := json.Marshal(v)
	return b, Error.Wrap(err)
}

func (*DefaultCodec) DecodeJSON(b []byte) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, Error.Wrap(err)
	}
	return v, nil
}
