package orderkey

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// The wire form of a key is an explicit list of small unsigned integers, in
// both CBOR and JSON. A CBOR byte string or a base64 JSON string would also
// round trip, but peers that store keys as number arrays could not read them.

// String renders the key as its byte values, for example "[55 23]".
func (k Key) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range k {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(int(v)))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Parse reads a key from text. The byte values may be separated by commas or
// white space and may be enclosed in square brackets, so "55,23", "55 23" and
// "[55 23]" all give the same key.
func Parse(s string) (Key, error) {
	text := strings.TrimSpace(s)
	if strings.HasPrefix(text, "[") {
		if !strings.HasSuffix(text, "]") {
			return nil, fmt.Errorf("%w: unbalanced brackets in %q", ErrMalformedKey, s)
		}
		text = text[1 : len(text)-1]
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyKey, s)
	}

	k := make(Key, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseUint(f, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrMalformedKey, f, err)
		}
		if v > MaxByte {
			return nil, fmt.Errorf("%w: %d", ErrByteRange, v)
		}
		k = append(k, byte(v))
	}
	return k, nil
}

// MarshalCBOR encodes the key as a CBOR array of unsigned integers.
func (k Key) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(k.widen())
}

// UnmarshalCBOR decodes a CBOR array of unsigned integers, each at most 255.
func (k *Key) UnmarshalCBOR(data []byte) error {
	var values []uint64
	if err := cbor.Unmarshal(data, &values); err != nil {
		return err
	}
	return k.narrow(values)
}

// MarshalJSON encodes the key as a JSON array of numbers.
func (k Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.widen())
}

// UnmarshalJSON decodes a JSON array of numbers, each at most 255. A JSON null
// leaves the key unchanged.
func (k *Key) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var values []uint64
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	return k.narrow(values)
}

// widen copies the key into a type that the encoders write as a list of
// integers. []byte would be written as a byte string.
func (k Key) widen() []uint16 {
	values := make([]uint16, len(k))
	for i, v := range k {
		values[i] = uint16(v)
	}
	return values
}

func (k *Key) narrow(values []uint64) error {
	if len(values) == 0 {
		return ErrEmptyKey
	}
	decoded := make(Key, len(values))
	for i, v := range values {
		if v > MaxByte {
			return fmt.Errorf("%w: %d at position %d", ErrByteRange, v, i)
		}
		decoded[i] = byte(v)
	}
	*k = decoded
	return nil
}
