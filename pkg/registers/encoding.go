package registers

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/pkg/errors"
)

// Type tags of serialized register values.
const (
	TypeLong byte = 0x05
	TypeColl byte = 0x0e

	maxLongWidth = 8
)

// EncodeLong serializes a non-negative integer as tag, byte width and the
// minimal big-endian representation.
func EncodeLong(v int64) ([]byte, error) {
	if v < 0 {
		return nil, errors.Errorf("negative integer %d", v)
	}

	var buf [maxLongWidth]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))

	i := 0
	for i < maxLongWidth-1 && buf[i] == 0 {
		i++
	}
	w := buf[i:]

	out := make([]byte, 0, 2+len(w))
	out = append(out, TypeLong, byte(len(w)))
	return append(out, w...), nil
}

func DecodeLong(b []byte) (int64, error) {
	if len(b) < 3 || b[0] != TypeLong {
		return 0, errors.New("not a long")
	}

	n := int(b[1])
	if n < 1 || n > maxLongWidth {
		return 0, errors.Errorf("invalid long width %d", n)
	}
	if len(b) != 2+n {
		return 0, errors.Errorf("long width %d but %d bytes", n, len(b)-2)
	}
	if n > 1 && b[2] == 0 {
		return 0, errors.New("non-minimal long")
	}

	var v uint64
	for _, c := range b[2:] {
		v = v<<8 | uint64(c)
	}
	if v > math.MaxInt64 {
		return 0, errors.New("long overflows")
	}

	return int64(v), nil
}

// EncodeColl serializes a byte collection as tag, uvarint length and data.
func EncodeColl(data []byte) []byte {
	var l [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(l[:], uint64(len(data)))

	out := make([]byte, 0, 1+n+len(data))
	out = append(out, TypeColl)
	out = append(out, l[:n]...)
	return append(out, data...)
}

func DecodeColl(b []byte) ([]byte, error) {
	if len(b) < 2 || b[0] != TypeColl {
		return nil, errors.New("not a collection")
	}

	l, n := binary.Uvarint(b[1:])
	if n <= 0 {
		return nil, errors.New("invalid collection length")
	}

	var tmp [binary.MaxVarintLen64]byte
	if binary.PutUvarint(tmp[:], l) != n {
		return nil, errors.New("non-minimal collection length")
	}

	data := b[1+n:]
	if uint64(len(data)) != l {
		return nil, errors.Errorf("collection length %d but %d bytes", l, len(data))
	}

	return data, nil
}

func longHex(v int64) (string, error) {
	b, err := EncodeLong(v)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func collHex(data []byte) string {
	return hex.EncodeToString(EncodeColl(data))
}

func parseLongHex(s string) (int64, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return 0, err
	}
	return DecodeLong(b)
}

func parseCollHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return DecodeColl(b)
}
