package klv

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBERLengthRoundTrip(t *testing.T) {
	testCases := []struct {
		name   string
		length uint64
		width  int
	}{
		{"short form zero", 0, 1},
		{"short form max", 0x7f, 1},
		{"long form 1 byte value", 0x80, 2},
		{"long form 4 byte value", 0x12345678, 5},
		{"long form widened for rewrite", 10, 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := EncodeBERLength(tc.length, tc.width)
			require.NoError(t, err)
			require.Len(t, encoded, tc.width)

			buf := bytes.NewReader(encoded)
			r, err := NewReader(buf)
			require.NoError(t, err)

			got, gotWidth, err := r.ReadLength()
			require.NoError(t, err)
			require.Equal(t, tc.length, got)
			require.Equal(t, tc.width, gotWidth)
		})
	}
}

func TestEncodeBERLengthRejectsOverflow(t *testing.T) {
	_, err := EncodeBERLength(0x80, 1)
	require.Error(t, err)

	_, err = EncodeBERLength(0x10000, 3)
	require.Error(t, err)
}

func TestReadFixedLengthRejectsNarrowWidth(t *testing.T) {
	encoded, err := EncodeBERLength(10, 1)
	require.NoError(t, err)

	r, err := NewReader(bytes.NewReader(encoded))
	require.NoError(t, err)

	_, err = r.ReadFixedLength(4)
	require.Error(t, err)
}

func TestReadKLRejectsDeclaredLengthPastEOF(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 1)
	require.NoError(t, w.WriteKeyAndLength(FillKeyCompliant, 4, 1000))

	r, err := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	_, _, err = r.ReadKL(int64(buf.Len()))
	require.Error(t, err)
}

func TestWriteFillExactSize(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, 4)
	require.NoError(t, w.WriteFill(FillKeyCompliant, 64, 4))
	require.Equal(t, 64, buf.Len())

	r, err := NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	key, length, err := r.ReadKL(64)
	require.NoError(t, err)
	require.Equal(t, FillKeyCompliant, key)
	require.Equal(t, r.Tell()+int64(length), int64(64))
}

func TestPaddingToAlign(t *testing.T) {
	require.Equal(t, int64(0), PaddingToAlign(512, 512))
	require.Equal(t, int64(1), PaddingToAlign(511, 512))
	require.Equal(t, int64(0), PaddingToAlign(100, 0))
}

func TestKeyEqualModRegistryVersion(t *testing.T) {
	a := Key{0x06, 0x0E, 0x2B, 0x34, 0x02, 0x05, 0x01, 0x01, 0, 0, 0, 0, 0, 0, 0, 0}
	b := a
	b[7] = 0x0d
	require.True(t, a.EqualModRegistryVersion(b))
	b[8] = 0x01
	require.False(t, a.EqualModRegistryVersion(b))
}

func TestSkipAndTell(t *testing.T) {
	r, err := NewReader(bytes.NewReader(make([]byte, 32)))
	require.NoError(t, err)
	require.NoError(t, r.Skip(10))
	require.Equal(t, int64(10), r.Tell())
}
