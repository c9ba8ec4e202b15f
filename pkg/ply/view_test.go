package ply

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOffsets(t *testing.T) {
	t.Parallel()
	require.Equal(t, 4+3*12, ScalarOffset(4, 12, 3))
	require.Equal(t, 8+2*20+3*4, ListOffset(8, 20, 4, 2, 3))
}

func TestViewPutGet(t *testing.T) {
	t.Parallel()
	buf := make([]int32, 6)
	v := NewView(Bytes(buf), 4, 8, 0)
	neg := int32(-9)
	require.NoError(t, v.Put(2, 0, Int, uint64(uint32(neg))))
	require.Equal(t, int32(-9), buf[5])

	s := NewSource(Bytes(buf), 4, 8, 0)
	bits, err := s.Get(2, 0, Int)
	require.NoError(t, err)
	require.Equal(t, int32(-9), int32(uint32(bits)))
}

func TestViewOutOfBounds(t *testing.T) {
	t.Parallel()
	v := NewView(make([]byte, 8), 0, 4, 0)
	err := v.Put(2, 0, Float, 0)
	require.True(t, errors.Is(err, ErrOutOfBounds))

	_, err = NewSource(make([]byte, 8), 0, 4, 0).Get(0, 0, Double)
	require.NoError(t, err)
	_, err = NewSource(make([]byte, 8), 4, 4, 0).Get(0, 0, Double)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestWindowValidate(t *testing.T) {
	t.Parallel()
	w := window{data: make([]byte, 48), offset: 12, stride: 24, inner: 4}
	require.NoError(t, w.validate(2, 3, 4))
	require.ErrorIs(t, w.validate(2, 4, 4), ErrOutOfBounds)
	require.NoError(t, w.validate(0, 3, 4))

	huge := window{data: make([]byte, 16), stride: 8}
	require.ErrorIs(t, huge.validate(math.MaxInt, 1, 8), ErrOutOfBounds)
	require.ErrorIs(t, huge.validate(math.MaxInt/4, 1, 8), ErrOutOfBounds)

	w.stride = -1
	require.ErrorIs(t, w.validate(1, 1, 4), ErrBinding)
}

func TestStructBytesAliases(t *testing.T) {
	t.Parallel()
	type pair struct {
		A uint16
		B uint16
	}
	ps := []pair{{1, 2}, {3, 4}}
	b := StructBytes(ps)
	require.Len(t, b, 8)
	hostOrder.PutUint16(b[4:6], 0xff)
	require.Equal(t, uint16(0xff), ps[1].A)
	require.Nil(t, Bytes([]float32(nil)))
}
