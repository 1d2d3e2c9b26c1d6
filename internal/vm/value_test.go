package vm

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestStackDupDropBalance(t *testing.T) {
	s := NewStack()
	s.Push(StringValue("x"))
	for i := 0; i < 5; i++ {
		v, err := s.Peek()
		require.NoError(t, err)
		s.Push(v.Clone())
	}
	require.Equal(t, 6, s.Depth())
	for i := 0; i < 5; i++ {
		_, err := s.Pop()
		require.NoError(t, err)
	}
	require.Equal(t, 1, s.Depth())
}

func TestStackUnderflowIsFatal(t *testing.T) {
	s := NewStack()
	_, err := s.Pop()
	require.Error(t, err)
	require.IsType(t, &FatalError{}, err)
}

func TestTypedPopMismatchIsFatal(t *testing.T) {
	s := NewStack()
	s.Push(IntValue(1))
	_, err := s.PopString()
	require.Error(t, err)
}

func TestStringCloneIsIndependent(t *testing.T) {
	v := StringValue("hello")
	c := v.Clone()
	require.Equal(t, v.Str, c.Str)
	// Strings are immutable, so the only way to observe whether Clone
	// forced a fresh backing array is to compare the array pointers
	// directly; equal contents alone would also hold for an aliasing copy.
	require.NotEqual(t,
		uintptr(unsafe.Pointer(unsafe.StringData(v.Str))),
		uintptr(unsafe.Pointer(unsafe.StringData(c.Str))))
}
