package easystack

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Typed stores fixed-size values of T, encoded little endian with
// encoding/binary. T must be a value type with a fixed binary size.
type Typed[T any] struct {
	stack *Stack
	size  int
}

// NewTyped builds a Typed stack. options.RecordSize is replaced by the binary
// size of T.
func NewTyped[T any](options Options) (*Typed[T], error) {
	var zero T
	size := binary.Size(zero)
	if size < 0 {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, zero)
	}

	options.RecordSize = size
	stack, err := New(options)
	if err != nil {
		return nil, err
	}
	return &Typed[T]{stack: stack, size: size}, nil
}

func (t *Typed[T]) Push(v T) error {
	buf := defaultBuffer.Get()
	defer defaultBuffer.Put(buf)

	if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
		return err
	}
	return t.stack.PushElement(buf.Bytes())
}

func (t *Typed[T]) Pop() (T, error) {
	var v T

	data := make([]byte, t.size)
	n, err := t.stack.PopElement(data)
	if err != nil {
		return v, err
	}
	if err := binary.Read(bytes.NewReader(data[:n]), binary.LittleEndian, &v); err != nil {
		return v, err
	}
	return v, nil
}

func (t *Typed[T]) Drain() {
	t.stack.Drain()
}

func (t *Typed[T]) Len() int {
	return t.stack.Len()
}

func (t *Typed[T]) Stats() Stats {
	return t.stack.Stats()
}
