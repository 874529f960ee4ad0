// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vstp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityQueueDrainsHighestFirst(t *testing.T) {
	var q PriorityQueue
	q.Push(New(TypeData, 0, nil, []byte("d")))
	q.Push(New(TypePing, 0, nil, nil))
	q.Push(New(TypeAck, 0, nil, nil))
	q.Push(New(TypeHello, 0, nil, nil))
	q.Push(New(TypeErr, 0, nil, nil))

	var order []Type
	for {
		f, ok := q.Pop()
		if !ok {
			break
		}
		order = append(order, f.Type)
	}
	assert.Equal(t, []Type{TypeErr, TypeAck, TypeHello, TypePing, TypeData}, order)
	assert.Equal(t, 0, q.Len())
}

func TestPriorityQueueFIFOWithinPriorityClass(t *testing.T) {
	var q PriorityQueue
	q.Push(New(TypeData, 0, nil, []byte("first")))
	q.Push(New(TypeData, 0, nil, []byte("second")))
	q.Push(New(TypeData, 0, nil, []byte("third")))

	for _, want := range []string{"first", "second", "third"} {
		f, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, string(f.Payload))
	}
}

func TestPriorityQueuePopEmpty(t *testing.T) {
	var q PriorityQueue
	_, ok := q.Pop()
	assert.False(t, ok)
}
