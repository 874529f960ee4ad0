// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vstp

import "container/heap"

// PriorityQueue orders buffered frames by Type.Priority, highest first,
// with FIFO order among frames of equal priority. Queuing frames at all is
// optional (§3: correctness never depends on the priority order), but an
// implementation that does queue must drain in this order.
//
// PriorityQueue is not safe for concurrent use; callers that share one
// across tasks must wrap it in their own lock.
type PriorityQueue struct {
	h frameHeap
}

// Push inserts f into the queue.
func (q *PriorityQueue) Push(f Frame) {
	heap.Push(&q.h, queuedFrame{frame: f, seq: q.h.nextSeq})
	q.h.nextSeq++
}

// Pop removes and returns the highest-priority frame, and false when the
// queue is empty.
func (q *PriorityQueue) Pop() (Frame, bool) {
	if len(q.h.items) == 0 {
		return Frame{}, false
	}
	qf := heap.Pop(&q.h).(queuedFrame)
	return qf.frame, true
}

// Len returns the number of queued frames.
func (q *PriorityQueue) Len() int {
	return len(q.h.items)
}

type queuedFrame struct {
	frame Frame
	seq   uint64
}

type frameHeap struct {
	items   []queuedFrame
	nextSeq uint64
}

func (h *frameHeap) Len() int { return len(h.items) }

func (h *frameHeap) Less(i, j int) bool {
	pi, pj := h.items[i].frame.Type.Priority(), h.items[j].frame.Type.Priority()
	if pi != pj {
		return pi > pj
	}
	return h.items[i].seq < h.items[j].seq
}

func (h *frameHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *frameHeap) Push(x interface{}) {
	h.items = append(h.items, x.(queuedFrame))
}

func (h *frameHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
