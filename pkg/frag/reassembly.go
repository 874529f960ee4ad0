// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package frag

import (
	"container/list"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vishuRizz/vstp-demo/pkg/vstp"
)

const (
	// MaxSessions bounds the number of concurrently live reassembly
	// sessions; the oldest (by creation time) is evicted to make room for
	// a new one past this bound.
	MaxSessions = 1000

	// DefaultReassemblyTimeout is how long a session waits for all of its
	// fragments before it is silently dropped.
	DefaultReassemblyTimeout = 30 * time.Second
)

// sessionKey identifies a reassembly session by peer address and
// sender-chosen fragment id.
type sessionKey struct {
	peer   string
	fragID byte
}

// session is the per-(peer,frag_id) reassembly state described in §3.
type session struct {
	total     byte
	chunks    map[byte][]byte
	typ       vstp.Type
	flags     vstp.Flags
	headers   vstp.Headers
	haveBase  bool
	createdAt time.Time
	deadline  time.Time

	listElem *list.Element
}

func (s *session) complete() bool {
	return byte(len(s.chunks)) == s.total
}

func (s *session) assemble() vstp.Frame {
	payload := make([]byte, 0, len(s.chunks)*len(s.chunks[0]))
	for i := byte(0); i < s.total; i++ {
		payload = append(payload, s.chunks[i]...)
	}
	return vstp.Frame{
		Version: vstp.Version,
		Type:    s.typ,
		Flags:   s.flags.Clear(vstp.FlagFrag),
		Headers: s.headers,
		Payload: payload,
	}
}

// Engine is the per-process fragmentation/reassembly table described in
// §4.2.2. It is safe for concurrent use by multiple receive goroutines;
// the table is protected by a single mutex with short critical sections,
// mirroring the teacher's cla/manager.go Manager table.
type Engine struct {
	timeout time.Duration

	mu       sync.Mutex
	sessions map[sessionKey]*session
	order    *list.List // sessionKeys in creation order, oldest at Front
}

// NewEngine creates a reassembly Engine with the default session timeout.
func NewEngine() *Engine {
	return NewEngineWithTimeout(DefaultReassemblyTimeout)
}

// NewEngineWithTimeout creates a reassembly Engine with a custom session
// timeout, primarily for tests.
func NewEngineWithTimeout(timeout time.Duration) *Engine {
	return &Engine{
		timeout:  timeout,
		sessions: make(map[sessionKey]*session),
		order:    list.New(),
	}
}

// Arrive feeds one received fragment frame, identified by the peer it
// came from, into the engine. It returns the assembled frame once every
// fragment in [0, frag-total) has arrived; otherwise it returns
// (vstp.Frame{}, false). Malformed fragments (missing/invalid control
// headers) are silently dropped, matching §4.2.2 step 1.
func (e *Engine) Arrive(peer string, f vstp.Frame) (vstp.Frame, bool) {
	fragID, index, total, ok := fragmentControl(f.Headers)
	if !ok {
		log.WithFields(log.Fields{
			"peer": peer,
		}).Debug("frag: dropping fragment with missing or malformed control headers")
		return vstp.Frame{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.evictExpiredLocked()

	key := sessionKey{peer: peer, fragID: fragID}
	s, exists := e.sessions[key]
	if !exists {
		if len(e.sessions) >= MaxSessions {
			e.evictOldestLocked()
		}
		s = &session{
			total:     total,
			chunks:    make(map[byte][]byte),
			createdAt: now(),
			deadline:  now().Add(e.timeout),
		}
		s.listElem = e.order.PushBack(key)
		e.sessions[key] = s
	}

	if s.total != total {
		log.WithFields(log.Fields{
			"peer":    peer,
			"frag_id": fragID,
		}).Debug("frag: dropping fragment with frag-total mismatch")
		return vstp.Frame{}, false
	}

	s.chunks[index] = append([]byte(nil), f.Payload...)

	if index == 0 {
		s.typ = f.Type
		s.flags = f.Flags
		s.headers = stripControlHeaders(f.Headers)
		s.haveBase = true
	}

	if !s.complete() || !s.haveBase {
		return vstp.Frame{}, false
	}

	assembled := s.assemble()
	e.removeLocked(key)
	return assembled, true
}

// LiveSessions returns the current number of live reassembly sessions.
func (e *Engine) LiveSessions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sessions)
}

// Sweep removes every session past its deadline. Callers may invoke this
// periodically from a background goroutine instead of relying solely on
// the inline check in Arrive.
func (e *Engine) Sweep() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.evictExpiredLocked()
}

func (e *Engine) evictExpiredLocked() {
	n := now()
	for elem := e.order.Front(); elem != nil; {
		key := elem.Value.(sessionKey)
		s := e.sessions[key]
		next := elem.Next()
		if s != nil && n.After(s.deadline) {
			e.removeLocked(key)
		}
		elem = next
	}
}

func (e *Engine) evictOldestLocked() {
	elem := e.order.Front()
	if elem == nil {
		return
	}
	key := elem.Value.(sessionKey)
	log.WithFields(log.Fields{
		"peer":    key.peer,
		"frag_id": key.fragID,
	}).Warn("frag: evicting oldest reassembly session, table at capacity")
	e.removeLocked(key)
}

func (e *Engine) removeLocked(key sessionKey) {
	if s, ok := e.sessions[key]; ok {
		e.order.Remove(s.listElem)
		delete(e.sessions, key)
	}
}

// now is a seam so tests can advance a fake clock without sleeping.
var now = time.Now
