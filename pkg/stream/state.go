// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package stream

import "github.com/vishuRizz/vstp-demo/pkg/vstp"

// State is a stream session's position in the §4.4 lifecycle:
//
//	Start --HELLO sent--> Opening --WELCOME recv--> Open --BYE sent/recv--> Closing --stream EOF--> Closed
//
// Receiving an unexpected frame type for the current State is permitted by
// the wire (the decoder never rejects it); callers decide whether to
// tolerate it or treat it as vstperr.ErrUnexpectedFrame and close.
type State int

const (
	StateStart State = iota
	StateOpening
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Allowed reports whether sending or receiving a frame of type t is
// expected while in state s. DATA/PING/PONG are only expected once Open;
// HELLO is only expected from Start; WELCOME only from Opening; BYE is
// accepted from any non-terminal state, matching "either side sends BYE"
// at any point in the advisory lifecycle.
func (s State) Allowed(t vstp.Type) bool {
	switch t {
	case vstp.TypeBye:
		return s != StateClosing && s != StateClosed
	case vstp.TypeHello:
		return s == StateStart
	case vstp.TypeWelcome:
		return s == StateOpening
	case vstp.TypeData, vstp.TypePing, vstp.TypePong, vstp.TypeAck, vstp.TypeErr:
		return s == StateOpen
	default:
		return false
	}
}
