// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vstp

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// deadlineHeader is a sample typed extension header used by the registry
// tests: a millisecond deadline carried as 8 big-endian bytes.
type deadlineHeader struct {
	Millis uint64
}

func (h *deadlineHeader) HeaderKey() string { return "x-deadline" }

func (h *deadlineHeader) MarshalValue() ([]byte, error) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], h.Millis)
	return b[:], nil
}

func (h *deadlineHeader) UnmarshalValue(value []byte) error {
	if len(value) != 8 {
		return assert.AnError
	}
	h.Millis = binary.BigEndian.Uint64(value)
	return nil
}

func TestExtensionRegistryRoundTrip(t *testing.T) {
	reg := NewExtensionRegistry()
	require.NoError(t, reg.Register(&deadlineHeader{}))

	orig := &deadlineHeader{Millis: 123456}
	value, err := orig.MarshalValue()
	require.NoError(t, err)

	eh, err := reg.CreateHeader("x-deadline", value)
	require.NoError(t, err)
	assert.Equal(t, uint64(123456), eh.(*deadlineHeader).Millis)
}

func TestExtensionRegistryRejectsDuplicateKey(t *testing.T) {
	reg := NewExtensionRegistry()
	require.NoError(t, reg.Register(&deadlineHeader{}))
	assert.Error(t, reg.Register(&deadlineHeader{}))
}

func TestExtensionRegistryUnknownKey(t *testing.T) {
	reg := NewExtensionRegistry()
	_, err := reg.CreateHeader("never-registered", nil)
	assert.Error(t, err)
}

func TestExtensionRegistryUnregister(t *testing.T) {
	reg := NewExtensionRegistry()
	require.NoError(t, reg.Register(&deadlineHeader{}))
	reg.Unregister(&deadlineHeader{})
	require.NoError(t, reg.Register(&deadlineHeader{}))
}
