// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vstperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelsSupportErrorsIs(t *testing.T) {
	wrapped := fmtWrap(ErrTimeout)
	assert.ErrorIs(t, wrapped, ErrTimeout)
	assert.NotErrorIs(t, wrapped, ErrInvalidMagic)
}

func TestParameterizedKindsSupportErrorsAs(t *testing.T) {
	var err error = &CrcMismatch{Expected: 1, Got: 2}

	var target *CrcMismatch
	assert.True(t, errors.As(err, &target))
	assert.Equal(t, uint32(1), target.Expected)
	assert.Equal(t, uint32(2), target.Got)

	var wrongKind *FrameTooLarge
	assert.False(t, errors.As(err, &wrongKind))
}

func TestNewIoWrapsAndUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := NewIo(cause)
	assert.ErrorIs(t, err, cause)

	var io *Io
	assert.True(t, errors.As(err, &io))
	assert.Same(t, cause, io.Cause)
}

func TestNewIoNilCauseReturnsNil(t *testing.T) {
	assert.Nil(t, NewIo(nil))
}

func fmtWrap(err error) error {
	return &wrapper{err}
}

type wrapper struct{ inner error }

func (w *wrapper) Error() string { return "wrapped: " + w.inner.Error() }
func (w *wrapper) Unwrap() error { return w.inner }
