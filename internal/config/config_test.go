// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vishuRizz/vstp-demo/pkg/stream"
	"github.com/vishuRizz/vstp-demo/pkg/vstp"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "vstpd.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFillsSpecDefaults(t *testing.T) {
	path := writeConfig(t, `
[stream]
listen = "127.0.0.1:4000"

[datagram]
listen = "127.0.0.1:4001"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, vstp.DefaultMaxFrameSize, cfg.Core.MaxFrameSize)
	assert.Equal(t, 3, cfg.Datagram.MaxRetries)
	assert.True(t, cfg.Datagram.UseCRC)
	assert.True(t, cfg.Datagram.AllowFrag)

	dialDef := stream.DefaultDialTuning()
	tuning := cfg.DialTuning()
	assert.Equal(t, dialDef.KeepIdle, tuning.KeepIdle)
	assert.Equal(t, dialDef.KeepIntvl, tuning.KeepIntvl)
	assert.Equal(t, dialDef.KeepCnt, tuning.KeepCnt)
	assert.Equal(t, dialDef.UserTimeoutMillis, tuning.UserTimeoutMillis)
	assert.Equal(t, dialDef.Timeout, tuning.Timeout)
}

func TestLoadHonorsExplicitOverrides(t *testing.T) {
	path := writeConfig(t, `
[core]
max-frame-size = 2048

[datagram]
max-retries = 7
use-crc = false
allow-frag = false
initial-retry-delay = "50ms"
ack-timeout = "1s"

[stream]
dial-timeout = "500ms"
keep-idle = 2
keep-interval = 1
keep-count = 5
user-timeout-ms = 1500
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2048, cfg.Core.MaxFrameSize)
	assert.Equal(t, 7, cfg.Datagram.MaxRetries)
	assert.False(t, cfg.Datagram.UseCRC)
	assert.False(t, cfg.Datagram.AllowFrag)

	tuning := cfg.DialTuning()
	assert.Equal(t, 500*time.Millisecond, tuning.Timeout)
	assert.Equal(t, 2, tuning.KeepIdle)
	assert.Equal(t, 1, tuning.KeepIntvl)
	assert.Equal(t, 5, tuning.KeepCnt)
	assert.Equal(t, 1500, tuning.UserTimeoutMillis)

	udpCfg := cfg.UdpConfig()
	assert.Equal(t, 50*time.Millisecond, udpCfg.InitialRetryDelay)
	assert.Equal(t, time.Second, udpCfg.AckTimeout)
	// Unset durations fall back to the §4.3 defaults.
	assert.Equal(t, 5*time.Second, udpCfg.MaxRetryDelay)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "info"
`)

	w, initial, err := Watch(path)
	require.NoError(t, err)
	defer func() { _ = w.Close() }()
	assert.Equal(t, "info", initial.Logging.Level)

	require.NoError(t, os.WriteFile(path, []byte(`
[logging]
level = "debug"
`), 0o644))

	select {
	case cfg := <-w.Updates:
		assert.Equal(t, "debug", cfg.Logging.Level)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never republished the reloaded config")
	}
}
