// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the VSTP daemon's TOML configuration and watches
// it for changes, mirroring the teacher's cmd/dtnd/configuration.go
// tomlConfig pattern.
package config

import (
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vishuRizz/vstp-demo/pkg/stream"
	"github.com/vishuRizz/vstp-demo/pkg/udp"
	"github.com/vishuRizz/vstp-demo/pkg/vstp"
)

// Config is the top-level daemon configuration.
type Config struct {
	Core     CoreConf     `toml:"core"`
	Logging  LoggingConf  `toml:"logging"`
	Stream   StreamConf   `toml:"stream"`
	Datagram DatagramConf `toml:"datagram"`
	TLS      TLSConf      `toml:"tls"`
}

// CoreConf holds the codec tuning knob exposed in §6.
type CoreConf struct {
	// MaxFrameSize defaults to vstp.DefaultMaxFrameSize when zero.
	MaxFrameSize int `toml:"max-frame-size"`
}

// LoggingConf drives the ambient logrus setup.
type LoggingConf struct {
	Level        string `toml:"level"`
	ReportCaller bool   `toml:"report-caller"`
	Format       string `toml:"format"`
}

// StreamConf configures the reliable stream transport (§4.4), including the
// dial-side TCP keepalive tuning in pkg/stream.DialTuning. Duration fields
// are Go duration strings (e.g. "3s"); the keepalive fields are seconds and
// the user-timeout field is milliseconds, matching pkg/stream.DialTuning.
type StreamConf struct {
	Listen            string `toml:"listen"`
	Peer              string `toml:"peer"`
	DialTimeout       string `toml:"dial-timeout"`
	KeepIdle          int    `toml:"keep-idle"`
	KeepIntvl         int    `toml:"keep-interval"`
	KeepCnt           int    `toml:"keep-count"`
	UserTimeoutMillis int    `toml:"user-timeout-ms"`
}

// DatagramConf configures the reliable-datagram transport (§4.3),
// decoded into udp.Config. Durations are written as Go duration strings
// (e.g. "100ms") and parsed via time.ParseDuration.
type DatagramConf struct {
	Listen            string `toml:"listen"`
	Peer              string `toml:"peer"`
	MaxRetries        int    `toml:"max-retries"`
	InitialRetryDelay string `toml:"initial-retry-delay"`
	MaxRetryDelay     string `toml:"max-retry-delay"`
	AckTimeout        string `toml:"ack-timeout"`
	UseCRC            bool   `toml:"use-crc"`
	AllowFrag         bool   `toml:"allow-frag"`
}

// TLSConf is the opaque-to-core TLS configuration surface of §6. The core
// never parses these fields; it only carries them through to the stream
// transport. The handshake timeout is a Go duration string.
type TLSConf struct {
	CertificatePath  string `toml:"certificate-path"`
	PrivateKeyPath   string `toml:"private-key-path"`
	VerifyClient     bool   `toml:"verify-client"`
	HandshakeTimeout string `toml:"handshake-timeout"`
}

// Load decodes a Config from path, filling in spec-mandated defaults for
// any zero-valued tuning knob.
func Load(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, err
	}

	if cfg.Core.MaxFrameSize == 0 {
		cfg.Core.MaxFrameSize = vstp.DefaultMaxFrameSize
	}

	def := udp.DefaultConfig()
	if cfg.Datagram.MaxRetries == 0 {
		cfg.Datagram.MaxRetries = def.MaxRetries
	}
	if !md.IsDefined("datagram", "use-crc") {
		cfg.Datagram.UseCRC = def.UseCRC
	}
	if !md.IsDefined("datagram", "allow-frag") {
		cfg.Datagram.AllowFrag = def.AllowFrag
	}

	dialDef := stream.DefaultDialTuning()
	if cfg.Stream.KeepIdle == 0 {
		cfg.Stream.KeepIdle = dialDef.KeepIdle
	}
	if cfg.Stream.KeepIntvl == 0 {
		cfg.Stream.KeepIntvl = dialDef.KeepIntvl
	}
	if cfg.Stream.KeepCnt == 0 {
		cfg.Stream.KeepCnt = dialDef.KeepCnt
	}
	if cfg.Stream.UserTimeoutMillis == 0 {
		cfg.Stream.UserTimeoutMillis = dialDef.UserTimeoutMillis
	}

	return cfg, nil
}

// DialTuning translates the decoded StreamConf into a pkg/stream.DialTuning,
// falling back to DefaultDialTuning's timeout for an unset or unparseable
// dial-timeout string.
func (c Config) DialTuning() stream.DialTuning {
	def := stream.DefaultDialTuning()
	return stream.DialTuning{
		Timeout:           parseDurationOr(c.Stream.DialTimeout, def.Timeout),
		KeepIdle:          c.Stream.KeepIdle,
		KeepIntvl:         c.Stream.KeepIntvl,
		KeepCnt:           c.Stream.KeepCnt,
		UserTimeoutMillis: c.Stream.UserTimeoutMillis,
	}
}

// UdpConfig translates the decoded DatagramConf into a pkg/udp.Config,
// falling back to the §4.3 defaults for any duration left unset or
// unparseable.
func (c Config) UdpConfig() udp.Config {
	def := udp.DefaultConfig()

	cfg := udp.Config{
		MaxRetries:        c.Datagram.MaxRetries,
		UseCRC:            c.Datagram.UseCRC,
		AllowFrag:         c.Datagram.AllowFrag,
		MaxFrameSize:      c.Core.MaxFrameSize,
		InitialRetryDelay: parseDurationOr(c.Datagram.InitialRetryDelay, def.InitialRetryDelay),
		MaxRetryDelay:     parseDurationOr(c.Datagram.MaxRetryDelay, def.MaxRetryDelay),
		AckTimeout:        parseDurationOr(c.Datagram.AckTimeout, def.AckTimeout),
	}
	return cfg
}

// TLSSurface translates the decoded TLSConf into the stream transport's
// TLS surface. An empty certificate or key path leaves TLS disabled.
func (c Config) TLSSurface() stream.TLSSurface {
	return stream.TLSSurface{
		CertificatePath:  c.TLS.CertificatePath,
		PrivateKeyPath:   c.TLS.PrivateKeyPath,
		VerifyClient:     c.TLS.VerifyClient,
		HandshakeTimeout: parseDurationOr(c.TLS.HandshakeTimeout, 10*time.Second),
	}
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
