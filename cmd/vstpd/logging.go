// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vishuRizz/vstp-demo/internal/config"
)

// applyLogging wires a LoggingConf onto the shared logrus logger, mirroring
// the teacher's cmd/dtnd parseCore logging block.
func applyLogging(conf config.LoggingConf) {
	if conf.Level != "" {
		if lvl, err := log.ParseLevel(conf.Level); err != nil {
			log.WithFields(log.Fields{
				"level":    conf.Level,
				"error":    err,
				"provided": "panic,fatal,error,warn,info,debug,trace",
			}).Warn("Failed to set log level. Please select one of the provided ones")
		} else {
			log.SetLevel(lvl)
		}
	}

	log.SetReportCaller(conf.ReportCaller)

	switch conf.Format {
	case "", "text":
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})
	case "json":
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	default:
		log.Warn("Unknown logging format")
	}
}
