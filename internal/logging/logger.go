// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Stage names tag the narrated lines of an example run, one per step of the
// connect / execute / inspect sequence.
const (
	StageConfiguration = "CONFIGURATION"
	StageConnection    = "CONNECTION"
	StageAuth          = "AUTHENTICATION"
	StageStateful      = "GO STATEFUL"
	StagePreload       = "PRELOAD INPUT"
	StageDataInput     = "DATA INPUT"
	StageUpload        = "DATA UPLOAD"
	StageExecOption    = "EXEC OPTION"
	StageExecution     = "EXECUTION"
	StageDataOutput    = "DATA OUTPUT"
	StageExport        = "DATA EXPORT"
	StageCleanup       = "CLEANUP"
)

// Setup points the global zerolog logger at w (stderr when nil) using a
// console writer and applies level. Unknown levels fall back to info.
func Setup(level string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC822})
	zerolog.SetGlobalLevel(ParseLevel(level))
}

// ParseLevel maps a configuration string to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Stage returns an info event tagged with the given run stage.
func Stage(stage string) *zerolog.Event {
	return log.Info().Str("stage", stage)
}
