/* utils.go
 * Utility functions used across the application
 * Authors: Gamers Bot contributors
 */

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gamers-bot/config"

	"github.com/rs/zerolog"
)

// convertStrToBool converts a string of true or false into a boolean for comparisons
// Preconditions: Receives string containing either true or false (case insensitive)
// Postconditions: Returns boolean value or an error if the string is not true or false
func convertStrToBool(str string) (bool, error) {
	str = strings.TrimSpace(str)
	str = strings.ToLower(str)

	if str == "true" {
		return true, nil
	} else if str == "false" {
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean string")
}

// newLogger builds the process logger. LOG_PRETTY switches to a console writer for local runs
func newLogger(cfg config.Config, out io.Writer) zerolog.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = zerolog.InfoLevel
	}
	if cfg.LogPretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
