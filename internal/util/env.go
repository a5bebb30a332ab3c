// Package util provides environment variable parsing helpers for careerbot.
package util

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Recognized spellings beyond what strconv accepts.
var boolWords = map[string]bool{
	"yes": true,
	"on":  true,
	"no":  false,
	"off": false,
}

// ParseBoolEnv reads a boolean environment variable. Unset, empty, or
// unrecognized values yield fallback. Accepts strconv booleans plus
// yes/no and on/off, case-insensitive.
func ParseBoolEnv(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		return v
	}
	if v, ok := boolWords[strings.ToLower(raw)]; ok {
		return v
	}
	slog.Warn("ParseBoolEnv: unrecognized boolean, using fallback", "key", key, "value", raw, "fallback", fallback)
	return fallback
}
