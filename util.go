package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"wordle-results/internal/logging"
)

type uptimeUnit struct {
	name string
	n    int
}

// formatUptime renders how long the server has been up, largest unit first.
// Zero-valued units are skipped except seconds, which always appear.
func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	units := []uptimeUnit{
		{"day", total / 86400},
		{"hour", total / 3600 % 24},
		{"minute", total / 60 % 60},
	}
	parts := lo.FilterMap(units, func(u uptimeUnit, _ int) (string, bool) {
		return fmt.Sprintf("%d %s%s", u.n, u.name, plural(u.n)), u.n > 0
	})
	parts = append(parts, fmt.Sprintf("%d second%s", total%60, plural(total%60)))
	return strings.Join(parts, ", ")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// getEnv reads a string from the environment or returns a fallback.
func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// getEnvDuration reads a time.Duration from the environment or returns a fallback.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		logging.Warn("Invalid duration for %s: %v, using default %v", key, err, fallback)
		return fallback
	}
	return d
}

// getEnvInt reads an int from the environment or returns a fallback.
func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		logging.Warn("Invalid int for %s: %v, using default %d", key, err, fallback)
		return fallback
	}
	return i
}

// getEnvBool reads a boolean flag from the environment or returns a fallback.
func getEnvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		logging.Warn("Invalid bool for %s: %v, using default %t", key, err, fallback)
		return fallback
	}
	return b
}

// getEnvList reads a comma-separated list, dropping blank entries.
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	items := lo.Compact(lo.Map(strings.Split(val, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	if len(items) == 0 {
		return fallback
	}
	return items
}
