package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// getEnv gets an environment variable with a fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an environment variable as an integer with a fallback
func getIntEnv(key string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return value
}

// getSecondsEnv reads a positive number of seconds
func getSecondsEnv(key string, fallbackSec int) time.Duration {
	sec := getIntEnv(key, fallbackSec)
	if sec <= 0 {
		sec = fallbackSec
	}
	return time.Duration(sec) * time.Second
}

func getBoolEnv(key string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	return err == nil && b
}
