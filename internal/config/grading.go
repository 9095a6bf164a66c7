package config

import (
	"strings"
	"time"
)

const (
	GradingModeAsync = "async"
	GradingModeSync  = "sync"
)

type GradingConfig struct {
	Mode            string
	RunTimeout      time.Duration
	LintTimeout     time.Duration
	GradingDeadline time.Duration
	SweepInterval   time.Duration
}

func NewGradingConfig() *GradingConfig {
	mode := strings.ToLower(getEnv("GRADING_MODE", GradingModeAsync))
	if mode != GradingModeSync {
		mode = GradingModeAsync
	}
	return &GradingConfig{
		Mode:            mode,
		RunTimeout:      getSecondsEnv("RUN_TIMEOUT_SEC", 15),
		LintTimeout:     getSecondsEnv("LINT_TIMEOUT_SEC", 10),
		GradingDeadline: getSecondsEnv("GRADING_DEADLINE_SEC", 300),
		SweepInterval:   getSecondsEnv("SWEEP_INTERVAL_SEC", 30),
	}
}
