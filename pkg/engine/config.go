package engine

import (
	"os"
	"strconv"
	"time"
)

// RunnerConfig controls runner behavior.
type RunnerConfig struct {
	// DefaultTimeout bounds observers that do not declare their own. Default 5s.
	DefaultTimeout time.Duration

	// PreserveCauses attaches the original failure as the cause of the
	// generic observer-execution error instead of collapsing it. The error
	// code is unchanged either way, so callers matching on the code are
	// unaffected. Default false.
	PreserveCauses bool

	// AbortOnSystemError stops the whole batch as soon as an observer raises
	// a SystemError, instead of letting every record report its own
	// problems. Default false.
	AbortOnSystemError bool
}

// DefaultRunnerConfig returns the default runner configuration.
func DefaultRunnerConfig() *RunnerConfig {
	return &RunnerConfig{
		DefaultTimeout: DefaultTimeout,
	}
}

// RunnerConfigFromEnv loads config from environment variables.
// STRUCTHUB_OBSERVER_TIMEOUT_MS, STRUCTHUB_PRESERVE_CAUSES,
// STRUCTHUB_ABORT_ON_SYSTEM_ERROR
func RunnerConfigFromEnv() *RunnerConfig {
	cfg := DefaultRunnerConfig()

	if v := os.Getenv("STRUCTHUB_OBSERVER_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultTimeout = time.Duration(n) * time.Millisecond
		}
	}

	if v := os.Getenv("STRUCTHUB_PRESERVE_CAUSES"); v != "" {
		cfg.PreserveCauses, _ = strconv.ParseBool(v)
	}

	if v := os.Getenv("STRUCTHUB_ABORT_ON_SYSTEM_ERROR"); v != "" {
		cfg.AbortOnSystemError, _ = strconv.ParseBool(v)
	}

	return cfg
}
