package strategy

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyRunning = errors.New("strategy already running")
	ErrNotRunning     = errors.New("strategy not running")
	ErrNotPaused      = errors.New("strategy not paused")

	ErrInvalidConfig   = errors.New("invalid lifecycle config")
	ErrInvalidInterval = errors.New("timer interval must be positive")
)

// Hook names the strategy callback a Fault escaped from.
type Hook string

const (
	HookOnStart  Hook = "OnStart"
	HookOnStop   Hook = "OnStop"
	HookOnPause  Hook = "OnPause"
	HookOnResume Hook = "OnResume"
	HookOnTick   Hook = "OnTick"
	HookOnBar    Hook = "OnBar"
	HookOnTimer  Hook = "OnTimer"
)

// Fault wraps an error returned by a strategy hook. A Fault is fatal to the
// run: the lifecycle is stopped before it is returned.
type Fault struct {
	Hook Hook
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("strategy %s: %v", f.Hook, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }
