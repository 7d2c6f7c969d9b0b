package utils

import (
	"fmt"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

type noPanicFunc func()
type noPanicFuncWErr func() error

func (f noPanicFunc) run() {
	defer internalRecover()
	f()
}

func (f noPanicFuncWErr) run() (err error) {
	defer func() {
		if recoverErr := recoverToErr(); recoverErr != nil {
			err = recoverErr
		}
	}()
	return f()
}

// SafeAsync runs function in a new goroutine; a panic is logged instead of crashing the process.
func SafeAsync(function noPanicFunc) {
	go function.run()
}

// SafeSync runs function and converts a panic into an error.
func SafeSync(function noPanicFuncWErr) error {
	return function.run()
}

func internalRecover() {
	if err := recover(); err != nil {
		log.Errorf("Background task failed with panic: %v", err)
		log.Tracef("Stacktrace: %v", string(debug.Stack()))
	}
}

func recoverToErr() error {
	if e := recover(); e != nil {
		log.Errorf("Task failed with panic: %v", e)
		log.Tracef("Stacktrace: %v", string(debug.Stack()))
		switch x := e.(type) {
		case error:
			return fmt.Errorf("panic: %w", x)
		default:
			return fmt.Errorf("panic: %v", x)
		}
	}
	return nil
}
