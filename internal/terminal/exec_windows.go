//go:build windows

package terminal

import (
	"time"

	"mvdan.cc/sh/v3/interp"
)

// processGroupExec defers to the interpreter's handler, which kills the
// process when the command's context is cancelled.
func processGroupExec(killTimeout time.Duration) func(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return interp.DefaultExecHandler(killTimeout)
	}
}
