//go:build !windows

package terminal

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// processGroupExec returns exec middleware that runs external commands in their
// own process group. When the command's context is cancelled the whole group
// gets SIGINT, and SIGKILL once killTimeout has passed. A negative killTimeout
// kills immediately.
func processGroupExec(killTimeout time.Duration) func(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(ctx context.Context, args []string) error {
			hc := interp.HandlerCtx(ctx)
			path, err := interp.LookPathDir(hc.Dir, hc.Env, args[0])
			if err != nil {
				fmt.Fprintln(hc.Stderr, err)
				return interp.NewExitStatus(127)
			}

			cmd := exec.Cmd{
				Path:        path,
				Args:        args,
				Dir:         hc.Dir,
				Env:         execEnv(hc.Env),
				Stdin:       hc.Stdin,
				Stdout:      hc.Stdout,
				Stderr:      hc.Stderr,
				SysProcAttr: &syscall.SysProcAttr{Setpgid: true},
			}

			if err := cmd.Start(); err != nil {
				fmt.Fprintln(hc.Stderr, err)
				return interp.NewExitStatus(127)
			}
			pgid := cmd.Process.Pid

			waitDone := make(chan error, 1)
			go func() {
				waitDone <- cmd.Wait()
			}()

			select {
			case err := <-waitDone:
				return exitStatus(err)
			case <-ctx.Done():
				if killTimeout < 0 {
					_ = syscall.Kill(-pgid, syscall.SIGKILL)
					return exitStatus(<-waitDone)
				}

				_ = syscall.Kill(-pgid, syscall.SIGINT)
				select {
				case err := <-waitDone:
					return exitStatus(err)
				case <-time.After(killTimeout):
					_ = syscall.Kill(-pgid, syscall.SIGKILL)
					return exitStatus(<-waitDone)
				}
			}
		}
	}
}

// exitStatus converts the result of cmd.Wait into what the interpreter expects.
func exitStatus(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return err
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
		if status.Signaled() {
			return interp.NewExitStatus(uint8(128 + status.Signal()))
		}
		return interp.NewExitStatus(uint8(status.ExitStatus()))
	}
	return interp.NewExitStatus(1)
}

// execEnv lists the exported variables of env in KEY=VALUE form.
func execEnv(env expand.Environ) []string {
	var list []string
	env.Each(func(name string, vr expand.Variable) bool {
		if vr.Exported && vr.Kind == expand.String {
			list = append(list, name+"="+vr.String())
		}
		return true
	})
	return list
}
