// Package trigger runs the harness's configured "trigger" shell command: a
// propagation test may need to nudge the subject server into pulling from
// the loopback peer rather than waiting passively.
//
// The command is run under a pseudo-terminal via github.com/kr/pty rather
// than bare pipes, so a trigger script that itself expects an interactive
// terminal (common for innd control scripts) behaves the same way under
// the harness as it would run by hand.
package trigger

import (
	"bufio"
	"context"
	"os/exec"
	"time"

	"github.com/kr/pty"

	"github.com/ewxrjk/inntest/pkg/nntplog"
)

// Run executes shell under /bin/sh -c, attached to a pty, and waits up to
// timeout for it to complete. Output is captured and returned; a timeout
// kills the process and returns context.DeadlineExceeded.
func Run(shell string, timeout time.Duration) (output string, err error) {
	if shell == "" {
		return "", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", shell)
	f, err := pty.Start(cmd)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf []byte
	r := bufio.NewReader(f)
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		chunk := make([]byte, 4096)
		for {
			n, rerr := r.Read(chunk)
			if n > 0 {
				buf = append(buf, chunk[:n]...)
			}
			if rerr != nil {
				return
			}
		}
	}()

	waitErr := cmd.Wait()
	<-readDoneOrTimeout(readDone, 100*time.Millisecond)

	if ctx.Err() == context.DeadlineExceeded {
		nntplog.Warn("trigger: %q timed out after %v", shell, timeout)
		return string(buf), ctx.Err()
	}
	if waitErr != nil {
		nntplog.Warn("trigger: %q exited with error: %v", shell, waitErr)
	}
	return string(buf), waitErr
}

// readDoneOrTimeout returns a channel that closes when either ch closes or
// d elapses, so Run doesn't block forever on a pty reader that never sees
// EOF from a backgrounded grandchild process.
func readDoneOrTimeout(ch <-chan struct{}, d time.Duration) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		defer close(out)
		select {
		case <-ch:
		case <-time.After(d):
		}
	}()
	return out
}
