// Package wire implements the line-framed, dot-stuffed transaction layer
// shared by the NNTP client and server sessions: CRLF framing on
// output, CRLF-or-bare-LF framing on input, and SMTP/NNTP-style dot-stuffed
// multi-line blocks.
package wire

import (
	"bufio"
	"io"
	"net"
	"time"

	"github.com/ewxrjk/inntest/internal/stopper"
	"github.com/pkg/errors"
)

// pollInterval is the granularity at which a blocking read re-checks the
// stop signal.
const pollInterval = 1 * time.Second

// deadliner is satisfied by net.Conn; Conn uses it, when present, to turn an
// otherwise-uninterruptible blocking read into one that periodically
// returns so the stop coordinator can be polled.
type deadliner interface {
	SetReadDeadline(time.Time) error
}

// Conn wraps a connection with the line/block primitives. It is safe to use
// with any io.ReadWriter, including net.Conn and in-memory pipes used by
// tests (which simply won't support interruptible polling).
type Conn struct {
	w    *bufio.Writer
	r    *bufio.Reader
	dl   deadliner // non-nil if rw supports read deadlines
	stop *stopper.Coordinator
	eol  string
}

// New wraps rw for line-framed IO. stop may be nil, in which case reads
// block uninterruptibly (used by the low-overhead unit tests); non-nil stop
// is checked at one-second granularity during blocking reads,
// provided rw is a net.Conn (or otherwise supports SetReadDeadline).
func New(rw io.ReadWriter, stop *stopper.Coordinator) *Conn {
	c := &Conn{
		w:    bufio.NewWriter(rw),
		r:    bufio.NewReader(rw),
		stop: stop,
		eol:  "\r\n",
	}
	if dl, ok := rw.(deadliner); ok {
		c.dl = dl
	}
	return c
}

// SendLine writes line followed by CRLF and flushes.
func (c *Conn) SendLine(line string) error {
	if _, err := c.w.WriteString(line); err != nil {
		return errors.Wrap(err, "write line")
	}
	if _, err := c.w.WriteString(c.eol); err != nil {
		return errors.Wrap(err, "write eol")
	}
	return errors.Wrap(c.w.Flush(), "flush")
}

// SendBlock writes lines as a dot-stuffed multi-line block: any line whose
// first byte is '.' is doubled, and the block is terminated by a line
// consisting solely of '.'.
func (c *Conn) SendBlock(lines []string) error {
	for _, line := range lines {
		if len(line) > 0 && line[0] == '.' {
			if err := c.writeRaw("." + line); err != nil {
				return err
			}
		} else {
			if err := c.writeRaw(line); err != nil {
				return err
			}
		}
	}
	return c.SendLine(".")
}

func (c *Conn) writeRaw(line string) error {
	if _, err := c.w.WriteString(line); err != nil {
		return errors.Wrap(err, "write line")
	}
	if _, err := c.w.WriteString(c.eol); err != nil {
		return errors.Wrap(err, "write eol")
	}
	return nil
}

// ReceiveLine reads one line, accepting either a bare LF or a CRLF
// terminator on input, and stripping it. It returns ("", io.EOF) at
// end-of-source; callers that want a boolean ok result instead of a
// distinguished error should use ReceiveLineOrNil.
func (c *Conn) ReceiveLine() (string, error) {
	if c.stop != nil {
		if err := c.stop.Check(); err != nil {
			return "", err
		}
	}

	var line []byte
	for {
		b, err := c.readByteInterruptible()
		if err != nil {
			return "", err
		}
		if b == nil {
			// end of source
			if len(line) == 0 {
				return "", io.EOF
			}
			return string(line), nil
		}
		if *b == '\n' {
			if n := len(line); n > 0 && line[n-1] == '\r' {
				line = line[:n-1]
			}
			return string(line), nil
		}
		line = append(line, *b)
	}
}

// ReceiveLineOrNil reads a line and returns (line, true) on success, or
// ("", false) at end-of-source.
func (c *Conn) ReceiveLineOrNil() (string, bool, error) {
	line, err := c.ReceiveLine()
	if err == io.EOF {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return line, true, nil
}

// readByteInterruptible reads a single byte. When the underlying connection
// supports read deadlines and a stop coordinator is attached, it polls at
// pollInterval so a cooperative Stop is observed within one second (spec
// §4.1, §5); otherwise it blocks normally.
func (c *Conn) readByteInterruptible() (*byte, error) {
	if c.dl == nil || c.stop == nil {
		b, err := c.r.ReadByte()
		if err == nil {
			return &b, nil
		}
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read byte")
	}

	for {
		if err := c.stop.Check(); err != nil {
			return nil, err
		}

		c.dl.SetReadDeadline(time.Now().Add(pollInterval))
		b, err := c.r.ReadByte()
		if err == nil {
			c.dl.SetReadDeadline(time.Time{})
			return &b, nil
		}
		if err == io.EOF {
			c.dl.SetReadDeadline(time.Time{})
			return nil, nil
		}
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			continue
		}
		return nil, errors.Wrap(err, "read byte")
	}
}

// ReceiveBlock reads a dot-stuffed multi-line block: lines are
// read until one equal to "." is seen (which terminates the block and is
// not included in the result); a leading "." on any other line is stripped.
// Returns (nil, nil) if the underlying source reached EOF before the
// terminator, propagating the "nil block" contract.
func (c *Conn) ReceiveBlock() ([]string, error) {
	lines := []string{}
	for {
		line, ok, err := c.ReceiveLineOrNil()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		if line == "." {
			return lines, nil
		}
		if len(line) > 0 && line[0] == '.' {
			line = line[1:]
		}
		lines = append(lines, line)
	}
}
