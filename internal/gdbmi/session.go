package gdbmi

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// defaultShutdownTimeout bounds how long Close waits for gdb to exit after
// its stdin is closed before killing it.
var defaultShutdownTimeout = 2 * time.Second

// OutOfBandSink receives unsolicited notifications. Send is invoked
// synchronously from the session's reader goroutine for the full session
// lifetime; implementations touching caller-visible state must arrange their
// own cross-thread hand-off.
type OutOfBandSink interface {
	Send(record OutOfBandRecord)
}

// StreamSink receives console/target/log pass-through text, also from the
// reader goroutine. Optional: sessions without one drop stream records.
type StreamSink interface {
	Stream(record StreamRecord)
}

// Config describes how to launch gdb.
type Config struct {
	// Path is the gdb executable. Defaults to "gdb".
	Path string

	// Args are extra arguments appended after the fixed MI flags.
	Args []string

	// TTY is the terminal device for the debuggee's own I/O. Redirecting it
	// keeps debuggee output from interleaving with protocol lines. Empty
	// leaves the debuggee on gdb's terminal.
	TTY string

	// Stream, when set, receives console/target/log records.
	Stream StreamSink

	// OnParseError, when set, is told about malformed protocol lines. The
	// line is dropped either way; parsing resumes at the next line.
	OnParseError func(err error)
}

// Session owns a gdb subprocess speaking the MI protocol.
//
// Execute and ExecuteLater must be called from one logical executor; the
// session serializes writes but not the busy-check/write/reply sequence.
type Session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	sink   OutOfBandSink
	stream StreamSink

	onParseError func(error)

	// running is flipped only by the reader goroutine, on exec-channel
	// async records, and read by the executor before every write.
	running atomic.Bool

	results *resultQueue

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// Spawn launches gdb in MI interpreter mode and starts the reader goroutine.
// The sink is required. There is no automatic restart: when gdb dies, every
// pending and future Execute returns ErrQuit and the handle must be dropped.
func Spawn(cfg Config, sink OutOfBandSink) (*Session, error) {
	if sink == nil {
		return nil, errors.New("gdbmi: out-of-band sink is required")
	}

	path := cfg.Path
	if path == "" {
		path = "gdb"
	}
	args := []string{"--interpreter=mi"}
	if cfg.TTY != "" {
		args = append(args, "--tty="+cfg.TTY)
	}
	args = append(args, cfg.Args...)

	cmd := exec.Command(path, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("gdbmi: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("gdbmi: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("gdbmi: spawn %s: %w", path, err)
	}

	s := newSession(stdin, stdout, cfg, sink)
	s.cmd = cmd
	return s, nil
}

// newSession wires a session over arbitrary pipes and starts the reader.
// Spawn uses it with the subprocess pipes; tests use it with fakes.
func newSession(stdin io.WriteCloser, stdout io.Reader, cfg Config, sink OutOfBandSink) *Session {
	s := &Session{
		stdin:        stdin,
		sink:         sink,
		stream:       cfg.Stream,
		onParseError: cfg.OnParseError,
		results:      newResultQueue(),
		done:         make(chan struct{}),
	}
	go s.readLoop(stdout)
	return s
}

// IsRunning reports whether the debuggee is currently executing. While it
// returns true, Execute returns ErrBusy without performing any I/O.
func (s *Session) IsRunning() bool {
	return s.running.Load()
}

// Done is closed when the reader observes EOF on gdb's output pipe, i.e.
// when the session is dead.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Execute serializes the command, writes it to gdb and blocks until the
// matching result record arrives.
//
// Returns ErrBusy without any I/O while the debuggee is running, and ErrQuit
// once the session is dead. Write failures surface as I/O errors distinct
// from both. No timeout is applied: an unresponsive gdb blocks the caller
// until Interrupt (or process death) produces a reply.
func (s *Session) Execute(command Command) (ResultRecord, error) {
	if s.running.Load() {
		return ResultRecord{}, ErrBusy
	}
	if err := s.write(command); err != nil {
		return ResultRecord{}, err
	}
	record, ok := s.results.pop()
	if !ok {
		return ResultRecord{}, ErrQuit
	}
	return record, nil
}

// ExecuteLater behaves like Execute but discards the result record. It still
// consumes exactly one reply, so calls must stay in strict alternation with
// gdb's actual reply order; interleaving it incorrectly with Execute breaks
// the uncorrelated matching discipline.
func (s *Session) ExecuteLater(command Command) error {
	if s.running.Load() {
		return ErrBusy
	}
	if err := s.write(command); err != nil {
		return err
	}
	if _, ok := s.results.pop(); !ok {
		return ErrQuit
	}
	return nil
}

// Interrupt delivers SIGINT to gdb to break a running execution. Delivery
// failure is reported but not fatal to the session. The interrupt does not
// unblock an Execute call already waiting for a reply; gdb answers once the
// debuggee actually stops.
func (s *Session) Interrupt() error {
	if s.cmd == nil || s.cmd.Process == nil {
		return errors.New("gdbmi: no process to interrupt")
	}
	if err := unix.Kill(s.cmd.Process.Pid, unix.SIGINT); err != nil {
		return fmt.Errorf("gdbmi: interrupt gdb: %w", err)
	}
	return nil
}

// Close shuts the session down: gdb's stdin is closed, and the process is
// killed if it does not exit within a grace period.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		_ = s.stdin.Close()
		if s.cmd == nil {
			return
		}

		waited := make(chan struct{})
		go func() {
			_ = s.cmd.Wait()
			close(waited)
		}()
		select {
		case <-waited:
		case <-time.After(defaultShutdownTimeout):
			if s.cmd.Process != nil {
				_ = s.cmd.Process.Kill()
			}
			<-waited
		}
	})
	return nil
}

func (s *Session) write(command Command) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := command.Serialize(s.stdin); err != nil {
		return fmt.Errorf("gdbmi: write %s: %w", command.Operation, err)
	}
	return nil
}

// readLoop owns the read end of gdb's output pipe for the session lifetime.
// It parses each line and routes the record to its single destination. On
// EOF the result queue closes, turning every pending and future Execute into
// ErrQuit.
func (s *Session) readLoop(stdout io.Reader) {
	reader := bufio.NewReader(stdout)
	for {
		line, err := reader.ReadString('\n')
		if trimmed := strings.TrimSpace(line); trimmed != "" && trimmed != "(gdb)" {
			s.dispatchLine(trimmed)
		}
		if err != nil {
			s.results.close()
			close(s.done)
			return
		}
	}
}

func (s *Session) dispatchLine(line string) {
	record, err := ParseLine(line)
	if err != nil {
		if s.onParseError != nil {
			s.onParseError(err)
		}
		return
	}

	switch r := record.(type) {
	case StreamRecord:
		if s.stream != nil {
			s.stream.Stream(r)
		}
	case OutOfBandRecord:
		if r.Channel == ChannelExec {
			switch r.Class {
			case classRunning:
				s.running.Store(true)
			case classStopped:
				s.running.Store(false)
			}
		}
		s.sink.Send(r)
	case ResultRecord:
		s.results.push(r)
	}
}
