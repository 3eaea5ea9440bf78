package gdbmi

// Record is one demultiplexed line of gdb output: a ResultRecord,
// an OutOfBandRecord, or a StreamRecord. Each record is produced from exactly
// one line and handed off to exactly one destination; nothing reads a record
// concurrently after dispatch.
type Record interface {
	record()
}

// ResultClass classifies the reply to a command.
type ResultClass int

const (
	// ResultDone indicates the command completed.
	ResultDone ResultClass = iota
	// ResultRunning indicates the command resumed the debuggee.
	ResultRunning
	// ResultConnected indicates a target connection was established.
	ResultConnected
	// ResultError indicates the command failed; the payload carries "msg".
	ResultError
	// ResultExit indicates gdb is exiting.
	ResultExit
)

// String returns the MI keyword for the class.
func (c ResultClass) String() string {
	switch c {
	case ResultDone:
		return "done"
	case ResultRunning:
		return "running"
	case ResultConnected:
		return "connected"
	case ResultError:
		return "error"
	case ResultExit:
		return "exit"
	default:
		return "unknown"
	}
}

// ResultRecord is the reply to exactly one previously sent command.
type ResultRecord struct {
	// Token is the optional numeric token prefix, "" when absent. The engine
	// never emits tokens; gdb echoes whatever was sent.
	Token string

	// Class classifies the outcome.
	Class ResultClass

	// Payload holds the result fields. Never nil; may be empty.
	Payload *Map
}

func (ResultRecord) record() {}

// OutOfBandChannel identifies which asynchronous channel a notification
// arrived on.
type OutOfBandChannel int

const (
	// ChannelExec carries execution state changes (running, stopped).
	ChannelExec OutOfBandChannel = iota
	// ChannelNotify carries general notifications (breakpoints, threads...).
	ChannelNotify
	// ChannelStatus carries progress information for slow operations.
	ChannelStatus
)

// String returns a human-readable channel name.
func (c OutOfBandChannel) String() string {
	switch c {
	case ChannelExec:
		return "exec"
	case ChannelNotify:
		return "notify"
	case ChannelStatus:
		return "status"
	default:
		return "unknown"
	}
}

// OutOfBandRecord is an unsolicited notification not tied to any command:
// execution state changes, breakpoint modifications, thread events.
type OutOfBandRecord struct {
	// Token is the optional numeric token prefix, "" when absent.
	Token string

	// Channel is the asynchronous channel the record arrived on.
	Channel OutOfBandChannel

	// Class is the notification keyword, e.g. "stopped" or
	// "breakpoint-created".
	Class string

	// Payload holds the notification fields. Never nil; may be empty.
	Payload *Map
}

func (OutOfBandRecord) record() {}

// Exec-channel classes that drive the shared execution flag.
const (
	classRunning = "running"
	classStopped = "stopped"
)

// StreamChannel identifies the origin of raw pass-through text.
type StreamChannel int

const (
	// StreamConsole is gdb's console output ("~").
	StreamConsole StreamChannel = iota
	// StreamTarget is output produced by the target ("@").
	StreamTarget
	// StreamLog is gdb's own log/debug output ("&").
	StreamLog
)

// String returns a human-readable channel name.
func (c StreamChannel) String() string {
	switch c {
	case StreamConsole:
		return "console"
	case StreamTarget:
		return "target"
	case StreamLog:
		return "log"
	default:
		return "unknown"
	}
}

// StreamRecord is raw display text with its escapes already decoded.
type StreamRecord struct {
	Channel StreamChannel
	Text    string
}

func (StreamRecord) record() {}
