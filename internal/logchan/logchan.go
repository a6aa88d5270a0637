package logchan

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Colorized printing functions for the interactive channel, one per message
// kind, in the style of fatih/color Fprintf wrappers.
//
// Info is green for normal progress notices, Warn is bright magenta for
// cautions, Fail is red for errors, and Ask is cyan for prompts.
var (
	info = color.New(color.FgGreen).FprintfFunc()
	warn = color.New(color.FgHiMagenta).FprintfFunc()
	fail = color.New(color.FgRed).FprintfFunc()
	ask  = color.New(color.FgCyan).FprintfFunc()
)

// Channel is the process-wide output state for one installer run: a
// persistent log sink that receives everything, and the saved interactive
// channel (the user's terminal) that receives progress notices and prompts.
//
// Messages sent with Say/Warnf/Errorf go to both sinks, so the user sees
// progress while the log stays complete. Prompt writes only to the
// interactive channel and is never logged. External build commands write
// directly into LogWriter, which is why a stage failure is only visible in
// the log until the error path repeats it on screen.
type Channel struct {
	logPath string
	logFile *os.File // nil when constructed around a plain writer

	mu     sync.Mutex
	log    io.Writer
	screen io.Writer
	in     *bufio.Reader
	tty    bool
	closed bool

	restore sync.Once
}

// Open creates (or truncates) the log file at path and returns a Channel
// wired to the real terminal. The log file stays open for the remainder of
// the run; Restore closes it exactly once.
func Open(path string) (*Channel, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	ch := New(f, os.Stdout, os.Stdin)
	ch.logPath = path
	ch.logFile = f
	ch.tty = term.IsTerminal(int(os.Stdin.Fd()))
	return ch, nil
}

// New builds a Channel around arbitrary sinks. Open uses it internally;
// tests use it to capture both streams.
func New(log, screen io.Writer, in io.Reader) *Channel {
	return &Channel{
		log:    log,
		screen: screen,
		in:     bufio.NewReader(in),
		tty:    true,
	}
}

// LogPath returns the path of the persistent log file, or "" when the
// Channel was built around a plain writer.
func (c *Channel) LogPath() string { return c.logPath }

// Interactive reports whether prompts can be answered, i.e. stdin is a
// terminal.
func (c *Channel) Interactive() bool { return c.tty }

// Say prints a progress notice on the interactive channel and records the
// same line in the log.
func (c *Channel) Say(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info(c.screen, format+"\n", a...)
	c.logf(format, a...)
}

// Warnf is Say at warning level.
func (c *Channel) Warnf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	warn(c.screen, format+"\n", a...)
	c.logf(format, a...)
}

// Errorf is Say at error level. It still works after Restore, so the
// failure report pointing at the log file reaches the user.
func (c *Channel) Errorf(format string, a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fail(c.screen, format+"\n", a...)
	c.logf(format, a...)
}

// Prompt writes msg to the interactive channel only — never to the log —
// and blocks reading one line of input. The returned answer has the
// trailing newline trimmed.
func (c *Channel) Prompt(msg string) (string, error) {
	c.mu.Lock()
	ask(c.screen, "%s", msg)
	c.mu.Unlock()

	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// LogWriter returns the sink external commands should use for stdout and
// stderr. Writes after Restore are dropped rather than failing the caller.
func (c *Channel) LogWriter() io.Writer { return logWriter{c} }

// Screen returns the interactive sink, for output that must bypass the log
// entirely (download progress bars).
func (c *Channel) Screen() io.Writer { return c.screen }

// Restore tears the redirection down exactly once: the log file is flushed
// and closed, and only the interactive channel remains usable. Safe to call
// multiple times.
func (c *Channel) Restore() {
	c.restore.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.closed = true
		if c.logFile != nil {
			_ = c.logFile.Close()
		}
	})
}

// Discard restores the channel and deletes the log file. Used when the user
// declines the final confirmation: no real work happened, so there is
// nothing worth keeping.
func (c *Channel) Discard() {
	c.Restore()
	if c.logPath != "" {
		_ = os.Remove(c.logPath)
	}
}

// logf appends one line to the log sink. Callers hold c.mu.
func (c *Channel) logf(format string, a ...any) {
	if c.closed {
		return
	}
	fmt.Fprintf(c.log, format+"\n", a...)
}

type logWriter struct{ c *Channel }

func (w logWriter) Write(p []byte) (int, error) {
	w.c.mu.Lock()
	defer w.c.mu.Unlock()
	if w.c.closed {
		return len(p), nil
	}
	return w.c.log.Write(p)
}
