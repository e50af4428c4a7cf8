package cli

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"time"

	"github.com/pkg/errors"
)

// Session is an interactive, prompt-driven shell.
type Session interface {
	// Send writes value followed by a newline and delivers the response that
	// precedes the next prompt. opts alter that behaviour.
	Send(ctx context.Context, value string, opts ...SendOption) (string, error)
	io.Closer
}

// SendOption configures a single Send.
type SendOption func(*sendConfig)

type sendConfig struct {
	sentinel    string
	noNewline   bool
	resetPrompt bool
	noWait      bool
}

// WaitFor ends the response at the first line matching pattern instead of
// the prompt.
func WaitFor(pattern string) SendOption {
	return func(c *sendConfig) { c.sentinel = pattern }
}

// NoNewline sends the value as is.
func NoNewline() SendOption {
	return func(c *sendConfig) { c.noNewline = true }
}

// ResetPrompt takes the last line of the response as the new prompt. The
// response itself is discarded.
func ResetPrompt() SendOption {
	return func(c *sendConfig) { c.resetPrompt = true }
}

// NoWait returns once the value is written.
func NoWait() SendOption {
	return func(c *sendConfig) { c.noWait = true }
}

// SessionOption configures a session.
type SessionOption func(*SessionConfig)

// WithCommands runs cmds once the prompt is known, discarding their output.
func WithCommands(cmds ...string) SessionOption {
	return func(c *SessionConfig) { c.initCmds = cmds }
}

// WithPrompt sets the prompt pattern, which disables detection. An empty
// pattern leaves the session without a prompt; every Send then needs WaitFor.
func WithPrompt(pattern string) SessionOption {
	return func(c *SessionConfig) {
		c.detect = false
		c.prompt = pattern
	}
}

// WithTimeout sets the silence after which prompt detection takes the last
// line read as the prompt.
func WithTimeout(timeout time.Duration) SessionOption {
	return func(c *SessionConfig) { c.quiet = timeout }
}

// SessionConfig holds the session options.
type SessionConfig struct {
	initCmds []string
	detect   bool
	prompt   string
	quiet    time.Duration
}

var defaultSessionConfig = SessionConfig{detect: true, quiet: time.Second}

// NewSessionConfig applies opts over the defaults: prompt detection after
// one second of silence.
func NewSessionConfig(opts ...SessionOption) *SessionConfig {
	cfg := defaultSessionConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// PromptSession is a Session over a shell transport.
type PromptSession struct {
	cfg    SessionConfig
	tport  io.ReadWriteCloser
	prompt *regexp.Regexp

	chunks chan []byte
	done   chan struct{}
}

// NewCliSession starts reading from tport, consumes the first prompt and runs
// the initial commands. ctx bounds all of it.
func NewCliSession(ctx context.Context, tport io.ReadWriteCloser, cfg *SessionConfig) (*PromptSession, error) {
	s := &PromptSession{
		cfg:    *cfg,
		tport:  tport,
		chunks: make(chan []byte),
		done:   make(chan struct{}),
	}
	if s.cfg.quiet <= 0 {
		s.cfg.quiet = defaultSessionConfig.quiet
	}
	if s.cfg.prompt != "" {
		re, err := regexp.Compile(s.cfg.prompt)
		if err != nil {
			return nil, errors.Wrap(err, "invalid prompt pattern")
		}
		s.prompt = re
	}

	go s.read()

	var err error
	switch {
	case s.cfg.detect:
		err = s.detectPrompt(ctx)
	case s.prompt != nil:
		_, err = s.until(ctx, s.prompt)
	}
	if err != nil {
		_ = s.Close()
		return nil, errors.Wrap(err, "no cli prompt")
	}

	for _, cmd := range s.cfg.initCmds {
		if _, err = s.Send(ctx, cmd); err != nil {
			_ = s.Close()
			return nil, errors.Wrapf(err, "initial command %q failed", cmd)
		}
	}
	return s, nil
}

// Send implements Session.
func (s *PromptSession) Send(ctx context.Context, value string, opts ...SendOption) (string, error) {
	c := sendConfig{}
	for _, opt := range opts {
		opt(&c)
	}

	end := s.prompt
	if c.sentinel != "" {
		re, err := regexp.Compile(c.sentinel)
		if err != nil {
			return "", errors.Wrap(err, "invalid WaitFor value")
		}
		end = re
	}
	if end == nil && !c.noWait && !c.resetPrompt {
		return "", errors.New("need to specify WaitFor if cli prompt is not defined")
	}

	if value != "" {
		if !c.noNewline {
			value += "\n"
		}
		if _, err := io.WriteString(s.tport, value); err != nil {
			return "", errors.Wrap(err, "failed to send command")
		}
	}

	switch {
	case c.noWait:
		return "", nil
	case c.resetPrompt:
		return "", s.detectPrompt(ctx)
	}
	return s.until(ctx, end)
}

// Close stops the reader and closes the transport.
func (s *PromptSession) Close() error {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	return s.tport.Close()
}

// detectPrompt reads until the device goes quiet and quotes the last line.
func (s *PromptSession) detectPrompt(ctx context.Context) error {
	var buf []byte
	for {
		select {
		case b, ok := <-s.chunks:
			if !ok {
				return io.EOF
			}
			buf = append(buf, b...)
		case <-time.After(s.cfg.quiet):
			last := buf[bytes.LastIndexByte(buf, '\n')+1:]
			s.prompt = regexp.MustCompile(regexp.QuoteMeta(string(last)))
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// until reads until the last, unterminated line matches end and delivers
// everything before that line with newlines normalised.
func (s *PromptSession) until(ctx context.Context, end *regexp.Regexp) (string, error) {
	var buf []byte
	for {
		select {
		case b, ok := <-s.chunks:
			if !ok {
				return "", io.EOF
			}
			buf = append(buf, b...)
		case <-ctx.Done():
			return "", ctx.Err()
		}

		text := normalizeNewlines(buf)
		cut := bytes.LastIndexByte(text, '\n')
		if end.Match(text[cut+1:]) {
			if cut < 0 {
				return "", nil
			}
			return string(text[:cut]), nil
		}
	}
}

func normalizeNewlines(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
}

func (s *PromptSession) read() {
	defer close(s.chunks)
	for {
		b := make([]byte, 8192)
		n, err := s.tport.Read(b)
		if n > 0 {
			select {
			case s.chunks <- b[:n]:
			case <-s.done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}
