package testutil

import (
	"bufio"
	"fmt"
	"strings"
	"sync"

	assert "github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// CommandShell answers each input line the way a prompt-driven network shell
// does: the echoed command, the response and a fresh prompt.
type CommandShell struct {
	Prompt    string
	Banner    string
	Responses map[string]string
	// Silent commands are recorded but never answered.
	Silent map[string]bool

	mu       sync.Mutex
	commands []string
}

// Handle serves one shell channel.
func (s *CommandShell) Handle(t assert.TestingT, ch ssh.Channel) {
	w := bufio.NewWriter(ch)
	if s.Banner != "" {
		_, _ = w.WriteString(s.Banner + "\r\n")
	}
	_, _ = w.WriteString(s.Prompt)
	_ = w.Flush()

	r := bufio.NewReader(ch)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.TrimSpace(line)
		s.mu.Lock()
		s.commands = append(s.commands, cmd)
		s.mu.Unlock()

		if s.Silent[cmd] {
			continue
		}
		resp, ok := s.Responses[cmd]
		if !ok {
			resp = "Error: Unrecognized command found at '^' position."
		}
		if resp != "" {
			resp += "\r\n"
		}
		_, err = w.WriteString(fmt.Sprintf("%s\r\n%s%s", cmd, resp, s.Prompt))
		assert.NoError(t, err, "Write failed")
		_ = w.Flush()
	}
}

// Commands delivers the lines received so far.
func (s *CommandShell) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// ExecResponse is the outcome of one exec request.
type ExecResponse struct {
	Output string
	Stderr string
	Status uint32
}

// ExecBox serves exec requests from a table of responses. Unknown commands
// fail with exit status 127.
type ExecBox struct {
	mu        sync.Mutex
	responses map[string]ExecResponse
	commands  []string
}

// NewExecBox delivers an ExecBox answering from responses.
func NewExecBox(responses map[string]ExecResponse) *ExecBox {
	if responses == nil {
		responses = map[string]ExecResponse{}
	}
	return &ExecBox{responses: responses}
}

// Respond sets the response to cmd.
func (b *ExecBox) Respond(cmd string, resp ExecResponse) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses[cmd] = resp
}

// Handle refuses interactive use.
func (b *ExecBox) Handle(t assert.TestingT, ch ssh.Channel) {}

// Exec writes the response to cmd.
func (b *ExecBox) Exec(t assert.TestingT, cmd string, ch ssh.Channel) uint32 {
	b.mu.Lock()
	b.commands = append(b.commands, cmd)
	resp, ok := b.responses[cmd]
	b.mu.Unlock()

	if !ok {
		_, _ = fmt.Fprintf(ch.Stderr(), "sh: %s: command not found\n", cmd)
		return 127
	}
	_, _ = ch.Write([]byte(resp.Output))
	if resp.Stderr != "" {
		_, _ = ch.Stderr().Write([]byte(resp.Stderr))
	}
	return resp.Status
}

// Commands delivers the commands received so far.
func (b *ExecBox) Commands() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.commands...)
}
