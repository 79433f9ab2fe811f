package cmd

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// mockPasswordReader is a test double for password input.
type mockPasswordReader struct {
	password   string
	err        error
	isTerminal bool
	readCalled bool
}

func newMockPasswordReader(password string, isTerminal bool) *mockPasswordReader {
	return &mockPasswordReader{
		password:   password,
		isTerminal: isTerminal,
	}
}

func (m *mockPasswordReader) WithError(err error) *mockPasswordReader {
	m.err = err
	return m
}

func (m *mockPasswordReader) ReadPassword() (string, error) {
	m.readCalled = true
	if m.err != nil {
		return "", m.err
	}
	return m.password, nil
}

func (m *mockPasswordReader) IsTerminal() bool {
	return m.isTerminal
}

// mockPrompt is a test double for interactive prompts.
type mockPrompt struct {
	selections []int    // Which option to select for each call
	callIndex  int      // Current call index
	lines      []string // Lines to return for ReadLine calls
	lineIndex  int      // Current line index
	prompts    []string // Prompts passed to ReadLine
}

func newMockPrompt(selections ...int) *mockPrompt {
	return &mockPrompt{selections: selections}
}

func (m *mockPrompt) WithLines(lines ...string) *mockPrompt {
	m.lines = lines
	return m
}

func (m *mockPrompt) SelectOption(options []string) (int, error) {
	if m.callIndex >= len(m.selections) {
		return 0, errors.New("no more mock selections")
	}
	idx := m.selections[m.callIndex]
	m.callIndex++
	return idx, nil
}

func (m *mockPrompt) ReadLine(prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.lineIndex >= len(m.lines) {
		return "", nil // Default to empty/skip
	}
	line := m.lines[m.lineIndex]
	m.lineIndex++
	return line, nil
}

// newJSONServer serves fixed JSON bodies by request path.
func newJSONServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func testClientOptions(server *httptest.Server) *clientOptions {
	return &clientOptions{
		baseURL: server.URL,
		session: "test-session",
		timeout: 5 * time.Second,
	}
}

// execute runs cmd with args and returns what it printed.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	if args == nil {
		args = []string{}
	}
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
