package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// stubExec records which commands were dispatched.
type stubExec struct {
	loggedIn bool
	calls    []string
	lastArgs []string
}

func (s *stubExec) isLoggedIn() bool { return s.loggedIn }
func (s *stubExec) status() string   { return "" }

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *stubExec) Login(ctx context.Context) error     { return s.record("login") }
func (s *stubExec) Signup(ctx context.Context) error    { return s.record("signup") }
func (s *stubExec) Logout(ctx context.Context) error    { return s.record("logout") }
func (s *stubExec) WhoAmI(ctx context.Context) error    { return s.record("whoami") }
func (s *stubExec) UpdateBio(ctx context.Context) error { return s.record("update") }
func (s *stubExec) History(ctx context.Context) error   { return s.record("history") }

func (s *stubExec) Search(ctx context.Context, args []string) error {
	s.lastArgs = args
	return s.record("search")
}

func (s *stubExec) Suggest(ctx context.Context, args []string) error {
	s.lastArgs = args
	return s.record("suggest")
}

func (s *stubExec) Trending(ctx context.Context, args []string) error {
	s.lastArgs = args
	return s.record("trending")
}

func runScript(t *testing.T, stub *stubExec, script string) []string {
	t.Helper()

	var output []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		output = append(output, fmt.Sprint(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })

	runREPL(context.Background(), stub, bufio.NewScanner(strings.NewReader(script)))
	return output
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	stub := &stubExec{}
	runScript(t, stub, "login\nsearch go channels\nhistory\nexit\n")

	assert.Equal(t, []string{"login", "search", "history"}, stub.calls)
	assert.Equal(t, []string{"go", "channels"}, stub.lastArgs)
}

func TestRunREPL_ShortSearchAlias(t *testing.T) {
	stub := &stubExec{}
	runScript(t, stub, "s goroutines\nquit\n")

	assert.Equal(t, []string{"search"}, stub.calls)
	assert.Equal(t, []string{"goroutines"}, stub.lastArgs)
}

func TestRunREPL_UnknownCommandReported(t *testing.T) {
	stub := &stubExec{}
	output := runScript(t, stub, "frobnicate\nexit\n")

	assert.Empty(t, stub.calls)
	joined := strings.Join(output, "\n")
	assert.Contains(t, joined, "Unknown command:")
}

func TestRunREPL_EmptyLinesIgnored(t *testing.T) {
	stub := &stubExec{}
	runScript(t, stub, "\n\nwhoami\nexit\n")

	assert.Equal(t, []string{"whoami"}, stub.calls)
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	stub := &stubExec{}
	runScript(t, stub, "trending tags")

	assert.Equal(t, []string{"trending"}, stub.calls)
	assert.Equal(t, []string{"tags"}, stub.lastArgs)
}

func TestRunREPL_HelpVariesWithLoginState(t *testing.T) {
	out := runScript(t, &stubExec{loggedIn: false}, "help\nexit\n")
	assert.Contains(t, strings.Join(out, "\n"), "login, signup")

	out = runScript(t, &stubExec{loggedIn: true}, "help\nexit\n")
	assert.Contains(t, strings.Join(out, "\n"), "logout")
}
