package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	failWith error

	calls []string
}

func (f *fakeExec) record(call string) error {
	f.calls = append(f.calls, call)
	return f.failWith
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) SetEndpoint(_ context.Context, raw string, strict bool) error {
	return f.record(fmt.Sprintf("endpoint set %s %v", raw, strict))
}
func (f *fakeExec) ShowEndpoint(context.Context) error { return f.record("endpoint show") }
func (f *fakeExec) Login(_ context.Context, identifier string) error {
	f.loggedIn = true
	return f.record("login " + identifier)
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) WhoAmI(context.Context) error   { return f.record("whoami") }
func (f *fakeExec) Status(context.Context) error   { return f.record("status") }
func (f *fakeExec) Register(context.Context) error { return f.record("register") }
func (f *fakeExec) ForgotPassword(_ context.Context, email string) error {
	return f.record("forgot " + email)
}
func (f *fakeExec) VerifyReset(_ context.Context, otp string) error { return f.record("verify " + otp) }
func (f *fakeExec) ConfirmReset(context.Context) error              { return f.record("reset") }
func (f *fakeExec) ShowProfile(context.Context) error               { return f.record("profile") }
func (f *fakeExec) Stats(context.Context) error                     { return f.record("stats") }

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_Dispatch(t *testing.T) {
	lines := capturePrintln(t)

	input := strings.Join([]string{
		"help",
		"endpoint 10.0.0.5",
		"endpoint",
		"login farmer1",
		"help",
		"",
		"whoami",
		"profile",
		"forgot",
		"forgot a@b.co",
		"verify 123456",
		"reset",
		"status",
		"stats",
		"logout",
		"foobar",
		"exit",
		"status",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(idle)" }, bufio.NewScanner(strings.NewReader(input)))

	assert.Equal(t, []string{
		"endpoint set 10.0.0.5 false",
		"endpoint show",
		"login farmer1",
		"whoami",
		"profile",
		"forgot a@b.co",
		"verify 123456",
		"reset",
		"status",
		"stats",
		"logout",
	}, exec.calls)

	out := strings.Join(*lines, "")
	assert.Contains(t, out, "Available commands: endpoint <ip|url>, register")
	assert.Contains(t, out, "Available commands: whoami, profile, logout")
	assert.Contains(t, out, "Usage: forgot <email>")
	assert.Contains(t, out, "Unknown command: foobar")
	assert.Contains(t, out, "Bye!")
}

func TestRunREPL_ErrorsArePrinted(t *testing.T) {
	lines := capturePrintln(t)

	exec := &fakeExec{failWith: errors.New("kaboom")}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("whoami\nstatus\n")))

	assert.Equal(t, []string{"whoami", "status"}, exec.calls)
	assert.Contains(t, strings.Join(*lines, ""), "Error: kaboom")
}
