package cli

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fitly/fitly/internal/backend"
)

func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(args ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(args...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestStatus(t *testing.T) {
	f := newFakeSession(nil)
	a := newTestApp(f, nil, nil)

	if got := a.status(); got != "" {
		t.Fatalf("signed-out status: %q", got)
	}

	f.user = &backend.User{ID: "u1", Email: "alice@example.org"}
	if got := a.status(); got != " (alice@example.org)" {
		t.Fatalf("signed-in status: %q", got)
	}
}

func TestNotifyAuthChange_OutOfBandSignOut(t *testing.T) {
	lines := capturePrintln(t)

	f := newFakeSession(&backend.User{ID: "u1", Email: "alice@example.org"})
	a := newTestApp(f, nil, nil)
	a.lastEmail = "alice@example.org"

	f.user = nil
	a.notifyAuthChange()

	found := false
	for _, l := range *lines {
		if strings.Contains(l, "session has ended") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no sign-out notice, lines: %v", *lines)
	}
	if a.lastEmail != "" {
		t.Fatalf("lastEmail not cleared")
	}
}

func TestNotifyAuthChange_ExplicitLogoutIsQuiet(t *testing.T) {
	lines := capturePrintln(t)

	f := newFakeSession(nil)
	a := newTestApp(f, nil, nil)
	a.lastEmail = "alice@example.org"
	a.signingOut = true

	a.notifyAuthChange()

	for _, l := range *lines {
		if strings.Contains(l, "session has ended") {
			t.Fatalf("notice printed during explicit logout")
		}
	}
}

func TestNotifyAuthChange_ClosedAppStaysSilent(t *testing.T) {
	lines := capturePrintln(t)

	f := newFakeSession(nil)
	a := newTestApp(f, nil, nil)
	a.lastEmail = "alice@example.org"
	a.close()

	a.notifyAuthChange()

	if len(*lines) != 0 {
		t.Fatalf("closed app wrote to the terminal: %v", *lines)
	}
}

func TestNotifyAuthChange_TracksNewUser(t *testing.T) {
	capturePrintln(t)

	f := newFakeSession(&backend.User{ID: "u2", Email: "bob@example.org"})
	a := newTestApp(f, nil, nil)

	a.notifyAuthChange()

	if a.lastEmail != "bob@example.org" {
		t.Fatalf("lastEmail not updated: %q", a.lastEmail)
	}
}
