package webdriver

import (
	"errors"
	"testing"
)

func TestLookupCommand(t *testing.T) {
	tests := []struct {
		dialect    Dialect
		id         commandID
		wantMethod string
		wantPath   string
	}{
		{W3C, cmdWindowHandles, "GET", "/session/:sessionId/window/handles"},
		{OSS, cmdWindowHandles, "GET", "/session/:sessionId/window_handles"},
		{W3C, cmdExecuteScript, "POST", "/session/:sessionId/execute/sync"},
		{OSS, cmdExecuteScript, "POST", "/session/:sessionId/execute"},
		{W3C, cmdAcceptAlert, "POST", "/session/:sessionId/alert/accept"},
		{OSS, cmdAcceptAlert, "POST", "/session/:sessionId/accept_alert"},
		// The status command predates dialect negotiation.
		{W3C, cmdStatus, "GET", "/status"},
		{OSS, cmdStatus, "GET", "/status"},
	}
	for _, tc := range tests {
		spec, err := lookupCommand(tc.dialect, tc.id)
		if err != nil {
			t.Errorf("lookupCommand(%v, %v) returned error: %v", tc.dialect, tc.id, err)
			continue
		}
		if spec.method != tc.wantMethod || spec.path != tc.wantPath {
			t.Errorf("lookupCommand(%v, %v) = %s %s, want %s %s",
				tc.dialect, tc.id, spec.method, spec.path, tc.wantMethod, tc.wantPath)
		}
	}
}

func TestLookupCommandUnsupported(t *testing.T) {
	tests := []struct {
		dialect Dialect
		id      commandID
	}{
		// W3C replaced the freestanding interaction endpoints with actions.
		{W3C, cmdClick},
		{W3C, cmdMoveTo},
		{W3C, cmdKeys},
		// The legacy protocol has no actions endpoints.
		{OSS, cmdPerformActions},
		{OSS, cmdReleaseActions},
		{OSS, cmdGetCookie},
	}
	for _, tc := range tests {
		if _, err := lookupCommand(tc.dialect, tc.id); !errors.Is(err, &Error{Kind: ErrUnknownCommand}) {
			t.Errorf("lookupCommand(%v, %v) = %v, want unknown command error", tc.dialect, tc.id, err)
		}
	}
}

func TestBuildPath(t *testing.T) {
	spec, err := lookupCommand(W3C, cmdElementAttribute)
	if err != nil {
		t.Fatal(err)
	}
	got := spec.buildPath(map[string]string{
		"sessionId": "sess-1",
		"id":        "elem-2",
		"name":      "href",
	})
	want := "/session/sess-1/element/elem-2/attribute/href"
	if got != want {
		t.Errorf("buildPath = %q, want %q", got, want)
	}
}

func TestBuildPathMissingParam(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("buildPath with a missing parameter did not panic")
		}
	}()
	spec, _ := lookupCommand(W3C, cmdElementClick)
	spec.buildPath(map[string]string{"sessionId": "sess-1"})
}

func TestCommandNamesComplete(t *testing.T) {
	for _, table := range []map[commandID]commandSpec{ossCommands, w3cCommands} {
		for id := range table {
			if _, ok := commandNames[id]; !ok {
				t.Errorf("command %d has a table entry but no name", int(id))
			}
		}
	}
}
