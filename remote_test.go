package webdriver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/sync/errgroup"
)

const fakeSessionID = "8a4f2e6d-fake-session"

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func w3cSessionReply(w http.ResponseWriter) {
	writeJSON(w, 200, fmt.Sprintf(
		`{"value": {"sessionId": %q, "capabilities": {"browserName": "fake", "acceptInsecureCerts": true}}}`,
		fakeSessionID))
}

func ossSessionReply(w http.ResponseWriter) {
	writeJSON(w, 200, fmt.Sprintf(
		`{"sessionId": %q, "status": 0, "value": {"browserName": "fake"}}`,
		fakeSessionID))
}

// fakeHandler dispatches on "METHOD /path" with the session id already
// substituted out, and answers new-session and delete-session itself.
type fakeHandler struct {
	dialect Dialect
	routes  map[string]http.HandlerFunc

	mu       sync.Mutex
	requests []string
}

func (h *fakeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Replace(r.URL.Path, "/"+fakeSessionID, "/{sid}", 1)
	key := r.Method + " " + path

	h.mu.Lock()
	h.requests = append(h.requests, key)
	h.mu.Unlock()

	if key == "POST /session" {
		if h.dialect == OSS {
			ossSessionReply(w)
		} else {
			w3cSessionReply(w)
		}
		return
	}
	if handler, ok := h.routes[key]; ok {
		handler(w, r)
		return
	}
	if h.dialect == OSS {
		writeJSON(w, 200, `{"status": 0, "value": null}`)
		return
	}
	writeJSON(w, 200, `{"value": null}`)
}

func (h *fakeHandler) sawRequest(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, req := range h.requests {
		if req == key {
			return true
		}
	}
	return false
}

func startDriver(t *testing.T, h *fakeHandler) WebDriver {
	t.Helper()
	if h.routes == nil {
		h.routes = make(map[string]http.HandlerFunc)
	}
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	wd, err := NewRemote(Capabilities{"browserName": "fake"}, server.URL)
	if err != nil {
		t.Fatalf("NewRemote: %v", err)
	}
	t.Cleanup(func() { wd.Quit() })
	return wd
}

func TestNewSessionW3C(t *testing.T) {
	wd := startDriver(t, &fakeHandler{dialect: W3C})
	if wd.Dialect() != W3C {
		t.Errorf("Dialect() = %v, want W3C", wd.Dialect())
	}
	if wd.SessionID() != fakeSessionID {
		t.Errorf("SessionID() = %q, want %q", wd.SessionID(), fakeSessionID)
	}
	caps, err := wd.Capabilities()
	if err != nil {
		t.Fatal(err)
	}
	if caps["browserName"] != "fake" {
		t.Errorf("capabilities = %#v, negotiated capabilities not retained", caps)
	}
}

func TestNewSessionLegacy(t *testing.T) {
	wd := startDriver(t, &fakeHandler{dialect: OSS})
	if wd.Dialect() != OSS {
		t.Errorf("Dialect() = %v, want OSS", wd.Dialect())
	}
	if wd.SessionID() != fakeSessionID {
		t.Errorf("SessionID() = %q, want %q", wd.SessionID(), fakeSessionID)
	}
}

func TestCommandRoutingPerDialect(t *testing.T) {
	t.Run("w3c", func(t *testing.T) {
		h := &fakeHandler{
			dialect: W3C,
			routes: map[string]http.HandlerFunc{
				"GET /session/{sid}/window/handles": func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, 200, `{"value": ["h1", "h2"]}`)
				},
			},
		}
		wd := startDriver(t, h)
		handles, err := wd.WindowHandles()
		if err != nil {
			t.Fatal(err)
		}
		if len(handles) != 2 || handles[0] != "h1" {
			t.Errorf("handles = %q", handles)
		}
		if h.sawRequest("GET /session/{sid}/window_handles") {
			t.Error("W3C session hit the legacy endpoint")
		}
	})

	t.Run("legacy", func(t *testing.T) {
		h := &fakeHandler{
			dialect: OSS,
			routes: map[string]http.HandlerFunc{
				"GET /session/{sid}/window_handles": func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, 200, `{"status": 0, "value": ["h1"]}`)
				},
			},
		}
		wd := startDriver(t, h)
		handles, err := wd.WindowHandles()
		if err != nil {
			t.Fatal(err)
		}
		if len(handles) != 1 {
			t.Errorf("handles = %q", handles)
		}
		if h.sawRequest("GET /session/{sid}/window/handles") {
			t.Error("legacy session hit the W3C endpoint")
		}
	})
}

func TestFindElementNoSuchElement(t *testing.T) {
	const serverMessage = "Unable to locate element: #missing"

	t.Run("w3c", func(t *testing.T) {
		h := &fakeHandler{
			dialect: W3C,
			routes: map[string]http.HandlerFunc{
				"POST /session/{sid}/element": func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, 404, fmt.Sprintf(
						`{"value": {"error": "no such element", "message": %q}}`, serverMessage))
				},
			},
		}
		wd := startDriver(t, h)
		_, err := wd.FindElement(ByCSSSelector, "#missing")
		if !errors.Is(err, &Error{Kind: ErrNoSuchElement}) {
			t.Fatalf("got %v, want no such element", err)
		}
		if !strings.Contains(err.Error(), serverMessage) {
			t.Errorf("error %q does not carry the server message", err)
		}
	})

	t.Run("legacy", func(t *testing.T) {
		h := &fakeHandler{
			dialect: OSS,
			routes: map[string]http.HandlerFunc{
				"POST /session/{sid}/element": func(w http.ResponseWriter, r *http.Request) {
					writeJSON(w, 200, fmt.Sprintf(
						`{"status": 7, "value": {"message": %q}}`, serverMessage))
				},
			},
		}
		wd := startDriver(t, h)
		_, err := wd.FindElement(ByCSSSelector, "#missing")
		if !errors.Is(err, &Error{Kind: ErrNoSuchElement}) {
			t.Fatalf("got %v, want no such element", err)
		}
		if !strings.Contains(err.Error(), serverMessage) {
			t.Errorf("error %q does not carry the server message", err)
		}
	})
}

func TestFindElementLocatorTranslation(t *testing.T) {
	var gotUsing, gotValue string
	h := &fakeHandler{
		dialect: W3C,
		routes: map[string]http.HandlerFunc{
			"POST /session/{sid}/element": func(w http.ResponseWriter, r *http.Request) {
				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body)
				gotUsing, gotValue = body["using"], body["value"]
				writeJSON(w, 200, fmt.Sprintf(
					`{"value": {%q: "elem-1"}}`, webElementIdentifier))
			},
		},
	}
	wd := startDriver(t, h)
	elem, err := wd.FindElement(ByID, "a.b")
	if err != nil {
		t.Fatal(err)
	}
	if gotUsing != ByCSSSelector || gotValue != `#a\.b` {
		t.Errorf("wire locator = %q %q, want css selector #a\\.b", gotUsing, gotValue)
	}
	if elem.ID() != "elem-1" {
		t.Errorf("element id = %q, want elem-1", elem.ID())
	}
}

func TestExecuteScript(t *testing.T) {
	h := &fakeHandler{
		dialect: W3C,
		routes: map[string]http.HandlerFunc{
			"POST /session/{sid}/execute/sync": func(w http.ResponseWriter, r *http.Request) {
				var body struct {
					Script string        `json:"script"`
					Args   []interface{} `json:"args"`
				}
				json.NewDecoder(r.Body).Decode(&body)
				if body.Args == nil {
					writeJSON(w, 400, `{"value": {"error": "invalid argument", "message": "args must be a list"}}`)
					return
				}
				writeJSON(w, 200, `{"value": 2}`)
			},
		},
	}
	wd := startDriver(t, h)
	value, err := wd.ExecuteScript("return 1 + 1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := value.(float64); !ok || n != 2 {
		t.Errorf("value = %#v, want 2", value)
	}
}

func TestExecuteScriptElementResult(t *testing.T) {
	h := &fakeHandler{
		dialect: W3C,
		routes: map[string]http.HandlerFunc{
			"POST /session/{sid}/execute/sync": func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, 200, fmt.Sprintf(
					`{"value": [{%q: "elem-9"}]}`, webElementIdentifier))
			},
		},
	}
	wd := startDriver(t, h)
	value, err := wd.ExecuteScript("return [document.body]", nil)
	if err != nil {
		t.Fatal(err)
	}
	list, ok := value.([]interface{})
	if !ok || len(list) != 1 {
		t.Fatalf("value = %#v, want a one-element list", value)
	}
	elem, ok := list[0].(*remoteWE)
	if !ok || elem.ID() != "elem-9" {
		t.Errorf("list[0] = %#v, want live handle for elem-9", list[0])
	}
	// The handle must be usable for follow-up commands.
	if _, err := elem.TagName(); err != nil {
		t.Errorf("follow-up command on script-returned handle: %v", err)
	}
}

func TestQuitAbsorbsTransportFailure(t *testing.T) {
	h := &fakeHandler{dialect: W3C}
	server := httptest.NewServer(h)
	wd, err := NewRemote(Capabilities{"browserName": "fake"}, server.URL)
	if err != nil {
		t.Fatalf("NewRemote: %v", err)
	}

	server.Close()
	if err := wd.Quit(); err != nil {
		t.Errorf("Quit after server went away = %v, want nil", err)
	}

	// Every later call must fail locally, with no network involved.
	before := len(h.requests)
	if _, err := wd.CurrentURL(); !errors.Is(err, &Error{Kind: ErrInvalidSessionID}) {
		t.Errorf("post-Quit command = %v, want invalid session id", err)
	}
	if len(h.requests) != before {
		t.Error("post-Quit command reached the network")
	}
	if err := wd.Quit(); err != nil {
		t.Errorf("second Quit = %v, want nil", err)
	}
}

func TestNewSessionAfterQuit(t *testing.T) {
	h := &fakeHandler{dialect: W3C}
	wd := startDriver(t, h)
	if err := wd.Quit(); err != nil {
		t.Fatal(err)
	}
	if _, err := wd.CurrentURL(); !errors.Is(err, &Error{Kind: ErrInvalidSessionID}) {
		t.Fatalf("post-Quit command = %v, want invalid session id", err)
	}

	// The same client may reconnect by starting a fresh session.
	id, err := wd.NewSession()
	if err != nil {
		t.Fatalf("NewSession after Quit: %v", err)
	}
	if id == "" || id != wd.SessionID() {
		t.Errorf("NewSession returned %q, SessionID() = %q", id, wd.SessionID())
	}
	if err := wd.Get("http://example.com"); err != nil {
		t.Errorf("command on the fresh session = %v, want it back on the wire", err)
	}
	if !h.sawRequest("POST /session/{sid}/url") {
		t.Error("command on the fresh session never reached the network")
	}
}

func TestNewSessionLegacyBadCapabilities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"sessionId": "s1", "status": 0, "value": [1, 2]}`)
	}))
	defer server.Close()

	_, err := NewRemote(Capabilities{"browserName": "fake"}, server.URL)
	if !errors.Is(err, &Error{Kind: ErrProtocolDecode}) {
		t.Fatalf("got %v, want a protocol decode error", err)
	}
}

func TestSendKeysFileUpload(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "upload.txt")
	if err := os.WriteFile(local, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}
	const remotePath = "/remote/tmp/upload.txt"

	var uploaded bool
	var sentText string
	h := &fakeHandler{
		dialect: W3C,
		routes: map[string]http.HandlerFunc{
			"POST /session/{sid}/se/file": func(w http.ResponseWriter, r *http.Request) {
				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body)
				uploaded = body["file"] != ""
				writeJSON(w, 200, fmt.Sprintf(`{"value": %q}`, remotePath))
			},
			"POST /session/{sid}/element/elem-1/value": func(w http.ResponseWriter, r *http.Request) {
				var body map[string]interface{}
				json.NewDecoder(r.Body).Decode(&body)
				sentText, _ = body["text"].(string)
				writeJSON(w, 200, `{"value": null}`)
			},
			"POST /session/{sid}/element": func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, 200, fmt.Sprintf(`{"value": {%q: "elem-1"}}`, webElementIdentifier))
			},
		},
	}
	wd := startDriver(t, h)
	wd.SetFileDetector(func(keys string) (string, bool) {
		if _, err := os.Stat(keys); err == nil {
			return keys, true
		}
		return "", false
	})

	elem, err := wd.FindElement(ByCSSSelector, "input[type=file]")
	if err != nil {
		t.Fatal(err)
	}
	if err := elem.SendKeys(local); err != nil {
		t.Fatal(err)
	}
	if !uploaded {
		t.Error("no zipped payload reached the upload endpoint")
	}
	if sentText != remotePath {
		t.Errorf("typed keys = %q, want the server-side path %q", sentText, remotePath)
	}
}

func TestSendKeysWithoutDetector(t *testing.T) {
	var sentText string
	h := &fakeHandler{
		dialect: W3C,
		routes: map[string]http.HandlerFunc{
			"POST /session/{sid}/element": func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, 200, fmt.Sprintf(`{"value": {%q: "elem-1"}}`, webElementIdentifier))
			},
			"POST /session/{sid}/element/elem-1/value": func(w http.ResponseWriter, r *http.Request) {
				var body map[string]interface{}
				json.NewDecoder(r.Body).Decode(&body)
				sentText, _ = body["text"].(string)
				writeJSON(w, 200, `{"value": null}`)
			},
		},
	}
	wd := startDriver(t, h)
	elem, err := wd.FindElement(ByCSSSelector, "input")
	if err != nil {
		t.Fatal(err)
	}
	if err := elem.SendKeys("hello"); err != nil {
		t.Fatal(err)
	}
	if sentText != "hello" {
		t.Errorf("typed keys = %q, want them sent verbatim", sentText)
	}
	if h.sawRequest("POST /session/{sid}/se/file") {
		t.Error("upload endpoint hit with no detector installed")
	}
}

func TestLegacyInteractionsSynthesizedUnderW3C(t *testing.T) {
	var sequence []map[string]interface{}
	h := &fakeHandler{
		dialect: W3C,
		routes: map[string]http.HandlerFunc{
			"POST /session/{sid}/actions": func(w http.ResponseWriter, r *http.Request) {
				var body struct {
					Actions []map[string]interface{} `json:"actions"`
				}
				json.NewDecoder(r.Body).Decode(&body)
				sequence = body.Actions
				writeJSON(w, 200, `{"value": null}`)
			},
		},
	}
	wd := startDriver(t, h)
	if err := wd.Click(LeftButton); err != nil {
		t.Fatal(err)
	}
	if h.sawRequest("POST /session/{sid}/click") {
		t.Error("W3C session hit the legacy click endpoint")
	}
	if len(sequence) != 1 {
		t.Fatalf("actions payload = %#v, want one input source", sequence)
	}
	source := sequence[0]
	if source["type"] != "pointer" {
		t.Errorf("input source type = %v, want pointer", source["type"])
	}
	steps, ok := source["actions"].([]interface{})
	if !ok || len(steps) != 2 {
		t.Fatalf("steps = %#v, want pointerDown then pointerUp", source["actions"])
	}
	first := steps[0].(map[string]interface{})
	second := steps[1].(map[string]interface{})
	if first["type"] != "pointerDown" || second["type"] != "pointerUp" {
		t.Errorf("steps = %v then %v, want pointerDown then pointerUp", first["type"], second["type"])
	}
}

func TestSubmitSynthesizedUnderW3C(t *testing.T) {
	var script string
	h := &fakeHandler{
		dialect: W3C,
		routes: map[string]http.HandlerFunc{
			"POST /session/{sid}/element": func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, 200, fmt.Sprintf(`{"value": {%q: "elem-1"}}`, webElementIdentifier))
			},
			"POST /session/{sid}/execute/sync": func(w http.ResponseWriter, r *http.Request) {
				var body map[string]interface{}
				json.NewDecoder(r.Body).Decode(&body)
				script, _ = body["script"].(string)
				writeJSON(w, 200, `{"value": null}`)
			},
		},
	}
	wd := startDriver(t, h)
	elem, err := wd.FindElement(ByCSSSelector, "input")
	if err != nil {
		t.Fatal(err)
	}
	if err := elem.Submit(); err != nil {
		t.Fatal(err)
	}
	if h.sawRequest("POST /session/{sid}/element/elem-1/submit") {
		t.Error("W3C session hit the legacy submit endpoint")
	}
	if !strings.Contains(script, "dispatchEvent") {
		t.Errorf("submit script = %q, want a dispatched submit event", script)
	}
}

func TestConcurrentSessions(t *testing.T) {
	var counter int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.URL.Path == "/session" {
			id := atomic.AddInt64(&counter, 1)
			writeJSON(w, 200, fmt.Sprintf(
				`{"value": {"sessionId": "session-%d", "capabilities": {}}}`, id))
			return
		}
		writeJSON(w, 200, `{"value": null}`)
	})
	server := httptest.NewServer(handler)
	defer server.Close()

	var group errgroup.Group
	for i := 0; i < 8; i++ {
		group.Go(func() error {
			wd, err := NewRemote(Capabilities{"browserName": "fake"}, server.URL)
			if err != nil {
				return err
			}
			if wd.SessionID() == "" {
				return errors.New("empty session id")
			}
			if err := wd.Get("http://example.com"); err != nil {
				return err
			}
			return wd.Quit()
		})
	}
	if err := group.Wait(); err != nil {
		t.Fatal(err)
	}
}
