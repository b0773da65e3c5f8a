package webdriver

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/golang/glog"
	"github.com/remotewd/webdriver/actions"
	"github.com/remotewd/webdriver/internal/zip"
	"github.com/remotewd/webdriver/log"
)

// DefaultURLPrefix is the default HTTP endpoint for a local Selenium server.
const DefaultURLPrefix = "http://127.0.0.1:4444/wd/hub"

const jsonContentType = "application/json"

// defaultPointerDuration is the pointer-move duration used for synthesized
// W3C pointer actions.
const defaultPointerDuration = 250 * time.Millisecond

// remoteWD is the client side of one WebDriver session. It is a plain
// synchronous bridge: a method call is one wire command, and the zero
// concurrency promise is the protocol's own. Methods may be called from
// multiple goroutines only if the server tolerates interleaved commands;
// the session state itself (id, dialect) is written only by NewSession and
// Quit.
type remoteWD struct {
	client        *http.Client
	urlPrefix     string
	serverVersion semver.Version

	id           string
	dialect      Dialect
	capabilities Capabilities
	requested    Capabilities
	deleted      bool
	fileDetector FileDetector
}

// Option configures a remote WebDriver client.
type Option func(*remoteWD)

// WithHTTPClient sets the HTTP client used for every wire command. The
// default is http.DefaultClient.
func WithHTTPClient(c *http.Client) Option {
	return func(wd *remoteWD) {
		wd.client = c
	}
}

// WithServerVersion declares the remote server's version. Servers older
// than Selenium 3 reject the W3C new-session shape, so declaring such a
// version makes NewSession send only the legacy payload. The version string
// must parse as a semantic version.
func WithServerVersion(version string) Option {
	return func(wd *remoteWD) {
		v, err := semver.Parse(version)
		if err != nil {
			glog.Warningf("Ignoring unparseable server version %q: %v", version, err)
			return
		}
		wd.serverVersion = v
	}
}

// NewRemote creates a new remote client with the specified target URL and
// capabilities, and starts a session. An empty urlPrefix uses
// DefaultURLPrefix.
func NewRemote(capabilities Capabilities, urlPrefix string, opts ...Option) (WebDriver, error) {
	if urlPrefix == "" {
		urlPrefix = DefaultURLPrefix
	}
	wd := &remoteWD{
		client:    http.DefaultClient,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		requested: capabilities,
	}
	for _, opt := range opts {
		opt(wd)
	}
	if _, err := wd.NewSession(); err != nil {
		return nil, err
	}
	return wd, nil
}

// execute sends one HTTP request and decodes the reply according to the
// session's dialect.
func (wd *remoteWD) execute(method, url string, data []byte) (json.RawMessage, error) {
	debugLog("-> %s %s\n%s", method, filteredURL(url), data)
	req, err := http.NewRequest(method, url, bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Err: err}
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", jsonContentType+"; charset=utf-8")
	}
	req.Header.Set("Accept", jsonContentType+", image/png")

	resp, err := wd.client.Do(req)
	if err != nil {
		kind := ErrTransport
		if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
			kind = ErrTimeout
		}
		return nil, &Error{Kind: kind, Context: fmt.Sprintf("%s %s", method, url), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Context: fmt.Sprintf("%s %s", method, url), Err: err}
	}
	contentType := resp.Header.Get("Content-Type")
	debugLog("<- %s [%s]\n%s", resp.Status, contentType, body)

	return decodeResponse(wd.dialect, resp.StatusCode, contentType, body)
}

// executeCommand resolves a logical command for the session's dialect,
// fills in its path template, and executes it. A nil POST body goes out as
// an empty JSON object; some drivers reject POSTs with no body at all.
func (wd *remoteWD) executeCommand(id commandID, params map[string]string, body interface{}) (json.RawMessage, error) {
	if wd.deleted && id != cmdStatus && id != cmdNewSession {
		return nil, &Error{
			Kind:    ErrInvalidSessionID,
			Context: id.String(),
			Message: "session has been deleted",
		}
	}
	spec, err := lookupCommand(wd.dialect, id)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = make(map[string]string)
	}
	if _, ok := params["sessionId"]; !ok {
		params["sessionId"] = wd.id
	}

	var data []byte
	switch {
	case body != nil:
		data, err = json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: ErrType, Context: id.String(), Err: err}
		}
	case spec.method == http.MethodPost:
		data = []byte("{}")
	}

	value, err := wd.execute(spec.method, wd.urlPrefix+spec.buildPath(params), data)
	if err != nil {
		if werr, ok := err.(*Error); ok && werr.Context == "" {
			werr.Context = id.String()
		}
		return nil, err
	}
	return value, nil
}

func (wd *remoteWD) voidCommand(id commandID, params map[string]string, body interface{}) error {
	_, err := wd.executeCommand(id, params, body)
	return err
}

func (wd *remoteWD) stringCommand(id commandID, params map[string]string) (string, error) {
	value, err := wd.executeCommand(id, params, nil)
	if err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", &Error{Kind: ErrProtocolDecode, Context: id.String(), Err: err}
	}
	return s, nil
}

func (wd *remoteWD) stringsCommand(id commandID, params map[string]string) ([]string, error) {
	value, err := wd.executeCommand(id, params, nil)
	if err != nil {
		return nil, err
	}
	var ss []string
	if err := json.Unmarshal(value, &ss); err != nil {
		return nil, &Error{Kind: ErrProtocolDecode, Context: id.String(), Err: err}
	}
	return ss, nil
}

func (wd *remoteWD) boolCommand(id commandID, params map[string]string) (bool, error) {
	value, err := wd.executeCommand(id, params, nil)
	if err != nil {
		return false, err
	}
	var b bool
	if err := json.Unmarshal(value, &b); err != nil {
		return false, &Error{Kind: ErrProtocolDecode, Context: id.String(), Err: err}
	}
	return b, nil
}

func (wd *remoteWD) Status() (*Status, error) {
	value, err := wd.executeCommand(cmdStatus, nil, nil)
	if err != nil {
		return nil, err
	}
	status := new(Status)
	if err := json.Unmarshal(value, status); err != nil {
		return nil, &Error{Kind: ErrProtocolDecode, Context: cmdStatus.String(), Err: err}
	}
	return status, nil
}

// newSessionReply covers both dialects' new-session response shapes. The
// legacy shape carries sessionId and status at the top level; the W3C shape
// nests sessionId and capabilities inside value.
type newSessionReply struct {
	SessionID *string         `json:"sessionId"`
	Status    *int            `json:"status"`
	Value     json.RawMessage `json:"value"`
}

type w3cNewSessionValue struct {
	SessionID    string       `json:"sessionId"`
	Capabilities Capabilities `json:"capabilities"`
}

func (wd *remoteWD) NewSession() (string, error) {
	payload, err := newSessionPayload(wd.requested, wd.serverVersion)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", &Error{Kind: ErrType, Context: cmdNewSession.String(), Err: err}
	}

	spec, _ := lookupCommand(W3C, cmdNewSession)
	debugLog("-> %s %s\n%s", spec.method, wd.urlPrefix+spec.path, data)
	resp, err := wd.client.Post(wd.urlPrefix+spec.path, jsonContentType+"; charset=utf-8", bytes.NewReader(data))
	if err != nil {
		return "", &Error{Kind: ErrTransport, Context: cmdNewSession.String(), Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Kind: ErrTransport, Context: cmdNewSession.String(), Err: err}
	}
	debugLog("<- %s\n%s", resp.Status, body)

	reply := new(newSessionReply)
	if err := json.Unmarshal(bytes.TrimRight(body, "\x00"), reply); err != nil {
		if resp.StatusCode >= 400 {
			return "", bucketHTTPError(resp.StatusCode, body)
		}
		return "", &Error{Kind: ErrProtocolDecode, Context: cmdNewSession.String(), Err: err}
	}

	// The dialect is decided by the response shape: a top-level sessionId
	// with a numeric status is the legacy envelope, everything else is W3C.
	if reply.SessionID != nil && reply.Status != nil {
		if *reply.Status != 0 {
			return "", decodeLegacyError(resp.StatusCode, *reply.Status, reply.Value)
		}
		caps := make(Capabilities)
		if err := json.Unmarshal(reply.Value, &caps); err != nil {
			return "", &Error{Kind: ErrProtocolDecode, Context: cmdNewSession.String(), Err: err}
		}
		wd.dialect = OSS
		wd.id = *reply.SessionID
		wd.capabilities = caps
		wd.deleted = false
		return wd.id, nil
	}

	if err := decodeW3CError(resp.StatusCode, reply.Value); err != nil {
		return "", err
	}
	var value w3cNewSessionValue
	if err := json.Unmarshal(reply.Value, &value); err != nil {
		return "", &Error{Kind: ErrProtocolDecode, Context: cmdNewSession.String(), Err: err}
	}
	if value.SessionID == "" {
		return "", &Error{
			Kind:    ErrProtocolDecode,
			Context: cmdNewSession.String(),
			Message: "new session response carries no session id",
		}
	}
	wd.dialect = W3C
	wd.id = value.SessionID
	wd.capabilities = value.Capabilities
	wd.deleted = false
	return wd.id, nil
}

func (wd *remoteWD) SessionID() string {
	return wd.id
}

func (wd *remoteWD) Dialect() Dialect {
	return wd.dialect
}

func (wd *remoteWD) Capabilities() (Capabilities, error) {
	if wd.deleted {
		return nil, &Error{Kind: ErrInvalidSessionID, Message: "session has been deleted"}
	}
	return wd.capabilities, nil
}

func (wd *remoteWD) SetAsyncScriptTimeout(timeout time.Duration) error {
	if wd.dialect == W3C {
		return wd.voidCommand(cmdSetTimeouts, nil, map[string]uint{
			"script": durationToMS(timeout),
		})
	}
	return wd.voidCommand(cmdSetAsyncScriptTimeout, nil, map[string]uint{
		"ms": durationToMS(timeout),
	})
}

func (wd *remoteWD) SetImplicitWaitTimeout(timeout time.Duration) error {
	if wd.dialect == W3C {
		return wd.voidCommand(cmdSetTimeouts, nil, map[string]uint{
			"implicit": durationToMS(timeout),
		})
	}
	return wd.voidCommand(cmdSetImplicitWaitTimeout, nil, map[string]uint{
		"ms": durationToMS(timeout),
	})
}

func (wd *remoteWD) SetPageLoadTimeout(timeout time.Duration) error {
	if wd.dialect == W3C {
		return wd.voidCommand(cmdSetTimeouts, nil, map[string]uint{
			"pageLoad": durationToMS(timeout),
		})
	}
	return wd.voidCommand(cmdSetTimeouts, nil, map[string]interface{}{
		"type": "page load",
		"ms":   durationToMS(timeout),
	})
}

func (wd *remoteWD) Quit() error {
	if wd.deleted {
		return nil
	}
	err := wd.voidCommand(cmdDeleteSession, nil, nil)
	// The session is finished whether or not the server acknowledged it;
	// a dead connection must not leave the client unusable for cleanup.
	wd.deleted = true
	wd.id = ""
	wd.client.CloseIdleConnections()
	if err != nil {
		switch errKind(err) {
		case ErrTransport, ErrTimeout, ErrInvalidSessionID:
			glog.V(1).Infof("Ignoring error while quitting session: %v", err)
			return nil
		}
		return err
	}
	return nil
}

func (wd *remoteWD) CurrentWindowHandle() (string, error) {
	return wd.stringCommand(cmdWindowHandle, nil)
}

func (wd *remoteWD) WindowHandles() ([]string, error) {
	return wd.stringsCommand(cmdWindowHandles, nil)
}

func (wd *remoteWD) CurrentURL() (string, error) {
	return wd.stringCommand(cmdCurrentURL, nil)
}

func (wd *remoteWD) Title() (string, error) {
	return wd.stringCommand(cmdTitle, nil)
}

func (wd *remoteWD) PageSource() (string, error) {
	return wd.stringCommand(cmdPageSource, nil)
}

func (wd *remoteWD) Close() error {
	return wd.voidCommand(cmdCloseWindow, nil, nil)
}

func (wd *remoteWD) SwitchFrame(frame interface{}) error {
	var id interface{}
	switch f := frame.(type) {
	case nil:
		id = nil
	case int:
		id = f
	case WebElement:
		id = elementRef(wd.dialect, f.ID())
	case string:
		if f == "" {
			id = nil
			break
		}
		if wd.dialect != W3C {
			id = f
			break
		}
		// W3C frame switching only accepts null, an index or an element, so
		// a name or id locator is resolved to the frame element first.
		elem, err := wd.FindElement(ByCSSSelector, frameSelector(f))
		if err != nil {
			return err
		}
		id = elementRef(W3C, elem.ID())
	default:
		return &Error{
			Kind:    ErrType,
			Message: fmt.Sprintf("invalid frame reference of type %T", frame),
		}
	}
	return wd.voidCommand(cmdSwitchToFrame, nil, map[string]interface{}{"id": id})
}

func frameSelector(nameOrID string) string {
	esc := escapeCSS(nameOrID)
	return fmt.Sprintf("frame[name='%s'], iframe[name='%s'], frame[id='%s'], iframe[id='%s']", esc, esc, esc, esc)
}

func (wd *remoteWD) SwitchFrameParent() error {
	return wd.voidCommand(cmdSwitchToParentFrame, nil, nil)
}

func (wd *remoteWD) SwitchWindow(name string) error {
	body := make(map[string]interface{})
	if wd.dialect == W3C {
		body["handle"] = name
	} else {
		body["name"] = name
	}
	return wd.voidCommand(cmdSwitchToWindow, nil, body)
}

func (wd *remoteWD) CloseWindow(name string) error {
	if name != "" {
		if err := wd.SwitchWindow(name); err != nil {
			return err
		}
	}
	return wd.voidCommand(cmdCloseWindow, nil, nil)
}

func (wd *remoteWD) MaximizeWindow(name string) error {
	if wd.dialect == W3C {
		if name != "" {
			if err := wd.SwitchWindow(name); err != nil {
				return err
			}
		}
		return wd.voidCommand(cmdMaximizeWindow, nil, nil)
	}
	if name == "" {
		name = "current"
	}
	return wd.voidCommand(cmdMaximizeWindow, map[string]string{"name": name}, nil)
}

func (wd *remoteWD) ResizeWindow(name string, width, height int) error {
	if wd.dialect == W3C {
		if name != "" {
			if err := wd.SwitchWindow(name); err != nil {
				return err
			}
		}
		return wd.voidCommand(cmdSetWindowRect, nil, map[string]interface{}{
			"width":  width,
			"height": height,
		})
	}
	if name == "" {
		name = "current"
	}
	return wd.voidCommand(cmdSetWindowSize, map[string]string{"name": name}, map[string]interface{}{
		"width":  width,
		"height": height,
	})
}

func (wd *remoteWD) WindowRect() (*Rect, error) {
	if wd.dialect == W3C {
		value, err := wd.executeCommand(cmdGetWindowRect, nil, nil)
		if err != nil {
			return nil, err
		}
		rect := new(Rect)
		if err := json.Unmarshal(value, rect); err != nil {
			return nil, &Error{Kind: ErrProtocolDecode, Context: cmdGetWindowRect.String(), Err: err}
		}
		return rect, nil
	}
	// The legacy protocol splits the rectangle across two endpoints.
	params := map[string]string{"name": "current"}
	posValue, err := wd.executeCommand(cmdGetWindowPosition, params, nil)
	if err != nil {
		return nil, err
	}
	var pos Point
	if err := json.Unmarshal(posValue, &pos); err != nil {
		return nil, &Error{Kind: ErrProtocolDecode, Context: cmdGetWindowPosition.String(), Err: err}
	}
	sizeValue, err := wd.executeCommand(cmdGetWindowSize, map[string]string{"name": "current"}, nil)
	if err != nil {
		return nil, err
	}
	var size Size
	if err := json.Unmarshal(sizeValue, &size); err != nil {
		return nil, &Error{Kind: ErrProtocolDecode, Context: cmdGetWindowSize.String(), Err: err}
	}
	return &Rect{
		X:      float64(pos.X),
		Y:      float64(pos.Y),
		Width:  float64(size.Width),
		Height: float64(size.Height),
	}, nil
}

func (wd *remoteWD) SetWindowRect(r Rect) error {
	if wd.dialect == W3C {
		return wd.voidCommand(cmdSetWindowRect, nil, r)
	}
	params := map[string]string{"name": "current"}
	if err := wd.voidCommand(cmdSetWindowPosition, params, map[string]int{
		"x": int(r.X),
		"y": int(r.Y),
	}); err != nil {
		return err
	}
	return wd.voidCommand(cmdSetWindowSize, map[string]string{"name": "current"}, map[string]int{
		"width":  int(r.Width),
		"height": int(r.Height),
	})
}

func (wd *remoteWD) Get(url string) error {
	return wd.voidCommand(cmdGet, nil, map[string]string{"url": url})
}

func (wd *remoteWD) Forward() error {
	return wd.voidCommand(cmdForward, nil, nil)
}

func (wd *remoteWD) Back() error {
	return wd.voidCommand(cmdBack, nil, nil)
}

func (wd *remoteWD) Refresh() error {
	return wd.voidCommand(cmdRefresh, nil, nil)
}

func (wd *remoteWD) find(id commandID, params map[string]string, by, value string) (json.RawMessage, error) {
	by, value = translateLocator(wd.dialect, by, value)
	return wd.executeCommand(id, params, map[string]string{
		"using": by,
		"value": value,
	})
}

func (wd *remoteWD) decodeElement(context string, value json.RawMessage) (WebElement, error) {
	ref := make(map[string]interface{})
	if err := json.Unmarshal(value, &ref); err != nil {
		return nil, &Error{Kind: ErrProtocolDecode, Context: context, Err: err}
	}
	id, ok := elementIDFromRef(ref)
	if !ok {
		return nil, &Error{
			Kind:    ErrProtocolDecode,
			Context: context,
			Message: "response value is not an element reference",
		}
	}
	return &remoteWE{parent: wd, id: id}, nil
}

func (wd *remoteWD) decodeElements(context string, value json.RawMessage) ([]WebElement, error) {
	var refs []map[string]interface{}
	if err := json.Unmarshal(value, &refs); err != nil {
		return nil, &Error{Kind: ErrProtocolDecode, Context: context, Err: err}
	}
	elems := make([]WebElement, 0, len(refs))
	for _, ref := range refs {
		id, ok := elementIDFromRef(ref)
		if !ok {
			return nil, &Error{
				Kind:    ErrProtocolDecode,
				Context: context,
				Message: "response value is not a list of element references",
			}
		}
		elems = append(elems, &remoteWE{parent: wd, id: id})
	}
	return elems, nil
}

func (wd *remoteWD) FindElement(by, value string) (WebElement, error) {
	reply, err := wd.find(cmdFindElement, nil, by, value)
	if err != nil {
		return nil, err
	}
	return wd.decodeElement(cmdFindElement.String(), reply)
}

func (wd *remoteWD) FindElements(by, value string) ([]WebElement, error) {
	reply, err := wd.find(cmdFindElements, nil, by, value)
	if err != nil {
		return nil, err
	}
	return wd.decodeElements(cmdFindElements.String(), reply)
}

func (wd *remoteWD) ActiveElement() (WebElement, error) {
	value, err := wd.executeCommand(cmdActiveElement, nil, nil)
	if err != nil {
		return nil, err
	}
	return wd.decodeElement(cmdActiveElement.String(), value)
}

func (wd *remoteWD) GetCookies() ([]Cookie, error) {
	value, err := wd.executeCommand(cmdGetAllCookies, nil, nil)
	if err != nil {
		return nil, err
	}
	var cookies []Cookie
	if err := json.Unmarshal(value, &cookies); err != nil {
		return nil, &Error{Kind: ErrProtocolDecode, Context: cmdGetAllCookies.String(), Err: err}
	}
	return cookies, nil
}

func (wd *remoteWD) GetCookie(name string) (Cookie, error) {
	if wd.dialect == W3C {
		value, err := wd.executeCommand(cmdGetCookie, map[string]string{"name": name}, nil)
		if err != nil {
			return Cookie{}, err
		}
		var cookie Cookie
		if err := json.Unmarshal(value, &cookie); err != nil {
			return Cookie{}, &Error{Kind: ErrProtocolDecode, Context: cmdGetCookie.String(), Err: err}
		}
		return cookie, nil
	}
	// The legacy protocol has no per-cookie endpoint.
	cookies, err := wd.GetCookies()
	if err != nil {
		return Cookie{}, err
	}
	for _, c := range cookies {
		if c.Name == name {
			return c, nil
		}
	}
	return Cookie{}, &Error{
		Kind:    ErrNoSuchCookie,
		Message: fmt.Sprintf("no cookie named %q", name),
	}
}

func (wd *remoteWD) AddCookie(cookie *Cookie) error {
	return wd.voidCommand(cmdAddCookie, nil, map[string]*Cookie{"cookie": cookie})
}

func (wd *remoteWD) DeleteAllCookies() error {
	return wd.voidCommand(cmdDeleteAllCookies, nil, nil)
}

func (wd *remoteWD) DeleteCookie(name string) error {
	return wd.voidCommand(cmdDeleteCookie, map[string]string{"name": name}, nil)
}

func (wd *remoteWD) Click(button int) error {
	if wd.dialect == W3C {
		return wd.PerformActions([]map[string]interface{}{
			actions.Pointer(actions.Mouse,
				actions.PointerDown(button),
				actions.PointerUp(button)),
		})
	}
	return wd.voidCommand(cmdClick, nil, map[string]int{"button": button})
}

func (wd *remoteWD) DoubleClick() error {
	if wd.dialect == W3C {
		return wd.PerformActions([]map[string]interface{}{
			actions.Pointer(actions.Mouse,
				actions.PointerDown(LeftButton),
				actions.PointerUp(LeftButton),
				actions.PointerDown(LeftButton),
				actions.PointerUp(LeftButton)),
		})
	}
	return wd.voidCommand(cmdDoubleClick, nil, nil)
}

func (wd *remoteWD) ButtonDown() error {
	if wd.dialect == W3C {
		return wd.PerformActions([]map[string]interface{}{
			actions.Pointer(actions.Mouse, actions.PointerDown(LeftButton)),
		})
	}
	return wd.voidCommand(cmdButtonDown, nil, nil)
}

func (wd *remoteWD) ButtonUp() error {
	if wd.dialect == W3C {
		return wd.PerformActions([]map[string]interface{}{
			actions.Pointer(actions.Mouse, actions.PointerUp(LeftButton)),
		})
	}
	return wd.voidCommand(cmdButtonUp, nil, nil)
}

func (wd *remoteWD) KeyDown(keys string) error {
	return wd.sendModifierKeys(keys, actions.KeyDown)
}

func (wd *remoteWD) KeyUp(keys string) error {
	return wd.sendModifierKeys(keys, actions.KeyUp)
}

func (wd *remoteWD) sendModifierKeys(keys string, act func(string) actions.Action) error {
	if wd.dialect == W3C {
		steps := make([]actions.Action, 0, len(keys))
		for _, r := range keys {
			steps = append(steps, act(string(r)))
		}
		return wd.PerformActions([]map[string]interface{}{
			actions.Keyboard(steps...),
		})
	}
	return wd.voidCommand(cmdKeys, nil, map[string][]string{
		"value": strings.Split(keys, ""),
	})
}

func (wd *remoteWD) PerformActions(sequence []map[string]interface{}) error {
	return wd.voidCommand(cmdPerformActions, nil, map[string]interface{}{
		"actions": sequence,
	})
}

func (wd *remoteWD) ReleaseActions() error {
	return wd.voidCommand(cmdReleaseActions, nil, nil)
}

func (wd *remoteWD) Screenshot() ([]byte, error) {
	data, err := wd.stringCommand(cmdScreenshot, nil)
	if err != nil {
		return nil, err
	}
	// Selenium 2 sometimes wraps the base64 payload in newlines.
	decoder := base64.NewDecoder(base64.StdEncoding, strings.NewReader(strings.Replace(data, "\n", "", -1)))
	decoded, err := io.ReadAll(decoder)
	if err != nil {
		return nil, &Error{Kind: ErrProtocolDecode, Context: cmdScreenshot.String(), Err: err}
	}
	return decoded, nil
}

// rawLogMessage is the wire shape of one log entry; timestamps come as
// milliseconds since the epoch.
type rawLogMessage struct {
	Timestamp int64  `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

func (wd *remoteWD) Log(typ log.Type) ([]log.Message, error) {
	value, err := wd.executeCommand(cmdLog, nil, map[string]log.Type{"type": typ})
	if err != nil {
		return nil, err
	}
	var raw []rawLogMessage
	if err := json.Unmarshal(value, &raw); err != nil {
		return nil, &Error{Kind: ErrProtocolDecode, Context: cmdLog.String(), Err: err}
	}
	messages := make([]log.Message, len(raw))
	for i, m := range raw {
		messages[i] = log.Message{
			Timestamp: time.Unix(0, m.Timestamp*int64(time.Millisecond)),
			Level:     log.Level(m.Level),
			Message:   m.Message,
		}
	}
	return messages, nil
}

func (wd *remoteWD) DismissAlert() error {
	return wd.voidCommand(cmdDismissAlert, nil, nil)
}

func (wd *remoteWD) AcceptAlert() error {
	return wd.voidCommand(cmdAcceptAlert, nil, nil)
}

func (wd *remoteWD) AlertText() (string, error) {
	return wd.stringCommand(cmdAlertText, nil)
}

func (wd *remoteWD) SetAlertText(text string) error {
	return wd.voidCommand(cmdSetAlertText, nil, map[string]string{"text": text})
}

func (wd *remoteWD) execScriptRaw(id commandID, script string, args []interface{}) (json.RawMessage, error) {
	if args == nil {
		args = make([]interface{}, 0)
	}
	wireArgs, err := marshalScriptArgs(wd.dialect, args)
	if err != nil {
		return nil, err
	}
	return wd.executeCommand(id, nil, map[string]interface{}{
		"script": script,
		"args":   wireArgs,
	})
}

func (wd *remoteWD) execScript(id commandID, script string, args []interface{}) (interface{}, error) {
	value, err := wd.execScriptRaw(id, script, args)
	if err != nil {
		return nil, err
	}
	var decoded interface{}
	if err := json.Unmarshal(value, &decoded); err != nil {
		return nil, &Error{Kind: ErrProtocolDecode, Context: id.String(), Err: err}
	}
	return unmarshalScriptValue(wd, decoded), nil
}

func (wd *remoteWD) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	return wd.execScript(cmdExecuteScript, script, args)
}

func (wd *remoteWD) ExecuteScriptAsync(script string, args []interface{}) (interface{}, error) {
	return wd.execScript(cmdExecuteAsyncScript, script, args)
}

func (wd *remoteWD) ExecuteScriptRaw(script string, args []interface{}) ([]byte, error) {
	return wd.execScriptRaw(cmdExecuteScript, script, args)
}

func (wd *remoteWD) ExecuteScriptAsyncRaw(script string, args []interface{}) ([]byte, error) {
	return wd.execScriptRaw(cmdExecuteAsyncScript, script, args)
}

func (wd *remoteWD) SetFileDetector(d FileDetector) {
	wd.fileDetector = d
}

// uploadFile ships a local file to the remote end and returns the path the
// file landed at on the remote machine.
func (wd *remoteWD) uploadFile(path string) (string, error) {
	buf, err := zip.File(path)
	if err != nil {
		return "", &Error{Kind: ErrType, Context: cmdUploadFile.String(), Err: err}
	}
	value, err := wd.executeCommand(cmdUploadFile, nil, map[string]string{
		"file": base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
	if err != nil {
		return "", err
	}
	var remote string
	if err := json.Unmarshal(value, &remote); err != nil {
		return "", &Error{Kind: ErrProtocolDecode, Context: cmdUploadFile.String(), Err: err}
	}
	return remote, nil
}

// elementRef builds a wire element-reference object keyed for the dialect.
func elementRef(d Dialect, id string) map[string]string {
	if d == W3C {
		return map[string]string{webElementIdentifier: id}
	}
	return map[string]string{legacyElementIdentifier: id}
}

// remoteWE is a handle to one element within a session. The handle is an
// opaque server-assigned identifier and stays valid until the element is
// removed from the DOM or the session ends.
type remoteWE struct {
	parent *remoteWD
	id     string
}

func (e *remoteWE) params() map[string]string {
	return map[string]string{"id": e.id}
}

func (e *remoteWE) paramsWith(name string) map[string]string {
	return map[string]string{"id": e.id, "name": name}
}

func (e *remoteWE) Click() error {
	return e.parent.voidCommand(cmdElementClick, e.params(), nil)
}

func (e *remoteWE) SendKeys(keys string) error {
	if detector := e.parent.fileDetector; detector != nil {
		if path, ok := detector(keys); ok {
			remote, err := e.parent.uploadFile(path)
			if err != nil {
				return err
			}
			keys = remote
		}
	}
	body := map[string]interface{}{
		"value": strings.Split(keys, ""),
	}
	if e.parent.dialect == W3C {
		body["text"] = keys
	}
	return e.parent.voidCommand(cmdSendKeysToElement, e.params(), body)
}

// submitScript walks up from the element to its form and submits it the way
// a user-triggered submission would, running submit event handlers first.
const submitScript = `var form = arguments[0];
while (form.nodeName.toLowerCase() != 'form') {
  form = form.parentNode;
  if (!form) {
    throw new Error('Unable to find containing form element');
  }
}
var event = document.createEvent('Event');
event.initEvent('submit', true, true);
if (form.dispatchEvent(event)) {
  HTMLFormElement.prototype.submit.call(form);
}`

func (e *remoteWE) Submit() error {
	if e.parent.dialect == W3C {
		// W3C dropped the submit endpoint.
		_, err := e.parent.ExecuteScript(submitScript, []interface{}{e})
		return err
	}
	return e.parent.voidCommand(cmdElementSubmit, e.params(), nil)
}

func (e *remoteWE) Clear() error {
	return e.parent.voidCommand(cmdElementClear, e.params(), nil)
}

func (e *remoteWE) MoveTo(xOffset, yOffset int) error {
	if e.parent.dialect == W3C {
		return e.parent.PerformActions([]map[string]interface{}{
			actions.Pointer(actions.Mouse,
				actions.PointerMove(xOffset, yOffset, e, defaultPointerDuration)),
		})
	}
	return e.parent.voidCommand(cmdMoveTo, nil, map[string]interface{}{
		"element": e.id,
		"xoffset": xOffset,
		"yoffset": yOffset,
	})
}

func (e *remoteWE) FindElement(by, value string) (WebElement, error) {
	reply, err := e.parent.find(cmdFindChildElement, e.params(), by, value)
	if err != nil {
		return nil, err
	}
	return e.parent.decodeElement(cmdFindChildElement.String(), reply)
}

func (e *remoteWE) FindElements(by, value string) ([]WebElement, error) {
	reply, err := e.parent.find(cmdFindChildElements, e.params(), by, value)
	if err != nil {
		return nil, err
	}
	return e.parent.decodeElements(cmdFindChildElements.String(), reply)
}

func (e *remoteWE) TagName() (string, error) {
	return e.parent.stringCommand(cmdElementName, e.params())
}

func (e *remoteWE) Text() (string, error) {
	return e.parent.stringCommand(cmdElementText, e.params())
}

func (e *remoteWE) IsSelected() (bool, error) {
	return e.parent.boolCommand(cmdElementSelected, e.params())
}

func (e *remoteWE) IsEnabled() (bool, error) {
	return e.parent.boolCommand(cmdElementEnabled, e.params())
}

func (e *remoteWE) IsDisplayed() (bool, error) {
	return e.parent.boolCommand(cmdElementDisplayed, e.params())
}

// attributeCommand handles the shared shape of attribute, property and CSS
// value lookups. A JSON null means the attribute is absent, which is
// reported as an error rather than an empty string so callers can tell the
// two apart.
func (e *remoteWE) attributeCommand(id commandID, name string) (string, error) {
	value, err := e.parent.executeCommand(id, e.paramsWith(name), nil)
	if err != nil {
		return "", err
	}
	if bytes.Equal(bytes.TrimSpace(value), []byte("null")) {
		return "", &Error{
			Kind:    ErrWebDriver,
			Context: id.String(),
			Message: fmt.Sprintf("%q is not set", name),
		}
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", &Error{Kind: ErrProtocolDecode, Context: id.String(), Err: err}
	}
	return s, nil
}

func (e *remoteWE) GetAttribute(name string) (string, error) {
	return e.attributeCommand(cmdElementAttribute, name)
}

func (e *remoteWE) GetProperty(name string) (string, error) {
	if e.parent.dialect != W3C {
		// The legacy protocol never had a property endpoint; the DOM lookup
		// does the same thing.
		value, err := e.parent.ExecuteScript("return arguments[0][arguments[1]]", []interface{}{e, name})
		if err != nil {
			return "", err
		}
		s, ok := value.(string)
		if !ok {
			return "", &Error{
				Kind:    ErrWebDriver,
				Context: cmdElementProperty.String(),
				Message: fmt.Sprintf("%q is not set", name),
			}
		}
		return s, nil
	}
	return e.attributeCommand(cmdElementProperty, name)
}

func (e *remoteWE) location(id commandID) (*Point, error) {
	value, err := e.parent.executeCommand(id, e.params(), nil)
	if err != nil {
		return nil, err
	}
	point := new(Point)
	if err := json.Unmarshal(value, point); err != nil {
		return nil, &Error{Kind: ErrProtocolDecode, Context: id.String(), Err: err}
	}
	return point, nil
}

func (e *remoteWE) Location() (*Point, error) {
	if e.parent.dialect == W3C {
		rect, err := e.Rect()
		if err != nil {
			return nil, err
		}
		return &Point{X: int(rect.X), Y: int(rect.Y)}, nil
	}
	return e.location(cmdElementLocation)
}

func (e *remoteWE) LocationInView() (*Point, error) {
	if e.parent.dialect == W3C {
		// Scrolling into view is a side effect of the scrollIntoView DOM
		// call; the legacy endpoint did both at once.
		value, err := e.parent.ExecuteScript(
			"arguments[0].scrollIntoView({block: 'nearest'}); var r = arguments[0].getBoundingClientRect(); return {x: r.x, y: r.y};",
			[]interface{}{e})
		if err != nil {
			return nil, err
		}
		m, ok := value.(map[string]interface{})
		if !ok {
			return nil, &Error{
				Kind:    ErrProtocolDecode,
				Context: cmdElementLocationInView.String(),
				Message: "scroll script returned no coordinates",
			}
		}
		x, _ := m["x"].(float64)
		y, _ := m["y"].(float64)
		return &Point{X: int(x), Y: int(y)}, nil
	}
	return e.location(cmdElementLocationInView)
}

func (e *remoteWE) Size() (*Size, error) {
	if e.parent.dialect == W3C {
		rect, err := e.Rect()
		if err != nil {
			return nil, err
		}
		return &Size{Width: int(rect.Width), Height: int(rect.Height)}, nil
	}
	value, err := e.parent.executeCommand(cmdElementSize, e.params(), nil)
	if err != nil {
		return nil, err
	}
	size := new(Size)
	if err := json.Unmarshal(value, size); err != nil {
		return nil, &Error{Kind: ErrProtocolDecode, Context: cmdElementSize.String(), Err: err}
	}
	return size, nil
}

func (e *remoteWE) Rect() (*Rect, error) {
	if e.parent.dialect != W3C {
		// Stitch the rect together from the two legacy endpoints.
		point, err := e.location(cmdElementLocation)
		if err != nil {
			return nil, err
		}
		size, err := e.Size()
		if err != nil {
			return nil, err
		}
		return &Rect{
			X:      float64(point.X),
			Y:      float64(point.Y),
			Width:  float64(size.Width),
			Height: float64(size.Height),
		}, nil
	}
	value, err := e.parent.executeCommand(cmdElementRect, e.params(), nil)
	if err != nil {
		return nil, err
	}
	rect := new(Rect)
	if err := json.Unmarshal(value, rect); err != nil {
		return nil, &Error{Kind: ErrProtocolDecode, Context: cmdElementRect.String(), Err: err}
	}
	return rect, nil
}

func (e *remoteWE) CSSProperty(name string) (string, error) {
	return e.parent.stringCommand(cmdElementCSSValue, e.paramsWith(name))
}

func (e *remoteWE) Screenshot() ([]byte, error) {
	data, err := e.parent.stringCommand(cmdElementScreenshot, e.params())
	if err != nil {
		return nil, err
	}
	decoder := base64.NewDecoder(base64.StdEncoding, strings.NewReader(strings.Replace(data, "\n", "", -1)))
	decoded, err := io.ReadAll(decoder)
	if err != nil {
		return nil, &Error{Kind: ErrProtocolDecode, Context: cmdElementScreenshot.String(), Err: err}
	}
	return decoded, nil
}

func (e *remoteWE) ID() string {
	return e.id
}

// MarshalJSON emits the wire element-reference object with both dialects'
// keys, so a handle can be embedded in any request body or actions origin.
func (e *remoteWE) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		webElementIdentifier:    e.id,
		legacyElementIdentifier: e.id,
	})
}

// debugLog writes wire traffic at verbosity 2.
func debugLog(format string, args ...interface{}) {
	if glog.V(2) {
		glog.InfoDepth(1, fmt.Sprintf(format, args...))
	}
}

// filteredURL hides userinfo credentials that may be embedded in the URL,
// as with hosted provider endpoints.
func filteredURL(u string) string {
	if at := strings.Index(u, "@"); at >= 0 {
		if scheme := strings.Index(u, "://"); scheme >= 0 && scheme < at {
			return u[:scheme+3] + "<redacted>" + u[at:]
		}
	}
	return u
}
