package webdriver

import (
	"time"

	"github.com/remotewd/webdriver/chrome"
	"github.com/remotewd/webdriver/firefox"
	"github.com/remotewd/webdriver/log"
)

// Dialect is the wire-protocol variant spoken by the remote end. It is
// determined once, from the shape of the new-session response, and is fixed
// for the lifetime of the session.
type Dialect int

const (
	// W3C is the W3C WebDriver protocol, https://www.w3.org/TR/webdriver.
	W3C Dialect = iota
	// OSS is the legacy JSON Wire Protocol spoken by Selenium 2 and older
	// drivers.
	OSS
)

func (d Dialect) String() string {
	if d == OSS {
		return "OSS"
	}
	return "W3C"
}

// Methods by which to find elements.
const (
	ByID              = "id"
	ByXPATH           = "xpath"
	ByLinkText        = "link text"
	ByPartialLinkText = "partial link text"
	ByName            = "name"
	ByTagName         = "tag name"
	ByClassName       = "class name"
	ByCSSSelector     = "css selector"
)

// Mouse buttons.
const (
	LeftButton = iota
	MiddleButton
	RightButton
)

// Special keyboard keys, for SendKeys.
const (
	NullKey       = string(rune('\ue000'))
	CancelKey     = string(rune('\ue001'))
	HelpKey       = string(rune('\ue002'))
	BackspaceKey  = string(rune('\ue003'))
	TabKey        = string(rune('\ue004'))
	ClearKey      = string(rune('\ue005'))
	ReturnKey     = string(rune('\ue006'))
	EnterKey      = string(rune('\ue007'))
	ShiftKey      = string(rune('\ue008'))
	ControlKey    = string(rune('\ue009'))
	AltKey        = string(rune('\ue00a'))
	PauseKey      = string(rune('\ue00b'))
	EscapeKey     = string(rune('\ue00c'))
	SpaceKey      = string(rune('\ue00d'))
	PageUpKey     = string(rune('\ue00e'))
	PageDownKey   = string(rune('\ue00f'))
	EndKey        = string(rune('\ue010'))
	HomeKey       = string(rune('\ue011'))
	LeftArrowKey  = string(rune('\ue012'))
	UpArrowKey    = string(rune('\ue013'))
	RightArrowKey = string(rune('\ue014'))
	DownArrowKey  = string(rune('\ue015'))
	InsertKey     = string(rune('\ue016'))
	DeleteKey     = string(rune('\ue017'))
	SemicolonKey  = string(rune('\ue018'))
	EqualsKey     = string(rune('\ue019'))
	Numpad0Key    = string(rune('\ue01a'))
	Numpad1Key    = string(rune('\ue01b'))
	Numpad2Key    = string(rune('\ue01c'))
	Numpad3Key    = string(rune('\ue01d'))
	Numpad4Key    = string(rune('\ue01e'))
	Numpad5Key    = string(rune('\ue01f'))
	Numpad6Key    = string(rune('\ue020'))
	Numpad7Key    = string(rune('\ue021'))
	Numpad8Key    = string(rune('\ue022'))
	Numpad9Key    = string(rune('\ue023'))
	MultiplyKey   = string(rune('\ue024'))
	AddKey        = string(rune('\ue025'))
	SeparatorKey  = string(rune('\ue026'))
	SubstractKey  = string(rune('\ue027'))
	DecimalKey    = string(rune('\ue028'))
	DivideKey     = string(rune('\ue029'))
	F1Key         = string(rune('\ue031'))
	F2Key         = string(rune('\ue032'))
	F3Key         = string(rune('\ue033'))
	F4Key         = string(rune('\ue034'))
	F5Key         = string(rune('\ue035'))
	F6Key         = string(rune('\ue036'))
	F7Key         = string(rune('\ue037'))
	F8Key         = string(rune('\ue038'))
	F9Key         = string(rune('\ue039'))
	F10Key        = string(rune('\ue03a'))
	F11Key        = string(rune('\ue03b'))
	F12Key        = string(rune('\ue03c'))
	MetaKey       = string(rune('\ue03d'))
)

// Capabilities configures both the WebDriver process and the target browsers,
// with standard and browser-specific options.
type Capabilities map[string]interface{}

// AddChrome adds Chrome-specific capabilities.
func (c Capabilities) AddChrome(f chrome.Capabilities) {
	c[chrome.CapabilitiesKey] = f
	c[chrome.DeprecatedCapabilitiesKey] = f
}

// AddFirefox adds Firefox-specific capabilities.
func (c Capabilities) AddFirefox(f firefox.Capabilities) {
	c[firefox.CapabilitiesKey] = f
}

// AddProxy adds proxy configuration to the capabilities.
func (c Capabilities) AddProxy(p Proxy) {
	c["proxy"] = p
}

// AddLogging adds logging configuration to the capabilities.
func (c Capabilities) AddLogging(l log.Capabilities) {
	c[log.CapabilitiesKey] = l
}

// SetLogLevel sets the logging level of a component. It is a shortcut for
// passing a log.Capabilities instance to AddLogging.
func (c Capabilities) SetLogLevel(typ log.Type, level log.Level) {
	if _, ok := c[log.CapabilitiesKey]; !ok {
		c[log.CapabilitiesKey] = make(log.Capabilities)
	}
	m := c[log.CapabilitiesKey].(log.Capabilities)
	m[typ] = level
}

// Proxy specifies configuration for proxies in the browser. Set the key
// "proxy" in Capabilities to an instance of this type.
type Proxy struct {
	// Type is the type of proxy to use. This is required to be populated.
	Type ProxyType `json:"proxyType"`

	// AutoconfigURL is the URL to be used for proxy auto configuration. This is
	// required if Type is set to PAC.
	AutoconfigURL string `json:"proxyAutoconfigUrl,omitempty"`

	// The following are used when Type is set to Manual.
	//
	// Note that in Firefox, connections to localhost are not proxied by default,
	// even if a proxy is set. This can be overridden via a preference setting.
	FTP           string   `json:"ftpProxy,omitempty"`
	HTTP          string   `json:"httpProxy,omitempty"`
	SSL           string   `json:"sslProxy,omitempty"`
	SOCKS         string   `json:"socksProxy,omitempty"`
	SOCKSVersion  int      `json:"socksVersion,omitempty"`
	SOCKSUsername string   `json:"socksUsername,omitempty"`
	SOCKSPassword string   `json:"socksPassword,omitempty"`
	NoProxy       []string `json:"noProxy,omitempty"`

	// The W3C draft spec includes port fields as well. According to the
	// specification, ports can also be included in the above addresses. However,
	// in the Geckodriver implementation, the ports must be specified by these
	// additional fields.
	HTTPPort  int `json:"httpProxyPort,omitempty"`
	SSLPort   int `json:"sslProxyPort,omitempty"`
	SocksPort int `json:"socksProxyPort,omitempty"`
}

// ProxyType is an enumeration of the types of proxies available.
type ProxyType string

const (
	// Direct connection - no proxy in use.
	Direct ProxyType = "direct"
	// Manual proxy settings configured, e.g. setting a proxy for HTTP, a proxy
	// for FTP, etc.
	Manual = "manual"
	// Autodetect proxy, probably with WPAD
	Autodetect = "autodetect"
	// System settings used.
	System = "system"
	// PAC - Proxy autoconfiguration from a URL.
	PAC = "pac"
)

// Status contains information returned by the Status method.
type Status struct {
	// The following fields are used by Selenium and ChromeDriver.
	Java struct {
		Version string
	}
	Build struct {
		Version, Revision, Time string
	}
	OS struct {
		Arch, Name, Version string
	}

	// The following fields are specified by the W3C WebDriver specification
	// and are used by GeckoDriver.
	Ready   bool
	Message string
}

// Point is a 2D point.
type Point struct {
	X, Y int
}

// Size is a size of an HTML element.
type Size struct {
	Width, Height int
}

// Rect is the unified W3C window or element rectangle. Element rectangles
// may have fractional coordinates on some drivers, hence float64.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Cookie represents an HTTP cookie.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Path   string `json:"path"`
	Domain string `json:"domain"`
	Secure bool   `json:"secure"`
	Expiry uint   `json:"expiry"`
}

// FileDetector decides whether a SendKeys payload names a local file that
// must be uploaded to the remote end before the keys are sent. A non-nil
// detector that returns ok causes the file at path to be zipped, uploaded,
// and the server-side path substituted for the original key sequence.
type FileDetector func(keys string) (path string, ok bool)

// WebDriver defines methods supported by WebDriver drivers.
type WebDriver interface {
	// Status returns various pieces of information about the server
	// environment. It may be called before a session exists.
	Status() (*Status, error)

	// NewSession starts a new session and returns the session ID. The
	// session's dialect is determined from the server's response.
	NewSession() (string, error)

	// SessionID returns the current session ID.
	SessionID() string

	// Dialect returns the wire-protocol dialect negotiated at session
	// creation.
	Dialect() Dialect

	// Capabilities returns the session's negotiated capabilities.
	Capabilities() (Capabilities, error)

	// SetAsyncScriptTimeout sets the amount of time that asynchronous scripts
	// are permitted to run before they are aborted. The timeout will be
	// rounded to nearest millisecond.
	SetAsyncScriptTimeout(timeout time.Duration) error
	// SetImplicitWaitTimeout sets the amount of time the driver should wait
	// when searching for elements. The timeout will be rounded to nearest
	// millisecond.
	SetImplicitWaitTimeout(timeout time.Duration) error
	// SetPageLoadTimeout sets the amount of time the driver should wait when
	// loading a page. The timeout will be rounded to nearest millisecond.
	SetPageLoadTimeout(timeout time.Duration) error

	// Quit ends the current session. The browser instance will be closed.
	// Transport failures while tearing down an already-gone session are
	// absorbed; local transport resources are released either way. After
	// Quit, every method other than Status and NewSession fails without a
	// network call; NewSession starts a fresh session on the same server.
	Quit() error

	// CurrentWindowHandle returns the ID of current window handle.
	CurrentWindowHandle() (string, error)
	// WindowHandles returns the IDs of current open windows.
	WindowHandles() ([]string, error)
	// CurrentURL returns the browser's current URL.
	CurrentURL() (string, error)
	// Title returns the current page's title.
	Title() (string, error)
	// PageSource returns the current page's source.
	PageSource() (string, error)
	// Close closes the current window.
	Close() error
	// SwitchFrame switches to the given frame. The frame parameter can be
	// the frame's index (an int), its name or ID (a string), a WebElement
	// for the frame element, or nil to switch to the top-level browsing
	// context.
	SwitchFrame(frame interface{}) error
	// SwitchFrameParent switches to the parent of the current frame.
	SwitchFrameParent() error
	// SwitchWindow switches the context to the specified window.
	SwitchWindow(name string) error
	// CloseWindow closes the specified window.
	CloseWindow(name string) error
	// MaximizeWindow maximizes a window. If the name is empty, the current
	// window will be maximized.
	MaximizeWindow(name string) error
	// ResizeWindow changes the dimensions of a window. If the name is empty,
	// the current window will be resized.
	ResizeWindow(name string, width, height int) error
	// WindowRect returns the position and size of the current window. Under
	// the legacy dialect this issues separate position and size requests.
	WindowRect() (*Rect, error)
	// SetWindowRect sets the position and size of the current window.
	SetWindowRect(r Rect) error

	// Get navigates the browser to the provided URL.
	Get(url string) error
	// Forward moves forward in history.
	Forward() error
	// Back moves backward in history.
	Back() error
	// Refresh refreshes the page.
	Refresh() error

	// FindElement finds exactly one element in the current page's DOM.
	FindElement(by, value string) (WebElement, error)
	// FindElements finds potentially many elements in the current page's DOM.
	FindElements(by, value string) ([]WebElement, error)
	// ActiveElement returns the currently active element on the page.
	ActiveElement() (WebElement, error)

	// GetCookies returns all of the cookies in the browser's jar.
	GetCookies() ([]Cookie, error)
	// GetCookie returns the named cookie in the jar, if present.
	GetCookie(name string) (Cookie, error)
	// AddCookie adds a cookie to the browser's jar.
	AddCookie(cookie *Cookie) error
	// DeleteAllCookies deletes all of the cookies in the browser's jar.
	DeleteAllCookies() error
	// DeleteCookie deletes a cookie from the browser's jar.
	DeleteCookie(name string) error

	// Click clicks a mouse button. The button should be one of RightButton,
	// MiddleButton or LeftButton.
	Click(button int) error
	// DoubleClick clicks the left mouse button twice.
	DoubleClick() error
	// ButtonDown causes the left mouse button to be held down.
	ButtonDown() error
	// ButtonUp causes the left mouse button to be released.
	ButtonUp() error
	// KeyDown sends a sequence of keystrokes to the active element. This
	// method is similar to SendKeys but without the implicit termination.
	// Modifiers are not released at the end of each call.
	KeyDown(keys string) error
	// KeyUp indicates that a previous keystroke sent by KeyDown should be
	// released.
	KeyUp(keys string) error

	// PerformActions dispatches a W3C actions sequence, as produced by the
	// actions package.
	PerformActions(sequence []map[string]interface{}) error
	// ReleaseActions releases all keys and pointer buttons currently
	// depressed via PerformActions.
	ReleaseActions() error

	// Screenshot takes a screenshot of the browser window.
	Screenshot() ([]byte, error)
	// Log fetches the logs. Log types must be previously configured in the
	// capabilities.
	//
	// NOTE: will return an error (not implemented) on IE11 or Edge drivers.
	Log(typ log.Type) ([]log.Message, error)

	// DismissAlert dismisses the current alert.
	DismissAlert() error
	// AcceptAlert accepts the current alert.
	AcceptAlert() error
	// AlertText returns the current alert text.
	AlertText() (string, error)
	// SetAlertText sets the current alert text.
	SetAlertText(text string) error

	// ExecuteScript executes a script.
	ExecuteScript(script string, args []interface{}) (interface{}, error)
	// ExecuteScriptAsync asynchronously executes a script.
	ExecuteScriptAsync(script string, args []interface{}) (interface{}, error)

	// ExecuteScriptRaw executes a script but does not perform JSON decoding.
	ExecuteScriptRaw(script string, args []interface{}) ([]byte, error)
	// ExecuteScriptAsyncRaw asynchronously executes a script but does not
	// perform JSON decoding.
	ExecuteScriptAsyncRaw(script string, args []interface{}) ([]byte, error)

	// SetFileDetector installs the detector consulted by SendKeys for the
	// file-upload sub-protocol. A nil detector disables upload detection.
	SetFileDetector(d FileDetector)
}

// WebElement defines methods supported by web elements.
type WebElement interface {
	// Click clicks on the element.
	Click() error
	// SendKeys types into the element.
	SendKeys(keys string) error
	// Submit submits the enclosing form.
	Submit() error
	// Clear clears the element.
	Clear() error
	// MoveTo moves the mouse to relative coordinates from the center of the
	// element. If the element is not visible, it will be scrolled into view.
	MoveTo(xOffset, yOffset int) error

	// FindElement finds a child element.
	FindElement(by, value string) (WebElement, error)
	// FindElements finds multiple child elements.
	FindElements(by, value string) ([]WebElement, error)

	// TagName returns the element's name.
	TagName() (string, error)
	// Text returns the text of the element.
	Text() (string, error)
	// IsSelected returns true if element is selected.
	IsSelected() (bool, error)
	// IsEnabled returns true if the element is enabled.
	IsEnabled() (bool, error)
	// IsDisplayed returns true if the element is displayed.
	IsDisplayed() (bool, error)
	// GetAttribute returns the named attribute of the element.
	GetAttribute(name string) (string, error)
	// GetProperty returns the named property of the element.
	GetProperty(name string) (string, error)
	// Location returns the element's location.
	Location() (*Point, error)
	// LocationInView returns the element's location once it has been
	// scrolled into view.
	LocationInView() (*Point, error)
	// Size returns the element's size.
	Size() (*Size, error)
	// Rect returns the element's location and size in one shape.
	Rect() (*Rect, error)
	// CSSProperty returns the value of the specified CSS property of the
	// element.
	CSSProperty(name string) (string, error)
	// Screenshot takes a screenshot of the element.
	Screenshot() ([]byte, error)
	// ID returns the server-assigned opaque identifier of the element.
	ID() string
}
