package webdriver

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/remotewd/webdriver/firefox"
)

// w3cCapabilityNames are the capability keys defined by the W3C
// specification, in their camelCase wire form.
var w3cCapabilityNames = map[string]bool{
	"acceptInsecureCerts":       true,
	"browserName":               true,
	"browserVersion":            true,
	"pageLoadStrategy":          true,
	"platformName":              true,
	"proxy":                     true,
	"setWindowRect":             true,
	"strictFileInteractability": true,
	"timeouts":                  true,
	"unhandledPromptBehavior":   true,
	"webSocketUrl":              true,
}

// extensionCapabilityPattern matches vendor-prefixed extension capabilities
// such as "moz:firefoxOptions" or "goog:chromeOptions".
var extensionCapabilityPattern = regexp.MustCompile(`^[\w-]+:`)

// camelCase converts a snake_case capability name to its camelCase wire
// form. Names without underscores are returned unchanged.
func camelCase(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}

// newW3CCapabilities converts legacy-style desired capabilities into the
// W3C form. Only known W3C keys (in snake_case or camelCase form) and
// vendor-prefixed extension keys survive; legacy-only keys are dropped. The
// legacy firefox_profile capability is folded into moz:firefoxOptions, and
// conflicting profile specifications are a hard error.
func newW3CCapabilities(legacy Capabilities) (Capabilities, error) {
	out := make(Capabilities)
	for key, value := range legacy {
		switch key {
		case "platform":
			if _, ok := legacy["platformName"]; ok {
				continue
			}
			if s, ok := value.(string); ok {
				out["platformName"] = strings.ToUpper(s)
			}
			continue
		case "version":
			if _, ok := legacy["browserVersion"]; ok {
				continue
			}
			out["browserVersion"] = value
			continue
		}
		name := camelCase(key)
		switch {
		case w3cCapabilityNames[name]:
			out[name] = value
		case extensionCapabilityPattern.MatchString(key):
			out[key] = value
		}
	}
	if err := mergeFirefoxProfile(legacy, out); err != nil {
		return nil, err
	}
	return out, nil
}

// mergeFirefoxProfile folds a standalone firefox_profile capability into
// moz:firefoxOptions. An options object already carrying a different
// profile is a conflict; an equal profile is a no-op merge.
func mergeFirefoxProfile(legacy, out Capabilities) error {
	raw, ok := legacy["firefox_profile"]
	if !ok {
		return nil
	}
	profile, ok := raw.(string)
	if !ok {
		return &Error{
			Kind:    ErrType,
			Message: fmt.Sprintf("firefox_profile must be a base64-encoded string, got %T", raw),
		}
	}
	switch opts := out[firefox.CapabilitiesKey].(type) {
	case nil:
		out[firefox.CapabilitiesKey] = firefox.Capabilities{Profile: profile}
	case firefox.Capabilities:
		if opts.Profile != "" && opts.Profile != profile {
			return errConflictingProfiles()
		}
		opts.Profile = profile
		out[firefox.CapabilitiesKey] = opts
	case *firefox.Capabilities:
		if opts.Profile != "" && opts.Profile != profile {
			return errConflictingProfiles()
		}
		opts.Profile = profile
	case map[string]interface{}:
		if existing, ok := opts["profile"].(string); ok && existing != profile {
			return errConflictingProfiles()
		}
		opts["profile"] = profile
	default:
		return &Error{
			Kind:    ErrType,
			Message: fmt.Sprintf("unsupported %s value of type %T", firefox.CapabilitiesKey, opts),
		}
	}
	return nil
}

func errConflictingProfiles() error {
	return &Error{
		Kind:    ErrInvalidArgument,
		Message: "firefox profile specified both standalone and in moz:firefoxOptions",
	}
}

// newSessionPayload builds the new-session request body. The dialect is
// only learned from the response, so by default the body carries both the
// W3C capabilities object and the legacy desiredCapabilities; servers
// predating Selenium 3 choke on the W3C shape, so a configured older server
// version sends the legacy pair alone.
func newSessionPayload(caps Capabilities, serverVersion semver.Version) (map[string]interface{}, error) {
	if caps == nil {
		caps = make(Capabilities)
	}
	payload := map[string]interface{}{
		"desiredCapabilities": caps,
	}
	if serverVersion.Major != 0 && serverVersion.Major < 3 {
		return payload, nil
	}
	alwaysMatch, err := newW3CCapabilities(caps)
	if err != nil {
		return nil, err
	}
	payload["capabilities"] = map[string]interface{}{
		"alwaysMatch": alwaysMatch,
		"firstMatch":  []map[string]interface{}{{}},
	}
	return payload, nil
}

// W3CCapabilities is a typed view of a session's capabilities. Pointer
// fields distinguish "absent" from a zero value; absent keys stay unset
// rather than defaulted.
type W3CCapabilities struct {
	BrowserName               string
	BrowserVersion            string
	PlatformName              string
	AcceptInsecureCerts       *bool
	PageLoadStrategy          string
	Proxy                     *Proxy
	SetWindowRect             *bool
	StrictFileInteractability *bool
	UnhandledPromptBehavior   string

	// The wire nests these under a single timeouts object; they fan out to
	// one field per operation class here.
	ImplicitTimeout *time.Duration
	PageLoadTimeout *time.Duration
	ScriptTimeout   *time.Duration

	// Ext holds vendor-prefixed extension capabilities verbatim.
	Ext map[string]interface{}
}

// ParseW3CCapabilities builds the typed view from a wire capabilities
// object.
func ParseW3CCapabilities(raw Capabilities) *W3CCapabilities {
	c := &W3CCapabilities{}
	for key, value := range raw {
		switch key {
		case "browserName":
			c.BrowserName, _ = value.(string)
		case "browserVersion":
			c.BrowserVersion, _ = value.(string)
		case "platformName":
			c.PlatformName, _ = value.(string)
		case "acceptInsecureCerts":
			if b, ok := value.(bool); ok {
				c.AcceptInsecureCerts = &b
			}
		case "pageLoadStrategy":
			c.PageLoadStrategy, _ = value.(string)
		case "setWindowRect":
			if b, ok := value.(bool); ok {
				c.SetWindowRect = &b
			}
		case "strictFileInteractability":
			if b, ok := value.(bool); ok {
				c.StrictFileInteractability = &b
			}
		case "unhandledPromptBehavior":
			c.UnhandledPromptBehavior, _ = value.(string)
		case "proxy":
			c.Proxy = parseProxy(value)
		case "timeouts":
			if m, ok := value.(map[string]interface{}); ok {
				c.ImplicitTimeout = parseTimeoutMS(m["implicit"])
				c.PageLoadTimeout = parseTimeoutMS(m["pageLoad"])
				c.ScriptTimeout = parseTimeoutMS(m["script"])
			}
		default:
			if extensionCapabilityPattern.MatchString(key) {
				if c.Ext == nil {
					c.Ext = make(map[string]interface{})
				}
				c.Ext[key] = value
			}
		}
	}
	return c
}

// ToWire is the inverse of ParseW3CCapabilities. Extension keys that do not
// match the vendor-prefix pattern are a caller bug and fail with a type
// error. The platform name keeps the legacy upper-case convention.
func (c *W3CCapabilities) ToWire() (Capabilities, error) {
	out := make(Capabilities)
	if c.BrowserName != "" {
		out["browserName"] = c.BrowserName
	}
	if c.BrowserVersion != "" {
		out["browserVersion"] = c.BrowserVersion
	}
	if c.PlatformName != "" {
		out["platformName"] = strings.ToUpper(c.PlatformName)
	}
	if c.AcceptInsecureCerts != nil {
		out["acceptInsecureCerts"] = *c.AcceptInsecureCerts
	}
	if c.PageLoadStrategy != "" {
		out["pageLoadStrategy"] = c.PageLoadStrategy
	}
	if c.SetWindowRect != nil {
		out["setWindowRect"] = *c.SetWindowRect
	}
	if c.StrictFileInteractability != nil {
		out["strictFileInteractability"] = *c.StrictFileInteractability
	}
	if c.UnhandledPromptBehavior != "" {
		out["unhandledPromptBehavior"] = c.UnhandledPromptBehavior
	}
	if c.Proxy != nil {
		out["proxy"] = c.Proxy
	}
	if c.ImplicitTimeout != nil || c.PageLoadTimeout != nil || c.ScriptTimeout != nil {
		timeouts := make(map[string]interface{})
		if c.ImplicitTimeout != nil {
			timeouts["implicit"] = durationToMS(*c.ImplicitTimeout)
		}
		if c.PageLoadTimeout != nil {
			timeouts["pageLoad"] = durationToMS(*c.PageLoadTimeout)
		}
		if c.ScriptTimeout != nil {
			timeouts["script"] = durationToMS(*c.ScriptTimeout)
		}
		out["timeouts"] = timeouts
	}
	for key, value := range c.Ext {
		if !extensionCapabilityPattern.MatchString(key) {
			return nil, &Error{
				Kind:    ErrType,
				Message: fmt.Sprintf("%q is not a vendor-prefixed extension capability", key),
			}
		}
		out[key] = value
	}
	return out, nil
}

func parseProxy(value interface{}) *Proxy {
	data, err := json.Marshal(value)
	if err != nil {
		return nil
	}
	p := new(Proxy)
	if err := json.Unmarshal(data, p); err != nil {
		return nil
	}
	return p
}

func parseTimeoutMS(value interface{}) *time.Duration {
	ms, ok := value.(float64)
	if !ok {
		return nil
	}
	d := time.Duration(ms) * time.Millisecond
	return &d
}

func durationToMS(d time.Duration) uint {
	return uint(d / time.Millisecond)
}
