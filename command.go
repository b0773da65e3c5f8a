package webdriver

import (
	"fmt"
	"strings"
)

// commandID enumerates every logical wire-protocol operation. Commands are
// looked up in the table for the session's dialect; a command with no entry
// there is unsupported for that dialect.
type commandID int

const (
	cmdStatus commandID = iota
	cmdNewSession
	cmdDeleteSession

	cmdGetTimeouts
	cmdSetTimeouts
	cmdSetAsyncScriptTimeout
	cmdSetImplicitWaitTimeout

	cmdGet
	cmdCurrentURL
	cmdBack
	cmdForward
	cmdRefresh
	cmdTitle
	cmdPageSource

	cmdWindowHandle
	cmdWindowHandles
	cmdNewWindow
	cmdCloseWindow
	cmdSwitchToWindow
	cmdGetWindowRect
	cmdSetWindowRect
	cmdGetWindowSize
	cmdSetWindowSize
	cmdGetWindowPosition
	cmdSetWindowPosition
	cmdMaximizeWindow
	cmdMinimizeWindow
	cmdFullscreenWindow

	cmdSwitchToFrame
	cmdSwitchToParentFrame

	cmdFindElement
	cmdFindElements
	cmdFindChildElement
	cmdFindChildElements
	cmdActiveElement

	cmdElementClick
	cmdElementClear
	cmdElementSubmit
	cmdElementText
	cmdElementName
	cmdElementRect
	cmdElementLocation
	cmdElementLocationInView
	cmdElementSize
	cmdElementAttribute
	cmdElementProperty
	cmdElementCSSValue
	cmdElementSelected
	cmdElementEnabled
	cmdElementDisplayed
	cmdElementScreenshot
	cmdSendKeysToElement

	cmdExecuteScript
	cmdExecuteAsyncScript

	cmdGetAllCookies
	cmdGetCookie
	cmdAddCookie
	cmdDeleteCookie
	cmdDeleteAllCookies

	cmdAcceptAlert
	cmdDismissAlert
	cmdAlertText
	cmdSetAlertText

	cmdScreenshot
	cmdPerformActions
	cmdReleaseActions
	cmdUploadFile
	cmdLog

	// Legacy interaction endpoints; under W3C these are synthesized through
	// cmdPerformActions instead.
	cmdClick
	cmdDoubleClick
	cmdButtonDown
	cmdButtonUp
	cmdMoveTo
	cmdKeys
)

var commandNames = map[commandID]string{
	cmdStatus:                 "status",
	cmdNewSession:             "new session",
	cmdDeleteSession:          "delete session",
	cmdGetTimeouts:            "get timeouts",
	cmdSetTimeouts:            "set timeouts",
	cmdSetAsyncScriptTimeout:  "set async script timeout",
	cmdSetImplicitWaitTimeout: "set implicit wait timeout",
	cmdGet:                    "get",
	cmdCurrentURL:             "get current url",
	cmdBack:                   "back",
	cmdForward:                "forward",
	cmdRefresh:                "refresh",
	cmdTitle:                  "get title",
	cmdPageSource:             "get page source",
	cmdWindowHandle:           "get window handle",
	cmdWindowHandles:          "get window handles",
	cmdNewWindow:              "new window",
	cmdCloseWindow:            "close window",
	cmdSwitchToWindow:         "switch to window",
	cmdGetWindowRect:          "get window rect",
	cmdSetWindowRect:          "set window rect",
	cmdGetWindowSize:          "get window size",
	cmdSetWindowSize:          "set window size",
	cmdGetWindowPosition:      "get window position",
	cmdSetWindowPosition:      "set window position",
	cmdMaximizeWindow:         "maximize window",
	cmdMinimizeWindow:         "minimize window",
	cmdFullscreenWindow:       "fullscreen window",
	cmdSwitchToFrame:          "switch to frame",
	cmdSwitchToParentFrame:    "switch to parent frame",
	cmdFindElement:            "find element",
	cmdFindElements:           "find elements",
	cmdFindChildElement:       "find child element",
	cmdFindChildElements:      "find child elements",
	cmdActiveElement:          "get active element",
	cmdElementClick:           "element click",
	cmdElementClear:           "element clear",
	cmdElementSubmit:          "element submit",
	cmdElementText:            "get element text",
	cmdElementName:            "get element tag name",
	cmdElementRect:            "get element rect",
	cmdElementLocation:        "get element location",
	cmdElementLocationInView:  "get element location in view",
	cmdElementSize:            "get element size",
	cmdElementAttribute:       "get element attribute",
	cmdElementProperty:        "get element property",
	cmdElementCSSValue:        "get element css value",
	cmdElementSelected:        "is element selected",
	cmdElementEnabled:         "is element enabled",
	cmdElementDisplayed:       "is element displayed",
	cmdElementScreenshot:      "take element screenshot",
	cmdSendKeysToElement:      "element send keys",
	cmdExecuteScript:          "execute script",
	cmdExecuteAsyncScript:     "execute async script",
	cmdGetAllCookies:          "get all cookies",
	cmdGetCookie:              "get named cookie",
	cmdAddCookie:              "add cookie",
	cmdDeleteCookie:           "delete cookie",
	cmdDeleteAllCookies:       "delete all cookies",
	cmdAcceptAlert:            "accept alert",
	cmdDismissAlert:           "dismiss alert",
	cmdAlertText:              "get alert text",
	cmdSetAlertText:           "send alert text",
	cmdScreenshot:             "take screenshot",
	cmdPerformActions:         "perform actions",
	cmdReleaseActions:         "release actions",
	cmdUploadFile:             "upload file",
	cmdLog:                    "get log",
	cmdClick:                  "click",
	cmdDoubleClick:            "double click",
	cmdButtonDown:             "button down",
	cmdButtonUp:               "button up",
	cmdMoveTo:                 "move to",
	cmdKeys:                   "send keys to active element",
}

func (id commandID) String() string {
	if name, ok := commandNames[id]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(id))
}

// commandSpec is one entry of a dialect's command table: an HTTP method and
// a path template. Templates contain :sessionId, :id and :name placeholders
// that are substituted per call.
type commandSpec struct {
	method string
	path   string
}

// ossCommands is the legacy JSON Wire Protocol table.
var ossCommands = map[commandID]commandSpec{
	cmdStatus:                 {"GET", "/status"},
	cmdNewSession:             {"POST", "/session"},
	cmdDeleteSession:          {"DELETE", "/session/:sessionId"},
	cmdSetTimeouts:            {"POST", "/session/:sessionId/timeouts"},
	cmdSetAsyncScriptTimeout:  {"POST", "/session/:sessionId/timeouts/async_script"},
	cmdSetImplicitWaitTimeout: {"POST", "/session/:sessionId/timeouts/implicit_wait"},
	cmdGet:                    {"POST", "/session/:sessionId/url"},
	cmdCurrentURL:             {"GET", "/session/:sessionId/url"},
	cmdBack:                   {"POST", "/session/:sessionId/back"},
	cmdForward:                {"POST", "/session/:sessionId/forward"},
	cmdRefresh:                {"POST", "/session/:sessionId/refresh"},
	cmdTitle:                  {"GET", "/session/:sessionId/title"},
	cmdPageSource:             {"GET", "/session/:sessionId/source"},
	cmdWindowHandle:           {"GET", "/session/:sessionId/window_handle"},
	cmdWindowHandles:          {"GET", "/session/:sessionId/window_handles"},
	cmdCloseWindow:            {"DELETE", "/session/:sessionId/window"},
	cmdSwitchToWindow:         {"POST", "/session/:sessionId/window"},
	cmdGetWindowSize:          {"GET", "/session/:sessionId/window/:name/size"},
	cmdSetWindowSize:          {"POST", "/session/:sessionId/window/:name/size"},
	cmdGetWindowPosition:      {"GET", "/session/:sessionId/window/:name/position"},
	cmdSetWindowPosition:      {"POST", "/session/:sessionId/window/:name/position"},
	cmdMaximizeWindow:         {"POST", "/session/:sessionId/window/:name/maximize"},
	cmdSwitchToFrame:          {"POST", "/session/:sessionId/frame"},
	cmdSwitchToParentFrame:    {"POST", "/session/:sessionId/frame/parent"},
	cmdFindElement:            {"POST", "/session/:sessionId/element"},
	cmdFindElements:           {"POST", "/session/:sessionId/elements"},
	cmdFindChildElement:       {"POST", "/session/:sessionId/element/:id/element"},
	cmdFindChildElements:      {"POST", "/session/:sessionId/element/:id/elements"},
	cmdActiveElement:          {"POST", "/session/:sessionId/element/active"},
	cmdElementClick:           {"POST", "/session/:sessionId/element/:id/click"},
	cmdElementClear:           {"POST", "/session/:sessionId/element/:id/clear"},
	cmdElementSubmit:          {"POST", "/session/:sessionId/element/:id/submit"},
	cmdElementText:            {"GET", "/session/:sessionId/element/:id/text"},
	cmdElementName:            {"GET", "/session/:sessionId/element/:id/name"},
	cmdElementLocation:        {"GET", "/session/:sessionId/element/:id/location"},
	cmdElementLocationInView:  {"GET", "/session/:sessionId/element/:id/location_in_view"},
	cmdElementSize:            {"GET", "/session/:sessionId/element/:id/size"},
	cmdElementAttribute:       {"GET", "/session/:sessionId/element/:id/attribute/:name"},
	cmdElementCSSValue:        {"GET", "/session/:sessionId/element/:id/css/:name"},
	cmdElementSelected:        {"GET", "/session/:sessionId/element/:id/selected"},
	cmdElementEnabled:         {"GET", "/session/:sessionId/element/:id/enabled"},
	cmdElementDisplayed:       {"GET", "/session/:sessionId/element/:id/displayed"},
	cmdSendKeysToElement:      {"POST", "/session/:sessionId/element/:id/value"},
	cmdExecuteScript:          {"POST", "/session/:sessionId/execute"},
	cmdExecuteAsyncScript:     {"POST", "/session/:sessionId/execute_async"},
	cmdGetAllCookies:          {"GET", "/session/:sessionId/cookie"},
	cmdAddCookie:              {"POST", "/session/:sessionId/cookie"},
	cmdDeleteCookie:           {"DELETE", "/session/:sessionId/cookie/:name"},
	cmdDeleteAllCookies:       {"DELETE", "/session/:sessionId/cookie"},
	cmdAcceptAlert:            {"POST", "/session/:sessionId/accept_alert"},
	cmdDismissAlert:           {"POST", "/session/:sessionId/dismiss_alert"},
	cmdAlertText:              {"GET", "/session/:sessionId/alert_text"},
	cmdSetAlertText:           {"POST", "/session/:sessionId/alert_text"},
	cmdScreenshot:             {"GET", "/session/:sessionId/screenshot"},
	cmdUploadFile:             {"POST", "/session/:sessionId/se/file"},
	cmdLog:                    {"POST", "/session/:sessionId/log"},
	cmdClick:                  {"POST", "/session/:sessionId/click"},
	cmdDoubleClick:            {"POST", "/session/:sessionId/doubleclick"},
	cmdButtonDown:             {"POST", "/session/:sessionId/buttondown"},
	cmdButtonUp:               {"POST", "/session/:sessionId/buttonup"},
	cmdMoveTo:                 {"POST", "/session/:sessionId/moveto"},
	cmdKeys:                   {"POST", "/session/:sessionId/keys"},
}

// w3cCommands is the W3C WebDriver table.
var w3cCommands = map[commandID]commandSpec{
	cmdNewSession:          {"POST", "/session"},
	cmdDeleteSession:       {"DELETE", "/session/:sessionId"},
	cmdGetTimeouts:         {"GET", "/session/:sessionId/timeouts"},
	cmdSetTimeouts:         {"POST", "/session/:sessionId/timeouts"},
	cmdGet:                 {"POST", "/session/:sessionId/url"},
	cmdCurrentURL:          {"GET", "/session/:sessionId/url"},
	cmdBack:                {"POST", "/session/:sessionId/back"},
	cmdForward:             {"POST", "/session/:sessionId/forward"},
	cmdRefresh:             {"POST", "/session/:sessionId/refresh"},
	cmdTitle:               {"GET", "/session/:sessionId/title"},
	cmdPageSource:          {"GET", "/session/:sessionId/source"},
	cmdWindowHandle:        {"GET", "/session/:sessionId/window"},
	cmdWindowHandles:       {"GET", "/session/:sessionId/window/handles"},
	cmdNewWindow:           {"POST", "/session/:sessionId/window/new"},
	cmdCloseWindow:         {"DELETE", "/session/:sessionId/window"},
	cmdSwitchToWindow:      {"POST", "/session/:sessionId/window"},
	cmdGetWindowRect:       {"GET", "/session/:sessionId/window/rect"},
	cmdSetWindowRect:       {"POST", "/session/:sessionId/window/rect"},
	cmdMaximizeWindow:      {"POST", "/session/:sessionId/window/maximize"},
	cmdMinimizeWindow:      {"POST", "/session/:sessionId/window/minimize"},
	cmdFullscreenWindow:    {"POST", "/session/:sessionId/window/fullscreen"},
	cmdSwitchToFrame:       {"POST", "/session/:sessionId/frame"},
	cmdSwitchToParentFrame: {"POST", "/session/:sessionId/frame/parent"},
	cmdFindElement:         {"POST", "/session/:sessionId/element"},
	cmdFindElements:        {"POST", "/session/:sessionId/elements"},
	cmdFindChildElement:    {"POST", "/session/:sessionId/element/:id/element"},
	cmdFindChildElements:   {"POST", "/session/:sessionId/element/:id/elements"},
	cmdActiveElement:       {"GET", "/session/:sessionId/element/active"},
	cmdElementClick:        {"POST", "/session/:sessionId/element/:id/click"},
	cmdElementClear:        {"POST", "/session/:sessionId/element/:id/clear"},
	cmdElementText:         {"GET", "/session/:sessionId/element/:id/text"},
	cmdElementName:         {"GET", "/session/:sessionId/element/:id/name"},
	cmdElementRect:         {"GET", "/session/:sessionId/element/:id/rect"},
	cmdElementAttribute:    {"GET", "/session/:sessionId/element/:id/attribute/:name"},
	cmdElementProperty:     {"GET", "/session/:sessionId/element/:id/property/:name"},
	cmdElementCSSValue:     {"GET", "/session/:sessionId/element/:id/css/:name"},
	cmdElementSelected:     {"GET", "/session/:sessionId/element/:id/selected"},
	cmdElementEnabled:      {"GET", "/session/:sessionId/element/:id/enabled"},
	// Displayedness is not part of the W3C protocol, but every mainstream
	// driver keeps the legacy endpoint as an extension.
	cmdElementDisplayed:   {"GET", "/session/:sessionId/element/:id/displayed"},
	cmdElementScreenshot:  {"GET", "/session/:sessionId/element/:id/screenshot"},
	cmdSendKeysToElement:  {"POST", "/session/:sessionId/element/:id/value"},
	cmdExecuteScript:      {"POST", "/session/:sessionId/execute/sync"},
	cmdExecuteAsyncScript: {"POST", "/session/:sessionId/execute/async"},
	cmdGetAllCookies:      {"GET", "/session/:sessionId/cookie"},
	cmdGetCookie:          {"GET", "/session/:sessionId/cookie/:name"},
	cmdAddCookie:          {"POST", "/session/:sessionId/cookie"},
	cmdDeleteCookie:       {"DELETE", "/session/:sessionId/cookie/:name"},
	cmdDeleteAllCookies:   {"DELETE", "/session/:sessionId/cookie"},
	cmdAcceptAlert:        {"POST", "/session/:sessionId/alert/accept"},
	cmdDismissAlert:       {"POST", "/session/:sessionId/alert/dismiss"},
	cmdAlertText:          {"GET", "/session/:sessionId/alert/text"},
	cmdSetAlertText:       {"POST", "/session/:sessionId/alert/text"},
	cmdScreenshot:         {"GET", "/session/:sessionId/screenshot"},
	cmdPerformActions:     {"POST", "/session/:sessionId/actions"},
	cmdReleaseActions:     {"DELETE", "/session/:sessionId/actions"},
	cmdUploadFile:         {"POST", "/session/:sessionId/se/file"},
	cmdLog:                {"POST", "/session/:sessionId/log"},
}

// lookupCommand resolves a logical command against the given dialect's
// table. The status command predates dialect negotiation and always resolves
// through the legacy table.
func lookupCommand(d Dialect, id commandID) (commandSpec, error) {
	table := ossCommands
	if d == W3C && id != cmdStatus {
		table = w3cCommands
	}
	spec, ok := table[id]
	if !ok {
		return commandSpec{}, &Error{
			Kind:    ErrUnknownCommand,
			Message: fmt.Sprintf("%q is not supported by the %s dialect", id, d),
		}
	}
	return spec, nil
}

// buildPath substitutes :param placeholders in the command's path template.
// A placeholder with no corresponding parameter is a programming error and
// panics.
func (c commandSpec) buildPath(params map[string]string) string {
	segments := strings.Split(c.path, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		val, ok := params[seg[1:]]
		if !ok {
			panic(fmt.Sprintf("webdriver: missing path parameter %q for %s %s", seg[1:], c.method, c.path))
		}
		segments[i] = val
	}
	return strings.Join(segments, "/")
}
