// Package actions builds W3C WebDriver input-action sequences, for use with
// the PerformActions method. A sequence is one input source (a keyboard or
// a pointer) with an ordered list of steps; the remote end replays the
// steps of all sources in lockstep ticks.
package actions

import (
	"time"

	uuid "github.com/satori/go.uuid"
)

// Action is a single step within an input-source sequence.
type Action map[string]interface{}

// PointerKind selects the pointer device type of a pointer input source.
type PointerKind string

// The pointer device types defined by the protocol.
const (
	Mouse PointerKind = "mouse"
	Pen   PointerKind = "pen"
	Touch PointerKind = "touch"
)

// Pause inserts a tick during which this input source does nothing.
func Pause(d time.Duration) Action {
	return Action{
		"type":     "pause",
		"duration": uint(d / time.Millisecond),
	}
}

// KeyDown presses the given key. The key stays held until a matching KeyUp
// or a release-actions command.
func KeyDown(key string) Action {
	return Action{
		"type":  "keyDown",
		"value": key,
	}
}

// KeyUp releases the given key.
func KeyUp(key string) Action {
	return Action{
		"type":  "keyUp",
		"value": key,
	}
}

// PointerDown presses a pointer button.
func PointerDown(button int) Action {
	return Action{
		"type":     "pointerDown",
		"duration": 0,
		"button":   button,
	}
}

// PointerUp releases a pointer button.
func PointerUp(button int) Action {
	return Action{
		"type":     "pointerUp",
		"duration": 0,
		"button":   button,
	}
}

// PointerMove moves the pointer to x, y over the given duration. The
// origin anchors the coordinates: nil means the viewport, the string
// "pointer" means the pointer's current position, and an element handle
// means the center of that element.
func PointerMove(x, y int, origin interface{}, d time.Duration) Action {
	if origin == nil {
		origin = "viewport"
	}
	return Action{
		"type":     "pointerMove",
		"duration": uint(d / time.Millisecond),
		"x":        x,
		"y":        y,
		"origin":   origin,
	}
}

// PointerCancel cancels the pointer's current input.
func PointerCancel() Action {
	return Action{"type": "pointerCancel"}
}

// Keyboard wraps key actions into a keyboard input source with a unique
// device id.
func Keyboard(steps ...Action) map[string]interface{} {
	return map[string]interface{}{
		"type":    "key",
		"id":      deviceID(),
		"actions": steps,
	}
}

// Pointer wraps pointer actions into a pointer input source of the given
// kind with a unique device id.
func Pointer(kind PointerKind, steps ...Action) map[string]interface{} {
	return map[string]interface{}{
		"type":       "pointer",
		"id":         deviceID(),
		"parameters": map[string]string{"pointerType": string(kind)},
		"actions":    steps,
	}
}

func deviceID() string {
	return uuid.NewV4().String()
}
