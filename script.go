package webdriver

import "fmt"

// webElementIdentifier is the W3C reserved property marking an object as an
// element reference.
const webElementIdentifier = "element-6066-11e4-a52e-4f735466cecf"

// legacyElementIdentifier is the JSON Wire Protocol's element reference key.
const legacyElementIdentifier = "ELEMENT"

// marshalScriptArgs converts native script arguments into their wire
// representation for the given dialect. Arguments are restricted to
// strings, numbers, booleans, nil, element handles, and arrays/maps
// thereof; anything else fails here, before a request is made.
func marshalScriptArgs(d Dialect, args []interface{}) ([]interface{}, error) {
	out := make([]interface{}, len(args))
	for i, arg := range args {
		v, err := marshalScriptValue(d, arg)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func marshalScriptValue(d Dialect, arg interface{}) (interface{}, error) {
	switch v := arg.(type) {
	case nil, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v, nil
	case WebElement:
		key := legacyElementIdentifier
		if d == W3C {
			key = webElementIdentifier
		}
		return map[string]string{key: v.ID()}, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, e := range v {
			m, err := marshalScriptValue(d, e)
			if err != nil {
				return nil, err
			}
			out[i] = m
		}
		return out, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, e := range v {
			m, err := marshalScriptValue(d, e)
			if err != nil {
				return nil, err
			}
			out[k] = m
		}
		return out, nil
	}
	return nil, &Error{
		Kind:    ErrType,
		Message: fmt.Sprintf("invalid script argument type %T", arg),
	}
}

// unmarshalScriptValue walks a decoded script result and replaces every
// embedded element reference, at any depth, with a live element handle
// bound to wd.
func unmarshalScriptValue(wd *remoteWD, value interface{}) interface{} {
	switch v := value.(type) {
	case []interface{}:
		for i, e := range v {
			v[i] = unmarshalScriptValue(wd, e)
		}
		return v
	case map[string]interface{}:
		if id, ok := elementIDFromRef(v); ok {
			return &remoteWE{parent: wd, id: id}
		}
		for k, e := range v {
			v[k] = unmarshalScriptValue(wd, e)
		}
		return v
	}
	return value
}

// elementIDFromRef extracts the element id from a wire element-reference
// object, accepting either dialect's key.
func elementIDFromRef(m map[string]interface{}) (string, bool) {
	if id, ok := m[webElementIdentifier].(string); ok {
		return id, true
	}
	if id, ok := m[legacyElementIdentifier].(string); ok {
		return id, true
	}
	return "", false
}
