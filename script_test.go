package webdriver

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarshalScriptArgs(t *testing.T) {
	elem := &remoteWE{id: "elem-1"}
	args := []interface{}{
		"text",
		42,
		3.5,
		true,
		nil,
		elem,
		[]interface{}{elem, "nested"},
		map[string]interface{}{"el": elem},
	}

	t.Run("w3c", func(t *testing.T) {
		got, err := marshalScriptArgs(W3C, args)
		if err != nil {
			t.Fatal(err)
		}
		want := []interface{}{
			"text",
			42,
			3.5,
			true,
			nil,
			map[string]string{webElementIdentifier: "elem-1"},
			[]interface{}{map[string]string{webElementIdentifier: "elem-1"}, "nested"},
			map[string]interface{}{"el": map[string]string{webElementIdentifier: "elem-1"}},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("args mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("legacy", func(t *testing.T) {
		got, err := marshalScriptArgs(OSS, []interface{}{elem})
		if err != nil {
			t.Fatal(err)
		}
		want := []interface{}{map[string]string{legacyElementIdentifier: "elem-1"}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("args mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestMarshalScriptArgsRejectsUnsupported(t *testing.T) {
	type opaque struct{ n int }
	for _, bad := range []interface{}{
		opaque{1},
		make(chan int),
		func() {},
		[]int{1, 2},
	} {
		if _, err := marshalScriptArgs(W3C, []interface{}{bad}); !errors.Is(err, &Error{Kind: ErrType}) {
			t.Errorf("marshalScriptArgs(%T) = %v, want type error before any request", bad, err)
		}
	}
}

func TestUnmarshalScriptValue(t *testing.T) {
	wd := &remoteWD{}
	value := map[string]interface{}{
		"title": "page",
		"element": map[string]interface{}{
			webElementIdentifier: "elem-1",
		},
		"list": []interface{}{
			map[string]interface{}{legacyElementIdentifier: "elem-2"},
			"plain",
			map[string]interface{}{"deep": map[string]interface{}{webElementIdentifier: "elem-3"}},
		},
	}

	got := unmarshalScriptValue(wd, value).(map[string]interface{})

	elem, ok := got["element"].(*remoteWE)
	if !ok || elem.ID() != "elem-1" || elem.parent != wd {
		t.Errorf(`got["element"] = %#v, want handle for elem-1 bound to wd`, got["element"])
	}
	list := got["list"].([]interface{})
	if elem, ok := list[0].(*remoteWE); !ok || elem.ID() != "elem-2" {
		t.Errorf("list[0] = %#v, want handle for elem-2", list[0])
	}
	if list[1] != "plain" {
		t.Errorf("list[1] = %#v, non-reference values must pass through", list[1])
	}
	deep := list[2].(map[string]interface{})["deep"]
	if elem, ok := deep.(*remoteWE); !ok || elem.ID() != "elem-3" {
		t.Errorf("deeply nested reference = %#v, want handle for elem-3", deep)
	}
	if got["title"] != "page" {
		t.Errorf(`got["title"] = %#v, want "page"`, got["title"])
	}
}
