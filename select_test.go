package webdriver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

type fakeOption struct {
	id, value, text string
	selected        bool
}

// selectHandler serves a single <select> element with the given options,
// tracking selection state through option clicks.
func selectHandler(multiple bool, opts []*fakeOption) *fakeHandler {
	h := &fakeHandler{dialect: W3C, routes: make(map[string]http.HandlerFunc)}

	h.routes["POST /session/{sid}/element"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, fmt.Sprintf(`{"value": {%q: "sel-1"}}`, webElementIdentifier))
	}
	h.routes["GET /session/{sid}/element/sel-1/name"] = func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{"value": "select"}`)
	}
	h.routes["GET /session/{sid}/element/sel-1/attribute/multiple"] = func(w http.ResponseWriter, r *http.Request) {
		if multiple {
			writeJSON(w, 200, `{"value": "true"}`)
			return
		}
		writeJSON(w, 200, `{"value": null}`)
	}
	h.routes["POST /session/{sid}/element/sel-1/elements"] = func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Using string `json:"using"`
			Value string `json:"value"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		refs := []map[string]string{}
		for _, opt := range opts {
			if matchOption(body.Value, opt) {
				refs = append(refs, map[string]string{webElementIdentifier: opt.id})
			}
		}
		data, err := json.Marshal(map[string]interface{}{"value": refs})
		if err != nil {
			writeJSON(w, 500, `{"value": {"error": "unknown error", "message": "marshal"}}`)
			return
		}
		writeJSON(w, 200, string(data))
	}
	for _, opt := range opts {
		opt := opt
		h.routes["GET /session/{sid}/element/"+opt.id+"/selected"] = func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, fmt.Sprintf(`{"value": %t}`, opt.selected))
		}
		h.routes["POST /session/{sid}/element/"+opt.id+"/click"] = func(w http.ResponseWriter, r *http.Request) {
			opt.selected = !opt.selected
			writeJSON(w, 200, `{"value": null}`)
		}
	}
	return h
}

// matchOption mimics just enough XPath to answer the queries the select
// helper issues.
func matchOption(query string, opt *fakeOption) bool {
	var quoted string
	if i := strings.Index(query, `"`); i >= 0 {
		if j := strings.LastIndex(query, `"`); j > i {
			quoted = query[i+1 : j]
		}
	}
	switch {
	case strings.Contains(query, "@value"):
		return opt.value == quoted
	case strings.Contains(query, "normalize-space"):
		return opt.text == quoted
	default:
		return true
	}
}

func selectUnderTest(t *testing.T, multiple bool, opts []*fakeOption) SelectElement {
	t.Helper()
	wd := startDriver(t, selectHandler(multiple, opts))
	elem, err := wd.FindElement(ByCSSSelector, "select")
	if err != nil {
		t.Fatal(err)
	}
	sel, err := Select(elem)
	if err != nil {
		t.Fatal(err)
	}
	return sel
}

func TestSelectSingle(t *testing.T) {
	opts := []*fakeOption{
		{id: "opt-1", value: "v1", text: "One"},
		{id: "opt-2", value: "v2", text: "Two", selected: true},
		{id: "opt-3", value: "v3", text: "Three"},
	}
	sel := selectUnderTest(t, false, opts)
	if sel.IsMultiple() {
		t.Error("single select reported as multiple")
	}

	all, err := sel.GetOptions()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d options, want 3", len(all))
	}

	first, err := sel.GetFirstSelectedOption()
	if err != nil {
		t.Fatal(err)
	}
	if first.ID() != "opt-2" {
		t.Errorf("first selected option = %q, want opt-2", first.ID())
	}

	if err := sel.SelectByValue("v3"); err != nil {
		t.Fatal(err)
	}
	if !opts[2].selected {
		t.Error("SelectByValue did not click the matching option")
	}
	if err := sel.SelectByValue("nope"); err == nil {
		t.Error("SelectByValue with no match did not fail")
	}
}

func TestSelectByVisibleText(t *testing.T) {
	opts := []*fakeOption{
		{id: "opt-1", value: "v1", text: "One"},
		{id: "opt-2", value: "v2", text: "Two"},
	}
	sel := selectUnderTest(t, false, opts)
	if err := sel.SelectByVisibleText("Two"); err != nil {
		t.Fatal(err)
	}
	if !opts[1].selected {
		t.Error("SelectByVisibleText did not click the matching option")
	}
	if opts[0].selected {
		t.Error("SelectByVisibleText clicked a non-matching option")
	}
	if err := sel.SelectByVisibleText("Four"); err == nil {
		t.Error("SelectByVisibleText with no match did not fail")
	}
}

func TestSelectDeselectRequiresMulti(t *testing.T) {
	opts := []*fakeOption{
		{id: "opt-1", value: "v1", text: "One", selected: true},
	}
	sel := selectUnderTest(t, false, opts)
	if err := sel.DeselectAll(); err == nil {
		t.Error("DeselectAll on a single select did not fail")
	}
	if err := sel.DeselectByValue("v1"); err == nil {
		t.Error("DeselectByValue on a single select did not fail")
	}
	if !opts[0].selected {
		t.Error("a rejected deselect still clicked the option")
	}
}

func TestSelectDeselectAllMulti(t *testing.T) {
	opts := []*fakeOption{
		{id: "opt-1", value: "v1", text: "One", selected: true},
		{id: "opt-2", value: "v2", text: "Two"},
		{id: "opt-3", value: "v3", text: "Three", selected: true},
	}
	sel := selectUnderTest(t, true, opts)
	if !sel.IsMultiple() {
		t.Fatal("multi select not recognized")
	}
	if err := sel.DeselectAll(); err != nil {
		t.Fatal(err)
	}
	for _, opt := range opts {
		if opt.selected {
			t.Errorf("option %s still selected after DeselectAll", opt.id)
		}
	}
}

func TestSelectRejectsNonSelect(t *testing.T) {
	h := &fakeHandler{
		dialect: W3C,
		routes: map[string]http.HandlerFunc{
			"POST /session/{sid}/element": func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, 200, fmt.Sprintf(`{"value": {%q: "div-1"}}`, webElementIdentifier))
			},
			"GET /session/{sid}/element/div-1/name": func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, 200, `{"value": "div"}`)
			},
		},
	}
	wd := startDriver(t, h)
	elem, err := wd.FindElement(ByCSSSelector, "div")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Select(elem); err == nil {
		t.Error("Select accepted a non-select element")
	}
}
