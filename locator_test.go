package webdriver

import "testing"

func TestTranslateLocator(t *testing.T) {
	tests := []struct {
		dialect   Dialect
		by, value string
		wantBy    string
		wantValue string
	}{
		{W3C, ByID, "login", ByCSSSelector, "#login"},
		{W3C, ByID, "a.b", ByCSSSelector, `#a\.b`},
		{W3C, ByID, "1start", ByCSSSelector, `#\31 start`},
		{W3C, ByClassName, "active", ByCSSSelector, ".active"},
		{W3C, ByClassName, "nav:item", ByCSSSelector, `.nav\:item`},
		{W3C, ByName, "email", ByCSSSelector, "*[name='email']"},
		{W3C, ByName, "user's", ByCSSSelector, `*[name='user\'s']`},
		{W3C, ByTagName, "div", ByCSSSelector, "div"},
		{W3C, ByCSSSelector, "#a.b", ByCSSSelector, "#a.b"},
		{W3C, ByXPATH, "//div", ByXPATH, "//div"},
		{W3C, ByLinkText, "next", ByLinkText, "next"},
		{OSS, ByID, "a.b", ByID, "a.b"},
		{OSS, ByClassName, "active", ByClassName, "active"},
		{OSS, ByName, "email", ByName, "email"},
	}
	for _, tc := range tests {
		by, value := translateLocator(tc.dialect, tc.by, tc.value)
		if by != tc.wantBy || value != tc.wantValue {
			t.Errorf("translateLocator(%v, %q, %q) = %q, %q, want %q, %q",
				tc.dialect, tc.by, tc.value, by, value, tc.wantBy, tc.wantValue)
		}
	}
}

func TestEscapeCSS(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a.b", `a\.b`},
		{"a b", "a b"},
		{`quo"te`, `quo\"te`},
		{"semi;colon", `semi\;colon`},
		{"back\\slash", `back\\slash`},
		{"hy-phen", `hy\-phen`},
		{"1digit", `\31 digit`},
		{"9", `\39 `},
		{"", ""},
	}
	for _, tc := range tests {
		if got := escapeCSS(tc.in); got != tc.want {
			t.Errorf("escapeCSS(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
