package source

import "testing"

func TestShQuote(t *testing.T) {
	cases := map[string]string{
		"":        "''",
		"simple":  "simple",
		"a b":     "'a b'",
		"o'clock": `'o'"'"'clock'`,
	}
	for in, want := range cases {
		if got := shQuote(in); got != want {
			t.Errorf("shQuote(%q) = %q, want %q", in, got, want)
		}
	}
}
