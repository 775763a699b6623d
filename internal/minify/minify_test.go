package minify

import (
	"errors"
	"strings"
	"testing"
)

func TestMode_Enabled(t *testing.T) {
	tests := []struct {
		mode Mode
		dev  bool
		want bool
	}{
		{Auto, true, false},
		{Auto, false, true},
		{Always, true, true},
		{Always, false, true},
		{Never, true, false},
		{Never, false, false},
	}
	for _, tt := range tests {
		if got := tt.mode.Enabled(tt.dev); got != tt.want {
			t.Errorf("%s.Enabled(dev=%v) = %v, want %v", tt.mode, tt.dev, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{
		"":       Auto,
		"auto":   Auto,
		"Always": Always,
		"never":  Never,
		" off ":  Never,
	} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("sometimes"); err == nil {
		t.Errorf("ParseMode accepted an unknown mode")
	}
}

func TestHTML_CollapsesWhitespace(t *testing.T) {
	in := "<!DOCTYPE html>\n<html>\n  <head>\n    <title>Title</title>\n  </head>\n" +
		"  <body>\n    <p>Hello,    world!</p>\n  </body>\n</html>\n"

	out, err := NewHTML().Minify(in)
	if err != nil {
		t.Fatalf("Minify: %v", err)
	}
	if len(out) >= len(in) {
		t.Fatalf("output not smaller: %q", out)
	}
	if strings.Contains(out, "\n  ") || strings.Contains(out, "    ") {
		t.Fatalf("indentation survived: %q", out)
	}
	if !strings.Contains(out, "Hello, world!") || !strings.Contains(out, "<title>Title</title>") {
		t.Fatalf("content lost: %q", out)
	}
}

func TestFunc_ErrorPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	m := Func(func(string) (string, error) { return "", &Error{Err: boom} })

	_, err := m.Minify("x")
	var me *Error
	if !errors.As(err, &me) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want *Error wrapping boom", err)
	}
}

func TestNop(t *testing.T) {
	if got, _ := (Nop{}).Minify("  a  "); got != "  a  " {
		t.Fatalf("Nop changed input: %q", got)
	}
}
