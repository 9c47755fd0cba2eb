package cli

import "testing"

func TestColors(t *testing.T) {
	defer SetColor(colorEnabled)

	SetColor(false)
	for _, f := range []func(string) string{Green, Yellow, Red, Bold} {
		if got := f("ok"); got != "ok" {
			t.Errorf("colour off: got %q, want %q", got, "ok")
		}
	}

	SetColor(true)
	if got := Green("ok"); got != "\033[32mok\033[0m" {
		t.Errorf("Green() = %q", got)
	}
	if got := Red("fail"); got != "\033[31mfail\033[0m" {
		t.Errorf("Red() = %q", got)
	}
}
