package nav

import "testing"

func TestParse(t *testing.T) {
	for _, r := range All() {
		got, ok := Parse(string(r))
		if !ok || got != r {
			t.Fatalf("Parse(%q) = %q, %v", r, got, ok)
		}
	}
	if _, ok := Parse("/admin"); ok {
		t.Fatal("unknown route should not parse")
	}
}

func TestRecorder(t *testing.T) {
	rec := &Recorder{}
	if rec.Last() != "" {
		t.Fatal("empty recorder should have no last route")
	}
	var nav Navigator = rec
	nav.Navigate(RouteUser)
	NavigatorFunc(rec.Navigate).Navigate(RouteLogin)
	if rec.Last() != RouteLogin {
		t.Fatalf("unexpected last route: %s", rec.Last())
	}
	if got := rec.Routes(); len(got) != 2 || got[0] != RouteUser {
		t.Fatalf("unexpected routes: %v", got)
	}
}
