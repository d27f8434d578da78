package sanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "<b>Tiyo</b>   ki   koule", want: "Tiyo ki koule"},
		{in: "&lt;script&gt;alert(1)&lt;/script&gt;Dlo", want: "alert(1)Dlo"},
		{in: "liy 1\nliy 2", want: "liy 1\nliy 2"},
	}
	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLine(t *testing.T) {
	if got := Line("  Jean\n  Baptiste <i>Bòs</i> "); got != "Jean Baptiste Bòs" {
		t.Fatalf("Line() = %q", got)
	}
}

func TestTruncateCountsRunes(t *testing.T) {
	if got := Truncate("Pétion-Ville", 6); got != "Pétion" {
		t.Fatalf("Truncate() = %q", got)
	}
	if got := Truncate("Delmas", 20); got != "Delmas" {
		t.Fatalf("Truncate() = %q", got)
	}
}
