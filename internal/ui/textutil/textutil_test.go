package textutil

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"resnet110", 20, "resnet110"},
		{"resnet110", 6, "resne…"},
		{"abc", 0, ""},
		{"日本語テキスト", 5, "日本…"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
		if w := Width(Truncate(tt.in, tt.width)); w > tt.width {
			t.Errorf("Truncate(%q, %d) is %d columns wide", tt.in, tt.width, w)
		}
	}
}

func TestFit(t *testing.T) {
	if got := Fit("ab", 5); got != "ab   " {
		t.Errorf("Fit pad = %q", got)
	}
	if got := Fit("abcdefgh", 5); got != "abcd…" {
		t.Errorf("Fit cut = %q", got)
	}
}

func TestRow(t *testing.T) {
	got := Row([]int{4, 6, 0}, "exp_1", "done", "0.712")
	want := "exp… done   0.712"
	if got != want {
		t.Errorf("Row = %q, want %q", got, want)
	}
}
