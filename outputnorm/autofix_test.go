package outputnorm

import "testing"

func TestAutofix(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"trailing spaces and tab", "a  \t\nb\r\n", "a\nb\n"},
		{"no trailing newline", "a  ", "a\n"},
		{"already clean", "a\nb\n", "a\nb\n"},
		{"blank lines preserved", "a\n\nb\n", "a\n\nb\n"},
		{"only whitespace line", "   \nb\n", "\nb\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Autofix([]byte(tt.input))
			if string(got) != tt.want {
				t.Fatalf("Autofix(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAutofixEmptyInputYieldsNilNotEmptySlice(t *testing.T) {
	got := Autofix(nil)
	if got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}
