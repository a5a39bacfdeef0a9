package rename

import (
	"fmt"
	"regexp"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Jane Doe", "jane_doe"},
		{"O'Brien & Co", "obrien_co"},
		{"  John   Smith  ", "john_smith"},
		{"ACME-CORP", "acme-corp"},
		{"4521", "4521"},
		{"&&&", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeName_OnlySafeCharacters(t *testing.T) {
	safe := regexp.MustCompile(`^[a-z0-9_-]*$`)
	for _, in := range []string{"O'Brien & Co", "Müller GmbH", "a/b\\c:d*e?f", "Ewa & Søn"} {
		if got := SanitizeName(in); !safe.MatchString(got) {
			t.Errorf("SanitizeName(%q) = %q contains unsafe characters", in, got)
		}
	}
}

func ExampleSanitizeName() {
	fmt.Println(SanitizeName("O'Brien & Co"))
	// Output: obrien_co
}
