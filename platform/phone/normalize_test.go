package phone

import "testing"

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"082 123 4567", "+27821234567"},
		{"+27 82 123 4567", "+27821234567"},
		{"  not a number ", "not a number"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeE164(tc.in); got != tc.want {
			t.Errorf("NormalizeE164(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsValid(t *testing.T) {
	if !IsValid("0821234567") {
		t.Error("local ZA mobile should be valid")
	}
	if IsValid("123") {
		t.Error("short input should be invalid")
	}
}
