package sanitize

import "testing"

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"paragraphs", "<p>Quote ready</p><p>Premium: R 512.40</p>", "Quote ready\nPremium: R 512.40"},
		{"break", "line one<br/>line two", "line one\nline two"},
		{"entities", "<b>Tom &amp; Jerry</b>", "Tom & Jerry"},
		{"drops style", "<style>p{color:red}</style><p>body</p>", "body"},
		{"collapses space", "<div>  a \t  b  </div>", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTMLToText(tt.in); got != tt.want {
				t.Errorf("HTMLToText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestText(t *testing.T) {
	cases := map[string]string{
		"  Thandi  ":                  "Thandi",
		"<b>Sam</b> <i>Dube</i>":      "Sam Dube",
		"Sandton<script>x()</script>": "Sandton",
		"O&#39;Neil":                  "O'Neil",
		"<p>line</p><p>two</p>":       "line two",
	}
	for in, want := range cases {
		if got := Text(in); got != want {
			t.Errorf("Text(%q) = %q, want %q", in, got, want)
		}
	}
}
