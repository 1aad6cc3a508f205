package source

import "testing"

func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text", in: "  Markets rally  ", want: "Markets rally"},
		{name: "gnews marker", in: "Markets rallied on Friday... [1520 chars]", want: "Markets rallied on Friday..."},
		{name: "gnews marker with plus", in: "Short story [+90 chars]", want: "Short story"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := PlainText(tt.in); got != tt.want {
				t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFragmentText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "inline tags", in: "<b>Monsoon</b> reaches <a href=\"/kerala\">Kerala</a>", want: "Monsoon reaches Kerala"},
		{name: "block tags", in: "<p>First</p>\n\n<p>Second</p>", want: "First Second"},
		{name: "entities", in: "<p>Tom &amp; Jerry</p>", want: "Tom & Jerry"},
		{name: "script dropped", in: "<p>News</p><script>alert(1)</script>", want: "News"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fragmentText(tt.in); got != tt.want {
				t.Errorf("fragmentText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
