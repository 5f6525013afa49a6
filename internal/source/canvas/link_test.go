package canvas

import "testing"

func TestParseNextLink(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "empty header", header: "", want: ""},
		{
			name:   "next among others",
			header: `<https://c.test/a?page=1>; rel="current",<https://c.test/a?page=2>; rel="next",<https://c.test/a?page=1>; rel="first"`,
			want:   "https://c.test/a?page=2",
		},
		{
			name:   "no next entry",
			header: `<https://c.test/a?page=3>; rel="current", <https://c.test/a?page=1>; rel="first"`,
			want:   "",
		},
		{
			name:   "unquoted rel",
			header: `<https://c.test/a?page=2>; rel=next`,
			want:   "https://c.test/a?page=2",
		},
		{
			name:   "multiple rel values",
			header: `<https://c.test/a?page=2>; rel="next last"`,
			want:   "https://c.test/a?page=2",
		},
		{name: "missing angle bracket", header: `https://c.test/a; rel="next"`, wantErr: true},
		{name: "unterminated target", header: `<https://c.test/a; rel="next"`, wantErr: true},
		{name: "empty next target", header: `<>; rel="next"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNextLink(tt.header)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseNextLink = %q, want %q", got, tt.want)
			}
		})
	}
}
