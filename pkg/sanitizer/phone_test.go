package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "valid E.164 format",
			input: "+9607712345",
			want:  "+9607712345",
		},
		{
			name:  "with spaces",
			input: "+960 771 2345",
			want:  "+9607712345",
		},
		{
			name:  "with dashes",
			input: "+960-771-2345",
			want:  "+9607712345",
		},
		{
			name:  "with parentheses",
			input: "+1 (201) 555-0123",
			want:  "+12015550123",
		},
		{
			name:  "foreign number",
			input: "+44 7400 123456",
			want:  "+447400123456",
		},
		{
			name:  "local number read as first region",
			input: "771 2345",
			want:  "+9607712345",
		},
		{
			name:  "leading and trailing spaces",
			input: "  +9607712345  ",
			want:  "+9607712345",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
		{
			name:  "too short",
			input: "+1",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
