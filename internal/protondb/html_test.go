package protondb

import "testing"

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple paragraph",
			input: "<p>Hello world</p>",
			want:  "Hello world",
		},
		{
			name:  "paragraphs keep a break",
			input: "<p>Hello</p><p>World</p>",
			want:  "Hello\nWorld",
		},
		{
			name:  "with attributes",
			input: `<a href="https://example.com">Link text</a>`,
			want:  "Link text",
		},
		{
			name:  "nested tags",
			input: "<p><strong>Bold</strong> and <em>italic</em></p>",
			want:  "Bold and italic",
		},
		{
			name:  "plain text",
			input: "No HTML here",
			want:  "No HTML here",
		},
		{
			name:  "entities",
			input: "Tom &amp; Jerry",
			want:  "Tom & Jerry",
		},
		{
			name:  "script dropped",
			input: "<script>alert(1)</script>Runs fine",
			want:  "Runs fine",
		},
		{
			name:  "line breaks",
			input: "Crashes on launch<br>Fixed with PROTON_USE_WINED3D=1",
			want:  "Crashes on launch\nFixed with PROTON_USE_WINED3D=1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.input); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
