package util

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello, World!", "hello-world"},
		{"  My First Post  ", "my-first-post"},
		{"Go 1.22 Release Notes", "go-1-22-release-notes"},
		{"already-slugged", "already-slugged"},
		{"UPPER CASE", "upper-case"},
		{"multiple---dashes", "multiple-dashes"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			got := Slugify(tt.title)
			if got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	titles := []string{"Hello, World!", "A (very) Strange -- Title", "100% Pure Go"}
	for _, title := range titles {
		once := Slugify(title)
		twice := Slugify(once)
		if once != twice {
			t.Errorf("Slugify not idempotent for %q: %q != %q", title, once, twice)
		}
	}
}

func TestContentHashDeterministic(t *testing.T) {
	a := ContentHash([]byte("same content"))
	b := ContentHash([]byte("same content"))
	if a != b {
		t.Errorf("Expected equal hashes, got %s and %s", a, b)
	}

	c := ContentHash([]byte("different content"))
	if a == c {
		t.Error("Expected different hashes for different content")
	}
}

func TestContentHashStringMatchesBytes(t *testing.T) {
	if ContentHashString("abc") != ContentHash([]byte("abc")) {
		t.Error("ContentHashString should match ContentHash over the same bytes")
	}
}
