package content

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "simple title", title: "Deploy Guide", want: "deploy-guide"},
		{name: "already a slug", title: "deploy-guide", want: "deploy-guide"},
		{name: "punctuation collapsed", title: "What's New?!", want: "what-s-new"},
		{name: "run of separators", title: "a  --  b", want: "a-b"},
		{name: "leading and trailing junk", title: "  ...Deployment Guide!  ", want: "deployment-guide"},
		{name: "uppercase", title: "README", want: "readme"},
		{name: "digits preserved", title: "NFS v3 notes", want: "nfs-v3-notes"},
		{name: "non-ascii dropped", title: "café menü", want: "caf-men"},
		{name: "all junk", title: "!!!", want: ""},
		{name: "empty", title: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.title); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	for _, title := range []string{"Deploy Guide", "a  --  b", "What's New?!"} {
		once := Slugify(title)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent for %q: %q != %q", title, once, twice)
		}
	}
}

func TestValidSlug(t *testing.T) {
	valid := []string{"a", "deploy-guide", "v3", "a-b-c"}
	invalid := []string{"", "-a", "a-", "a--b", "Deploy", "a b", "#a"}

	for _, s := range valid {
		if !ValidSlug(s) {
			t.Errorf("ValidSlug(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if ValidSlug(s) {
			t.Errorf("ValidSlug(%q) = true, want false", s)
		}
	}
}
