package content

import (
	"reflect"
	"testing"
)

func TestCleanPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"engineering", "engineering"},
		{"/engineering/", "engineering"},
		{"engineering/deploy-guide", "engineering/deploy-guide"},
		{"//engineering///devops//", "engineering/devops"},
	}

	for _, tt := range tests {
		if got := CleanPath(tt.in); got != tt.want {
			t.Errorf("CleanPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitLast(t *testing.T) {
	tests := []struct {
		in       string
		wantDir  string
		wantLast string
	}{
		{"deploy-guide", "", "deploy-guide"},
		{"engineering/deploy-guide", "engineering", "deploy-guide"},
		{"a/b/c", "a/b", "c"},
		{"", "", ""},
	}

	for _, tt := range tests {
		dir, last := SplitLast(tt.in)
		if dir != tt.wantDir || last != tt.wantLast {
			t.Errorf("SplitLast(%q) = (%q, %q), want (%q, %q)",
				tt.in, dir, last, tt.wantDir, tt.wantLast)
		}
	}
}

func TestJoinPath(t *testing.T) {
	if got := JoinPath("", "engineering"); got != "engineering" {
		t.Errorf("JoinPath root = %q", got)
	}
	if got := JoinPath("engineering", "devops"); got != "engineering/devops" {
		t.Errorf("JoinPath nested = %q", got)
	}
	if got := JoinPath("engineering", ""); got != "engineering" {
		t.Errorf("JoinPath empty slug = %q", got)
	}
}

func TestSplitPath(t *testing.T) {
	if got := SplitPath(""); got != nil {
		t.Errorf("SplitPath(\"\") = %v, want nil", got)
	}
	want := []string{"a", "b"}
	if got := SplitPath("/a//b/"); !reflect.DeepEqual(got, want) {
		t.Errorf("SplitPath = %v, want %v", got, want)
	}
}

func TestIsPathPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   bool
	}{
		{"", "anything", true},
		{"engineering", "engineering", true},
		{"engineering", "engineering/devops", true},
		{"engineering", "engineering-notes", false},
		{"engineering/devops", "engineering", false},
	}

	for _, tt := range tests {
		if got := IsPathPrefix(tt.prefix, tt.path); got != tt.want {
			t.Errorf("IsPathPrefix(%q, %q) = %v, want %v", tt.prefix, tt.path, got, tt.want)
		}
	}
}

func TestReplacePathPrefix(t *testing.T) {
	tests := []struct {
		path, old, new, want string
	}{
		{"engineering", "engineering", "eng", "eng"},
		{"engineering/devops", "engineering", "eng", "eng/devops"},
		{"engineering/devops/runbooks", "engineering/devops", "ops", "ops/runbooks"},
		{"deploy-guide", "", "archive", "archive/deploy-guide"},
	}

	for _, tt := range tests {
		if got := ReplacePathPrefix(tt.path, tt.old, tt.new); got != tt.want {
			t.Errorf("ReplacePathPrefix(%q, %q, %q) = %q, want %q",
				tt.path, tt.old, tt.new, got, tt.want)
		}
	}
}
