package content

import "strings"

// Content paths are slash-joined slug sequences relative to the root
// directory, with no leading or trailing slash. The root directory's path
// is the empty string.

// CleanPath normalizes a request path: trims surrounding slashes and
// collapses empty segments.
func CleanPath(path string) string {
	segments := SplitPath(path)
	return strings.Join(segments, "/")
}

// SplitPath splits a path into its non-empty segments. The empty path
// (root) yields a nil slice.
func SplitPath(path string) []string {
	var segments []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}

// JoinPath joins a parent path and a child slug. Joining onto the root
// (empty) path returns the slug alone.
func JoinPath(parent, slug string) string {
	if parent == "" {
		return slug
	}
	if slug == "" {
		return parent
	}
	return parent + "/" + slug
}

// SplitLast splits a path into its directory prefix and final segment.
// A single-segment path has an empty (root) prefix.
func SplitLast(path string) (dir, last string) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// LastSegment returns the final segment of a path ("" for the root path).
func LastSegment(path string) string {
	_, last := SplitLast(path)
	return last
}

// IsPathPrefix reports whether prefix is the path of an ancestor of (or
// equal to) path. The root path is a prefix of everything.
func IsPathPrefix(prefix, path string) bool {
	if prefix == "" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// ReplacePathPrefix rewrites path so the oldPrefix portion becomes
// newPrefix. The caller must have checked IsPathPrefix(oldPrefix, path).
func ReplacePathPrefix(path, oldPrefix, newPrefix string) string {
	if oldPrefix == "" {
		return JoinPath(newPrefix, path)
	}
	if path == oldPrefix {
		return newPrefix
	}
	return JoinPath(newPrefix, strings.TrimPrefix(path, oldPrefix+"/"))
}
