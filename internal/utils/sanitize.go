package utils

import (
	"regexp"
	"strings"
)

var (
	illegalPathChars = regexp.MustCompile(`[\\/:*?"<>|]`)
	whitespaceRuns   = regexp.MustCompile(`\s+`)
)

// SanitizeName strips characters that are illegal in file and object names
// and collapses whitespace runs into single spaces. An empty result is
// replaced with a placeholder so a path segment is never blank.
func SanitizeName(name string) string {
	name = illegalPathChars.ReplaceAllString(name, "_")
	name = strings.TrimSpace(whitespaceRuns.ReplaceAllString(name, " "))
	if name == "" {
		return "unnamed"
	}
	return name
}

// JoinKey builds a storage key from sanitized path segments
func JoinKey(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s == "" {
			continue
		}
		parts = append(parts, SanitizeName(s))
	}
	return strings.Join(parts, "/")
}

// AppendKey extends an existing storage key with one sanitized segment.
// Unlike JoinKey it leaves the directory part untouched, so separators in
// an already-built prefix survive.
func AppendKey(dir, name string) string {
	seg := SanitizeName(name)
	if dir == "" {
		return seg
	}
	return dir + "/" + seg
}

// FileExtension returns the lower-cased extension without the dot,
// or "bin" when the name has none
func FileExtension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return "bin"
	}
	return strings.ToLower(name[idx+1:])
}
