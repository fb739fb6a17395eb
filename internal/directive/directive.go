// Package directive handles trailing comments on scenario statements.
//
// # Supported Directives
//
//	//! <fragment> - The statement must produce a diagnostic containing fragment
//
// Any other comment is ignored.
//
// # Examples
//
//	StorageDead(x) //! storage of `x` freed
//	use(p)         // plain comment, no expectation
//	drop(v) //!    // empty fragment: any diagnostic matches
package directive

import "strings"

const expectPrefix = "!"

// Split separates a statement line into its code and trailing comment.
// The comment keeps its leading "//"; it is empty when there is none.
func Split(line string) (code, comment string) {
	i := strings.Index(line, "//")
	if i < 0 {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i:])
}

// Expectation returns the diagnostic fragment an expectation comment
// carries. ok is false when the comment is not an expectation.
func Expectation(comment string) (fragment string, ok bool) {
	if !hasDirective(comment, expectPrefix) {
		return "", false
	}
	text := strings.TrimPrefix(comment, "//")
	text = strings.TrimPrefix(text, expectPrefix)
	// A nested plain comment ends the fragment.
	if i := strings.Index(text, "//"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text), true
}

// IsExpectation checks if a comment is an expectation directive.
func IsExpectation(comment string) bool { return hasDirective(comment, expectPrefix) }

// hasDirective checks if a comment starts with the given marker right after
// the slashes. "// !" is a plain comment, not a directive.
func hasDirective(text, marker string) bool {
	return strings.HasPrefix(strings.TrimPrefix(text, "//"), marker) && strings.HasPrefix(text, "//")
}
