package charset

import (
	"regexp"
	"strings"
)

var (
	declaredEncodingRe = regexp.MustCompile(`<\?xml\s+version\s*=\s*["'][^"']*["']\s+encoding\s*=\s*["']([^"']+)["']`)
	declarationRe      = regexp.MustCompile(`<\?xml[^>]*\?>`)
	encodingAttrRe     = regexp.MustCompile(`(<\?xml[^>]*encoding\s*=\s*["'])([^"']+)(["'][^>]*\?>)`)
	versionAttrRe      = regexp.MustCompile(`(<\?xml\s+version\s*=\s*["'][^"']*["'])`)
)

// DeclaredEncoding extracts the encoding attribute from an XML declaration
// on the given line.
func DeclaredEncoding(line string) (string, bool) {
	m := declaredEncodingRe.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// FirstLine returns s up to the first line break.
func FirstLine(s string) string {
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		return s[:i]
	}
	return s
}

// RewriteDeclaration points the first XML declaration at target. A
// declaration without an encoding attribute gets one after its version;
// text with no declaration gets the canonical one prepended. The second
// return value is false when s was left unchanged.
func RewriteDeclaration(s, target, canonical string) (string, bool) {
	loc := declarationRe.FindStringIndex(s)
	if loc == nil || strings.TrimSpace(s[:loc[0]]) != "" {
		return canonical + "\n" + s, true
	}

	decl := s[loc[0]:loc[1]]
	var rewritten string
	switch {
	case encodingAttrRe.MatchString(decl):
		rewritten = encodingAttrRe.ReplaceAllString(decl, "${1}"+target+"${3}")
	case versionAttrRe.MatchString(decl):
		rewritten = versionAttrRe.ReplaceAllString(decl, `${1} encoding="`+target+`"`)
	default:
		rewritten = canonical
	}
	if rewritten == decl {
		return s, false
	}
	return s[:loc[0]] + rewritten + s[loc[1]:], true
}
