package domain

import "strings"

// Encoding labels used across scan reports and fix results.
const (
	EncodingUTF8        = "UTF-8"
	EncodingUnspecified = "unspecified"
	EncodingUnknown     = "unknown"
)

// Character issue classifications.
const (
	IssueReplacementChar = "replacement character"
	IssueGarbledChar     = "possible garbled character"
)

// ReplacementChar is U+FFFD, the marker left behind by a lossy decode.
const ReplacementChar = '\uFFFD'

// UTF8BOM is the UTF-8 byte order mark.
var UTF8BOM = []byte{0xEF, 0xBB, 0xBF}

// CanonicalDeclaration is the declaration every repaired file starts with.
const CanonicalDeclaration = `<?xml version="1.0" encoding="UTF-8"?>`

// EncodingIssue is the scanner's verdict for a single file.
type EncodingIssue struct {
	File             string           `json:"file"`
	Path             string           `json:"path"`
	Size             int64            `json:"size"`
	DeclaredEncoding string           `json:"declared_encoding"`
	DeclaredVia      string           `json:"declared_via,omitempty"`
	ActualEncoding   string           `json:"actual_encoding"`
	BOMDetected      bool             `json:"bom_detected"`
	CharacterIssues  []CharacterIssue `json:"character_issues,omitempty"`
	HasProblems      bool             `json:"has_problems"`
	Error            string           `json:"error,omitempty"`
}

// CharacterIssue pinpoints one suspicious code point.
type CharacterIssue struct {
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	Char        rune   `json:"char"`
	Description string `json:"description"`
	Context     string `json:"context"`
}

// ReplacementCount returns how many character issues are literal U+FFFD.
func (i EncodingIssue) ReplacementCount() int {
	n := 0
	for _, ci := range i.CharacterIssues {
		if ci.Char == ReplacementChar {
			n++
		}
	}
	return n
}

// Resolved reports whether trial decoding found a usable encoding.
func (i EncodingIssue) Resolved() bool {
	return i.Error == "" && i.ActualEncoding != EncodingUnknown && i.ActualEncoding != ""
}

// NeedsNormalization reports whether a resolved file still carries a BOM
// or a declaration other than UTF-8. Such files are not problems on their
// own but the declaration fix rewrites them.
func (i EncodingIssue) NeedsNormalization() bool {
	if !i.Resolved() {
		return false
	}
	return i.BOMDetected || !IsUTF8(i.DeclaredEncoding)
}

// Selected reports whether the pipeline should process the file.
func (i EncodingIssue) Selected() bool {
	return i.HasProblems || i.NeedsNormalization()
}

// EvaluateProblems derives HasProblems from the other fields:
// both declared and actual encodings differ from UTF-8, any character
// issue, an unresolved actual encoding, or a read error.
func EvaluateProblems(i EncodingIssue) bool {
	if i.Error != "" {
		return true
	}
	if !IsUTF8(i.DeclaredEncoding) && !IsUTF8(i.ActualEncoding) {
		return true
	}
	if len(i.CharacterIssues) > 0 {
		return true
	}
	return i.ActualEncoding == EncodingUnknown || i.ActualEncoding == ""
}

// IsUTF8 matches the UTF-8 label case-insensitively, accepting "UTF8".
func IsUTF8(name string) bool {
	n := strings.ToUpper(strings.TrimSpace(name))
	return n == "UTF-8" || n == "UTF8"
}
