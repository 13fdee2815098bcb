// Package charset holds the fixed candidate list used for trial decoding
// and the helpers that read XML declarations.
package charset

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/openkraft/encmend/internal/domain"
)

// Charset pairs a display name with its decoder.
type Charset struct {
	Name string
	enc  encoding.Encoding
}

// IsUTF8 reports whether the charset is UTF-8.
func (c Charset) IsUTF8() bool { return domain.IsUTF8(c.Name) }

// Decode converts data to a UTF-8 string. Bytes the charset cannot map
// come out as U+FFFD.
func (c Charset) Decode(data []byte) (string, error) {
	out, err := c.enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", c.Name, err)
	}
	return string(out), nil
}

// NewReader wraps r so that reads return UTF-8.
func (c Charset) NewReader(r io.Reader) io.Reader {
	return transform.NewReader(r, c.enc.NewDecoder())
}

// builtin covers the names whose mapping differs from a plain IANA lookup.
var builtin = map[string]encoding.Encoding{
	"UTF-8":      unicode.UTF8,
	"UTF8":       unicode.UTF8,
	"GBK":        simplifiedchinese.GBK,
	"GB2312":     simplifiedchinese.GBK,
	"GB18030":    simplifiedchinese.GB18030,
	"ISO-8859-1": charmap.ISO8859_1,
	"LATIN1":     charmap.ISO8859_1,
	"UTF-16":     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
	"UTF-16BE":   unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"UTF-16LE":   unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
}

// Lookup resolves a charset name. GB2312 decodes through the GBK table,
// which is a superset.
func Lookup(name string) (Charset, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if enc, ok := builtin[key]; ok {
		return Charset{Name: canonicalName(key), enc: enc}, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return Charset{}, fmt.Errorf("%w: %q", domain.ErrUnknownCharset, name)
	}
	return Charset{Name: key, enc: enc}, nil
}

func canonicalName(key string) string {
	switch key {
	case "UTF8":
		return "UTF-8"
	case "LATIN1":
		return "ISO-8859-1"
	}
	return key
}

// Registry is the ordered candidate list. It is immutable once built.
type Registry struct {
	candidates []Charset
}

// NewRegistry resolves every name up front and rejects unknown ones.
func NewRegistry(names []string) (*Registry, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: empty candidate list", domain.ErrUnknownCharset)
	}
	r := &Registry{}
	for _, n := range names {
		cs, err := Lookup(n)
		if err != nil {
			return nil, err
		}
		r.candidates = append(r.candidates, cs)
	}
	return r, nil
}

// Names returns the candidate names in trial order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.candidates))
	for i, c := range r.candidates {
		out[i] = c.Name
	}
	return out
}

// Candidates returns the candidates in trial order.
func (r *Registry) Candidates() []Charset {
	return append([]Charset(nil), r.candidates...)
}

// Detect returns the first candidate whose first sampleLines decoded lines
// contain no decoding failure and no run of Latin-1 letters. The BOM is
// skipped before decoding. It returns false when no candidate qualifies.
//
// For UTF-8 a decoding failure means invalid byte sequences; a validly
// encoded U+FFFD already in the file does not disqualify it.
func (r *Registry) Detect(data []byte, sampleLines int) (Charset, bool) {
	body := StripBOM(data)
	for _, c := range r.candidates {
		if c.IsUTF8() {
			sample := FirstLines(string(body), sampleLines)
			if utf8.ValidString(sample) && !HasLatin1Run(sample) {
				return c, true
			}
			continue
		}
		text, err := c.Decode(body)
		if err != nil {
			continue
		}
		sample := FirstLines(text, sampleLines)
		if !strings.ContainsRune(sample, domain.ReplacementChar) && !HasLatin1Run(sample) {
			return c, true
		}
	}
	return Charset{}, false
}

// Resolve finds a candidate by name, falling back to a global lookup.
func (r *Registry) Resolve(name string) (Charset, error) {
	key := canonicalName(strings.ToUpper(strings.TrimSpace(name)))
	for _, c := range r.candidates {
		if c.Name == key {
			return c, nil
		}
	}
	return Lookup(name)
}

// HasBOM reports whether data starts with the UTF-8 byte order mark.
func HasBOM(data []byte) bool {
	return bytes.HasPrefix(data, domain.UTF8BOM)
}

// StripBOM drops a leading UTF-8 byte order mark.
func StripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, domain.UTF8BOM)
}

// FirstLines returns at most n lines of s, without the trailing newline.
func FirstLines(s string, n int) string {
	if n <= 0 {
		return s
	}
	idx := 0
	for i := 0; i < n; i++ {
		next := strings.IndexByte(s[idx:], '\n')
		if next < 0 {
			return s
		}
		idx += next + 1
	}
	return strings.TrimSuffix(s[:idx], "\n")
}

// IsLatin1Letter reports whether r is in U+00C0..U+00FF, the range where
// UTF-8 bytes read as ISO-8859-1 tend to land.
func IsLatin1Letter(r rune) bool {
	return r >= 0x00C0 && r <= 0x00FF
}

// HasLatin1Run reports whether s contains two or more consecutive
// Latin-1 letters.
func HasLatin1Run(s string) bool {
	run := 0
	for _, r := range s {
		if IsLatin1Letter(r) {
			run++
			if run >= 2 {
				return true
			}
			continue
		}
		run = 0
	}
	return false
}
