package detector

import (
	"path/filepath"
	"strings"

	"github.com/openkraft/encmend/internal/domain"
	"github.com/openkraft/encmend/internal/domain/charset"
)

// contextRadius is how many code points of context surround an anomaly.
const contextRadius = 10

// EncodingDetector implements domain.EncodingDetector with trial decoding
// over a fixed candidate list.
type EncodingDetector struct {
	registry    *charset.Registry
	sampleLines int
}

func New(registry *charset.Registry, sampleLines int) *EncodingDetector {
	if sampleLines <= 0 {
		sampleLines = domain.DefaultSampleLines
	}
	return &EncodingDetector{registry: registry, sampleLines: sampleLines}
}

func (d *EncodingDetector) Detect(path string, data []byte) domain.EncodingIssue {
	issue := domain.EncodingIssue{
		File:        filepath.Base(path),
		Path:        path,
		Size:        int64(len(data)),
		BOMDetected: charset.HasBOM(data),
	}

	issue.DeclaredEncoding, issue.DeclaredVia = d.declared(data)

	if cs, ok := d.registry.Detect(data, d.sampleLines); ok {
		issue.ActualEncoding = cs.Name
	} else {
		issue.ActualEncoding = domain.EncodingUnknown
	}

	issue.CharacterIssues = FindCharacterIssues(string(charset.StripBOM(data)))
	issue.HasProblems = domain.EvaluateProblems(issue)
	return issue
}

// declared reads the first line as UTF-8, then under each other candidate
// in order. The second return value names the candidate that succeeded
// when plain UTF-8 did not.
func (d *EncodingDetector) declared(data []byte) (string, string) {
	body := charset.StripBOM(data)
	if enc, ok := charset.DeclaredEncoding(charset.FirstLine(string(body))); ok {
		return enc, ""
	}
	for _, cs := range d.registry.Candidates() {
		if cs.IsUTF8() {
			continue
		}
		text, err := cs.Decode(body)
		if err != nil {
			continue
		}
		text = strings.TrimPrefix(text, "\uFEFF")
		if enc, ok := charset.DeclaredEncoding(charset.FirstLine(text)); ok {
			return enc, cs.Name
		}
	}
	return domain.EncodingUnspecified, ""
}
