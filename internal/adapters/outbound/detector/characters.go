package detector

import (
	"strings"

	"github.com/openkraft/encmend/internal/domain"
	"github.com/openkraft/encmend/internal/domain/charset"
)

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// FindCharacterIssues scans text line by line. Invalid UTF-8 bytes show up
// as U+FFFD, the same as a literal replacement character.
func FindCharacterIssues(text string) []domain.CharacterIssue {
	var issues []domain.CharacterIssue
	for i, line := range strings.Split(lineBreaks.Replace(text), "\n") {
		runes := []rune(line)
		for col, r := range runes {
			desc := classify(runes, col)
			if desc == "" {
				continue
			}
			issues = append(issues, domain.CharacterIssue{
				Line:        i + 1,
				Column:      col + 1,
				Char:        r,
				Description: desc,
				Context:     window(runes, col),
			})
		}
	}
	return issues
}

func classify(runes []rune, i int) string {
	r := runes[i]
	switch {
	case r == domain.ReplacementChar:
		return domain.IssueReplacementChar
	case r <= 127:
		return ""
	case r >= 0x80 && r <= 0x9F:
		return domain.IssueGarbledChar
	case charset.IsLatin1Letter(r):
		if (i > 0 && charset.IsLatin1Letter(runes[i-1])) || (i+1 < len(runes) && charset.IsLatin1Letter(runes[i+1])) {
			return domain.IssueGarbledChar
		}
	}
	return ""
}

func window(runes []rune, i int) string {
	start := max(i-contextRadius, 0)
	end := min(i+contextRadius, len(runes))
	return string(runes[start:end])
}
