package repair

import (
	"fmt"
	"strings"

	"github.com/openkraft/encmend/internal/domain"
	"github.com/openkraft/encmend/internal/domain/charset"
)

// declaration decodes data with the resolved actual encoding, drops any
// BOM and points the XML declaration at UTF-8. It refuses to guess when
// the actual encoding is unknown.
func (e *Engine) declaration(data []byte, actual string) ([]byte, string, error) {
	if actual == "" || actual == domain.EncodingUnknown {
		return nil, "actual encoding unknown, rewrite skipped", domain.ErrUnresolvedCharset
	}
	cs, err := e.registry.Resolve(actual)
	if err != nil {
		return nil, fmt.Sprintf("cannot decode as %s", actual), err
	}

	hadBOM := charset.HasBOM(data)
	text, err := cs.Decode(charset.StripBOM(data))
	if err != nil {
		return nil, err.Error(), err
	}
	if strings.HasPrefix(text, "\uFEFF") {
		text = strings.TrimPrefix(text, "\uFEFF")
		hadBOM = true
	}

	text, rewrote := charset.RewriteDeclaration(text, domain.EncodingUTF8, domain.CanonicalDeclaration)

	var steps []string
	if hadBOM {
		steps = append(steps, "BOM removed")
	}
	if !cs.IsUTF8() {
		steps = append(steps, fmt.Sprintf("re-encoded from %s", cs.Name))
	}
	if rewrote {
		steps = append(steps, "declaration set to UTF-8")
	}
	if len(steps) == 0 {
		steps = append(steps, "declaration already UTF-8")
	}
	return []byte(text), strings.Join(steps, ", "), nil
}
