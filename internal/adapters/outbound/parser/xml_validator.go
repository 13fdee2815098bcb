package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/openkraft/encmend/internal/domain"
	"github.com/openkraft/encmend/internal/domain/charset"
)

// XMLValidator implements domain.XMLValidator with a strict encoding/xml
// decoder. Entities are never resolved beyond the five predefined ones.
type XMLValidator struct{}

func New() *XMLValidator {
	return &XMLValidator{}
}

func (v *XMLValidator) Validate(path string, data []byte) domain.ValidationResult {
	res := domain.ValidationResult{File: filepath.Base(path), Path: path}

	dec := xml.NewDecoder(bytes.NewReader(charset.StripBOM(data)))
	dec.Strict = true
	dec.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		cs, err := charset.Lookup(label)
		if err != nil {
			return nil, err
		}
		return cs.NewReader(input), nil
	}

	roots := 0
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Line, res.Message = describe(dec, err)
			return res
		}
		switch tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}

	switch {
	case roots == 0:
		res.Message = "no root element"
	case roots > 1:
		res.Message = fmt.Sprintf("%d root elements", roots)
	default:
		res.Valid = true
	}
	return res
}

func describe(dec *xml.Decoder, err error) (int, string) {
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		return syn.Line, syn.Msg
	}
	line, _ := dec.InputPos()
	return line, err.Error()
}
