package domain_test

import (
	"testing"

	"github.com/openkraft/encmend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestValidationReport_Add(t *testing.T) {
	var r domain.ValidationReport
	r.Add(domain.ValidationResult{Path: "a.xml", Valid: true})
	r.Add(domain.ValidationResult{Path: "b.xml", Valid: false, Line: 3, Message: "unexpected EOF"})
	r.Add(domain.ValidationResult{Path: "c.xml", Valid: true})

	assert.Len(t, r.Results, 3)
	assert.Equal(t, 2, r.Passed)
	assert.Equal(t, 1, r.Failed)
}
