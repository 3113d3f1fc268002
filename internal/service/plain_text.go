package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// plainText strips markup from user input. bluemonday entity-encodes the text it
// keeps, so the result is unescaped again: stored values match what was typed.
type plainText struct {
	policy *bluemonday.Policy
}

func newPlainText() *plainText {
	return &plainText{policy: bluemonday.StrictPolicy()}
}

// Clean returns value without tags, trimmed.
func (p *plainText) Clean(value string) string {
	return strings.TrimSpace(html.UnescapeString(p.policy.Sanitize(value)))
}
