package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlainTextKeepsTypedCharacters(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"quotes and ampersand", `Don't stop & keep "going"`, `Don't stop & keep "going"`},
		{"apostrophe in name", "O'Brien", "O'Brien"},
		{"comparison", " a < b > c ", "a < b > c"},
		{"tags stripped", "<b>Great</b> class", "Great class"},
		{"script dropped", "Form <script>alert(1)</script>freezes", "Form freezes"},
		{"blank", "   ", ""},
	}

	cleaner := newPlainText()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, cleaner.Clean(tc.input))
		})
	}
}
