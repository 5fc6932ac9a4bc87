package subscribe

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validEmail(s string) bool {
	return emailRE.MatchString(s)
}

// NormalizeEmail é a chave da tabela por email: sem espaços nas pontas,
// NFC e case-folded, para que "A@X.com" e "a@x.com" contem juntos.
func NormalizeEmail(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// Caser guarda estado; um por chamada, nunca compartilhado entre requests.
	return cases.Fold().String(norm.NFC.String(s))
}
