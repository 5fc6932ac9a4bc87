package inbox

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"

	goaway "github.com/TwiN/go-away"
)

// FieldErrors usa as chaves que o formulário renderiza
// (name, email, subject, message, _global).
type FieldErrors map[string]string

const GlobalField = "_global"

var pressEmailRE = regexp.MustCompile(`(?i)^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

// ProfanityChecker é satisfeito por *goaway.ProfanityDetector.
type ProfanityChecker interface {
	IsProfane(s string) bool
}

// DefaultProfanityChecker usa o dicionário padrão do go-away.
func DefaultProfanityChecker() ProfanityChecker {
	return goaway.NewProfanityDetector()
}

// Validator aplica as regras dos formulários de contato e imprensa.
type Validator struct {
	Profanity ProfanityChecker
}

type PressInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func (v Validator) Press(in PressInput) FieldErrors {
	errs := FieldErrors{}
	if !between(in.Name, 2, 80) {
		errs["name"] = "Please enter 2–80 characters."
	} else if v.profane(in.Name) {
		errs["name"] = "Please keep it civil."
	}
	if !pressEmailRE.MatchString(in.Email) || utf8.RuneCountInString(in.Email) > 120 {
		errs["email"] = "Please enter a valid email."
	}
	if !between(in.Subject, 4, 120) {
		errs["subject"] = "Please enter 4–120 characters."
	} else if v.profane(in.Subject) {
		errs["subject"] = "Please keep it civil."
	}
	if !between(in.Message, 20, 4000) {
		errs["message"] = "Please enter 20–4000 characters."
	}
	return errs
}

type ContactInput struct {
	Name    string
	Email   string
	Message string
}

func (v Validator) Contact(in ContactInput) FieldErrors {
	errs := FieldErrors{}
	if in.Name == "" || in.Email == "" || in.Message == "" {
		errs[GlobalField] = "Please complete all required fields."
		return errs
	}
	if !pressEmailRE.MatchString(in.Email) || utf8.RuneCountInString(in.Email) > 120 {
		errs["email"] = "Please enter a valid email."
	}
	if utf8.RuneCountInString(in.Name) > 80 {
		errs["name"] = "Please enter 2–80 characters."
	}
	if utf8.RuneCountInString(in.Message) > 4000 {
		errs["message"] = "Please enter 20–4000 characters."
	}
	return errs
}

func (v Validator) profane(s string) bool {
	return v.Profanity != nil && v.Profanity.IsProfane(s)
}

func between(s string, min, max int) bool {
	n := utf8.RuneCountInString(s)
	return n >= min && n <= max
}

// Sanitize escapa < > & ' " antes de guardar ou logar o texto.
func Sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
