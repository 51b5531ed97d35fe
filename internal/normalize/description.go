package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Delimiter separates the sub-fields of a statement description.
const Delimiter = "|"

const descriptionFields = 4

// DescriptionFields are the positional sub-fields of a description.
type DescriptionFields struct {
	CounterpartyRaw string
	Platform        string
	Account         string
	ExtraInfo       string
}

// SplitDescription splits desc into at most four fields. Missing trailing
// fields are empty; surplus delimiters stay inside ExtraInfo.
func SplitDescription(desc string) DescriptionFields {
	parts := strings.SplitN(desc, Delimiter, descriptionFields)
	get := func(i int) string {
		if i < len(parts) {
			return strings.TrimSpace(parts[i])
		}
		return ""
	}
	return DescriptionFields{
		CounterpartyRaw: get(0),
		Platform:        get(1),
		Account:         get(2),
		ExtraInfo:       get(3),
	}
}

// CorrectSwap undoes the exporter's platform/account transposition: a
// platform of only digits paired with an account containing a letter.
func CorrectSwap(f DescriptionFields) DescriptionFields {
	if isDigits(strings.ReplaceAll(f.Platform, " ", "")) && hasLetter(f.Account) {
		f.Platform, f.Account = f.Account, f.Platform
	}
	return f
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

// counterpartyRule extracts a counterparty from a description, or reports
// no match so the next rule is tried.
type counterpartyRule struct {
	name    string
	extract func(desc string) (string, bool)
}

// counterpartyRules are tried in order. "from" is checked before "to" even
// when "to" occurs earlier in the text.
var counterpartyRules = []counterpartyRule{
	{name: "from", extract: keywordRule("from")},
	{name: "to", extract: keywordRule("to")},
	{name: "leading-field", extract: leadingField},
}

// keywordRule matches the first case-insensitive occurrence of keyword and
// returns the text after it up to the next delimiter.
func keywordRule(keyword string) func(string) (string, bool) {
	return func(desc string) (string, bool) {
		lower := strings.ToLower(desc)
		i := strings.Index(lower, keyword)
		if i < 0 {
			return "", false
		}
		rest := lower[i+len(keyword):]
		if j := strings.Index(rest, Delimiter); j >= 0 {
			rest = rest[:j]
		}
		return strings.TrimSpace(rest), true
	}
}

func leadingField(desc string) (string, bool) {
	if j := strings.Index(desc, Delimiter); j >= 0 {
		desc = desc[:j]
	}
	return strings.TrimSpace(desc), true
}

// ExtractCounterparty returns the title-cased counterparty named in desc.
func ExtractCounterparty(desc string) string {
	name, _ := matchCounterparty(desc)
	return name
}

// matchCounterparty also returns the rule that matched, for tests and logs.
func matchCounterparty(desc string) (string, string) {
	for _, rule := range counterpartyRules {
		if name, ok := rule.extract(desc); ok {
			return titleCase(name), rule.name
		}
	}
	return "", ""
}

var titler = cases.Title(language.Und)

// titleCase capitalizes every letter that follows a non-letter, so
// "o'neil" becomes "O'Neil" and not "O'neil".
func titleCase(s string) string {
	runes := []rune(titler.String(s))
	for i := 1; i < len(runes); i++ {
		if unicode.IsLetter(runes[i]) && !unicode.IsLetter(runes[i-1]) {
			runes[i] = unicode.ToUpper(runes[i])
		}
	}
	return string(runes)
}
