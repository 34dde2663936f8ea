// Package keywords derives company name variants used for identity
// matching against crawled articles.
package keywords

import "strings"

// legalForms is the fixed table of legal-form tokens stripped from the
// end of company names. A keyword that is nothing but one of these
// would match almost every company mention network-wide, so bare forms
// are rejected outright.
var legalForms = []string{
	"GmbH", "AG", "KG", "OHG", "GbR", "UG", "e.V.", "eG",
	"Ltd.", "Ltd", "Inc.", "Inc", "LLC", "Corp.", "Corp",
	"SE", "S.A.", "S.L.", "B.V.", "N.V.", "Pty", "PLC",
	"& Co.", "& Co", "KGaA", "mbH", "Co. KG", "Co.KG",
}

const minKeywordLen = 2

// Set is the deduplicated keyword output of an extraction.
type Set struct {
	All      []string
	Primary  string
	Variants []string
}

// Extract builds the identity keyword set from a company's display,
// official and trading names. For each non-empty name it admits the
// trimmed name itself and a legal-form-stripped variant; candidates
// that equal a legal form (case-insensitive) or are shorter than two
// characters are dropped. Order of first admission is preserved.
func Extract(name, officialName, tradingName string) Set {
	var set Set
	seen := map[string]struct{}{}

	add := func(candidate string) {
		candidate = strings.TrimSpace(candidate)
		if !admissible(candidate) {
			return
		}
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		set.All = append(set.All, candidate)
	}

	for _, raw := range []string{name, officialName, tradingName} {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		add(trimmed)
		if stripped := StripLegalForm(trimmed); stripped != trimmed {
			add(stripped)
		}
	}

	if len(set.All) > 0 {
		set.Primary = set.All[0]
		set.Variants = set.All[1:]
	}
	return set
}

// StripLegalForm removes a trailing legal-form token (with its leading
// separator) from a company name. The input is returned unchanged when
// no form matches.
func StripLegalForm(name string) string {
	cleaned := strings.TrimSpace(name)
	for _, form := range legalForms {
		if len(cleaned) <= len(form) {
			continue
		}
		tail := cleaned[len(cleaned)-len(form):]
		if !strings.EqualFold(tail, form) {
			continue
		}
		head := cleaned[:len(cleaned)-len(form)]
		trimmedHead := strings.TrimRight(head, " \t,")
		// Require a separator before the form so "Montag" does not
		// lose its "AG".
		if trimmedHead == head || trimmedHead == "" {
			continue
		}
		return trimmedHead
	}
	return cleaned
}

// IsLegalForm reports whether the candidate is exactly one of the
// legal-form tokens, ignoring case and surrounding whitespace.
func IsLegalForm(candidate string) bool {
	cleaned := strings.TrimSpace(candidate)
	for _, form := range legalForms {
		if strings.EqualFold(cleaned, form) {
			return true
		}
	}
	return false
}

func admissible(candidate string) bool {
	if len(candidate) < minKeywordLen {
		return false
	}
	return !IsLegalForm(candidate)
}
