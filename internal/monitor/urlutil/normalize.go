// Package urlutil canonicalizes article URLs for dedup identity.
package urlutil

import (
	"net/url"
	"sort"
	"strings"
)

// trackingParams are query parameters that never change which article a
// URL points at. The list is conservative on purpose: dropping a
// meaningful parameter would merge distinct articles, which is worse
// than occasionally keeping two suggestions for one article.
var trackingParams = map[string]struct{}{
	"gclid":   {},
	"fbclid":  {},
	"igshid":  {},
	"yclid":   {},
	"msclkid": {},
	"mc_cid":  {},
	"mc_eid":  {},
}

// Normalizer canonicalizes URLs with a configurable strip list. The
// zero value uses the default tracking-parameter rules.
type Normalizer struct {
	// ExtraParams are additional query parameter names to strip,
	// compared case-insensitively.
	ExtraParams []string
}

// Normalize returns the canonical form of raw: scheme and host
// lowercased, default ports and fragments dropped, tracking parameters
// stripped, remaining query parameters sorted, one trailing slash
// removed. Two URLs an operator would consider "the same article"
// normalize identically. Unparseable input is returned trimmed.
func (n Normalizer) Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	switch {
	case u.Scheme == "http" && strings.HasSuffix(u.Host, ":80"):
		u.Host = strings.TrimSuffix(u.Host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(u.Host, ":443"):
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	u.RawQuery = n.cleanQuery(u.Query())
	u.Path = strings.TrimSuffix(u.Path, "/")

	return u.String()
}

func (n Normalizer) cleanQuery(q url.Values) string {
	keys := make([]string, 0, len(q))
	for key := range q {
		if n.stripped(key) {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		for _, v := range q[key] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

func (n Normalizer) stripped(key string) bool {
	lower := strings.ToLower(key)
	if strings.HasPrefix(lower, "utm_") {
		return true
	}
	if _, ok := trackingParams[lower]; ok {
		return true
	}
	for _, extra := range n.ExtraParams {
		if strings.EqualFold(extra, key) {
			return true
		}
	}
	return false
}
