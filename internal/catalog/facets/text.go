package facets

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// transliterations covers lowercase letters that have no canonical decomposition.
var transliterations = strings.NewReplacer(
	"ß", "ss",
	"ł", "l",
	"ø", "o",
	"æ", "ae",
	"œ", "oe",
	"đ", "d",
	"ð", "d",
	"þ", "th",
	"ı", "i",
)

// normalizeText lowercases s and strips combining marks, so "Veganské" becomes "veganske"
// and "Weiß" becomes "weiss".
func normalizeText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return transliterations.Replace(strings.ToLower(out))
}

// Slugify turns a human readable name into a lowercase, dash separated handle.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range normalizeText(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if r > unicode.MaxASCII {
				// remaining non-Latin letters are treated as separators
				if !dash && b.Len() > 0 {
					dash = true
				}
				continue
			}
			if dash {
				b.WriteByte('-')
				dash = false
			}
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			dash = true
		}
	}
	return b.String()
}

// Humanize renders a facet id as a label: the namespace is removed, dashes and
// underscores become spaces and the first letter is upper-cased.
func Humanize(id, namespace string) string {
	s := strings.TrimPrefix(id, namespace)
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return id
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// words splits normalized text into alphanumeric tokens.
func words(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		out[w] = struct{}{}
	}
	return out
}
