package slug

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	valid    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

var transliterate = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ã", "a", "ä", "a", "å", "a", "æ", "ae",
	"ç", "c", "è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i", "ı", "i",
	"ñ", "n", "ò", "o", "ó", "o", "ô", "o", "õ", "o", "ö", "o", "ø", "o", "œ", "oe",
	"ù", "u", "ú", "u", "û", "u", "ü", "u", "ý", "y", "ÿ", "y",
	"ğ", "g", "ş", "s", "ß", "ss", "&", " and ",
)

// Generate derives a URL-safe slug from a display name:
//
//	"Crème Brûlée Mug" -> "creme-brulee-mug"
//	"T-Shirt & Cap!"   -> "t-shirt-and-cap"
func Generate(name string) string {
	s := transliterate.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// WithSuffix appends a numeric suffix, used when a generated slug collides
// with an existing one.
func WithSuffix(s string, n int) string {
	if n <= 1 {
		return s
	}
	return s + "-" + strconv.Itoa(n)
}

// Valid reports whether s is a well-formed slug.
func Valid(s string) bool {
	return valid.MatchString(s)
}
