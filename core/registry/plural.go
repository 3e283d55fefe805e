package registry

import "strings"

// pluralize derives a table name from a model name using simple English
// pluralization rules. Model names are lowercase identifiers, so no
// case handling is needed.
func pluralize(word string) string {
	if word == "" {
		return ""
	}

	switch {
	case strings.HasSuffix(word, "s"),
		strings.HasSuffix(word, "x"),
		strings.HasSuffix(word, "z"),
		strings.HasSuffix(word, "ch"),
		strings.HasSuffix(word, "sh"):
		return word + "es"

	case strings.HasSuffix(word, "y") && len(word) > 1 && !isVowel(rune(word[len(word)-2])):
		return word[:len(word)-1] + "ies"

	case strings.HasSuffix(word, "fe"):
		return word[:len(word)-2] + "ves"

	case strings.HasSuffix(word, "f"):
		return word[:len(word)-1] + "ves"
	}

	return word + "s"
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
