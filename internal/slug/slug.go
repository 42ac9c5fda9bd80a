// Package slug derives store ids from display names.
package slug

import (
	"strings"
	"unicode"
)

const (
	RecipePrefix     = "rec-"
	IngredientPrefix = "ing-"
)

// separator is the whitespace set dashboard ids have always been cut on:
// unicode.IsSpace plus U+FEFF, minus U+0085.
func separator(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}

// Slugify lowercases name, drops surrounding whitespace and joins the
// remaining words with single hyphens. Slugify(Slugify(s)) == Slugify(s).
func Slugify(name string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(name), separator), "-")
}

func RecipeId(dishName string) string {
	return RecipePrefix + Slugify(dishName)
}

func IngredientId(name string) string {
	return IngredientPrefix + Slugify(name)
}

// Collides reports whether two different display names map to the same id.
func Collides(a, b string) bool {
	return a != b && Slugify(a) == Slugify(b)
}
