// Package filter narrows an already loaded character list the way the gallery
// does in the browser. Unlike the store's query, search also looks at tags.
package filter

import (
	"strings"

	"github.com/ahmetk3436/companion/internal/models"
)

const Any = "all"

type Spec struct {
	Gender    string `json:"gender"`
	Ethnicity string `json:"ethnicity"`
	Search    string `json:"search"`
}

func DefaultSpec() Spec {
	return Spec{Gender: Any, Ethnicity: Any}
}

// Active reports whether s narrows the list at all.
func (s Spec) Active() bool {
	return !isAny(s.Gender) || !isAny(s.Ethnicity) || s.Search != ""
}

// Apply returns the characters matching every predicate of s, in input order.
// The input slice is not modified.
func Apply(characters []models.Character, s Spec) []models.Character {
	search := strings.ToLower(s.Search)

	out := make([]models.Character, 0, len(characters))
	for _, c := range characters {
		if !isAny(s.Gender) && c.Gender != s.Gender {
			continue
		}
		if !isAny(s.Ethnicity) && c.Ethnicity != s.Ethnicity {
			continue
		}
		if search != "" && !matches(c, search) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matches(c models.Character, lowered string) bool {
	for _, field := range []string{c.Name, c.Personality, c.Description, c.Tags} {
		if strings.Contains(strings.ToLower(field), lowered) {
			return true
		}
	}
	return false
}

func isAny(v string) bool {
	return v == "" || v == Any
}
