package classify

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Category is the rotation bucket a record belongs to.
type Category string

const (
	Frontend  Category = "frontend"
	Fullstack Category = "fullstack"
)

// Quota is how many records of each category the highlights view takes.
type Quota struct {
	Frontend  int `yaml:"frontend"`
	Fullstack int `yaml:"fullstack"`
}

// DefaultQuota is one frontend and three fullstack records.
var DefaultQuota = Quota{Frontend: 1, Fullstack: 3}

// Total is the number of slots in the highlights view.
func (q Quota) Total() int { return q.Frontend + q.Fullstack }

// AllCategories returns all valid categories in canonical order.
func AllCategories() []Category {
	return []Category{Frontend, Fullstack}
}

var categoryKeywords = map[Category][]string{
	Frontend: {
		"frontend", "front-end", "front end", "ui", "ux", "react", "vue",
		"svelte", "angular", "css", "tailwind", "landing", "animation",
		"design system", "web design", "portfolio", "static site",
	},
	Fullstack: {
		"fullstack", "full-stack", "full stack", "backend", "back-end",
		"api", "database", "server", "postgres", "mongodb", "node",
		"express", "auth", "dashboard", "management", "platform", "saas",
		"payments", "microservice",
	},
}

// Aliases maps short names accepted in catalog files and flags.
var Aliases = map[string]Category{
	"fe":         Frontend,
	"front":      Frontend,
	"front-end":  Frontend,
	"ui":         Frontend,
	"fs":         Fullstack,
	"full":       Fullstack,
	"full-stack": Fullstack,
	"backend":    Fullstack,
}

// Resolve maps an alias or category name to a Category.
func Resolve(alias string) (Category, error) {
	alias = strings.ToLower(strings.TrimSpace(alias))
	if cat, ok := Aliases[alias]; ok {
		return cat, nil
	}
	for _, cat := range AllCategories() {
		if string(cat) == alias {
			return cat, nil
		}
	}
	valid := make([]string, 0, len(Aliases))
	for k := range Aliases {
		valid = append(valid, k)
	}
	sort.Strings(valid)
	return "", fmt.Errorf("unknown category %q (valid: frontend, fullstack, %s)", alias, strings.Join(valid, ", "))
}

// Of returns the explicit category when it resolves, and falls back to
// Classify(role, title) otherwise.
func Of(explicit, role, title string) Category {
	if explicit != "" {
		if cat, err := Resolve(explicit); err == nil {
			return cat
		}
	}
	return Classify(role, title)
}

// Classify infers a category from free-text role and title fields.
// Role keywords are weighted 2x. Ties and unmatched input return Fullstack.
func Classify(role, title string) Category {
	roleTokens := tokenize(role)
	titleTokens := tokenize(title)
	roleLower := strings.ToLower(role)
	titleLower := strings.ToLower(title)

	scores := map[Category]int{}
	for _, cat := range AllCategories() {
		for _, kw := range categoryKeywords[cat] {
			if strings.ContainsAny(kw, " -") {
				// Multi-word keyword: check in pre-lowered text
				if strings.Contains(roleLower, kw) {
					scores[cat] += 2
				}
				if strings.Contains(titleLower, kw) {
					scores[cat]++
				}
				continue
			}
			for _, t := range roleTokens {
				if t == kw {
					scores[cat] += 2
				}
			}
			for _, t := range titleTokens {
				if t == kw {
					scores[cat]++
				}
			}
		}
	}

	if scores[Frontend] > scores[Fullstack] {
		return Frontend
	}
	return Fullstack
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
