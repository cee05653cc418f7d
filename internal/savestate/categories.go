// internal/savestate/categories.go
package savestate

import "strings"

// Category filters.
const (
	CategoryAll           = "all"
	CategoryUncategorized = "uncategorized"
)

// SetCategory assigns category to a field state. Blank uncategorizes it.
func SetCategory(c *Collection[FieldState], id, category string) error {
	category = strings.TrimSpace(category)
	return c.Update(id, func(s FieldState) FieldState {
		s.Category = category
		return s
	})
}

// ByCategory lists field states matching filter: "" or "all" returns
// everything, "uncategorized" those with a blank category.
func ByCategory(c *Collection[FieldState], filter string) []FieldState {
	switch filter {
	case "", CategoryAll:
		return c.All()
	case CategoryUncategorized:
		return c.Filter(func(s FieldState) bool { return s.Category == "" })
	default:
		return c.Filter(func(s FieldState) bool { return s.Category == filter })
	}
}

// Categories lists distinct non-blank categories in first-seen order.
func Categories(c *Collection[FieldState]) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range c.All() {
		if s.Category != "" && !seen[s.Category] {
			seen[s.Category] = true
			out = append(out, s.Category)
		}
	}
	return out
}
