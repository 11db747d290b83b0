package assistant

import (
	"regexp"
	"strings"
)

// Category is one of the fixed budget categories
type Category string

const (
	CategoryFoodDrinks    Category = "Food & Drinks"
	CategoryTravel        Category = "Travel"
	CategorySubscriptions Category = "Subscriptions"
	CategoryShopping      Category = "Shopping"
	CategoryRentBills     Category = "Rent/Bills"
	CategorySalary        Category = "Salary"
	CategoryOther         Category = "Other"
)

// Categories in declaration order. Alias matching iterates this slice, so
// the order doubles as match priority: ties go to the earliest category.
var Categories = []Category{
	CategoryFoodDrinks,
	CategoryTravel,
	CategorySubscriptions,
	CategoryShopping,
	CategoryRentBills,
	CategorySalary,
	CategoryOther,
}

// aliasTable maps each category to the phrases that identify it in free
// text. Matching is substring containment on cleaned text, with no word
// boundary check: "food" matching inside "seafood" is documented behavior.
var aliasTable = map[Category][]string{
	CategoryFoodDrinks:    {"food & drinks", "food and drinks", "food", "groceries"},
	CategoryTravel:        {"travel", "trip", "flights", "tickets"},
	CategorySubscriptions: {"subscriptions", "subs", "netflix", "spotify", "apple", "prime"},
	CategoryShopping:      {"shopping", "amazon", "clothes", "apparel"},
	CategoryRentBills:     {"rent", "mortgage", "house payment", "bills", "utilities"},
	CategorySalary:        {"salary", "paycheck", "income"},
	CategoryOther:         {"other", "misc", "miscellaneous"},
}

// cleanedAliases holds aliasTable entries passed through CleanText once at
// startup, so punctuation in an alias ("food & drinks") can still match
// punctuation-stripped input.
var cleanedAliases = func() map[Category][]string {
	cleaned := make(map[Category][]string, len(aliasTable))
	for category, aliases := range aliasTable {
		out := make([]string, len(aliases))
		for i, alias := range aliases {
			out[i] = CleanText(alias)
		}
		cleaned[category] = out
	}
	return cleaned
}()

var whitespaceRe = regexp.MustCompile(`\s+`)

// CleanText lower-cases, strips ASCII punctuation and collapses whitespace
func CleanText(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if strings.ContainsRune("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", r) {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(sb.String(), " "))
}

// ResolveCategory maps free text to a canonical category via the alias
// table. First category (in declaration order) with a matching alias wins;
// false when nothing matches.
func ResolveCategory(text string) (Category, bool) {
	cleaned := CleanText(text)
	for _, category := range Categories {
		for _, alias := range cleanedAliases[category] {
			if alias != "" && strings.Contains(cleaned, alias) {
				return category, true
			}
		}
	}
	return "", false
}

// ValidCategory reports whether the given name is one of the canonical categories
func ValidCategory(name string) bool {
	for _, category := range Categories {
		if string(category) == name {
			return true
		}
	}
	return false
}
