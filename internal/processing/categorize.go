package processing

import "strings"

// Category classifies a line item or a whole receipt.
type Category string

const (
	CategoryGroceries    Category = "Groceries"
	CategoryClothing     Category = "Clothing"
	CategoryElectronics  Category = "Electronics"
	CategoryHome         Category = "Home"
	CategoryPersonalCare Category = "Personal Care"
	CategoryOther        Category = "Other"

	// CategoryUnknown is only ever the aggregate category of a receipt
	// with no parsed items.
	CategoryUnknown Category = "Unknown"
)

// categoryKeywords are checked in order; the first category with a
// matching keyword wins. Matching is case-insensitive substring, not
// whole-word.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryGroceries, []string{"fruit", "vegetable", "meat", "dairy", "bread", "cereal", "snack"}},
	{CategoryClothing, []string{"shirt", "pants", "dress", "shoe", "jacket", "socks"}},
	{CategoryElectronics, []string{"phone", "laptop", "charger", "cable", "headphone"}},
	{CategoryHome, []string{"furniture", "decor", "kitchen", "bathroom", "bedroom"}},
	{CategoryPersonalCare, []string{"soap", "shampoo", "toothpaste", "cosmetics", "lotion"}},
}

// CategorizeItem maps an item name to a category by keyword membership.
// It is a pure function of the name.
func CategorizeItem(name string) Category {
	lower := strings.ToLower(name)
	for _, rule := range categoryKeywords {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return CategoryOther
}

// AggregateCategory derives one category for the whole receipt by
// plurality vote over the items' categories. Ties go to the category
// encountered first; an empty item list yields CategoryUnknown.
func AggregateCategory(items []Item) Category {
	if len(items) == 0 {
		return CategoryUnknown
	}

	counts := make(map[Category]int, len(items))
	var order []Category
	for _, item := range items {
		if _, seen := counts[item.Category]; !seen {
			order = append(order, item.Category)
		}
		counts[item.Category]++
	}

	best := order[0]
	for _, c := range order[1:] {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}
