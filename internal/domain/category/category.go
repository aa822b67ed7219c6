package category

// Category pairs a human-readable display name with the keyword code stored on documents.
type Category struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

var all = []Category{
	{Name: "Business & Money", Code: "bm"},
	{Name: "Health, Fitness & Dieting", Code: "hfd"},
	{Name: "Science & Math", Code: "sm"},
	{Name: "Self-Help", Code: "sh"},
}

// Default is used when the caller's category is not recognized.
var Default = all[0]

// All returns the category table in display order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// ByName looks up a category by its display name.
func ByName(name string) (Category, bool) {
	for _, c := range all {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// ByCode looks up a category by its keyword code.
func ByCode(code string) (Category, bool) {
	for _, c := range all {
		if c.Code == code {
			return c, true
		}
	}
	return Category{}, false
}

// Resolve accepts a display name or a code and falls back to Default.
func Resolve(nameOrCode string) Category {
	if c, ok := ByName(nameOrCode); ok {
		return c
	}
	if c, ok := ByCode(nameOrCode); ok {
		return c
	}
	return Default
}

// NameOf returns the display name for a code, or the code itself when unknown.
func NameOf(code string) string {
	if c, ok := ByCode(code); ok {
		return c.Name
	}
	return code
}
