// Package doctype classifies construction site documents by filename and
// exposes the presentation lookups keyed off the resulting category.
//
// Every function in this package is pure and total: it never returns an
// error and never panics, and it is safe for concurrent use.
package doctype

// Category is the stable identifier of a document type, e.g. "receipt".
type Category string

const (
	Receipt      Category = "receipt"
	DeliverySlip Category = "delivery_slip"
	Contract     Category = "contract"
	Drawing      Category = "drawing"
	Spec         Category = "spec"
	Photo        Category = "photo"
	Invoice      Category = "invoice"
	Unknown      Category = "unknown"
)

var allCategories = [...]Category{
	Receipt,
	DeliverySlip,
	Contract,
	Drawing,
	Spec,
	Photo,
	Invoice,
	Unknown,
}

// All returns the eight categories in enumeration order, unknown last.
func All() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories[:])
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c Category) String() string {
	return string(c)
}

// Parse maps a wire value back to a Category.
func Parse(s string) (Category, bool) {
	c := Category(s)
	if !c.Valid() {
		return Unknown, false
	}
	return c, true
}

type label struct {
	displayName string
	iconKey     string
	themeColor  string
}

var categoryLabels = map[Category]label{
	Receipt:      {displayName: "レシート・領収書", iconKey: "receipt-outline", themeColor: "#4CAF50"},
	DeliverySlip: {displayName: "納品書・搬入書", iconKey: "cube-outline", themeColor: "#2196F3"},
	Contract:     {displayName: "契約書", iconKey: "document-text-outline", themeColor: "#9C27B0"},
	Drawing:      {displayName: "図面", iconKey: "map-outline", themeColor: "#FF9800"},
	Spec:         {displayName: "仕様書", iconKey: "list-outline", themeColor: "#607D8B"},
	Photo:        {displayName: "写真", iconKey: "image-outline", themeColor: "#E91E63"},
	Invoice:      {displayName: "請求書", iconKey: "cash-outline", themeColor: "#F44336"},
	Unknown:      {displayName: "その他", iconKey: "help-circle-outline", themeColor: "#9E9E9E"},
}

func lookup(c Category) label {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return categoryLabels[Unknown]
}

// DisplayName returns the human-readable label for c. Values outside the
// enumeration get the label of Unknown.
func DisplayName(c Category) string {
	return lookup(c).displayName
}

// IconKey returns the symbolic icon identifier for c. The presentation
// layer owns the icon set.
func IconKey(c Category) string {
	return lookup(c).iconKey
}

// ThemeColor returns c's color as #RRGGBB.
func ThemeColor(c Category) string {
	return lookup(c).themeColor
}

// Descriptor bundles a category with its presentation attributes.
type Descriptor struct {
	Category    Category `json:"category" yaml:"category"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	IconKey     string   `json:"icon_key" yaml:"icon_key"`
	ThemeColor  string   `json:"theme_color" yaml:"theme_color"`
}

// Describe returns the presentation attributes for c. Unrecognized
// categories are described as Unknown.
func Describe(c Category) Descriptor {
	if !c.Valid() {
		c = Unknown
	}
	l := lookup(c)
	return Descriptor{
		Category:    c,
		DisplayName: l.displayName,
		IconKey:     l.iconKey,
		ThemeColor:  l.themeColor,
	}
}
