package dataset

// Category groups the BelgaLogos brands into broad product categories.
// Brands outside the automotive and clothing groups are categorised as
// CategoryOther.
type Category string

const (
	CategoryCar      Category = "car"
	CategoryClothing Category = "clothing"
	CategoryOther    Category = "other"
)

// brandCategories maps every brand annotated in BelgaLogos to its category.
// The set of keys doubles as the canonical list of known brands: rows naming
// a brand outside this map are dropped during loading.
var brandCategories = map[string]Category{
	"Adidas":           CategoryClothing,
	"Adidas-text":      CategoryClothing,
	"Airness":          CategoryClothing,
	"Base":             CategoryOther,
	"BFGoodrich":       CategoryOther,
	"Bik":              CategoryOther,
	"Bouigues":         CategoryOther,
	"Bridgestone":      CategoryOther,
	"Bridgestone-text": CategoryOther,
	"Carglass":         CategoryOther,
	"Citroen":          CategoryCar,
	"Citroen-text":     CategoryCar,
	"CocaCola":         CategoryOther,
	"Cofidis":          CategoryOther,
	"Dexia":            CategoryOther,
	"ELeclerc":         CategoryOther,
	"Ferrari":          CategoryCar,
	"Gucci":            CategoryClothing,
	"Kia":              CategoryCar,
	"Mercedes":         CategoryCar,
	"Nike":             CategoryClothing,
	"Peugeot":          CategoryCar,
	"Puma":             CategoryClothing,
	"Puma-text":        CategoryClothing,
	"Quick":            CategoryOther,
	"Reebok":           CategoryClothing,
	"Roche":            CategoryOther,
	"Shell":            CategoryOther,
	"SNCF":             CategoryOther,
	"Standard_Liege":   CategoryOther,
	"StellaArtois":     CategoryOther,
	"TNT":              CategoryOther,
	"Total":            CategoryOther,
	"Umbro":            CategoryClothing,
	"US_President":     CategoryOther,
	"Veolia":           CategoryOther,
	"VRT":              CategoryOther,
}

// KnownBrand reports whether the name is one of the 37 annotated brands.
func KnownBrand(name string) bool {
	_, ok := brandCategories[name]
	return ok
}

// BrandCategory returns the category for a brand, or CategoryOther for
// unknown names.
func BrandCategory(name string) Category {
	if c, ok := brandCategories[name]; ok {
		return c
	}
	return CategoryOther
}

// Brands returns the canonical list of annotated brand names in no
// particular order.
func Brands() []string {
	names := make([]string, 0, len(brandCategories))
	for name := range brandCategories {
		names = append(names, name)
	}
	return names
}
