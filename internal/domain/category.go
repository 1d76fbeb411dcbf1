package domain

// CategoryAll is the listing slug that disables the category filter.
const CategoryAll = "all"

// Category is a storefront section. Products reference it by slug.
type Category struct {
	Slug         string   `json:"slug"`
	NameSr       string   `json:"nameSr"`
	NameEn       string   `json:"nameEn"`
	Sizes        []string `json:"sizes"`
	ProductCount int      `json:"productCount"`
}

var (
	ClothingSizes = []string{"XS", "S", "M", "L", "XL", "XXL", "XXXL"}
	PantsSizes    = []string{"28", "30", "32", "34", "36", "38", "40", "42"}
)

// Categories lists the storefront sections in navigation order.
var Categories = []Category{
	{Slug: "t-shirts", NameSr: "Majice", NameEn: "T-Shirts"},
	{Slug: "shirts", NameSr: "Košulje", NameEn: "Shirts"},
	{Slug: "hoodies", NameSr: "Duksevi", NameEn: "Hoodies"},
	{Slug: "sweatshirts", NameSr: "Duksevi bez kapuljače", NameEn: "Sweatshirts"},
	{Slug: "jackets", NameSr: "Jakne", NameEn: "Jackets"},
	{Slug: "pants", NameSr: "Pantalone", NameEn: "Pants"},
	{Slug: "jeans", NameSr: "Farmerke", NameEn: "Jeans"},
	{Slug: "shorts", NameSr: "Šortsevi", NameEn: "Shorts"},
	{Slug: "accessories", NameSr: "Aksesoari", NameEn: "Accessories"},
}

// SizesFor returns the size run offered for a category: waist sizes for
// trousers, letter sizes for everything else.
func SizesFor(category string) []string {
	switch category {
	case "pants", "jeans", "shorts":
		return PantsSizes
	default:
		return ClothingSizes
	}
}
