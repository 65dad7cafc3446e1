package domain

// Category is the bucket assigned to a scored token.
type Category string

const (
	CategoryMoonshot        Category = "Moonshot"
	CategorySolidInvestment Category = "Solid Investment"
	CategoryPotential       Category = "Potential"
	CategoryRisky           Category = "Risky"
)

// Categories lists all categories in presentation order.
var Categories = []Category{
	CategoryMoonshot,
	CategorySolidInvestment,
	CategoryPotential,
	CategoryRisky,
}

// String returns the string representation of Category.
func (c Category) String() string {
	return string(c)
}

// IsValid checks if the category is a known value.
func (c Category) IsValid() bool {
	switch c {
	case CategoryMoonshot, CategorySolidInvestment, CategoryPotential, CategoryRisky:
		return true
	}
	return false
}
