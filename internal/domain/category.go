package domain

import "slices"

var knownCategories = []string{
	"소설",
	"에세이",
	"자기계발",
	"경제/경영",
	"인문학",
	"과학",
	"역사",
	"철학",
	"종교",
	"예술",
	"기타",
}

// Categories returns the categories offered by manual registration.
func Categories() []string {
	return slices.Clone(knownCategories)
}

// IsKnownCategory reports whether c is one of the offered categories or the default.
func IsKnownCategory(c string) bool {
	return c == DefaultCategory || slices.Contains(knownCategories, c)
}
