package domain

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var bedroomsTokenRe = regexp.MustCompile(`^\d+\+?$`)

// SearchFilters описывает критерии одного поиска
type SearchFilters struct {
	Emirate string // например "dubai"
	Area    string // например "dubai-marina"

	MinPrice int
	MaxPrice int

	Bedrooms  string // "2", "7+"
	Bathrooms int

	RequireUtilitiesIncluded bool
	MaxPages                 int
}

// NewSearchFilters собирает фильтры из "сырой" строки локации вида "Emirate, Area".
// Валидация остальных полей выполняется в Validate.
func NewSearchFilters(location string, minPrice, maxPrice int, bedrooms string, bathrooms int, requireUtilities bool, maxPages int) (SearchFilters, error) {
	emirate, area, err := ParseLocation(location)
	if err != nil {
		return SearchFilters{}, err
	}

	return SearchFilters{
		Emirate:                  emirate,
		Area:                     area,
		MinPrice:                 minPrice,
		MaxPrice:                 maxPrice,
		Bedrooms:                 strings.TrimSpace(bedrooms),
		Bathrooms:                bathrooms,
		RequireUtilitiesIncluded: requireUtilities,
		MaxPages:                 maxPages,
	}, nil
}

// ParseLocation разбирает строку "Abu Dhabi, Khalifa City" в пару ("abu-dhabi", "khalifa-city")
func ParseLocation(location string) (emirate string, area string, err error) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: location must be in the form 'Emirate, Area', got %q", ErrInvalidFilters, location)
	}

	emirate = NormalizeLocationPart(parts[0])
	area = NormalizeLocationPart(parts[1])
	if emirate == "" || area == "" {
		return "", "", fmt.Errorf("%w: location parts must not be empty, got %q", ErrInvalidFilters, location)
	}
	return emirate, area, nil
}

// NormalizeLocationPart приводит часть локации к виду сегмента URL
func NormalizeLocationPart(s string) string {
	lowered := cases.Lower(language.English).String(strings.TrimSpace(s))
	return strings.Join(strings.Fields(lowered), "-")
}

// Validate проверяет фильтры до любого обращения к сети
func (f SearchFilters) Validate() error {
	if f.Emirate == "" || f.Area == "" {
		return fmt.Errorf("%w: emirate and area are required", ErrInvalidFilters)
	}
	if strings.ContainsAny(f.Emirate+f.Area, "/?# ") {
		return fmt.Errorf("%w: location contains characters not allowed in a path segment", ErrInvalidFilters)
	}
	if f.MinPrice < 0 || f.MaxPrice < 0 {
		return fmt.Errorf("%w: prices must be non-negative", ErrInvalidFilters)
	}
	if f.MaxPrice == 0 {
		return fmt.Errorf("%w: max price must be greater than zero", ErrInvalidFilters)
	}
	if f.MinPrice > f.MaxPrice {
		return fmt.Errorf("%w: min price %d is greater than max price %d", ErrInvalidFilters, f.MinPrice, f.MaxPrice)
	}
	if !bedroomsTokenRe.MatchString(f.Bedrooms) {
		return fmt.Errorf("%w: bedrooms must look like '2' or '7+', got %q", ErrInvalidFilters, f.Bedrooms)
	}
	if f.Bathrooms < 1 {
		return fmt.Errorf("%w: bathrooms must be at least 1", ErrInvalidFilters)
	}
	if f.MaxPages < 1 {
		return fmt.Errorf("%w: max pages must be at least 1", ErrInvalidFilters)
	}
	return nil
}
