package listings

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/automarkt/automarkt-backend/pkg/enums"
)

// FilterSet holds the optional search criteria for a listing query. Absent
// fields are nil/empty and contribute no predicate.
type FilterSet struct {
	Make         string
	Model        string
	YearFrom     *int
	YearTo       *int
	Transmission string
	FuelType     string
	MileageFrom  *int
	MileageTo    *int
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
	Keyword      string
	ViewMode     enums.ViewMode
}

// filterFunc maps a query to a narrower query. Filters compose left-to-right
// as a pure fold, so each step yields a new query value.
type filterFunc func(*gorm.DB) *gorm.DB

// Apply folds every present filter over the base query with AND semantics.
func (f FilterSet) Apply(q *gorm.DB) *gorm.DB {
	for _, fn := range f.filters() {
		q = fn(q)
	}
	return q
}

func (f FilterSet) filters() []filterFunc {
	var fns []filterFunc

	if v := strings.TrimSpace(f.Make); v != "" {
		fns = append(fns, func(q *gorm.DB) *gorm.DB { return q.Where("make = ?", v) })
	}
	if v := strings.TrimSpace(f.Model); v != "" {
		fns = append(fns, func(q *gorm.DB) *gorm.DB { return q.Where("model = ?", v) })
	}
	if v := strings.TrimSpace(f.Transmission); v != "" {
		fns = append(fns, func(q *gorm.DB) *gorm.DB { return q.Where("transmission = ?", v) })
	}
	if v := strings.TrimSpace(f.FuelType); v != "" {
		fns = append(fns, func(q *gorm.DB) *gorm.DB { return q.Where("fuel_type = ?", v) })
	}
	if f.YearFrom != nil {
		v := *f.YearFrom
		fns = append(fns, func(q *gorm.DB) *gorm.DB { return q.Where("year >= ?", v) })
	}
	if f.YearTo != nil {
		v := *f.YearTo
		fns = append(fns, func(q *gorm.DB) *gorm.DB { return q.Where("year <= ?", v) })
	}
	if f.MileageFrom != nil {
		v := *f.MileageFrom
		fns = append(fns, func(q *gorm.DB) *gorm.DB { return q.Where("mileage >= ?", v) })
	}
	if f.MileageTo != nil {
		v := *f.MileageTo
		fns = append(fns, func(q *gorm.DB) *gorm.DB { return q.Where("mileage <= ?", v) })
	}
	if f.PriceMin != nil {
		v := *f.PriceMin
		fns = append(fns, func(q *gorm.DB) *gorm.DB { return q.Where("price >= ?", v) })
	}
	if f.PriceMax != nil {
		v := *f.PriceMax
		fns = append(fns, func(q *gorm.DB) *gorm.DB { return q.Where("price <= ?", v) })
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		pattern := "%" + strings.ToLower(kw) + "%"
		fns = append(fns, func(q *gorm.DB) *gorm.DB {
			return q.Where("(LOWER(description) LIKE ? OR LOWER(make) LIKE ? OR LOWER(model) LIKE ?)", pattern, pattern, pattern)
		})
	}

	return fns
}

// ParseFilterSet builds a FilterSet from request query parameters. Malformed
// numeric values are treated as absent, never as errors.
func ParseFilterSet(values url.Values) FilterSet {
	f := FilterSet{
		Make:         strings.TrimSpace(values.Get("make")),
		Model:        strings.TrimSpace(values.Get("model")),
		Transmission: strings.TrimSpace(values.Get("transmission")),
		FuelType:     strings.TrimSpace(values.Get("fuelType")),
		Keyword:      strings.TrimSpace(values.Get("keyword")),
		ViewMode:     enums.ParseViewMode(values.Get("view")),
	}

	f.YearFrom = lenientInt(values.Get("yearFrom"))
	f.YearTo = lenientInt(values.Get("yearTo"))
	f.MileageFrom = lenientInt(values.Get("mileageFrom"))
	f.MileageTo = lenientInt(values.Get("mileageTo"))

	if rangeStr := strings.TrimSpace(values.Get("priceRange")); rangeStr != "" {
		f.PriceMin, f.PriceMax = ParsePriceRange(rangeStr)
	}
	if f.PriceMin == nil {
		f.PriceMin = lenientDecimal(values.Get("minPrice"))
	}
	if f.PriceMax == nil {
		f.PriceMax = lenientDecimal(values.Get("maxPrice"))
	}

	return f
}

// ParsePriceRange decodes "<min>-<max>" or "<min>+" range strings. A
// malformed component drops the whole range.
func ParsePriceRange(s string) (min, max *decimal.Decimal) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if strings.HasSuffix(s, "+") {
		return lenientDecimal(strings.TrimSuffix(s, "+")), nil
	}

	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return nil, nil
	}
	min = lenientDecimal(parts[0])
	max = lenientDecimal(parts[1])
	if min == nil || max == nil {
		return nil, nil
	}
	return min, max
}

func lenientInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func lenientDecimal(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &v
}
