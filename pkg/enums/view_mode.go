package enums

// ViewMode selects how the browse page lays out results. It travels through
// the filter set untouched; unknown values fall back to grid.
type ViewMode string

const (
	ViewModeGrid ViewMode = "grid"
	ViewModeList ViewMode = "list"
)

// String implements fmt.Stringer.
func (v ViewMode) String() string {
	return string(v)
}

// ParseViewMode normalizes a raw string, defaulting to grid.
func ParseViewMode(value string) ViewMode {
	if ViewMode(value) == ViewModeList {
		return ViewModeList
	}
	return ViewModeGrid
}
