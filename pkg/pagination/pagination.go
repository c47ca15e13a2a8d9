package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page  int
	Limit int
}

// Page describes the slice of results a response carries.
type Page struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizePage clamps the page number to 1-based indexing.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// Offset converts normalized page inputs into a query offset.
func (p Params) Offset() int {
	return (NormalizePage(p.Page) - 1) * NormalizeLimit(p.Limit)
}

// Build assembles the page metadata for a result set.
func Build(params Params, total int64) Page {
	limit := NormalizeLimit(params.Limit)
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Page{
		Page:       NormalizePage(params.Page),
		Limit:      limit,
		Total:      total,
		TotalPages: pages,
	}
}
