package pagination

import "math"

const (
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage keeps (Page-1)*Limit within int32 for any allowed limit.
	MaxPage = math.MaxInt32 / MaxLimit
)

// Params is a page request
type Params struct {
	Page  int `form:"page" json:"page"`
	Limit int `form:"limit" json:"limit"`
}

// Normalize applies defaults and bounds
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit <= 0 || p.Limit > MaxLimit {
		p.Limit = DefaultLimit
	}
	return p
}

// Offset returns the row offset of the page
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Pagination describes a returned page
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// New builds page metadata for total rows
func New(p Params, total int64) Pagination {
	p = p.Normalize()
	totalPages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
