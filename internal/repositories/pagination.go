package repositories

import "gorm.io/gorm"

const (
	DefaultPerPage = 15
	MaxPerPage     = 100
)

type Page struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
}

// NewPage clamps the requested page to sane bounds.
func NewPage(page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Page{Page: page, PerPage: perPage}
}

func (p Page) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

func (p Page) Limit() int {
	if p.PerPage < 1 {
		return DefaultPerPage
	}
	return p.PerPage
}

func paginate(p Page) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.Limit())
	}
}

// Slice applies the page to an in-memory list.
func Slice[T any](items []T, p Page) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+p.Limit(), len(items))
	return items[start:end]
}
