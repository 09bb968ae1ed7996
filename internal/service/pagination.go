package service

import (
	"errors"

	"gorm.io/gorm"
)

// ErrPageOutOfRange is returned when a page number is below 1 or past the last page.
var ErrPageOutOfRange = errors.New("page out of range")

// Scope is a reusable gorm query fragment.
type Scope = func(*gorm.DB) *gorm.DB

// Page holds one page of results together with the pagination counters.
type Page[T any] struct {
	Items      []T
	Number     int
	PerPage    int
	Total      int64
	TotalPages int
}

// HasNext reports whether a following page exists.
func (p *Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// HasPrevious reports whether a preceding page exists.
func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }

// NextNumber is the number of the following page.
func (p *Page[T]) NextNumber() int { return p.Number + 1 }

// PreviousNumber is the number of the preceding page.
func (p *Page[T]) PreviousNumber() int { return p.Number - 1 }

// Paginate counts the rows matched by filter and loads page number of them.
// An empty result still has one (empty) page. present scopes (ordering,
// preloads) only apply to the data query.
func Paginate[T any](gdb *gorm.DB, filter Scope, number, perPage int, present ...Scope) (*Page[T], error) {
	if perPage <= 0 {
		perPage = 10
	}
	if filter == nil {
		filter = func(q *gorm.DB) *gorm.DB { return q }
	}

	var model T
	page := &Page[T]{Number: number, PerPage: perPage}
	if err := gdb.Model(&model).Scopes(filter).Count(&page.Total).Error; err != nil {
		return nil, err
	}

	page.TotalPages = calculateTotalPages(page.Total, perPage)
	if number < 1 || number > page.TotalPages {
		return nil, ErrPageOutOfRange
	}

	query := gdb.Model(&model).Scopes(filter).Scopes(present...)
	if err := query.Limit(perPage).Offset((number - 1) * perPage).Find(&page.Items).Error; err != nil {
		return nil, err
	}

	return page, nil
}

func calculateTotalPages(total int64, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
