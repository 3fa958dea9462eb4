package services

import "gorm.io/gorm"

// Page is one fixed-size slice of a list, numbered from 1
type Page[T any] struct {
	Items  []T
	Number int
	Size   int
	Total  int64
}

// NumPages is at least 1 so an empty list still renders a page
func (p Page[T]) NumPages() int {
	if p.Size <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page[T]) HasPrevious() bool { return p.Number > 1 }

func (p Page[T]) HasNext() bool { return p.Number < p.NumPages() }

func (p Page[T]) PreviousNumber() int { return p.Number - 1 }

func (p Page[T]) NextNumber() int { return p.Number + 1 }

// paginate counts query, clamps number into range and loads the rows of that page
// sorted by order. Preloads apply to the row query only.
func paginate[T any](query *gorm.DB, order string, number, size int, preloads ...string) (Page[T], error) {
	page := Page[T]{Number: number, Size: size}
	if err := query.Session(&gorm.Session{}).Count(&page.Total).Error; err != nil {
		return page, err
	}
	if page.Number < 1 {
		page.Number = 1
	}
	if last := page.NumPages(); page.Number > last {
		page.Number = last
	}
	rows := query.Order(order).Offset((page.Number - 1) * size).Limit(size)
	for _, preload := range preloads {
		rows = rows.Preload(preload)
	}
	err := rows.Find(&page.Items).Error
	return page, err
}
