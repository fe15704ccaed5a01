package store

import "gorm.io/gorm"

// Page is one page of results plus the total number of matching rows.
type Page[T any] struct {
	Items []T
	Total int64
}

// Paginate counts the rows matched by base, then loads one page of them.
// scopes (ordering, preloads) apply to the page query only.
func Paginate[T any](base *gorm.DB, page, limit int, scopes ...func(*gorm.DB) *gorm.DB) (Page[T], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Model(new(T)).Count(&total).Error; err != nil {
		return Page[T]{}, err
	}

	items := make([]T, 0, limit)
	offset := (page - 1) * limit
	if err := base.Session(&gorm.Session{}).Scopes(scopes...).Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: items, Total: total}, nil
}
