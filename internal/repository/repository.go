// Package repository holds tenant-scoped data access on top of gorm.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a row does not exist or is outside the
// caller's scope. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("record not found")

type txKey struct{}

// WithTx stores tx in ctx so repositories called with that context join it.
func WithTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// DB returns the transaction carried by ctx, or db bound to ctx.
func DB(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

// Transaction runs fn inside a transaction; ctx passed to fn carries it.
func Transaction(ctx context.Context, db *gorm.DB, fn func(ctx context.Context, tx *gorm.DB) error) error {
	return DB(ctx, db).Transaction(func(tx *gorm.DB) error {
		return fn(WithTx(ctx, tx), tx)
	})
}

// Scope narrows a query to the rows the caller may see.
type Scope func(db *gorm.DB) *gorm.DB

// Scoped is the generic store behind every tenant-scoped record type.
// Each query goes through the scope before any caller filter.
type Scoped[T any] struct {
	db *gorm.DB
}

func NewScoped[T any](db *gorm.DB) *Scoped[T] {
	return &Scoped[T]{db: db}
}

// Query starts a scoped query for T.
func (r *Scoped[T]) Query(ctx context.Context, scope Scope) *gorm.DB {
	var zero T
	return scope(DB(ctx, r.db).Model(&zero))
}

// Get loads one row by id inside scope.
func (r *Scoped[T]) Get(ctx context.Context, scope Scope, id uint, preload ...string) (*T, error) {
	var out T
	q := r.Query(ctx, scope)
	for _, p := range preload {
		q = q.Preload(p)
	}
	if err := q.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}, Value: id}).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

// List loads every row in scope after applying filters in order.
func (r *Scoped[T]) List(ctx context.Context, scope Scope, filters ...Scope) ([]T, error) {
	q := r.Query(ctx, scope)
	for _, f := range filters {
		q = f(q)
	}
	out := make([]T, 0)
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Scoped[T]) Create(ctx context.Context, row *T) error {
	return DB(ctx, r.db).Omit(clause.Associations).Create(row).Error
}

// Save writes every column of row; associations are left untouched.
func (r *Scoped[T]) Save(ctx context.Context, row *T) error {
	return DB(ctx, r.db).Omit(clause.Associations).Save(row).Error
}

// Delete removes row; dependent rows go with it through the foreign key cascades.
func (r *Scoped[T]) Delete(ctx context.Context, row *T) error {
	return DB(ctx, r.db).Delete(row).Error
}

// Exists reports whether a row matching query exists inside scope.
func (r *Scoped[T]) Exists(ctx context.Context, scope Scope, query string, args ...interface{}) (bool, error) {
	var n int64
	if err := r.Query(ctx, scope).Where(query, args...).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// OrderBy returns a filter applying the given order clause.
func OrderBy(order string) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Order(order) }
}

// Where returns a filter applying a condition.
func Where(query string, args ...interface{}) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}

// Preload returns a filter preloading an association.
func Preload(name string, args ...interface{}) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Preload(name, args...) }
}
