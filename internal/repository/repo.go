// Package repository is the query facade over the relational store. Each
// method is one round trip: reads are side-effect free, writes commit
// immediately, upserts combine the mutation and the read-back into a single
// statement so a concurrent writer can never slip between them.
package repository

import (
	"gorm.io/gorm"
)

type Repo struct {
	DB *gorm.DB
}

// New wraps an explicitly scoped DB handle. The handle is not safe for
// concurrent use by multiple callers of the same session; that constraint
// belongs to the driver, not to this facade.
func New(db *gorm.DB) *Repo {
	return &Repo{DB: db}
}
