// Package migrate applies the ordered, reversible schema history. Every
// revision names its predecessor; revisions apply strictly in chain order,
// one transaction each.
package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// Revision is one reversible schema delta. Parent is the revision that must
// already be applied, empty only for the base of the chain.
type Revision struct {
	ID     string
	Parent string
	Name   string
	Up     func(tx *gorm.DB) error
	Down   func(tx *gorm.DB) error
}

// Record is a row in the tracking table.
type Record struct {
	Revision  string    `gorm:"primaryKey;size:32"`
	Name      string    `gorm:"size:255;not null"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

func (Record) TableName() string { return "schema_migrations" }

type Migrator struct {
	db   *gorm.DB
	log  *slog.Logger
	revs []Revision
}

// New builds a migrator over the registered history.
func New(db *gorm.DB, log *slog.Logger) (*Migrator, error) {
	return NewWithRevisions(db, log, History())
}

// NewWithRevisions validates that the revisions form a single connected
// chain before anything touches the schema.
func NewWithRevisions(db *gorm.DB, log *slog.Logger, revs []Revision) (*Migrator, error) {
	if len(revs) == 0 {
		return nil, fmt.Errorf("migrate: empty revision chain")
	}
	if log == nil {
		log = slog.Default()
	}
	seen := make(map[string]bool, len(revs))
	for i, rev := range revs {
		if rev.ID == "" {
			return nil, fmt.Errorf("migrate: revision %d has no id", i)
		}
		if seen[rev.ID] {
			return nil, fmt.Errorf("migrate: duplicate revision %s", rev.ID)
		}
		seen[rev.ID] = true
		if i == 0 {
			if rev.Parent != "" {
				return nil, fmt.Errorf("migrate: base revision %s names parent %s", rev.ID, rev.Parent)
			}
			continue
		}
		if rev.Parent != revs[i-1].ID {
			return nil, fmt.Errorf("migrate: revision %s names parent %s, predecessor is %s",
				rev.ID, rev.Parent, revs[i-1].ID)
		}
	}
	return &Migrator{db: db, log: log, revs: revs}, nil
}

func (m *Migrator) ensureTable() error {
	return m.db.AutoMigrate(&Record{})
}

func (m *Migrator) appliedSet(ctx context.Context) (map[string]bool, error) {
	var records []Record
	if err := m.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}
	applied := make(map[string]bool, len(records))
	for _, rec := range records {
		applied[rec.Revision] = true
	}
	return applied, nil
}

// Applied returns the applied revisions in chain order. A recorded revision
// whose predecessor is missing means the history was tampered with and is a
// fatal error.
func (m *Migrator) Applied(ctx context.Context) ([]Record, error) {
	if err := m.ensureTable(); err != nil {
		return nil, err
	}
	var records []Record
	if err := m.db.WithContext(ctx).Find(&records).Error; err != nil {
		return nil, err
	}
	byID := make(map[string]Record, len(records))
	for _, rec := range records {
		byID[rec.Revision] = rec
	}
	var out []Record
	gap := false
	for _, rev := range m.revs {
		rec, ok := byID[rev.ID]
		if !ok {
			gap = true
			continue
		}
		if gap {
			return nil, fmt.Errorf("migrate: revision %s is applied but its predecessor %s is not", rev.ID, rev.Parent)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Up applies every unapplied revision in chain order, each inside its own
// transaction: either the delta and its record land together or neither does.
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.ensureTable(); err != nil {
		return err
	}
	applied, err := m.appliedSet(ctx)
	if err != nil {
		return err
	}
	pending := false
	for _, rev := range m.revs {
		if !applied[rev.ID] {
			pending = true
		} else if pending {
			return fmt.Errorf("migrate: revision %s is applied but its predecessor %s is not", rev.ID, rev.Parent)
		}
	}
	for _, rev := range m.revs {
		if applied[rev.ID] {
			continue
		}
		m.log.Info("applying revision", "revision", rev.ID, "name", rev.Name)
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := rev.Up(tx); err != nil {
				return fmt.Errorf("migrate: apply %s: %w", rev.ID, err)
			}
			return tx.Create(&Record{Revision: rev.ID, Name: rev.Name}).Error
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Down rolls back the last n applied revisions, newest first.
func (m *Migrator) Down(ctx context.Context, n int) error {
	records, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	byID := make(map[string]Revision, len(m.revs))
	for _, rev := range m.revs {
		byID[rev.ID] = rev
	}
	for i := len(records) - 1; i >= 0 && n > 0; i, n = i-1, n-1 {
		rev, ok := byID[records[i].Revision]
		if !ok {
			return fmt.Errorf("migrate: recorded revision %s is not in the registered history", records[i].Revision)
		}
		m.log.Info("rolling back revision", "revision", rev.ID, "name", rev.Name)
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := rev.Down(tx); err != nil {
				return fmt.Errorf("migrate: roll back %s: %w", rev.ID, err)
			}
			return tx.Delete(&Record{Revision: rev.ID}).Error
		})
		if err != nil {
			return err
		}
	}
	return nil
}
