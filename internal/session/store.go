package session

import (
	"context"
	"errors"
	"time"

	"github.com/eleven-am/pathsense/internal/shared"
	"gorm.io/gorm"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Record{})
}

func (s *Store) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = shared.NewID("strm_")
	}
	rec.Status = StatusActive
	rec.StartedAt = time.Now()
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	return &rec, err
}

func (s *Store) Finish(ctx context.Context, rec *Record, status Status) error {
	now := time.Now()
	rec.Status = status
	rec.EndedAt = &now
	return s.db.WithContext(ctx).Save(rec).Error
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var recs []*Record
	err := s.db.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}
