package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/user/cinerag/internal/model"
	"gorm.io/gorm"
)

// profileRowID 档案表只有一行
const profileRowID = 1

// movieRow 目录条目，position 保持入库顺序
type movieRow struct {
	Position    int `gorm:"primaryKey;autoIncrement:false"`
	Title       string
	Year        string
	Genre       string
	Rating      float64
	Description string
	PosterURL   string
	Embedding   pgvector.Vector `gorm:"type:vector"`
}

func (movieRow) TableName() string { return "cinerag_movies" }

// profileRow 偏好档案与快照版本
type profileRow struct {
	ID              int `gorm:"primaryKey;autoIncrement:false"`
	Version         string
	Liked           pq.StringArray `gorm:"type:text[]"`
	Disliked        pq.StringArray `gorm:"type:text[]"`
	PreferredGenres pq.StringArray `gorm:"type:text[]"`
	UpdatedAt       time.Time
}

func (profileRow) TableName() string { return "cinerag_profiles" }

// interactionRow 交互日志
type interactionRow struct {
	Position      int `gorm:"primaryKey;autoIncrement:false"`
	InteractionID string
	Title         string
	Action        string
	Timestamp     time.Time
}

func (interactionRow) TableName() string { return "cinerag_interactions" }

// PostgresStore 以 Postgres + pgvector 保存快照
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate 创建 vector 扩展与数据表
func (s *PostgresStore) Migrate() error {
	if err := s.db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}
	if err := s.db.AutoMigrate(&movieRow{}, &profileRow{}, &interactionRow{}); err != nil {
		return fmt.Errorf("migrate snapshot tables: %w", err)
	}
	return nil
}

// Load 没有档案行时返回 ErrNoSnapshot
func (s *PostgresStore) Load(ctx context.Context) (*model.Snapshot, error) {
	db := s.db.WithContext(ctx)

	var prof profileRow
	if err := db.First(&prof, profileRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	var movies []movieRow
	if err := db.Order("position").Find(&movies).Error; err != nil {
		return nil, fmt.Errorf("load movies: %w", err)
	}

	var interactions []interactionRow
	if err := db.Order("position").Find(&interactions).Error; err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}

	snap := &model.Snapshot{
		Version:    prof.Version,
		Catalog:    make([]model.Movie, 0, len(movies)),
		Embeddings: make([][]float32, 0, len(movies)),
		Profile: model.PreferenceProfile{
			Liked:           []string(prof.Liked),
			Disliked:        []string(prof.Disliked),
			PreferredGenres: []string(prof.PreferredGenres),
			History:         make([]model.Interaction, 0, len(interactions)),
		},
	}
	for _, m := range movies {
		snap.Catalog = append(snap.Catalog, model.Movie{
			Title:       m.Title,
			Year:        m.Year,
			Genre:       m.Genre,
			Rating:      m.Rating,
			Description: m.Description,
			PosterURL:   m.PosterURL,
		})
		snap.Embeddings = append(snap.Embeddings, m.Embedding.Slice())
	}
	for _, it := range interactions {
		snap.Profile.History = append(snap.Profile.History, model.Interaction{
			ID:        it.InteractionID,
			Title:     it.Title,
			Action:    model.FeedbackKind(it.Action),
			Timestamp: it.Timestamp,
		})
	}
	snap.Profile = snap.Profile.Clone()

	if err := checkSnapshot(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Save 在一个事务内整体覆盖
func (s *PostgresStore) Save(ctx context.Context, snap *model.Snapshot) error {
	if _, err := snap.Entries(); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	movies := make([]movieRow, len(snap.Catalog))
	for i, m := range snap.Catalog {
		movies[i] = movieRow{
			Position:    i,
			Title:       m.Title,
			Year:        m.Year,
			Genre:       m.Genre,
			Rating:      m.Rating,
			Description: m.Description,
			PosterURL:   m.PosterURL,
			Embedding:   pgvector.NewVector(snap.Embeddings[i]),
		}
	}

	interactions := make([]interactionRow, len(snap.Profile.History))
	for i, it := range snap.Profile.History {
		interactions[i] = interactionRow{
			Position:      i,
			InteractionID: it.ID,
			Title:         it.Title,
			Action:        string(it.Action),
			Timestamp:     it.Timestamp,
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&movieRow{}).Error; err != nil {
			return fmt.Errorf("clear movies: %w", err)
		}
		if err := tx.Where("1 = 1").Delete(&interactionRow{}).Error; err != nil {
			return fmt.Errorf("clear interactions: %w", err)
		}
		if len(movies) > 0 {
			if err := tx.CreateInBatches(movies, 100).Error; err != nil {
				return fmt.Errorf("insert movies: %w", err)
			}
		}
		if len(interactions) > 0 {
			if err := tx.CreateInBatches(interactions, 500).Error; err != nil {
				return fmt.Errorf("insert interactions: %w", err)
			}
		}

		prof := profileRow{
			ID:              profileRowID,
			Version:         snap.Version,
			Liked:           pq.StringArray(snap.Profile.Liked),
			Disliked:        pq.StringArray(snap.Profile.Disliked),
			PreferredGenres: pq.StringArray(snap.Profile.PreferredGenres),
			UpdatedAt:       time.Now(),
		}
		if err := tx.Save(&prof).Error; err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		return nil
	})
}
