// Package store persists session summaries awaiting operator review.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sqliteDriver "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"

	orchestration "github.com/hanagata/kioskd/core"
)

var ErrNotFound = errors.New("summary not found")

// PendingSummary is one summarized session waiting for an operator to
// review and dismiss it.
type PendingSummary struct {
	SummaryID string    `json:"summary_id"`
	Summary   string    `json:"summary"`
	Topics    []string  `json:"topics"`
	CreatedAt time.Time `json:"created_at"`
}

type summaryRow struct {
	SummaryID  string `gorm:"primaryKey;column:summary_id"`
	Summary    string
	TopicsJSON string `gorm:"column:topics_json"`
	CreatedAt  time.Time
}

func (summaryRow) TableName() string { return "pending_summaries" }

func (r summaryRow) toRecord() (PendingSummary, error) {
	var record PendingSummary
	if err := copier.Copy(&record, &r); err != nil {
		return PendingSummary{}, fmt.Errorf("copy summary row: %w", err)
	}
	if r.TopicsJSON != "" {
		if err := json.Unmarshal([]byte(r.TopicsJSON), &record.Topics); err != nil {
			return PendingSummary{}, fmt.Errorf("unmarshal summary topics: %w", err)
		}
	}
	return record, nil
}

func rowFromRecord(record PendingSummary) (summaryRow, error) {
	var row summaryRow
	if err := copier.Copy(&row, &record); err != nil {
		return summaryRow{}, fmt.Errorf("copy summary record: %w", err)
	}
	topics, err := json.Marshal(record.Topics)
	if err != nil {
		return summaryRow{}, fmt.Errorf("marshal summary topics: %w", err)
	}
	row.TopicsJSON = string(topics)
	return row, nil
}

type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the sqlite database at dsn and migrates the
// schema. Use ":memory:" for an ephemeral store.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = "kioskd.db"
	}
	gormDB, err := gorm.Open(sqliteDriver.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open summary store: %w", err)
	}

	s := &Store{db: gormDB}
	if err := s.db.AutoMigrate(&summaryRow{}); err != nil {
		return nil, fmt.Errorf("migrate summary store: %w", err)
	}
	return s, nil
}

// WritePendingSummary records one summarized session.
func (s *Store) WritePendingSummary(ctx context.Context, summary orchestration.SessionSummary) error {
	row, err := rowFromRecord(PendingSummary{
		SummaryID: uuid.NewString(),
		Summary:   summary.Summary,
		Topics:    summary.Topics,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("create pending summary: %w", err)
	}
	return nil
}

// ListPendingSummaries returns summaries newest first.
func (s *Store) ListPendingSummaries(ctx context.Context) ([]PendingSummary, error) {
	var rows []summaryRow
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list pending summaries: %w", err)
	}

	records := make([]PendingSummary, 0, len(rows))
	for _, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// DismissSummary removes a reviewed summary.
func (s *Store) DismissSummary(ctx context.Context, summaryID string) error {
	result := s.db.WithContext(ctx).Delete(&summaryRow{SummaryID: summaryID})
	if result.Error != nil {
		return fmt.Errorf("dismiss summary: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
