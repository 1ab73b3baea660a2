package ledger

import (
	"context"
	"errors"

	"github.com/mroshb/quizbot/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const periodRowID = 1

// GormStore keeps the ledger in two tables: a single period row and one row
// per (room, user).
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Load(ctx context.Context) (*models.Ledger, error) {
	var period models.LedgerPeriod
	if err := s.db.WithContext(ctx).First(&period, periodRowID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var rows []models.LedgerScore
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	doc := models.NewLedger(period.Period)
	for _, row := range rows {
		g := doc.Group(row.RoomID)
		g.Points[row.UserID] = row.Points
		g.Names[row.UserID] = row.DisplayName
	}
	return doc, nil
}

func (s *GormStore) PutScore(ctx context.Context, _ string, entry models.ScoreEntry) error {
	row := models.LedgerScore{
		RoomID:      entry.RoomID,
		UserID:      entry.UserID,
		Points:      entry.Points,
		DisplayName: entry.DisplayName,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"points", "display_name", "updated_at"}),
	}).Create(&row).Error
}

func (s *GormStore) Reset(ctx context.Context, period string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.LedgerScore{}).Error; err != nil {
			return err
		}

		row := models.LedgerPeriod{ID: periodRowID, Period: period}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"period", "updated_at"}),
		}).Create(&row).Error
	})
}
