package db

import (
	"context"
	"fmt"
	"time"

	"github.com/terraincognita07/endocare/internal/models"
	"gorm.io/gorm"
)

// RecordRepository persists every record kind through gorm. The same type
// serves SQLite and MySQL; only the opener differs.
type RecordRepository struct {
	name     string
	database *gorm.DB
}

func NewRecordRepository(name string, database *gorm.DB) *RecordRepository {
	return &RecordRepository{name: name, database: database}
}

func (repo *RecordRepository) Name() string {
	return repo.name
}

func (repo *RecordRepository) Insert(ctx context.Context, record models.Record) error {
	if record == nil {
		return fmt.Errorf("insert: nil record")
	}
	return repo.database.WithContext(ctx).Create(record).Error
}

func (repo *RecordRepository) List(ctx context.Context, kind models.Kind, ownerID uint) ([]models.Record, error) {
	database := repo.database.WithContext(ctx)
	switch kind {
	case models.KindSleep:
		return listKind[models.SleepLog](database, ownerID)
	case models.KindDiet:
		return listKind[models.DietLog](database, ownerID)
	case models.KindMenstrual:
		return listKind[models.MenstrualLog](database, ownerID)
	case models.KindSymptoms:
		return listKind[models.SymptomsLog](database, ownerID)
	case models.KindPrediction:
		return listKind[models.Prediction](database, ownerID)
	default:
		return nil, fmt.Errorf("list: unknown record kind %q", kind)
	}
}

// LatestCreatedAt returns the newest created_at stored for kind across all
// owners, or the zero time for an empty table.
func (repo *RecordRepository) LatestCreatedAt(ctx context.Context, kind models.Kind) (time.Time, error) {
	model := kind.New()
	if model == nil {
		return time.Time{}, fmt.Errorf("latest created_at: unknown record kind %q", kind)
	}

	var stamps []time.Time
	if err := repo.database.WithContext(ctx).
		Model(model).
		Order("created_at DESC").
		Limit(1).
		Pluck("created_at", &stamps).Error; err != nil {
		return time.Time{}, err
	}
	if len(stamps) == 0 {
		return time.Time{}, nil
	}
	return stamps[0], nil
}

func (repo *RecordRepository) Ping(ctx context.Context) error {
	sqlDB, err := repo.database.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (repo *RecordRepository) Close() error {
	return closeDatabase(repo.database)
}

func listKind[T any, P interface {
	*T
	models.Record
}](database *gorm.DB, ownerID uint) ([]models.Record, error) {
	rows := make([]T, 0)
	if err := database.
		Where("owner_id = ?", ownerID).
		Order("date DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(rows))
	for index := range rows {
		records = append(records, P(&rows[index]))
	}
	return records, nil
}
