package models

import "time"

// Prediction is the audit record written after a flare score.
type Prediction struct {
	ID          uint      `gorm:"primaryKey" json:"id" bson:"_id"`
	OwnerID     uint      `gorm:"not null;index" json:"-" bson:"owner_id"`
	Date        string    `gorm:"size:40;not null;index" json:"date" bson:"date"`
	CycleDay    int       `gorm:"not null" json:"cycle_day" bson:"cycle_day"`
	Probability float64   `gorm:"not null" json:"probability" bson:"probability"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at" bson:"created_at"`
}

func (Prediction) TableName() string { return KindPrediction.Table() }

func (entry *Prediction) Kind() Kind          { return KindPrediction }
func (entry *Prediction) RecordID() uint      { return entry.ID }
func (entry *Prediction) SetRecordID(id uint) { entry.ID = id }
func (entry *Prediction) RecordDate() string  { return entry.Date }

func (entry *Prediction) RecordCreatedAt() time.Time { return entry.CreatedAt }

func (entry *Prediction) Stamp(ownerID uint, createdAt time.Time) {
	entry.OwnerID = ownerID
	entry.CreatedAt = createdAt
}
