package models

import "time"

type SymptomsLog struct {
	ID        uint      `gorm:"primaryKey" json:"id" bson:"_id"`
	OwnerID   uint      `gorm:"not null;index" json:"-" bson:"owner_id"`
	Date      string    `gorm:"size:40;not null;index" json:"date" bson:"date"`
	Nausea    int       `gorm:"not null" json:"nausea" bson:"nausea"`
	Fatigue   int       `gorm:"not null" json:"fatigue" bson:"fatigue"`
	Pain      int       `gorm:"not null" json:"pain" bson:"pain"`
	Notes     string    `json:"notes" bson:"notes"`
	CreatedAt time.Time `gorm:"not null" json:"created_at" bson:"created_at"`
}

func (SymptomsLog) TableName() string { return KindSymptoms.Table() }

func (entry *SymptomsLog) Kind() Kind          { return KindSymptoms }
func (entry *SymptomsLog) RecordID() uint      { return entry.ID }
func (entry *SymptomsLog) SetRecordID(id uint) { entry.ID = id }
func (entry *SymptomsLog) RecordDate() string  { return entry.Date }

func (entry *SymptomsLog) RecordCreatedAt() time.Time { return entry.CreatedAt }

func (entry *SymptomsLog) Stamp(ownerID uint, createdAt time.Time) {
	entry.OwnerID = ownerID
	entry.CreatedAt = createdAt
}
