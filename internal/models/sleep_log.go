package models

import "time"

type SleepLog struct {
	ID          uint      `gorm:"primaryKey" json:"id" bson:"_id"`
	OwnerID     uint      `gorm:"not null;index" json:"-" bson:"owner_id"`
	Date        string    `gorm:"size:40;not null;index" json:"date" bson:"date"`
	Duration    float64   `gorm:"not null" json:"duration" bson:"duration"`
	Quality     int       `gorm:"not null" json:"quality" bson:"quality"`
	Disruptions string    `json:"disruptions" bson:"disruptions"`
	Notes       string    `json:"notes" bson:"notes"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at" bson:"created_at"`
}

func (SleepLog) TableName() string { return KindSleep.Table() }

func (entry *SleepLog) Kind() Kind          { return KindSleep }
func (entry *SleepLog) RecordID() uint      { return entry.ID }
func (entry *SleepLog) SetRecordID(id uint) { entry.ID = id }
func (entry *SleepLog) RecordDate() string  { return entry.Date }

func (entry *SleepLog) RecordCreatedAt() time.Time { return entry.CreatedAt }

func (entry *SleepLog) Stamp(ownerID uint, createdAt time.Time) {
	entry.OwnerID = ownerID
	entry.CreatedAt = createdAt
}
