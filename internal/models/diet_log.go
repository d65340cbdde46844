package models

import "time"

type DietLog struct {
	ID        uint      `gorm:"primaryKey" json:"id" bson:"_id"`
	OwnerID   uint      `gorm:"not null;index" json:"-" bson:"owner_id"`
	Meal      string    `gorm:"not null" json:"meal" bson:"meal"`
	Date      string    `gorm:"size:40;not null;index" json:"date" bson:"date"`
	Items     ItemList  `gorm:"type:text;not null" json:"items" bson:"items"`
	Notes     string    `json:"notes" bson:"notes"`
	CreatedAt time.Time `gorm:"not null" json:"created_at" bson:"created_at"`
}

func (DietLog) TableName() string { return KindDiet.Table() }

func (entry *DietLog) Kind() Kind          { return KindDiet }
func (entry *DietLog) RecordID() uint      { return entry.ID }
func (entry *DietLog) SetRecordID(id uint) { entry.ID = id }
func (entry *DietLog) RecordDate() string  { return entry.Date }

func (entry *DietLog) RecordCreatedAt() time.Time { return entry.CreatedAt }

func (entry *DietLog) Stamp(ownerID uint, createdAt time.Time) {
	entry.OwnerID = ownerID
	entry.CreatedAt = createdAt
}
