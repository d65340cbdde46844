package models

import "time"

const (
	PeriodEventStart = "start"
	PeriodEventEnd   = "end"
)

const (
	FlowLow      = "low"
	FlowModerate = "moderate"
	FlowHeavy    = "heavy"
)

type MenstrualLog struct {
	ID          uint      `gorm:"primaryKey" json:"id" bson:"_id"`
	OwnerID     uint      `gorm:"not null;index" json:"-" bson:"owner_id"`
	PeriodEvent string    `gorm:"not null" json:"period_event" bson:"period_event"`
	Date        string    `gorm:"size:40;not null;index" json:"date" bson:"date"`
	FlowLevel   *string   `json:"flow_level" bson:"flow_level"`
	Notes       string    `json:"notes" bson:"notes"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at" bson:"created_at"`
}

func (MenstrualLog) TableName() string { return KindMenstrual.Table() }

func (entry *MenstrualLog) Kind() Kind          { return KindMenstrual }
func (entry *MenstrualLog) RecordID() uint      { return entry.ID }
func (entry *MenstrualLog) SetRecordID(id uint) { entry.ID = id }
func (entry *MenstrualLog) RecordDate() string  { return entry.Date }

func (entry *MenstrualLog) RecordCreatedAt() time.Time { return entry.CreatedAt }

func (entry *MenstrualLog) Stamp(ownerID uint, createdAt time.Time) {
	entry.OwnerID = ownerID
	entry.CreatedAt = createdAt
}

func IsValidPeriodEvent(value string) bool {
	return value == PeriodEventStart || value == PeriodEventEnd
}

func IsValidFlowLevel(value string) bool {
	switch value {
	case FlowLow, FlowModerate, FlowHeavy:
		return true
	default:
		return false
	}
}
