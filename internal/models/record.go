package models

import "time"

// Record is implemented by pointers to every stored entity so backends can
// fill in the generated id.
type Record interface {
	Kind() Kind
	RecordID() uint
	SetRecordID(id uint)
	RecordDate() string
	RecordCreatedAt() time.Time
	Stamp(ownerID uint, createdAt time.Time)
}
