package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// ItemSeparator joins diet items into one stored scalar. Items that contain
// the separator do not survive a round trip.
const ItemSeparator = ","

// ItemList is an ordered list of food names stored as a single
// separator-joined string in every backend.
type ItemList []string

func EncodeItems(items []string) string {
	return strings.Join(items, ItemSeparator)
}

func DecodeItems(stored string) ItemList {
	if stored == "" {
		return ItemList{}
	}
	return ItemList(strings.Split(stored, ItemSeparator))
}

func (items ItemList) Value() (driver.Value, error) {
	return EncodeItems(items), nil
}

func (items *ItemList) Scan(value any) error {
	switch typed := value.(type) {
	case nil:
		*items = ItemList{}
	case string:
		*items = DecodeItems(typed)
	case []byte:
		*items = DecodeItems(string(typed))
	default:
		return fmt.Errorf("scan item list: unsupported type %T", value)
	}
	return nil
}

func (items ItemList) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(EncodeItems(items))
}

func (items *ItemList) UnmarshalBSONValue(valueType bsontype.Type, data []byte) error {
	if valueType == bsontype.Null || valueType == bsontype.Undefined {
		*items = ItemList{}
		return nil
	}
	stored, ok := bson.RawValue{Type: valueType, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("decode item list: unexpected bson type %s", valueType)
	}
	*items = DecodeItems(stored)
	return nil
}

func (items ItemList) MarshalJSON() ([]byte, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(items))
}
