package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/terraincognita07/endocare/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockStore(mt *mtest.T) *Store {
	return &Store{client: mt.Client, database: mt.DB, timeout: time.Second}
}

func TestStoreInsertAssignsCounterID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("counter id", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: "diet_logs"}, {Key: "seq", Value: int64(4)}}}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)

		entry := &models.DietLog{Meal: "breakfast", Date: "2025-08-02", Items: models.ItemList{"oats", "tea"}}
		entry.Stamp(2, time.Date(2025, 8, 2, 8, 0, 0, 0, time.UTC))
		if err := store.Insert(context.Background(), entry); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if entry.ID != 4 {
			t.Fatalf("expected id 4 from counter, got %d", entry.ID)
		}

		counter := mt.GetStartedEvent()
		if counter == nil || counter.CommandName != "findAndModify" {
			t.Fatalf("expected findAndModify on counters first, got %+v", counter)
		}
		insert := mt.GetStartedEvent()
		if insert == nil || insert.CommandName != "insert" {
			t.Fatalf("expected insert second, got %+v", insert)
		}
		if collection := insert.Command.Lookup("insert").StringValue(); collection != "diet_logs" {
			t.Fatalf("expected insert into diet_logs, got %s", collection)
		}
		document := insert.Command.Lookup("documents").Array().Index(0).Value().Document()
		if items := document.Lookup("items").StringValue(); items != "oats,tea" {
			t.Fatalf("expected scalar items, got %q", items)
		}
		if owner := document.Lookup("owner_id").AsInt64(); owner != 2 {
			t.Fatalf("expected owner 2, got %d", owner)
		}
	})

	mt.Run("failed insert clears id", func(mt *mtest.T) {
		store := newMockStore(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: "sleep_logs"}, {Key: "seq", Value: int64(9)}}}),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}),
		)

		entry := &models.SleepLog{Date: "2025-08-02", Duration: 7, Quality: 6}
		if err := store.Insert(context.Background(), entry); err == nil {
			t.Fatal("expected insert error")
		}
		if entry.ID != 0 {
			t.Fatalf("expected id reset after failed insert, got %d", entry.ID)
		}
	})
}

func TestStoreListDecodesOwnerRecords(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list", func(mt *mtest.T) {
		store := newMockStore(mt)
		namespace := mt.DB.Name() + ".diet_logs"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, namespace, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: int64(7)}, {Key: "owner_id", Value: int64(3)}, {Key: "meal", Value: "dinner"}, {Key: "date", Value: "2025-08-05"}, {Key: "items", Value: "rice,beans"}, {Key: "notes", Value: ""}},
			bson.D{{Key: "_id", Value: int64(2)}, {Key: "owner_id", Value: int64(3)}, {Key: "meal", Value: "lunch"}, {Key: "date", Value: "2025-08-01"}, {Key: "items", Value: ""}, {Key: "notes", Value: "light"}},
		))

		records, err := store.List(context.Background(), models.KindDiet, 3)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		first := records[0].(*models.DietLog)
		if first.ID != 7 || first.OwnerID != 3 || first.Date != "2025-08-05" || len(first.Items) != 2 || first.Items[1] != "beans" {
			t.Fatalf("unexpected first record: %+v", first)
		}
		if second := records[1].(*models.DietLog); second.ID != 2 || len(second.Items) != 0 || second.Notes != "light" {
			t.Fatalf("unexpected second record: %+v", second)
		}

		find := mt.GetStartedEvent()
		if find == nil || find.CommandName != "find" {
			t.Fatalf("expected find command, got %+v", find)
		}
		if owner := find.Command.Lookup("filter", "owner_id").AsInt64(); owner != 3 {
			t.Fatalf("expected owner filter 3, got %d", owner)
		}
		sort := find.Command.Lookup("sort").Document()
		keys, err := sort.Elements()
		if err != nil || len(keys) != 2 || keys[0].Key() != "date" || keys[1].Key() != "_id" {
			t.Fatalf("expected sort on date then _id, got %s", sort)
		}
	})

	mt.Run("unknown kind", func(mt *mtest.T) {
		if _, err := newMockStore(mt).List(context.Background(), models.Kind("workouts"), 1); err == nil {
			t.Fatal("expected unknown kind error")
		}
	})
}

func TestStoreLatestCreatedAt(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("newest document", func(mt *mtest.T) {
		stamp := time.Date(2025, 8, 2, 9, 30, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".predictions", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: int64(5)}, {Key: "created_at", Value: stamp}},
		))

		latest, err := newMockStore(mt).LatestCreatedAt(context.Background(), models.KindPrediction)
		if err != nil {
			t.Fatalf("latest: %v", err)
		}
		if !latest.Equal(stamp) {
			t.Fatalf("expected %s, got %s", stamp, latest)
		}
	})

	mt.Run("empty collection", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".predictions", mtest.FirstBatch))

		latest, err := newMockStore(mt).LatestCreatedAt(context.Background(), models.KindPrediction)
		if err != nil {
			t.Fatalf("latest: %v", err)
		}
		if !latest.IsZero() {
			t.Fatalf("expected zero time, got %s", latest)
		}
	})
}
