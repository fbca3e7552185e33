package badgerstore

import (
	"context"
	"testing"
	"time"

	"github.com/campusops/rostersync/pkg/entities"
	"github.com/campusops/rostersync/pkg/errors"
	"github.com/campusops/rostersync/pkg/store"
	"github.com/campusops/rostersync/pkg/transaction"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(Config{}); err == nil {
		t.Error("Open() without path must fail")
	}
}

func TestRecordRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	sched := &entities.Schedule{
		ID:         "s-1",
		CourseCode: "ANT 1301",
		Section:    "01",
		CRN:        "33038",
		Term:       "Fall 2025",
		Meetings: []entities.MeetingPattern{
			{Day: entities.Monday, StartMinute: 540, EndMinute: 590},
		},
	}
	if err := s.Put(ctx, entities.CollectionSchedules, sched.ID, sched); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, entities.CollectionSchedules, "s-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	loaded, ok := got.(*entities.Schedule)
	if !ok {
		t.Fatalf("Get() returned %T", got)
	}
	if loaded.CRN != "33038" || len(loaded.Meetings) != 1 || loaded.Meetings[0].StartMinute != 540 {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestGetNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), entities.CollectionPeople, "missing")
	if !errors.IsNotFound(err) {
		t.Errorf("Get() error = %v, want not found", err)
	}
}

func TestListIsCollectionScoped(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}
	must(s.Put(ctx, entities.CollectionPeople, "p-1", &entities.Person{ID: "p-1", FirstName: "Jane", LastName: "Smith"}))
	must(s.Put(ctx, entities.CollectionPeople, "p-2", &entities.Person{ID: "p-2", FirstName: "John", LastName: "Jones"}))
	must(s.Put(ctx, entities.CollectionRooms, "draper 201", &entities.Room{ID: "draper 201", SpaceKey: "draper 201", DisplayName: "Draper 201"}))

	people, err := s.List(ctx, entities.CollectionPeople)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(people) != 2 {
		t.Errorf("List(people) returned %d records, want 2", len(people))
	}
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	room := &entities.Room{ID: "draper 201", SpaceKey: "draper 201", DisplayName: "Draper 201"}
	if err := s.Put(ctx, entities.CollectionRooms, room.ID, room); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Delete(ctx, entities.CollectionRooms, room.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, entities.CollectionRooms, room.ID); !errors.IsNotFound(err) {
		t.Errorf("second Delete() error = %v, want not found", err)
	}
}

func TestTransactionSurvivesReload(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tx := transaction.New("Fall 2025", entities.ImportSchedules)
	tx.Preview.RowsProcessed = 12
	if err := s.SaveTransaction(ctx, tx); err != nil {
		t.Fatalf("SaveTransaction() error = %v", err)
	}

	loaded, err := s.Transaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("Transaction() error = %v", err)
	}
	if loaded.Preview.RowsProcessed != 12 || loaded.ImportType != entities.ImportSchedules {
		t.Errorf("loaded = %+v", loaded)
	}

	if err := s.MarkApplied(ctx, tx.ID, time.Now()); err != nil {
		t.Fatalf("MarkApplied() error = %v", err)
	}
	loaded, _ = s.Transaction(ctx, tx.ID)
	if !loaded.Applied || loaded.AppliedAt == nil {
		t.Error("applied flag did not persist")
	}
}

func TestTermLockIsCaseInsensitive(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.SetTermLock(ctx, store.TermLock{Term: "Fall 2025", Actor: "registrar", LockedAt: time.Now()})
	if err != nil {
		t.Fatalf("SetTermLock() error = %v", err)
	}

	lock, err := s.TermLock(ctx, "fall 2025")
	if err != nil {
		t.Fatalf("TermLock() error = %v", err)
	}
	if lock == nil || lock.Actor != "registrar" {
		t.Fatalf("lock = %+v", lock)
	}

	if err := s.ReleaseTermLock(ctx, "FALL 2025"); err != nil {
		t.Fatalf("ReleaseTermLock() error = %v", err)
	}
	if lock, _ := s.TermLock(ctx, "Fall 2025"); lock != nil {
		t.Error("lock survived release")
	}
}

func TestAuditsChronological(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	// Append out of order; reads must come back oldest first.
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		a := transaction.Audit{
			TransactionID: offset.String(),
			Term:          "Fall 2025",
			At:            base.Add(offset),
		}
		if err := s.AppendAudit(ctx, a); err != nil {
			t.Fatalf("AppendAudit() error = %v", err)
		}
	}

	audits, err := s.Audits(ctx, "Fall 2025")
	if err != nil {
		t.Fatalf("Audits() error = %v", err)
	}
	if len(audits) != 3 {
		t.Fatalf("got %d audits, want 3", len(audits))
	}
	for i := 1; i < len(audits); i++ {
		if audits[i].At.Before(audits[i-1].At) {
			t.Errorf("audits out of order at %d: %v after %v", i, audits[i].At, audits[i-1].At)
		}
	}
}
