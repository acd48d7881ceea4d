package repo

import (
	"CipherShare/model"
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"
)

func TestMemoryFileRepositoryCRUD(t *testing.T) {
	r := NewMemoryFileRepository()
	now := time.Now()

	file := &model.File{
		Handle:        "h1",
		FileName:      "a.txt",
		AvailableTill: now.Add(time.Hour),
		BucketID:      1,
	}
	if err := r.Create(context.Background(), file); err != nil {
		t.Fatal(err)
	}
	if file.ID == 0 {
		t.Fatal("id not assigned")
	}
	if err := r.Create(context.Background(), &model.File{Handle: "h1"}); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expect duplicate-key error, got %v", err)
	}

	got, err := r.GetByHandle(context.Background(), "h1")
	if err != nil {
		t.Fatal(err)
	}
	if got.FileName != "a.txt" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if _, err := r.GetByHandle(context.Background(), "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expect ErrRecordNotFound, got %v", err)
	}
}

func TestMemoryFileRepositoryExpiry(t *testing.T) {
	r := NewMemoryFileRepository()
	now := time.Now()

	past := &model.File{Handle: "past", AvailableTill: now.Add(-time.Hour)}
	future := &model.File{Handle: "future", AvailableTill: now.Add(time.Hour)}
	for _, f := range []*model.File{past, future} {
		if err := r.Create(context.Background(), f); err != nil {
			t.Fatal(err)
		}
	}

	expired, err := r.ListExpired(context.Background(), now)
	if err != nil {
		t.Fatal(err)
	}
	if len(expired) != 1 || expired[0].Handle != "past" {
		t.Fatalf("unexpected expired set: %+v", expired)
	}

	// Not expired anymore after an extension: delete must refuse.
	if err := r.UpdateAvailableTill(context.Background(), "past", now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	deleted, err := r.DeleteExpired(context.Background(), "past", now)
	if err != nil {
		t.Fatal(err)
	}
	if deleted {
		t.Fatal("extended record deleted")
	}

	if err := r.UpdateAvailableTill(context.Background(), "past", now.Add(-time.Minute)); err != nil {
		t.Fatal(err)
	}
	deleted, err = r.DeleteExpired(context.Background(), "past", now)
	if err != nil {
		t.Fatal(err)
	}
	if !deleted {
		t.Fatal("expired record not deleted")
	}
	if _, err := r.GetByHandle(context.Background(), "past"); err == nil {
		t.Fatal("record still present after delete")
	}
}

func TestMemoryBucketRepository(t *testing.T) {
	r := NewMemoryBucketRepository()
	if _, err := r.First(context.Background()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expect ErrRecordNotFound on empty table, got %v", err)
	}

	r.Add(model.Bucket{ID: 2, BucketName: "b"})
	r.Add(model.Bucket{ID: 1, BucketName: "a"})

	first, err := r.First(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != 1 {
		t.Fatalf("expect lowest id as active, got %d", first.ID)
	}

	byID, err := r.GetByID(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if byID.BucketName != "b" {
		t.Fatalf("unexpected bucket: %+v", byID)
	}
	if _, err := r.GetByID(context.Background(), 99); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expect ErrRecordNotFound, got %v", err)
	}
}
