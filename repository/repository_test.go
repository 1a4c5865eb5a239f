package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sciencejournal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func createPaper(t *testing.T, db *gorm.DB, title string) *models.Paper {
	t.Helper()
	p := &models.Paper{Title: title, Abstract: "abstract", AuthorFirst: "ana@example.org", SubmittedBy: uuid.New()}
	if err := NewPaperRepository(db).Create(context.Background(), p); err != nil {
		t.Fatalf("create paper: %v", err)
	}
	return p
}

func TestKeywordRepositoryNilEntities(t *testing.T) {
	repo := NewKeywordRepository(newTestDB(t))
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"add", func() error { return repo.Add(ctx, nil) }},
		{"update", func() error { return repo.Update(ctx, nil) }},
		{"delete", func() error { return repo.Delete(ctx, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestFindKeywordsByPaperInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	repo := NewKeywordRepository(db)
	ctx := context.Background()
	paper := createPaper(t, db, "A")
	other := createPaper(t, db, "B")

	for _, kw := range []string{"ml", "nlp"} {
		if err := repo.Add(ctx, &models.PapersKeywords{PaperID: paper.ID, Keyword: kw}); err != nil {
			t.Fatal(err)
		}
	}
	if err := repo.Add(ctx, &models.PapersKeywords{PaperID: other.ID, Keyword: "graphs"}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.FindKeywordsByPaper(ctx, paper.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "ml" || got[1] != "nlp" {
		t.Fatalf("keywords = %v, want [ml nlp]", got)
	}

	none, err := repo.FindKeywordsByPaper(ctx, uuid.New())
	if err != nil {
		t.Fatal(err)
	}
	if none == nil || len(none) != 0 {
		t.Fatalf("unknown paper keywords = %#v, want empty slice", none)
	}
}

func TestKeywordDuplicatesAllowed(t *testing.T) {
	db := newTestDB(t)
	repo := NewKeywordRepository(db)
	ctx := context.Background()
	paper := createPaper(t, db, "A")

	if err := repo.AddAll(ctx, paper.ID, []string{"ml", "ml"}); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.FindKeywordsByPaper(ctx, paper.ID)
	if len(got) != 2 {
		t.Fatalf("keywords = %v, want two entries", got)
	}
}

func TestDeleteAllKeywordsForPaper(t *testing.T) {
	db := newTestDB(t)
	repo := NewKeywordRepository(db)
	ctx := context.Background()
	paper := createPaper(t, db, "A")
	other := createPaper(t, db, "B")

	_ = repo.AddAll(ctx, paper.ID, []string{"ml", "nlp", "ir"})
	_ = repo.AddAll(ctx, other.ID, []string{"db"})

	if err := repo.DeleteAllKeywordsForPaper(ctx, paper.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.FindKeywordsByPaper(ctx, paper.ID)
	if len(got) != 0 {
		t.Fatalf("keywords after delete = %v", got)
	}
	kept, _ := repo.FindKeywordsByPaper(ctx, other.ID)
	if len(kept) != 1 {
		t.Fatalf("other paper keywords = %v, want [db]", kept)
	}

	// nichts mehr zu löschen
	if err := repo.DeleteAllKeywordsForPaper(ctx, paper.ID); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestKeywordUpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewKeywordRepository(db)
	ctx := context.Background()
	paper := createPaper(t, db, "A")

	kw := &models.PapersKeywords{PaperID: paper.ID, Keyword: "ml"}
	if err := repo.Add(ctx, kw); err != nil {
		t.Fatal(err)
	}
	kw.Keyword = "machine learning"
	if err := repo.Update(ctx, kw); err != nil {
		t.Fatal(err)
	}
	got, _ := repo.FindKeywordsByPaper(ctx, paper.ID)
	if len(got) != 1 || got[0] != "machine learning" {
		t.Fatalf("after update = %v", got)
	}
	if err := repo.Delete(ctx, kw); err != nil {
		t.Fatal(err)
	}
	got, _ = repo.FindKeywordsByPaper(ctx, paper.ID)
	if len(got) != 0 {
		t.Fatalf("after delete = %v", got)
	}
}

func TestKeywordTransactionRollback(t *testing.T) {
	db := newTestDB(t)
	repo := NewKeywordRepository(db)
	ctx := context.Background()
	paper := createPaper(t, db, "A")
	_ = repo.AddAll(ctx, paper.ID, []string{"ml"})

	boom := errors.New("boom")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := repo.WithTx(tx).DeleteAllKeywordsForPaper(ctx, paper.ID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	got, _ := repo.FindKeywordsByPaper(ctx, paper.ID)
	if len(got) != 1 {
		t.Fatalf("rollback lost keywords: %v", got)
	}
}
