package database

import (
	"context"
	"errors"
	"testing"

	"github.com/pagekeep/doclink/domain/storage"
)

// folder is a minimal domain type for exercising the generic Repository.
type folder struct {
	ID     int64
	Name   string
	Parent *int64
}

type folderModel struct {
	ID     int64  `gorm:"primaryKey;autoIncrement"`
	Name   string `gorm:"column:name"`
	Parent *int64 `gorm:"column:parent"`
}

func (folderModel) TableName() string { return "folders" }

type folderMapper struct{}

func (folderMapper) ToDomain(e folderModel) folder {
	return folder{ID: e.ID, Name: e.Name, Parent: e.Parent}
}

func (folderMapper) ToModel(d folder) folderModel {
	return folderModel{ID: d.ID, Name: d.Name, Parent: d.Parent}
}

func newFolderRepo(t *testing.T) Repository[folder, folderModel] {
	t.Helper()
	db := newSQLiteDB(t)
	if err := db.GORM().AutoMigrate(&folderModel{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := NewRepository[folder, folderModel](db, folderMapper{}, "folder")

	ctx := context.Background()
	parent := int64(1)
	seed := []folderModel{
		{Name: "inbox"},
		{Name: "archive"},
		{Name: "archive/2024", Parent: &parent},
	}
	for i := range seed {
		if err := db.Session(ctx).Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return repo
}

func TestRepository_Find(t *testing.T) {
	repo := newFolderRepo(t)
	ctx := context.Background()

	all, err := repo.Find(ctx)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Find returned %d folders, want 3", len(all))
	}

	named, err := repo.Find(ctx, storage.WithCondition("name", "inbox"))
	if err != nil {
		t.Fatalf("Find by name: %v", err)
	}
	if len(named) != 1 || named[0].Name != "inbox" {
		t.Errorf("Find by name = %+v", named)
	}
}

func TestRepository_Find_InAndNull(t *testing.T) {
	repo := newFolderRepo(t)
	ctx := context.Background()

	subset, err := repo.Find(ctx, storage.WithConditionIn("name", []string{"inbox", "archive"}))
	if err != nil {
		t.Fatalf("Find IN: %v", err)
	}
	if len(subset) != 2 {
		t.Errorf("Find IN returned %d, want 2", len(subset))
	}

	roots, err := repo.Find(ctx, storage.WithConditionNull("parent", true))
	if err != nil {
		t.Fatalf("Find IS NULL: %v", err)
	}
	if len(roots) != 2 {
		t.Errorf("Find IS NULL returned %d, want 2", len(roots))
	}

	children, err := repo.Find(ctx, storage.WithConditionNull("parent", false))
	if err != nil {
		t.Fatalf("Find IS NOT NULL: %v", err)
	}
	if len(children) != 1 {
		t.Errorf("Find IS NOT NULL returned %d, want 1", len(children))
	}
}

func TestRepository_Find_OrderAndPagination(t *testing.T) {
	repo := newFolderRepo(t)
	ctx := context.Background()

	opts := []storage.Option{storage.WithOrderAsc("name")}
	opts = append(opts, storage.WithPagination(2, 0)...)

	page, err := repo.Find(ctx, opts...)
	if err != nil {
		t.Fatalf("Find page: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("page size = %d, want 2", len(page))
	}
	if page[0].Name != "archive" || page[1].Name != "archive/2024" {
		t.Errorf("page order = %q, %q", page[0].Name, page[1].Name)
	}
}

func TestRepository_FindOne_NotFound(t *testing.T) {
	repo := newFolderRepo(t)

	_, err := repo.FindOne(context.Background(), storage.WithID(999))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepository_ExistsCountDelete(t *testing.T) {
	repo := newFolderRepo(t)
	ctx := context.Background()

	ok, err := repo.Exists(ctx, storage.WithCondition("name", "inbox"))
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}

	count, err := repo.Count(ctx)
	if err != nil || count != 3 {
		t.Fatalf("Count = %d, %v", count, err)
	}

	if err := repo.DeleteBy(ctx, storage.WithCondition("name", "inbox")); err != nil {
		t.Fatalf("DeleteBy: %v", err)
	}

	count, err = repo.Count(ctx)
	if err != nil || count != 2 {
		t.Fatalf("Count after delete = %d, %v", count, err)
	}
}
