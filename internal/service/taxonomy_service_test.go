package service

import (
	"errors"
	"testing"
	"time"

	"github.com/bitacora/internal/db"
)

func TestCategoryServiceCreateUpdateDelete(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewCategoryService(gdb)
	category, err := svc.Create(CategoryInput{Name: "  Ciencia Ficción "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if category.Name != "Ciencia Ficción" || category.Slug != "ciencia-ficcion" || !category.Active {
		t.Fatalf("unexpected category %+v", category)
	}

	if _, err := svc.Create(CategoryInput{Name: "ciencia ficcion"}); err == nil {
		t.Fatalf("equivalent slug should be rejected")
	}

	inactive := false
	updated, err := svc.Update(category.ID, CategoryInput{Name: "Fantasía", Active: &inactive})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Slug != "fantasia" || updated.Active {
		t.Fatalf("unexpected update %+v", updated)
	}

	active, err := svc.ListActive()
	if err != nil || len(active) != 0 {
		t.Fatalf("inactive category should not be listed: %v %v", active, err)
	}

	article := seedArticle(t, gdb, "Dune", true, time.Now(), func(a *db.Article) { a.CategoryID = &category.ID })
	if err := svc.Delete(category.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var reloaded db.Article
	if err := gdb.First(&reloaded, article.ID).Error; err != nil {
		t.Fatalf("article should survive category deletion: %v", err)
	}
	if reloaded.CategoryID != nil {
		t.Fatalf("article category should be cleared")
	}
	if _, err := svc.Get(category.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
}

func TestTagServiceDeleteDetachesArticles(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewTagService(gdb)
	tag, err := svc.Create(TagInput{Name: "concurrencia"})
	if err != nil {
		t.Fatalf("create tag: %v", err)
	}
	if _, err := svc.Create(TagInput{Name: "concurrencia"}); err == nil {
		t.Fatalf("duplicate tag should be rejected")
	}

	article := seedArticle(t, gdb, "Goroutines", true, time.Now())
	if err := gdb.Model(article).Association("Tags").Append(tag); err != nil {
		t.Fatalf("tag article: %v", err)
	}

	if err := svc.Delete(tag.ID); err != nil {
		t.Fatalf("delete tag: %v", err)
	}

	var links int64
	gdb.Table("article_tags").Where("tag_id = ?", tag.ID).Count(&links)
	if links != 0 {
		t.Fatalf("expected associations to be cleared, got %d", links)
	}
	if err := svc.Delete(tag.ID); !errors.Is(err, ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}
}

func TestTagServiceListOrdersByName(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewTagService(gdb)
	for _, name := range []string{"web", "api", "go"} {
		if _, err := svc.Create(TagInput{Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	list, err := svc.List()
	if err != nil {
		t.Fatalf("list tags: %v", err)
	}
	if list[0].Name != "api" || list[1].Name != "go" || list[2].Name != "web" {
		t.Fatalf("unexpected order: %+v", []string{list[0].Name, list[1].Name, list[2].Name})
	}
}

func TestSocialLinkServiceValidatesURL(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewSocialLinkService(gdb)
	if _, err := svc.Create(SocialLinkInput{Name: "GitHub", URL: "javascript:alert(1)"}); err == nil {
		t.Fatalf("non-http url should be rejected")
	}

	link, err := svc.Create(SocialLinkInput{Name: " GitHub ", URL: "https://github.com/bitacora", Icon: "fab fa-github"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if link.Name != "GitHub" {
		t.Fatalf("name should be trimmed, got %q", link.Name)
	}

	if _, err := svc.Update(link.ID, SocialLinkInput{Name: "", URL: "https://x.cl"}); err == nil {
		t.Fatalf("empty name should be rejected")
	}
	if err := svc.Delete(link.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(link.ID); !errors.Is(err, ErrSocialLinkNotFound) {
		t.Fatalf("expected ErrSocialLinkNotFound, got %v", err)
	}
}

func TestAboutServiceLatest(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	svc := NewAboutService(gdb)
	empty, err := svc.Latest()
	if err != nil {
		t.Fatalf("latest on empty table: %v", err)
	}
	if empty.ID != 0 || empty.Description != "" {
		t.Fatalf("expected placeholder, got %+v", empty)
	}

	if _, err := svc.Create("primera versión"); err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.Create("segunda versión")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	latest, err := svc.Latest()
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != second.ID {
		t.Fatalf("expected newest blurb, got %+v", latest)
	}

	if _, err := svc.Create(""); err == nil {
		t.Fatalf("empty description should be rejected")
	}
}

func TestSiteContextArchiveMonths(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	seedArticle(t, gdb, "Marzo uno", true, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))
	seedArticle(t, gdb, "Marzo dos", true, time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC))
	seedArticle(t, gdb, "Diciembre", true, time.Date(2023, 12, 5, 10, 0, 0, 0, time.UTC))
	seedArticle(t, gdb, "Borrador de abril", false, time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC))

	if err := gdb.Create(&db.Category{Name: "Visible", Active: true}).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	if err := gdb.Create(&db.Category{Name: "Oculta", Active: false}).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}

	ctx, err := NewSiteContextService(gdb, time.UTC).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(ctx.Archives) != 2 {
		t.Fatalf("expected 2 archive months, got %+v", ctx.Archives)
	}
	if ctx.Archives[0].Label != "Marzo 2024" || ctx.Archives[1].Label != "Diciembre 2023" {
		t.Fatalf("unexpected labels: %q, %q", ctx.Archives[0].Label, ctx.Archives[1].Label)
	}
	if len(ctx.Categories) != 1 || ctx.Categories[0].Name != "Visible" {
		t.Fatalf("only active categories expected, got %+v", ctx.Categories)
	}
}

func TestSiteContextArchiveMonthsHonourLocation(t *testing.T) {
	gdb, cleanup := setupServiceTestDB(t)
	defer cleanup()

	loc := time.FixedZone("CLT", -3*3600)
	seedArticle(t, gdb, "Año nuevo", true, time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC))

	months, err := NewSiteContextService(gdb, loc).ArchiveMonths()
	if err != nil {
		t.Fatalf("archive months: %v", err)
	}
	if len(months) != 1 || months[0].Year != 2023 || months[0].Month != 12 {
		t.Fatalf("expected december 2023 in local time, got %+v", months)
	}
}
