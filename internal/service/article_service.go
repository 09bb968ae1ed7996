package service

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bitacora/internal/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ArticlesPerPage is the page size of every public listing.
const ArticlesPerPage = 3

var (
	ErrArticleNotFound    = errors.New("article not found")
	ErrInvalidArchiveDate = errors.New("invalid archive date")
	ErrEmptyArchive       = errors.New("no articles published in archive period")
)

// ArticleService wraps article related database operations.
type ArticleService struct {
	db     *gorm.DB
	images *ImageStore
	loc    *time.Location
	now    func() time.Time
	log    *zap.Logger
}

// ArticleInput represents fields accepted when creating or updating an article.
type ArticleInput struct {
	Title      string
	Summary    string
	Body       string
	CategoryID *uint
	TagIDs     []uint
	// AuthorID is only honoured by Create; updates never change the author.
	AuthorID *uint
	// Image, when non-nil, replaces the current image.
	Image      io.Reader
	ClearImage bool
}

// ArticleQuery describes which articles a listing includes.
type ArticleQuery struct {
	PublishedOnly bool
	CategoryID    *uint
	AuthorID      *uint
	TagID         *uint
	From          *time.Time
	Until         *time.Time
	Search        string
}

// Scope turns the query into a gorm filter.
func (q ArticleQuery) Scope() Scope {
	return func(tx *gorm.DB) *gorm.DB {
		if q.PublishedOnly {
			tx = tx.Where("articles.published = ?", true)
		}
		if q.CategoryID != nil {
			tx = tx.Where("articles.category_id = ?", *q.CategoryID)
		}
		if q.AuthorID != nil {
			tx = tx.Where("articles.author_id = ?", *q.AuthorID)
		}
		if q.TagID != nil {
			tx = tx.Where("articles.id IN (?)", tx.Session(&gorm.Session{NewDB: true}).
				Table("article_tags").
				Select("article_id").
				Where("tag_id = ?", *q.TagID))
		}
		if q.From != nil {
			tx = tx.Where("articles.created_at >= ?", q.From.UTC())
		}
		if q.Until != nil {
			tx = tx.Where("articles.created_at < ?", q.Until.UTC())
		}
		if search := strings.TrimSpace(q.Search); search != "" {
			like := "%" + search + "%"
			tx = tx.Where(
				"(articles.title LIKE ? OR articles.body LIKE ? OR articles.author_id IN (?) OR articles.category_id IN (?))",
				like, like,
				tx.Session(&gorm.Session{NewDB: true}).Model(&db.Account{}).Select("id").Where("username LIKE ?", like),
				tx.Session(&gorm.Session{NewDB: true}).Model(&db.Category{}).Select("id").Where("name LIKE ?", like),
			)
		}
		return tx
	}
}

// NewArticleService creates an ArticleService. Archive boundaries are computed in loc.
func NewArticleService(gdb *gorm.DB, images *ImageStore, loc *time.Location, log *zap.Logger) *ArticleService {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ArticleService{db: gdb, images: images, loc: loc, now: time.Now, log: log}
}

// Images exposes the store used for article images.
func (s *ArticleService) Images() *ImageStore {
	return s.images
}

// List returns one page of articles matching query, newest first.
func (s *ArticleService) List(query ArticleQuery, page, perPage int) (*Page[db.Article], error) {
	return Paginate[db.Article](s.db, query.Scope(), page, perPage, withArticleRelations, newestFirst)
}

// ListForAdmin returns articles grouped by author, newest first within each author.
func (s *ArticleService) ListForAdmin(query ArticleQuery, page, perPage int) (*Page[db.Article], error) {
	return Paginate[db.Article](s.db, query.Scope(), page, perPage, withArticleRelations, byAuthor, newestFirst)
}

// ListPublished returns the home page listing.
func (s *ArticleService) ListPublished(page int) (*Page[db.Article], error) {
	return s.List(ArticleQuery{PublishedOnly: true}, page, ArticlesPerPage)
}

// ListByCategory resolves the category by slug and lists its published articles.
func (s *ArticleService) ListByCategory(slug string, page int) (*db.Category, *Page[db.Article], error) {
	var category db.Category
	if err := s.db.Where("slug = ?", strings.TrimSpace(slug)).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCategoryNotFound
		}
		return nil, nil, err
	}

	result, err := s.List(ArticleQuery{PublishedOnly: true, CategoryID: &category.ID}, page, ArticlesPerPage)
	if err != nil {
		return nil, nil, err
	}
	return &category, result, nil
}

// ListByAuthor resolves the account by username and lists its published articles.
func (s *ArticleService) ListByAuthor(username string, page int) (*db.Account, *Page[db.Article], error) {
	var author db.Account
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrAccountNotFound
		}
		return nil, nil, err
	}

	result, err := s.List(ArticleQuery{PublishedOnly: true, AuthorID: &author.ID}, page, ArticlesPerPage)
	if err != nil {
		return nil, nil, err
	}
	return &author, result, nil
}

// ListByMonth lists published articles created during year/month.
func (s *ArticleService) ListByMonth(year, month, page int) (*Page[db.Article], error) {
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return nil, ErrInvalidArchiveDate
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, s.loc)
	return s.listBetween(from, from.AddDate(0, 1, 0), page)
}

// ListByYear lists published articles created during year.
func (s *ArticleService) ListByYear(year, page int) (*Page[db.Article], error) {
	if year < 1 || year > 9999 {
		return nil, ErrInvalidArchiveDate
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, s.loc)
	return s.listBetween(from, from.AddDate(1, 0, 0), page)
}

func (s *ArticleService) listBetween(from, until time.Time, page int) (*Page[db.Article], error) {
	// los artículos con fecha futura no se listan
	if now := s.now(); until.After(now) {
		until = now
	}
	result, err := s.List(ArticleQuery{PublishedOnly: true, From: &from, Until: &until}, page, ArticlesPerPage)
	if err != nil {
		return nil, err
	}
	if result.Total == 0 {
		return nil, ErrEmptyArchive
	}
	return result, nil
}

// GetBySlug fetches an article regardless of its published flag.
func (s *ArticleService) GetBySlug(slug string) (*db.Article, error) {
	var article db.Article
	if err := s.db.Scopes(withArticleRelations).Where("slug = ?", strings.TrimSpace(slug)).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// Get fetches an article by id with its relations.
func (s *ArticleService) Get(id uint) (*db.Article, error) {
	var article db.Article
	if err := s.db.Scopes(withArticleRelations).First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// Create validates input and persists a new, unpublished article.
func (s *ArticleService) Create(input ArticleInput) (*db.Article, error) {
	tags, err := s.validate(input, 0)
	if err != nil {
		return nil, err
	}

	article := db.Article{
		Title:      strings.TrimSpace(input.Title),
		Summary:    strings.TrimSpace(input.Summary),
		Body:       input.Body,
		CategoryID: input.CategoryID,
		AuthorID:   input.AuthorID,
	}

	if input.Image != nil {
		stored, err := s.images.Save(input.Image, ArticleImageDir)
		if err != nil {
			return nil, imageValidationError(err)
		}
		article.ImagePath = stored
	}

	if err := s.saveWithTags(&article, tags); err != nil {
		s.images.RemoveQuietly(article.ImagePath)
		return nil, err
	}

	s.log.Info("article created", zap.Uint("id", article.ID), zap.String("slug", article.Slug))
	return s.Get(article.ID)
}

// Update applies input to the article with id. The author never changes.
func (s *ArticleService) Update(id uint, input ArticleInput) (*db.Article, error) {
	var existing db.Article
	if err := s.db.First(&existing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	tags, err := s.validate(input, id)
	if err != nil {
		return nil, err
	}

	previousImage := existing.ImagePath
	existing.Title = strings.TrimSpace(input.Title)
	existing.Summary = strings.TrimSpace(input.Summary)
	existing.Body = input.Body
	existing.CategoryID = input.CategoryID
	existing.Category = nil
	existing.Author = nil

	newImage := ""
	switch {
	case input.Image != nil:
		stored, err := s.images.Save(input.Image, ArticleImageDir)
		if err != nil {
			return nil, imageValidationError(err)
		}
		newImage = stored
		existing.ImagePath = stored
	case input.ClearImage:
		existing.ImagePath = ""
	}

	if err := s.saveWithTags(&existing, tags); err != nil {
		s.images.RemoveQuietly(newImage)
		return nil, err
	}

	if previousImage != "" && previousImage != existing.ImagePath {
		s.images.RemoveQuietly(previousImage)
	}

	return s.Get(existing.ID)
}

// SetPublished toggles the published flag.
func (s *ArticleService) SetPublished(id uint, published bool) (*db.Article, error) {
	result := s.db.Model(&db.Article{}).Where("id = ?", id).Update("published", published)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrArticleNotFound
	}
	return s.Get(id)
}

// Delete removes the article image, then the article itself.
func (s *ArticleService) Delete(id uint) error {
	var article db.Article
	if err := s.db.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		return err
	}

	s.images.RemoveQuietly(article.ImagePath)

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&article).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&db.Article{}, article.ID).Error
	}); err != nil {
		return fmt.Errorf("delete article %d: %w", id, err)
	}

	s.log.Info("article deleted", zap.Uint("id", article.ID), zap.String("slug", article.Slug))
	return nil
}

// CountAll returns the number of articles and how many are published.
func (s *ArticleService) CountAll() (total, published int64, err error) {
	if err = s.db.Model(&db.Article{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = s.db.Model(&db.Article{}).Where("published = ?", true).Count(&published).Error; err != nil {
		return 0, 0, err
	}
	return total, published, nil
}

func (s *ArticleService) validate(input ArticleInput, excludeID uint) ([]db.Tag, error) {
	errs := ValidationErrors{}
	title := strings.TrimSpace(input.Title)

	requireText(errs, "titulo", title, 250)
	requireText(errs, "bajada", strings.TrimSpace(input.Summary), 150)
	requireText(errs, "contenido", input.Body, 0)

	if _, failed := errs["titulo"]; !failed {
		slug := db.Slugify(title)
		switch {
		case slug == "":
			errs.Add("titulo", "El título debe contener letras o números.")
		default:
			var count int64
			if err := s.db.Model(&db.Article{}).Where("title = ? AND id <> ?", title, excludeID).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				errs.Add("titulo", "Ya existe Publicación con este Título.")
				break
			}
			if err := s.db.Model(&db.Article{}).Where("slug = ? AND id <> ?", slug, excludeID).Count(&count).Error; err != nil {
				return nil, err
			}
			if count > 0 {
				errs.Add("titulo", "Ya existe una publicación con un título equivalente.")
			}
		}
	}

	if input.CategoryID != nil {
		var count int64
		if err := s.db.Model(&db.Category{}).Where("id = ?", *input.CategoryID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			errs.Add("categoria", "Escoja una opción válida.")
		}
	}

	var tags []db.Tag
	if ids := uniqueIDs(input.TagIDs); len(ids) > 0 {
		if err := s.db.Where("id IN ?", ids).Find(&tags).Error; err != nil {
			return nil, err
		}
		if len(tags) != len(ids) {
			errs.Add("etiquetas", "Escoja una opción válida.")
		}
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *ArticleService) saveWithTags(article *db.Article, tags []db.Tag) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Tags", "Category", "Author").Save(article).Error; err != nil {
			return err
		}
		return tx.Model(article).Association("Tags").Replace(tags)
	})
}

func imageValidationError(err error) error {
	if errors.Is(err, ErrImageInvalid) {
		return ValidationErrors{"imagen": "Suba una imagen válida. El archivo que subió no es una imagen o está dañado."}
	}
	return err
}

func withArticleRelations(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Category").Preload("Author").Preload("Tags", func(q *gorm.DB) *gorm.DB {
		return q.Order("tags.name asc")
	})
}

func byAuthor(tx *gorm.DB) *gorm.DB {
	return tx.Order("articles.author_id asc")
}

func newestFirst(tx *gorm.DB) *gorm.DB {
	return tx.Order("articles.created_at desc").Order("articles.id desc")
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
