package service

import (
	"strconv"
	"time"

	"github.com/bitacora/internal/db"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// SpanishMonth returns the lowercase Spanish name of m.
func SpanishMonth(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return spanishMonths[m-1]
}

// ArchiveMonth is a calendar month holding at least one published article.
type ArchiveMonth struct {
	Year  int
	Month int
	Name  string
	Label string
}

// SiteContext is the furniture shared by every public page.
type SiteContext struct {
	About       db.AboutBlurb
	Categories  []db.Category
	Archives    []ArchiveMonth
	SocialLinks []db.SocialLink
}

// SiteContextService assembles SiteContext on every request.
type SiteContextService struct {
	db      *gorm.DB
	about   *AboutService
	cats    *CategoryService
	socials *SocialLinkService
	loc     *time.Location
}

// NewSiteContextService creates a SiteContextService; months are bucketed in loc.
func NewSiteContextService(gdb *gorm.DB, loc *time.Location) *SiteContextService {
	if loc == nil {
		loc = time.UTC
	}
	return &SiteContextService{
		db:      gdb,
		about:   NewAboutService(gdb),
		cats:    NewCategoryService(gdb),
		socials: NewSocialLinkService(gdb),
		loc:     loc,
	}
}

// Build loads the latest about blurb, active categories, archive months and social links.
func (s *SiteContextService) Build() (SiteContext, error) {
	var ctx SiteContext
	var err error

	if ctx.About, err = s.about.Latest(); err != nil {
		return SiteContext{}, err
	}
	if ctx.Categories, err = s.cats.ListActive(); err != nil {
		return SiteContext{}, err
	}
	if ctx.Archives, err = s.ArchiveMonths(); err != nil {
		return SiteContext{}, err
	}
	if ctx.SocialLinks, err = s.socials.List(); err != nil {
		return SiteContext{}, err
	}
	return ctx, nil
}

// ArchiveMonths returns the distinct months with published articles, newest first.
func (s *SiteContextService) ArchiveMonths() ([]ArchiveMonth, error) {
	var created []time.Time
	if err := s.db.Model(&db.Article{}).
		Where("published = ?", true).
		Order("created_at desc").
		Pluck("created_at", &created).Error; err != nil {
		return nil, err
	}

	title := cases.Title(language.Spanish)
	seen := make(map[int]struct{})
	months := make([]ArchiveMonth, 0)
	for _, ts := range created {
		local := ts.In(s.loc)
		key := local.Year()*100 + int(local.Month())
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		name := SpanishMonth(local.Month())
		months = append(months, ArchiveMonth{
			Year:  local.Year(),
			Month: int(local.Month()),
			Name:  name,
			Label: title.String(name) + " " + strconv.Itoa(local.Year()),
		})
	}
	return months, nil
}
