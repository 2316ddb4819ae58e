package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"strconv"
	"strings"

	"greenjobs_backend/internal/config"
	"greenjobs_backend/internal/services/dto"
)

//go:embed views/*.html
var viewsFS embed.FS

// Имена встраиваемых блоков
const (
	ViewForm       = "form"
	ViewDirectory  = "directory"
	ViewCategory   = "category"
	ViewFeatured   = "featured"
	ViewStatistics = "statistics"

	layoutView = "layout"
)

const (
	LayoutGrid = "grid"
	LayoutList = "list"
)

var viewFuncs = template.FuncMap{
	"join": strings.Join,
	"add":  func(a, b int) int { return a + b },
	// percent - доля для полос статистики
	"percent": func(n, max int64) int64 {
		if max <= 0 {
			return 0
		}
		return n * 100 / max
	},
}

// Params - параметры блока из query string (/embed/directory?layout=list&per_page=24)
type Params struct {
	Title    string `form:"title" json:"title" validate:"max=200"`
	PerPage  int    `form:"per_page" json:"per_page" validate:"omitempty,min=1,max=100"`
	Layout   string `form:"layout" json:"layout" validate:"omitempty,is-layout"`
	Page     int    `form:"page" json:"page" validate:"omitempty,min=1"`
	Industry string `form:"industry" json:"industry"`
	Search   string `form:"q" json:"q" validate:"max=200"`
	Count    int    `form:"count" json:"count" validate:"omitempty,min=1,max=50"`
}

// LayoutOrDefault - grid, если вид не задан
func (p Params) LayoutOrDefault() string {
	if p.Layout == "" {
		return LayoutGrid
	}
	return p.Layout
}

// Site - оформление из настроек сайта
type Site struct {
	Name        string
	URL         string
	AccentColor string
	FooterText  string
}

func SiteFromConfig(c config.SiteConfig) Site {
	return Site{Name: c.Name, URL: c.URL, AccentColor: c.AccentColor, FooterText: c.FooterText}
}

// FormView - форма заявки
type FormView struct {
	Site       Site
	Params     Params
	Fields     config.FormFields
	Industries []dto.IndustryDTO
	Experience []string
	FormToken  string
	ActionURL  string
}

// DirectoryView - каталог и страница отрасли
type DirectoryView struct {
	Site       Site
	Params     Params
	Page       *dto.DirectoryPage
	Industries []dto.IndustryDTO
	// BasePath - путь блока для ссылок пагинации
	BasePath string
}

// PageURL - ссылка на страницу с сохранением остальных параметров
func (v DirectoryView) PageURL(page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if v.Params.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(v.Params.PerPage))
	}
	if v.Params.Layout != "" {
		q.Set("layout", v.Params.Layout)
	}
	if v.Params.Title != "" {
		q.Set("title", v.Params.Title)
	}
	if v.Params.Industry != "" {
		q.Set("industry", v.Params.Industry)
	}
	if v.Params.Search != "" {
		q.Set("q", v.Params.Search)
	}
	return v.BasePath + "?" + q.Encode()
}

// FeaturedView - карусель избранных
type FeaturedView struct {
	Site     Site
	Params   Params
	Profiles []dto.ProfileCard
}

// StatisticsView - сводка каталога
type StatisticsView struct {
	Site       Site
	Params     Params
	Stats      *dto.Statistics
	MaxMonthly int64
}

func NewStatisticsView(site Site, params Params, stats *dto.Statistics) StatisticsView {
	view := StatisticsView{Site: site, Params: params, Stats: stats}
	for _, m := range stats.Monthly {
		if m.Count > view.MaxMonthly {
			view.MaxMonthly = m.Count
		}
	}
	return view
}

// Renderer рендерит встраиваемые HTML-блоки
type Renderer struct {
	views map[string]*template.Template
}

// New разбирает встроенные шаблоны блоков
func New() (*Renderer, error) {
	layout, err := viewsFS.ReadFile("views/" + layoutView + ".html")
	if err != nil {
		return nil, fmt.Errorf("failed to read embed layout: %w", err)
	}

	entries, err := fs.ReadDir(viewsFS, "views")
	if err != nil {
		return nil, fmt.Errorf("failed to list embed views: %w", err)
	}

	r := &Renderer{views: make(map[string]*template.Template)}
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".html")
		if e.IsDir() || name == layoutView {
			continue
		}
		content, err := viewsFS.ReadFile("views/" + e.Name())
		if err != nil {
			return nil, err
		}
		tpl, err := template.New(name).Funcs(viewFuncs).Parse(string(layout))
		if err != nil {
			return nil, fmt.Errorf("failed to parse embed layout: %w", err)
		}
		if _, err := tpl.Parse(string(content)); err != nil {
			return nil, fmt.Errorf("embed view %s: %w", name, err)
		}
		r.views[name] = tpl
	}
	return r, nil
}

// Render пишет блок view в w
func (r *Renderer) Render(w io.Writer, view string, data any) error {
	tpl, ok := r.views[view]
	if !ok {
		return fmt.Errorf("unknown embed view %q", view)
	}
	if err := tpl.ExecuteTemplate(w, layoutView, data); err != nil {
		return fmt.Errorf("failed to render embed view %s: %w", view, err)
	}
	return nil
}
