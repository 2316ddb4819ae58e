package email

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

//go:embed templates/*.html
var bundledFS embed.FS

// Source - откуда берется шаблон
type Source string

const (
	SourceOverride Source = "override"
	SourceBundled  Source = "bundled"
	SourceGeneric  Source = "generic"
)

const (
	// GenericTemplate - последний вариант, если шаблона события нет нигде
	GenericTemplate = "generic"
	layoutFile      = "layout.html"
)

var templateFuncs = template.FuncMap{
	// paragraphs режет текст на абзацы по пустым строкам
	"paragraphs": func(v interface{}) []string {
		if v == nil {
			return nil
		}
		s := fmt.Sprint(v)
		var out []string
		for _, p := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	},
	"dict": func(kv ...interface{}) map[string]interface{} {
		m := make(map[string]interface{}, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			if k, ok := kv[i].(string); ok {
				m[k] = kv[i+1]
			}
		}
		return m
	},
}

// TemplateManager реализует TemplateRenderer.
// Порядок поиска: каталог переопределений, встроенные шаблоны, generic.
type TemplateManager struct {
	layout    string
	overrides map[string]*template.Template
	bundled   map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager разбирает встроенные шаблоны
func NewTemplateManager() (*TemplateManager, error) {
	layout, err := bundledFS.ReadFile("templates/" + layoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled layout: %w", err)
	}

	tm := &TemplateManager{
		layout:    string(layout),
		overrides: make(map[string]*template.Template),
		bundled:   make(map[string]*template.Template),
	}

	entries, err := fs.ReadDir(bundledFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to list bundled templates: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || e.Name() == layoutFile {
			continue
		}
		content, err := bundledFS.ReadFile("templates/" + e.Name())
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(e.Name(), ".html")
		tpl, err := tm.parse(name, string(content))
		if err != nil {
			return nil, fmt.Errorf("bundled template %s: %w", name, err)
		}
		tm.bundled[name] = tpl
	}

	if _, ok := tm.bundled[GenericTemplate]; !ok {
		return nil, fmt.Errorf("bundled generic template is missing")
	}
	return tm, nil
}

func (tm *TemplateManager) parse(name, content string) (*template.Template, error) {
	tpl, err := template.New(name).Funcs(templateFuncs).Parse(tm.layout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}
	if _, err := tpl.Parse(content); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	return tpl, nil
}

// AddTemplate добавляет шаблон-переопределение
func (tm *TemplateManager) AddTemplate(name string, content string) error {
	tpl, err := tm.parse(name, content)
	if err != nil {
		return err
	}

	tm.mutex.Lock()
	tm.overrides[name] = tpl
	tm.mutex.Unlock()
	return nil
}

// LoadTemplates загружает переопределения из директории (<имя>.html).
// Отсутствующая директория не ошибка.
func (tm *TemplateManager) LoadTemplates(dirPath string) error {
	if dirPath == "" {
		return nil
	}
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") || filepath.Base(path) == layoutFile {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", path, err)
		}

		name := strings.TrimSuffix(filepath.Base(path), ".html")
		if err := tm.AddTemplate(name, string(content)); err != nil {
			return fmt.Errorf("failed to add template %s: %w", name, err)
		}
		return nil
	})
}

// Resolve возвращает источник шаблона
func (tm *TemplateManager) Resolve(name string) Source {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	if _, ok := tm.overrides[name]; ok {
		return SourceOverride
	}
	if _, ok := tm.bundled[name]; ok {
		return SourceBundled
	}
	return SourceGeneric
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(name string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, ok := tm.overrides[name]
	if !ok {
		tpl, ok = tm.bundled[name]
	}
	if !ok {
		tpl = tm.bundled[GenericTemplate]
	}
	tm.mutex.RUnlock()

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

// TemplateNames возвращает имена всех известных шаблонов
func (tm *TemplateManager) TemplateNames() []string {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	seen := make(map[string]bool)
	for name := range tm.bundled {
		seen[name] = true
	}
	for name := range tm.overrides {
		seen[name] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
