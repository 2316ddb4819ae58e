package email

import "context"

// Provider определяет интерфейс для отправки email
type Provider interface {
	// Send отправляет сообщение синхронно, без повторов
	Send(ctx context.Context, email *Email) error

	// Name - имя транспорта для логов и метрик
	Name() string
}

// TemplateRenderer определяет интерфейс для рендеринга шаблонов
type TemplateRenderer interface {
	// Render рендерит шаблон с учетом порядка поиска (override, bundled, generic)
	Render(templateName string, data TemplateData) (string, error)

	// Resolve возвращает источник, из которого будет взят шаблон
	Resolve(templateName string) Source
}
