package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler        *AuthHandler
	AdminHandler       *AdminHandler
	FormHandler        *FormHandler
	ApplicationHandler *ApplicationHandler
	DirectoryHandler   *DirectoryHandler
	EmbedHandler       *EmbedHandler
	FileHandler        *FileHandler
	HealthHandler      *HealthHandler
}
