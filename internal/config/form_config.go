package config

// FormField - итоговое описание поля формы заявки
type FormField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"` // text, email, url, textarea, select, file
	Required bool   `json:"required"`
	Enabled  bool   `json:"enabled"`
}

// FormFieldOverride - настройка поля в config.yaml; nil означает "как по умолчанию"
type FormFieldOverride struct {
	Label    string `yaml:"label"`
	Required *bool  `yaml:"required"`
	Enabled  *bool  `yaml:"enabled"`
}

// Имена полей формы
const (
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldJobTitle    = "job_title"
	FieldIndustry    = "industry"
	FieldExperience  = "experience"
	FieldLocation    = "location"
	FieldLinkedIn    = "linkedin"
	FieldWebsite     = "website"
	FieldSkills      = "skills"
	FieldCoverLetter = "cover_letter"
	FieldResume      = "resume"
	FieldPhoto       = "photo"
)

var defaultFormFields = []FormField{
	{Name: FieldFirstName, Label: "First Name", Type: "text", Required: true, Enabled: true},
	{Name: FieldLastName, Label: "Last Name", Type: "text", Required: true, Enabled: true},
	{Name: FieldEmail, Label: "Email Address", Type: "email", Required: true, Enabled: true},
	{Name: FieldPhone, Label: "Phone Number", Type: "text", Enabled: true},
	{Name: FieldJobTitle, Label: "Job Title", Type: "text", Enabled: true},
	{Name: FieldIndustry, Label: "Industry", Type: "select", Required: true, Enabled: true},
	{Name: FieldExperience, Label: "Years of Experience", Type: "select", Enabled: true},
	{Name: FieldLocation, Label: "Location", Type: "text", Enabled: true},
	{Name: FieldLinkedIn, Label: "LinkedIn Profile", Type: "url", Enabled: true},
	{Name: FieldWebsite, Label: "Website", Type: "url", Enabled: true},
	{Name: FieldSkills, Label: "Skills", Type: "text", Enabled: true},
	{Name: FieldCoverLetter, Label: "Cover Letter", Type: "textarea", Required: true, Enabled: true},
	{Name: FieldResume, Label: "Resume", Type: "file", Enabled: true},
	{Name: FieldPhoto, Label: "Professional Photo", Type: "file", Enabled: true},
}

var defaultFieldIndex = func() map[string]int {
	idx := make(map[string]int, len(defaultFormFields))
	for i, f := range defaultFormFields {
		idx[f.Name] = i
	}
	return idx
}()

// email нельзя выключить: на нем держится проверка уникальности
var lockedFields = map[string]bool{
	FieldEmail: true,
}

// FormFields - набор полей после слияния умолчаний и настроек
type FormFields []FormField

// MergeFormFields накладывает настройки на поля по умолчанию.
// Выключенное поле никогда не бывает обязательным.
func MergeFormFields(overrides map[string]FormFieldOverride) FormFields {
	fields := make(FormFields, len(defaultFormFields))
	copy(fields, defaultFormFields)

	for i := range fields {
		o, ok := overrides[fields[i].Name]
		if !ok {
			continue
		}
		if o.Label != "" {
			fields[i].Label = o.Label
		}
		if o.Enabled != nil && !lockedFields[fields[i].Name] {
			fields[i].Enabled = *o.Enabled
		}
		if o.Required != nil && !lockedFields[fields[i].Name] {
			fields[i].Required = *o.Required
		}
		if !fields[i].Enabled {
			fields[i].Required = false
		}
	}
	return fields
}

// FormFields возвращает действующую конфигурацию формы
func (c *Config) FormFields() FormFields {
	return MergeFormFields(c.Form.Fields)
}

// Get ищет поле по имени
func (f FormFields) Get(name string) (FormField, bool) {
	for _, field := range f {
		if field.Name == name {
			return field, true
		}
	}
	return FormField{}, false
}

// IsRequired - поле включено и обязательно
func (f FormFields) IsRequired(name string) bool {
	field, ok := f.Get(name)
	return ok && field.Enabled && field.Required
}

// IsEnabled - поле показывается в форме и принимается
func (f FormFields) IsEnabled(name string) bool {
	field, ok := f.Get(name)
	return ok && field.Enabled
}

// Label возвращает подпись поля или его имя
func (f FormFields) Label(name string) string {
	if field, ok := f.Get(name); ok && field.Label != "" {
		return field.Label
	}
	return name
}

// Enabled - только включенные поля, в порядке формы
func (f FormFields) Enabled() FormFields {
	out := make(FormFields, 0, len(f))
	for _, field := range f {
		if field.Enabled {
			out = append(out, field)
		}
	}
	return out
}
