package render

// RenderOptions describe per-request data that renderers use to customise
// their output without touching the editors.
type RenderOptions struct {
	// Action is the URL the surrounding form submits to.
	Action string
	// Method defaults to POST.
	Method string
	// Hidden carries extra inputs (CSRF token, record version) emitted next
	// to the bound fields.
	Hidden map[string]string
	// Errors surfaces server-side validation feedback keyed by editor name,
	// field name or "editor.index.attr" paths. See MapErrorPayload.
	Errors map[string][]string
	// FormErrors are messages not tied to any field.
	FormErrors []string
	// Editors restricts output to the named sections. Empty renders all.
	Editors []string
	// Locale and Translator localise labels. See LocalizePage.
	Locale     string
	Translator Translator
	OnMissing  MissingTranslationHandler
}

// MethodOrDefault returns the submission method, POST when unset.
func (o RenderOptions) MethodOrDefault() string {
	if o.Method == "" {
		return "POST"
	}
	return o.Method
}
