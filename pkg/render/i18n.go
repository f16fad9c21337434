package render

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goliatone/go-courseform/pkg/view"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when options
// carry no Translator.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves a message key for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler returns the text used when key cannot be
// translated. args carries a map with the "default" label.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// LocalizePage translates page labels in place. Keys are derived from the
// page structure:
//
//	page.title
//	sections.<editor>.label
//	sections.<editor>.item            (record block titles, numbered)
//	fields.<editor>.<attr>            (control labels)
//	fields.<editor>.<attr>.placeholder
//	actions.<action>                  (buttons)
//
// Untranslated keys keep the English label.
func LocalizePage(page *view.Page, opts RenderOptions) {
	if page == nil || opts.Translator == nil && opts.OnMissing == nil {
		return
	}
	tr := func(key, fallback string) string {
		return translate(opts.Locale, key, fallback, opts.Translator, opts.OnMissing)
	}

	page.Title = tr("page.title", page.Title)
	for si := range page.Sections {
		section := &page.Sections[si]
		section.Label = tr("sections."+section.Editor+".label", section.Label)
		for ai := range section.Actions {
			localizeButton(&section.Actions[ai], tr)
		}
		for bi := range section.Blocks {
			block := &section.Blocks[bi]
			block.Title = numbered(tr("sections."+section.Editor+".item", trimNumber(block.Title)), block.Number)
			localizeButton(&block.Delete, tr)
			for ci := range block.Controls {
				control := &block.Controls[ci]
				key := "fields." + section.Editor + "." + control.Name
				control.Label = tr(key, control.Label)
				if control.Placeholder != "" {
					control.Placeholder = tr(key+".placeholder", control.Placeholder)
				}
			}
		}
		if section.Table != nil {
			for ci := range section.Table.Columns {
				localizeButton(&section.Table.Columns[ci].Delete, tr)
			}
			for ri := range section.Table.Rows {
				localizeButton(&section.Table.Rows[ri].Delete, tr)
			}
		}
	}
}

func localizeButton(button *view.Button, tr func(key, fallback string) string) {
	button.Label = tr("actions."+string(button.Event.Action), button.Label)
}

// trimNumber strips the trailing " N" from a block title.
func trimNumber(title string) string {
	if idx := strings.LastIndexByte(title, ' '); idx > 0 {
		return title[:idx]
	}
	return title
}

func numbered(label string, n int) string {
	if n <= 0 {
		return label
	}
	return label + " " + strconv.Itoa(n)
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, []any{map[string]any{"default": fallback}}, ErrMissingTranslator)
		}
		return fallback
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	if onMissing != nil {
		return onMissing(locale, key, []any{map[string]any{"default": fallback}}, err)
	}
	return fallback
}
