// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

// package i18n provides internationalization and localization support for Clientbook.
// It uses the go-i18n library to load and manage translation files, allowing the
// console and the command line to be displayed in multiple languages.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

// DefaultLang is used when no language is configured or the configured one
// has no translation file.
const DefaultLang = "en"

// localeFS embeds the YAML translation files from the 'locales' directory
// into the application binary.
//
//go:embed locales/*.yaml
var localeFS embed.FS

var (
	mu sync.RWMutex
	// bundle stores all the loaded translation messages from the locale files.
	bundle *i18n.Bundle
	// localizer is used to translate messages into a specific language.
	localizer *i18n.Localizer
	current   string
)

// Init initializes the i18n bundle and sets up the localizer for a specific language.
// It parses all embedded YAML files from the 'locales' directory.
func Init(lang string) {
	lang = normalize(lang)

	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			continue
		}
		_, _ = b.ParseMessageFileBytes(data, f.Name())
	}

	mu.Lock()
	bundle = b
	localizer = i18n.NewLocalizer(b, lang, DefaultLang)
	current = lang
	mu.Unlock()
}

// SetLang changes the active language of the localizer.
func SetLang(lang string) {
	Init(lang)
}

// GetLang returns the active language code.
func GetLang() string {
	mu.RLock()
	defer mu.RUnlock()
	if current == "" {
		return DefaultLang
	}
	return current
}

// GetAvailableLocales maps every embedded locale code to its name written in
// that language, e.g. "ru" -> "русский".
func GetAvailableLocales() map[string]string {
	out := make(map[string]string)
	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		code := strings.TrimSuffix(f.Name(), path.Ext(f.Name()))
		tag, err := language.Parse(code)
		if err != nil {
			out[code] = code
			continue
		}
		name := display.Self.Name(tag)
		if name == "" {
			name = code
		}
		out[code] = name
	}
	return out
}

// LocaleCodes returns the embedded locale codes in sorted order.
func LocaleCodes() []string {
	av := GetAvailableLocales()
	codes := make([]string, 0, len(av))
	for c := range av {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// T translates a message by its ID.
// A single map argument is passed to the message as template data; any other
// arguments are applied with fmt.Sprintf. If the i18n system has not been
// initialized, it defaults to English. If a translation for the given ID is
// not found, it returns the ID itself.
func T(messageID string, args ...any) string {
	mu.RLock()
	loc := localizer
	mu.RUnlock()
	if loc == nil {
		Init(DefaultLang)
		mu.RLock()
		loc = localizer
		mu.RUnlock()
	}

	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if len(args) == 1 {
		if data, ok := args[0].(map[string]any); ok {
			cfg.TemplateData = data
			args = nil
		}
	}

	msg, err := loc.Localize(cfg)
	if err != nil {
		// If the message ID is not found, go-i18n returns an error.
		// In this case, we return the message ID itself as a fallback.
		return messageID
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// normalize maps an empty or unparsable language to DefaultLang and reduces
// region variants such as "ru_RU.UTF-8" to their base language.
func normalize(lang string) string {
	lang = strings.TrimSpace(lang)
	if i := strings.IndexAny(lang, ".@"); i >= 0 {
		lang = lang[:i]
	}
	lang = strings.ReplaceAll(lang, "_", "-")
	if lang == "" || strings.EqualFold(lang, "C") || strings.EqualFold(lang, "POSIX") {
		return DefaultLang
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return DefaultLang
	}
	base, _ := tag.Base()
	return base.String()
}
