// Package translate formats user visible messages for the current locale.
package translate

import (
	"log"
	"sync"

	"github.com/jeandeaual/go-locale"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const DEFAULT_LANGUAGE = "en-US"

var (
	lock    sync.RWMutex
	tag     language.Tag
	printer *message.Printer
)

func init() {
	locales, err := locale.GetLocales()
	if err != nil {
		log.Printf("translate: locale: %v", err)
	}

	if len(locales) == 0 {
		locales = []string{DEFAULT_LANGUAGE}
	}

	setTag(message.MatchLanguage(locales...))
}

func setTag(lang language.Tag) {
	lock.Lock()
	defer lock.Unlock()

	tag = lang
	printer = message.NewPrinter(lang)
}

// SetLanguage selects the message language from a BCP 47 tag.
func SetLanguage(name string) (err error) {
	lang, err := language.Parse(name)
	if err != nil {
		return
	}

	setTag(message.MatchLanguage(lang.String()))
	return
}

// Language returns the current message language.
func Language() language.Tag {
	lock.RLock()
	defer lock.RUnlock()

	return tag
}

// From an en-US Sprintf() format, translate to string.
func From(key message.Reference, args ...any) string {
	lock.RLock()
	defer lock.RUnlock()

	return printer.Sprintf(key, args...)
}
