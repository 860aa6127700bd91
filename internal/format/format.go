// Package format renders XP values as grouped decimal strings for API
// payloads and announcements (12345 -> "12,345").
package format

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// XP formats an XP amount with thousands separators.
func XP(value int64) string {
	return printer.Sprintf("%d", value)
}

// Level formats a level number with thousands separators.
func Level(value int) string {
	return printer.Sprintf("%d", value)
}
