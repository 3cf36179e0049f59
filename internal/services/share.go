package services

import (
	"fmt"

	"cakebook/internal/models"
)

// SharePayload is what the client hands to the native share sheet, with a
// preformatted text for the clipboard when sharing is unavailable.
type SharePayload struct {
	Title     string `json:"title"`
	Text      string `json:"text"`
	URL       string `json:"url"`
	Clipboard string `json:"clipboard"`
}

// BuildSharePayload formats a recipe for sharing. url is the page the
// recipe is displayed on.
func BuildSharePayload(r models.Recipe, url string) SharePayload {
	text := fmt.Sprintf("Confira esta receita: %s\n\n%s", r.Title, r.Description)
	return SharePayload{
		Title:     r.Title,
		Text:      text,
		URL:       url,
		Clipboard: r.Title + "\n\n" + text,
	}
}
