package portfolio

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/finassist/fin/internal/api"
)

// Total-assets texts.
const (
	AssetsTitle       = "Total Assets"
	AllInfoTitle      = "All User Information"
	NoAssetsMessage   = "No assets information found. You can add assets through the chat interface."
	AssetsLoadError   = "Error loading assets information. Please try again later."
	AllInfoLoadError  = "Error loading user information. Please try again later."
	ComingSoonTitle   = "🚀 Coming Soon!"
	ComingSoonMessage = "Our customized portfolio feature is currently under development. Stay tuned for personalized portfolio management tools!"
)

// InfoGroup holds the stored facts of one type.
type InfoGroup struct {
	Type  string
	Title string
	Items []api.InfoItem
}

// GroupInfo groups items by type, keeping the order in which each type
// first appears.
func GroupInfo(items []api.InfoItem) []InfoGroup {
	var groups []InfoGroup
	index := make(map[string]int)
	for _, it := range items {
		i, ok := index[it.Type]
		if !ok {
			i = len(groups)
			index[it.Type] = i
			groups = append(groups, InfoGroup{Type: it.Type, Title: FormatInfoType(it.Type)})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// FormatInfoType turns a snake_case type into a title, e.g. "real_estate"
// becomes "Real Estate". Only the first letter of each word changes.
func FormatInfoType(t string) string {
	words := strings.Split(t, "_")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
