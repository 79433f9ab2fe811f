package chat

import (
	"regexp"
	"strings"
)

// MaskedAPIKey replaces a sensitive message in the visible log.
const MaskedAPIKey = "******* [API Key] *******"

// apiKeyPattern is a loose heuristic for pasted keys: an Alpaca-style key id
// or any long alphanumeric run.
var apiKeyPattern = regexp.MustCompile(`PK[A-Z0-9]{16,}|[A-Za-z0-9]{32,}`)

// credentialPairPattern matches a key id followed by its secret.
var credentialPairPattern = regexp.MustCompile(`^([A-Z0-9]{32})[\s,]+([A-Z0-9]{64})$`)

// ContainsAPIKey reports whether text looks like it holds an API key.
func ContainsAPIKey(text string) bool {
	return apiKeyPattern.MatchString(text)
}

// Credentials is a broker key pair typed into the chat.
type Credentials struct {
	APIKey    string
	SecretKey string
}

// ParseCredentials recognises a key id and secret separated by whitespace or a comma.
func ParseCredentials(text string) (Credentials, bool) {
	m := credentialPairPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return Credentials{}, false
	}
	return Credentials{APIKey: m[1], SecretKey: m[2]}, true
}

// Display returns the text to show for a sent message.
func Display(text string, sensitive bool) string {
	if sensitive {
		return MaskedAPIKey
	}
	return text
}
