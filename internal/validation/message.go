// Package validation cleans and checks user chat messages before any model is called.
package validation

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MinMessageLength = 10
	MaxMessageLength = 500
)

// invalidCharacters are rejected anywhere in a message.
const invalidCharacters = "<>$%{}[]#^|~"

// blockedPhrases are matched as substrings of the lower-cased message.
var blockedPhrases = []string{"hack", "attack", "drop table", "<script>"}

// Kind identifies which validation step rejected a message.
type Kind int

const (
	InvalidFormat Kind = iota + 1
	MissingField
	InvalidType
	EmptyMessage
	TooShort
	TooLong
	InvalidCharacter
	ProhibitedContent
)

func (k Kind) String() string {
	switch k {
	case InvalidFormat:
		return "invalid_format"
	case MissingField:
		return "missing_field"
	case InvalidType:
		return "invalid_type"
	case EmptyMessage:
		return "empty_message"
	case TooShort:
		return "too_short"
	case TooLong:
		return "too_long"
	case InvalidCharacter:
		return "invalid_character"
	case ProhibitedContent:
		return "prohibited_content"
	default:
		return "unknown"
	}
}

// Error is returned for every rejected message. Message is safe to show to the client.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Message is a validated chat message.
type Message string

func (m Message) String() string {
	return string(m)
}

// ParseBody decodes a raw request body. Malformed JSON decodes to an empty object, so the
// caller reports the missing message field instead of a parse error.
func ParseBody(raw []byte) interface{} {
	if len(raw) == 0 {
		return map[string]interface{}{}
	}
	var body interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return map[string]interface{}{}
	}
	return body
}

// ValidateBody checks a decoded request body and returns the cleaned "message" field.
func ValidateBody(body interface{}) (Message, error) {
	obj, ok := body.(map[string]interface{})
	if !ok {
		return "", newError(InvalidFormat, "Invalid request format")
	}
	raw, ok := obj["message"]
	if !ok {
		return "", newError(MissingField, "Missing 'message' in request body")
	}
	text, ok := raw.(string)
	if !ok {
		return "", newError(InvalidType, "Message must be a string")
	}
	return Validate(text)
}

// Validate trims, length-checks, normalizes whitespace and screens a message.
// Lengths are counted in characters (runes), before whitespace is collapsed.
func Validate(text string) (Message, error) {
	msg := strings.TrimSpace(text)
	if msg == "" {
		return "", newError(EmptyMessage, "Message cannot be empty")
	}

	n := utf8.RuneCountInString(msg)
	if n < MinMessageLength {
		return "", newError(TooShort, fmt.Sprintf("Message is too short (minimum %d characters required)", MinMessageLength))
	}
	if n > MaxMessageLength {
		return "", newError(TooLong, fmt.Sprintf("Message is too long (maximum %d characters allowed)", MaxMessageLength))
	}

	msg = strings.Join(strings.Fields(msg), " ")

	if strings.ContainsAny(msg, invalidCharacters) {
		return "", newError(InvalidCharacter, "Message contains invalid characters")
	}

	lower := strings.ToLower(msg)
	for _, phrase := range blockedPhrases {
		if strings.Contains(lower, phrase) {
			return "", newError(ProhibitedContent, "Message contains prohibited content")
		}
	}
	return Message(msg), nil
}
