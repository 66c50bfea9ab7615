package channel

import "strings"

// Inline-button payloads are "<action>REQUEST<requestID>". ActionClose is the
// only action the core consumes.
const (
	ActionClose = "close"

	callbackSeparator = "REQUEST"
)

// ActionData builds the callback payload for an inline button.
func ActionData(action, requestID string) string {
	return action + callbackSeparator + requestID
}

// ParseActionData splits a callback payload into action and request id.
// Payloads with a missing part are rejected.
func ParseActionData(data string) (action, requestID string, ok bool) {
	action, requestID, ok = strings.Cut(data, callbackSeparator)
	if !ok || action == "" || requestID == "" {
		return "", "", false
	}
	return action, requestID, true
}
