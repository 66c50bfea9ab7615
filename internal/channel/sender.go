package channel

import "context"

// Sender is the outbound half of the transport. Implementations must treat
// every call as one network send: it either completes or returns an error,
// and callers use the error to decide whether a state transition or an
// assignment stands.
type Sender interface {
	// SendText sends a plain message with no keyboard change.
	SendText(ctx context.Context, chatID int64, text string) error

	// SendContactPrompt sends text with a persistent one-time keyboard whose
	// single button shares the sender's phone contact.
	SendContactPrompt(ctx context.Context, chatID int64, text, button string) error

	// SendForceReply sends text with a force-reply keyboard and an input
	// placeholder.
	SendForceReply(ctx context.Context, chatID int64, text, placeholder string) error

	// SendRemoveKeyboard sends text and clears any reply keyboard.
	SendRemoveKeyboard(ctx context.Context, chatID int64, text string) error

	// SendChoice sends text with a one-row reply keyboard of plain buttons.
	SendChoice(ctx context.Context, chatID int64, text string, buttons []string) error

	// SendMenu sends text with a multi-row reply keyboard of plain buttons.
	SendMenu(ctx context.Context, chatID int64, text string, rows [][]string) error

	// SendWithAction sends text with a single inline button whose press is
	// delivered back as a Callback carrying data.
	SendWithAction(ctx context.Context, chatID int64, text, button, data string) error

	// AnswerCallback acknowledges an inline-button press with a short notice.
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
