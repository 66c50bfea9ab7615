package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// The bot API client has no context support; each send checks for
// cancellation first and otherwise runs to completion or failure.
func (c *Client) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// SendText sends a plain message.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	return c.send(ctx, tgbotapi.NewMessage(chatID, text))
}

// SendContactPrompt sends text with a one-time keyboard that shares the
// user's phone contact.
func (c *Client) SendContactPrompt(ctx context.Context, chatID int64, text, button string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButtonContact(button)),
	)
	kb.OneTimeKeyboard = true
	msg.ReplyMarkup = kb
	return c.send(ctx, msg)
}

// SendForceReply sends text with a force-reply prompt and placeholder.
func (c *Client) SendForceReply(ctx context.Context, chatID int64, text, placeholder string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.ForceReply{
		ForceReply:            true,
		InputFieldPlaceholder: placeholder,
	}
	return c.send(ctx, msg)
}

// SendRemoveKeyboard sends text and clears the reply keyboard.
func (c *Client) SendRemoveKeyboard(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	return c.send(ctx, msg)
}

// SendChoice sends text with a one-row reply keyboard.
func (c *Client) SendChoice(ctx context.Context, chatID int64, text string, buttons []string) error {
	row := make([]tgbotapi.KeyboardButton, 0, len(buttons))
	for _, b := range buttons {
		row = append(row, tgbotapi.NewKeyboardButton(b))
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(row)
	return c.send(ctx, msg)
}

// SendMenu sends text with a multi-row reply keyboard.
func (c *Client) SendMenu(ctx context.Context, chatID int64, text string, rows [][]string) error {
	kbRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, r := range rows {
		row := make([]tgbotapi.KeyboardButton, 0, len(r))
		for _, b := range r {
			row = append(row, tgbotapi.NewKeyboardButton(b))
		}
		kbRows = append(kbRows, row)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(kbRows...)
	return c.send(ctx, msg)
}

// SendWithAction sends text with one inline button carrying data.
func (c *Client) SendWithAction(ctx context.Context, chatID int64, text, button, data string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(button, data)),
	)
	return c.send(ctx, msg)
}

// AnswerCallback acknowledges an inline-button press.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}
