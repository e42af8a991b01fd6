package chat

import (
	"context"
	"errors"

	"github.com/discord-bot-collab/weatherbot/internal/forecast"
)

var (
	// ErrMessageNotFound is returned by Edit when the target message was
	// deleted externally; the caller falls back to sending a new message.
	ErrMessageNotFound = errors.New("chat: message not found")

	// ErrChannelNotFound is returned when the channel or guild no longer
	// exists.
	ErrChannelNotFound = errors.New("chat: channel not found")

	// ErrPermissionDenied is returned when the bot lacks posting rights in
	// the target channel.
	ErrPermissionDenied = errors.New("chat: missing permission")
)

// Gateway is the chat-platform surface the forecast pipeline consumes:
// post a rich message, edit one in place, and check whether a configured
// channel still exists.
type Gateway interface {
	Send(ctx context.Context, channelID int64, fragments []forecast.MessageFragment) (messageID int64, err error)
	Edit(ctx context.Context, channelID, messageID int64, fragments []forecast.MessageFragment) error
	ChannelExists(ctx context.Context, guildID string, channelID int64) bool
}
