package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/discord-bot-collab/weatherbot/internal/forecast"
)

// Discord adapts a discordgo session to the Gateway interface.
type Discord struct {
	session *discordgo.Session
}

// NewDiscord wraps an open discordgo session.
func NewDiscord(session *discordgo.Session) *Discord {
	return &Discord{session: session}
}

// Send posts the fragments as embeds and returns the new message id.
func (d *Discord) Send(ctx context.Context, channelID int64, fragments []forecast.MessageFragment) (int64, error) {
	msg, err := d.session.ChannelMessageSendEmbeds(
		formatID(channelID),
		BuildEmbeds(fragments),
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return 0, mapRESTError(err)
	}

	id, err := strconv.ParseInt(msg.ID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse message id %q: %w", msg.ID, err)
	}
	return id, nil
}

// Edit replaces the embeds of an existing message in place.
func (d *Discord) Edit(ctx context.Context, channelID, messageID int64, fragments []forecast.MessageFragment) error {
	_, err := d.session.ChannelMessageEditEmbeds(
		formatID(channelID),
		formatID(messageID),
		BuildEmbeds(fragments),
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return mapRESTError(err)
	}
	return nil
}

// ChannelExists reports whether the channel still exists and belongs to the
// guild. The session state cache answers most of the time; a REST lookup
// covers cache misses.
func (d *Discord) ChannelExists(ctx context.Context, guildID string, channelID int64) bool {
	chID := formatID(channelID)

	if ch, err := d.session.State.Channel(chID); err == nil {
		return ch.GuildID == guildID
	}

	ch, err := d.session.Channel(chID, discordgo.WithContext(ctx))
	if err != nil {
		return false
	}
	return ch.GuildID == guildID
}

// BuildEmbeds turns message fragments into Discord embeds, one per day,
// mirroring the layout users already know.
func BuildEmbeds(fragments []forecast.MessageFragment) []*discordgo.MessageEmbed {
	embeds := make([]*discordgo.MessageEmbed, 0, len(fragments))
	for _, f := range fragments {
		embeds = append(embeds, &discordgo.MessageEmbed{
			Title:     f.Title,
			Thumbnail: &discordgo.MessageEmbedThumbnail{URL: f.Thumbnail},
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Day Temp", Value: f.DayTemp, Inline: true},
				{Name: "Night Temp", Value: f.NightTemp, Inline: true},
				{Name: "Weather", Value: f.Weather, Inline: false},
				{Name: "UV Index", Value: f.UVIndex, Inline: true},
				{Name: "Precipitation", Value: f.Precipitation, Inline: true},
			},
		})
	}
	return embeds
}

// mapRESTError translates discordgo REST failures into the gateway's
// sentinel errors.
func mapRESTError(err error) error {
	var rerr *discordgo.RESTError
	if !errors.As(err, &rerr) {
		return err
	}

	if rerr.Message != nil {
		switch rerr.Message.Code {
		case discordgo.ErrCodeUnknownMessage:
			return ErrMessageNotFound
		case discordgo.ErrCodeUnknownChannel, discordgo.ErrCodeUnknownGuild:
			return ErrChannelNotFound
		case discordgo.ErrCodeMissingPermissions, discordgo.ErrCodeMissingAccess:
			return ErrPermissionDenied
		}
	}
	if rerr.Response != nil && rerr.Response.StatusCode == http.StatusForbidden {
		return ErrPermissionDenied
	}
	return err
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
