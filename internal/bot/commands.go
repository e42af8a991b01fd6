package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/discord-bot-collab/weatherbot/internal/chat"
	"github.com/discord-bot-collab/weatherbot/internal/forecast"
	"github.com/discord-bot-collab/weatherbot/internal/geo"
	"github.com/discord-bot-collab/weatherbot/internal/scheduler"
	"github.com/discord-bot-collab/weatherbot/internal/subscription"
)

// citySelectPrefix namespaces the /weather dropdown's component custom id;
// the suffix is the pending-selection id.
const citySelectPrefix = "weather_city:"

// Bot wires the slash commands to the forecast pipeline.
type Bot struct {
	store       *subscription.Store
	resolver    scheduler.Resolver
	fetcher     scheduler.Fetcher
	sched       *scheduler.Scheduler
	selections  *SelectionTable
	callTimeout time.Duration
}

// New creates the command layer.
func New(store *subscription.Store, resolver scheduler.Resolver, fetcher scheduler.Fetcher, sched *scheduler.Scheduler, selectionTTL, callTimeout time.Duration) *Bot {
	return &Bot{
		store:       store,
		resolver:    resolver,
		fetcher:     fetcher,
		sched:       sched,
		selections:  NewSelectionTable(selectionTTL),
		callTimeout: callTimeout,
	}
}

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "hello",
		Description: "Say hello to the bot.",
	},
	{
		Name:        "weather",
		Description: "Get a 7-day weather forecast",
	},
	{
		Name:        "setweeklyforecast",
		Description: "Set a channel and location for daily weather updates.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionChannel,
				Name:        "channel",
				Description: "Channel the daily forecast is posted in",
				Required:    true,
				ChannelTypes: []discordgo.ChannelType{
					discordgo.ChannelTypeGuildText,
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "location",
				Description: "Place name to forecast, e.g. \"Exeter, UK\"",
				Required:    true,
			},
		},
	},
	{
		Name:        "removeweeklyforecast",
		Description: "Remove the configured daily forecast for this server.",
	},
}

// Register attaches the interaction handler and overwrites the application's
// slash commands. The session must already be open.
func (b *Bot) Register(session *discordgo.Session) error {
	session.AddHandler(b.handleInteraction)

	if _, err := session.ApplicationCommandBulkOverwrite(session.State.User.ID, "", commands); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}
	return nil
}

func (b *Bot) handleInteraction(session *discordgo.Session, event *discordgo.InteractionCreate) {
	switch event.Type {
	case discordgo.InteractionApplicationCommand:
		switch event.ApplicationCommandData().Name {
		case "hello":
			b.handleHello(session, event)
		case "weather":
			b.handleWeather(session, event)
		case "setweeklyforecast":
			b.handleSetWeeklyForecast(session, event)
		case "removeweeklyforecast":
			b.handleRemoveWeeklyForecast(session, event)
		}
	case discordgo.InteractionMessageComponent:
		if strings.HasPrefix(event.MessageComponentData().CustomID, citySelectPrefix) {
			b.handleCitySelected(session, event)
		}
	}
}

func (b *Bot) handleHello(session *discordgo.Session, event *discordgo.InteractionCreate) {
	respondText(session, event, fmt.Sprintf("Hello %s!", invokingUser(event).Mention()), false)
}

// handleWeather opens the city dropdown. The choice itself arrives later as
// a component interaction handled by handleCitySelected.
func (b *Bot) handleWeather(session *discordgo.Session, event *discordgo.InteractionCreate) {
	options := make([]discordgo.SelectMenuOption, 0, len(cities))
	for _, name := range cityNames() {
		options = append(options, discordgo.SelectMenuOption{Label: name, Value: name})
	}

	err := session.InteractionRespond(event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Please select the city to get the weather forecast:",
			Flags:   discordgo.MessageFlagsEphemeral,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.SelectMenu{
							CustomID:    citySelectPrefix + b.selections.Begin(),
							Placeholder: "Choose a city",
							Options:     options,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Printf("bot: weather dropdown response failed: %v", err)
	}
}

func (b *Bot) handleCitySelected(session *discordgo.Session, event *discordgo.InteractionCreate) {
	data := event.MessageComponentData()

	if !b.selections.Resolve(strings.TrimPrefix(data.CustomID, citySelectPrefix)) {
		respondText(session, event, "This selection has expired. Run /weather again.", true)
		return
	}

	city := data.Values[0]
	coord, ok := cities[city]
	if !ok {
		respondText(session, event, fmt.Sprintf("Unknown city **%s**.", city), true)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), b.callTimeout)
	days, err := b.fetcher.Fetch(ctx, coord)
	cancel()
	if err != nil || len(days) == 0 {
		log.Printf("bot: forecast fetch for %s failed: %v", city, err)
		respondText(session, event, "Could not fetch the forecast right now, please try again later.", true)
		return
	}

	fragments, err := forecast.Present(city, days)
	if err != nil {
		log.Printf("bot: forecast render for %s failed: %v", city, err)
		respondText(session, event, "Could not render the forecast, please try again later.", true)
		return
	}

	respondEmbeds(session, event, chat.BuildEmbeds(fragments))
}

func (b *Bot) handleSetWeeklyForecast(session *discordgo.Session, event *discordgo.InteractionCreate) {
	var channel *discordgo.Channel
	var location string
	for _, opt := range event.ApplicationCommandData().Options {
		switch opt.Name {
		case "channel":
			channel = opt.ChannelValue(session)
		case "location":
			location = opt.StringValue()
		}
	}
	if channel == nil || location == "" {
		respondText(session, event, "Both a channel and a location are required.", true)
		return
	}

	// Geocode before writing anything: a location we cannot resolve is a
	// user error, not a subscription.
	ctx, cancel := context.WithTimeout(context.Background(), b.callTimeout)
	_, err := b.resolver.Resolve(ctx, location)
	cancel()
	if err != nil {
		if errors.Is(err, geo.ErrNotFound) {
			respondText(session, event, fmt.Sprintf("Could not find coordinates for **%s**.", location), true)
		} else {
			log.Printf("bot: geocoding %q failed: %v", location, err)
			respondText(session, event, "Geocoding is unavailable right now, please try again later.", true)
		}
		return
	}

	channelID, err := strconv.ParseInt(channel.ID, 10, 64)
	if err != nil {
		respondText(session, event, "Unexpected channel id, please try again.", true)
		return
	}

	guildID := event.GuildID
	if err := b.store.Set(guildID, subscription.Subscription{
		Channel:  channelID,
		Location: location,
	}); err != nil {
		log.Printf("bot: saving subscription for guild %s failed: %v", guildID, err)
		respondText(session, event, "Could not save the forecast configuration.", true)
		return
	}

	respondText(session, event, fmt.Sprintf(
		"Weekly forecast for **%s** will now be posted daily in <#%s>.", location, channel.ID), true)

	// First post happens right away so the message id is seeded before the
	// next scheduled run.
	runCtx, cancel := context.WithTimeout(context.Background(), 4*b.callTimeout)
	defer cancel()
	if err := b.sched.RunGuild(runCtx, guildID); err != nil {
		log.Printf("bot: initial forecast post for guild %s failed: %v", guildID, err)
	}
}

func (b *Bot) handleRemoveWeeklyForecast(session *discordgo.Session, event *discordgo.InteractionCreate) {
	guildID := event.GuildID

	sub, err := b.store.Get(guildID)
	if err != nil {
		respondText(session, event, "No weekly forecast is currently set up for this server.", true)
		return
	}

	if err := b.store.Remove(guildID); err != nil {
		log.Printf("bot: removing subscription for guild %s failed: %v", guildID, err)
		respondText(session, event, "Could not remove the forecast configuration.", true)
		return
	}

	respondText(session, event, fmt.Sprintf(
		"Weekly forecast updates have been **removed** for <#%d>.", sub.Channel), true)
}

func invokingUser(event *discordgo.InteractionCreate) *discordgo.User {
	if event.Member != nil {
		return event.Member.User
	}
	return event.User
}

func respondText(session *discordgo.Session, event *discordgo.InteractionCreate, content string, ephemeral bool) {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := session.InteractionRespond(event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
	if err != nil {
		log.Printf("bot: interaction response failed: %v", err)
	}
}

func respondEmbeds(session *discordgo.Session, event *discordgo.InteractionCreate, embeds []*discordgo.MessageEmbed) {
	err := session.InteractionRespond(event.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: embeds,
		},
	})
	if err != nil {
		log.Printf("bot: interaction response failed: %v", err)
	}
}
