package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/discord-bot-collab/weatherbot/internal/chat"
	"github.com/discord-bot-collab/weatherbot/internal/forecast"
	"github.com/discord-bot-collab/weatherbot/internal/geo"
	"github.com/discord-bot-collab/weatherbot/internal/subscription"
)

// Resolver resolves a place name to a coordinate.
type Resolver interface {
	Resolve(ctx context.Context, address string) (geo.Coordinate, error)
}

// Fetcher fetches daily forecasts for a coordinate.
type Fetcher interface {
	Fetch(ctx context.Context, coord geo.Coordinate) ([]forecast.DailyForecast, error)
}

// Scheduler posts each guild's forecast once daily at a fixed wall-clock
// time, editing the previous day's message in place when it still exists.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	store       *subscription.Store
	resolver    Resolver
	fetcher     Fetcher
	gateway     chat.Gateway
	postTime    string // "HH:MM", interpreted in UTC
	callTimeout time.Duration
}

// New creates a Scheduler. postTime is the daily wall-clock trigger in
// "HH:MM" form; callTimeout bounds every external call so one unreachable
// host cannot stall the run.
func New(store *subscription.Store, resolver Resolver, fetcher Fetcher, gateway chat.Gateway, postTime string, callTimeout time.Duration) *Scheduler {
	return &Scheduler{
		scheduler:   gocron.NewScheduler(time.UTC),
		store:       store,
		resolver:    resolver,
		fetcher:     fetcher,
		gateway:     gateway,
		postTime:    postTime,
		callTimeout: callTimeout,
	}
}

// Start schedules the daily job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().At(s.postTime).Do(func() {
		log.Println("scheduler: running daily forecast job")
		s.RunAll(context.Background())
		log.Println("scheduler: completed daily forecast job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RunAll processes every subscription sequentially. One subscription fully
// resolves before the next starts, which bounds external API load; a failing
// subscription never aborts the others.
func (s *Scheduler) RunAll(ctx context.Context) {
	for guildID, sub := range s.store.All() {
		if err := s.runOne(ctx, guildID, sub); err != nil {
			log.Printf("scheduler: forecast for guild %s skipped: %v", guildID, err)
		}
	}
}

// RunGuild processes a single guild's subscription immediately. Command
// handlers call this right after a set, seeding the first message id.
func (s *Scheduler) RunGuild(ctx context.Context, guildID string) error {
	sub, err := s.store.Get(guildID)
	if err != nil {
		return err
	}
	return s.runOne(ctx, guildID, sub)
}

// runOne walks one subscription through the pipeline:
// resolve channel, geocode, fetch, render, publish, persist.
// A nil return means the cycle completed or was skipped deliberately.
func (s *Scheduler) runOne(ctx context.Context, guildID string, sub subscription.Subscription) error {
	// The external world may have changed: a deleted channel or guild is a
	// skip, not an error, and the subscription stays configured.
	checkCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	exists := s.gateway.ChannelExists(checkCtx, guildID, sub.Channel)
	cancel()
	if !exists {
		log.Printf("scheduler: channel %d in guild %s no longer exists, skipping", sub.Channel, guildID)
		return nil
	}

	geoCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	coord, err := s.resolver.Resolve(geoCtx, sub.Location)
	cancel()
	if err != nil {
		if errors.Is(err, geo.ErrNotFound) {
			// Keep the subscription: a failed lookup today should not lose
			// the configuration.
			log.Printf("scheduler: no coordinates for %q (guild %s), skipping", sub.Location, guildID)
			return nil
		}
		return fmt.Errorf("geocode %q: %w", sub.Location, err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	days, err := s.fetcher.Fetch(fetchCtx, coord)
	cancel()
	if err != nil {
		return fmt.Errorf("fetch forecast: %w", err)
	}
	if len(days) == 0 {
		return fmt.Errorf("fetch forecast: empty response")
	}

	fragments, err := forecast.Present(sub.Location, days)
	if err != nil {
		return fmt.Errorf("render forecast: %w", err)
	}

	return s.publish(ctx, guildID, sub, fragments)
}

// publish edits the previous forecast message in place when one exists,
// falling back to a fresh send when it was deleted externally. Only a newly
// created message triggers a store write; an in-place edit leaves the
// identity unchanged.
func (s *Scheduler) publish(ctx context.Context, guildID string, sub subscription.Subscription, fragments []forecast.MessageFragment) error {
	if sub.MessageID != nil {
		editCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		err := s.gateway.Edit(editCtx, sub.Channel, *sub.MessageID, fragments)
		cancel()

		switch {
		case err == nil:
			return nil
		case errors.Is(err, chat.ErrMessageNotFound):
			// Deleted externally; send a new one below.
		case errors.Is(err, chat.ErrPermissionDenied):
			log.Printf("scheduler: cannot edit forecast in channel %d (guild %s): missing permission", sub.Channel, guildID)
			return nil
		default:
			return fmt.Errorf("edit message %d: %w", *sub.MessageID, err)
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	messageID, err := s.gateway.Send(sendCtx, sub.Channel, fragments)
	cancel()
	if err != nil {
		if errors.Is(err, chat.ErrPermissionDenied) {
			log.Printf("scheduler: cannot post forecast in channel %d (guild %s): missing permission", sub.Channel, guildID)
			return nil
		}
		return fmt.Errorf("send message: %w", err)
	}

	if err := s.store.SetMessageID(guildID, messageID); err != nil {
		// Subscription removed mid-cycle; the message stands, nothing to record.
		if errors.Is(err, subscription.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("persist message id: %w", err)
	}
	return nil
}
