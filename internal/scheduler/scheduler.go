package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"OskoFlow/internal/desk"
	"OskoFlow/internal/model"
	"OskoFlow/internal/notifier"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Sender delivers a message to a chat. notifier.TelegramNotifier implements it.
type Sender interface {
	SendWithRetry(ctx context.Context, chatID, text string, maxRetries int) error
}

// Options configures a Scheduler.
type Options struct {
	Location     *time.Location
	AdminIDs     []int64
	Channel      string        // initial auto-post channel, may be empty
	MessageDelay time.Duration // pause between posted cards
	MaxRetries   int
}

// Scheduler owns the cron triggers and dispatches chat commands.
type Scheduler struct {
	Cron   *cron.Cron
	Desk   *desk.Manager
	Sender Sender
	Ctx    context.Context

	loc        *time.Location
	admins     map[int64]struct{}
	delay      time.Duration
	maxRetries int
	now        func() time.Time

	mu      sync.Mutex
	channel string
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, dm *desk.Manager, sender Sender, opts Options) *Scheduler {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	admins := make(map[int64]struct{}, len(opts.AdminIDs))
	for _, id := range opts.AdminIDs {
		admins[id] = struct{}{}
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Desk:       dm,
		Sender:     sender,
		Ctx:        ctx,
		loc:        loc,
		admins:     admins,
		delay:      opts.MessageDelay,
		maxRetries: maxRetries,
		now:        func() time.Time { return time.Now().In(loc) },
		channel:    opts.Channel,
	}
}

// RegisterAll registers the refresh and auto-post triggers.
func (s *Scheduler) RegisterAll(refreshCron, autoPostCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.RefreshNow); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(autoPostCron, s.AutoPost); err != nil {
		return fmt.Errorf("register auto-post task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Str("location", s.loc.String()).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// Channel returns the registered auto-post channel.
func (s *Scheduler) Channel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel
}

// SetChannel registers the auto-post channel.
func (s *Scheduler) SetChannel(chatID string) {
	s.mu.Lock()
	s.channel = chatID
	s.mu.Unlock()
	log.Info().Str("chat_id", chatID).Msg("auto-post channel set")
}

// IsPrivileged reports whether the user may run admin commands.
func (s *Scheduler) IsPrivileged(userID int64) bool {
	_, ok := s.admins[userID]
	return ok
}

// IsMarketDay reports whether t falls on Monday through Friday.
func IsMarketDay(t time.Time) bool {
	wd := t.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}

// RefreshNow regenerates the active set.
func (s *Scheduler) RefreshNow() {
	log.Info().Msg("running scheduled refresh")
	if _, err := s.Desk.Refresh(s.Ctx); err != nil {
		log.Error().Err(err).Msg("refresh failed")
	}
}

// AutoPost posts the current set to the registered channel on market days.
func (s *Scheduler) AutoPost() {
	channel := s.Channel()
	if channel == "" {
		log.Debug().Msg("auto-post skipped: no channel registered")
		return
	}
	if !IsMarketDay(s.now()) {
		log.Debug().Msg("auto-post skipped: market closed")
		return
	}
	log.Info().Str("chat_id", channel).Msg("running auto-post")
	s.postDaily(s.Ctx, channel)
}

// HandleCommand dispatches a chat command. Unknown commands are ignored.
func (s *Scheduler) HandleCommand(ctx context.Context, cmd notifier.Command) {
	switch cmd.Name {
	case "daily":
		s.postDaily(ctx, cmd.ChatID)
	case "refresh":
		s.trySend(ctx, cmd.ChatID, "🔄 Generating fresh recommendations...")
		if _, err := s.Desk.Refresh(ctx); err != nil {
			log.Error().Err(err).Msg("refresh failed")
			return
		}
		s.postDaily(ctx, cmd.ChatID)
	case "safe":
		s.postSafe(ctx, cmd)
	case "setchannel":
		s.SetChannel(cmd.ChatID)
		s.trySend(ctx, cmd.ChatID, "✅ Auto-post channel set! Daily options will post here at 9:30 AM ET.")
	case "help":
		s.trySend(ctx, cmd.ChatID, notifier.FormatHelp())
	default:
		log.Debug().Str("command", cmd.Name).Msg("ignoring unknown command")
	}
}

func (s *Scheduler) postDaily(ctx context.Context, chatID string) {
	set, err := s.Desk.EnsureCurrent(ctx)
	if err != nil {
		log.Error().Err(err).Msg("generate recommendations")
		return
	}
	if set.Len() == 0 {
		s.trySend(ctx, chatID, notifier.FormatEmpty())
		return
	}
	now := s.now()
	s.trySend(ctx, chatID, notifier.FormatDailyHeader(set.Len(), now))
	s.postCards(ctx, chatID, set.Items, func(rec *model.Recommendation, i int) string {
		return notifier.FormatCard(rec, i+1, set.Len(), now)
	})
}

func (s *Scheduler) postSafe(ctx context.Context, cmd notifier.Command) {
	if !s.IsPrivileged(cmd.UserID) {
		log.Info().Int64("user_id", cmd.UserID).Msg("safe plays denied")
		s.trySend(ctx, cmd.ChatID, "❌ This command is only available to bot admins.")
		return
	}
	s.trySend(ctx, cmd.ChatID, "🔒 Analyzing 100% confidence plays...")
	plays, synthesized := s.Desk.SafePlays(ctx)
	if synthesized {
		s.trySend(ctx, cmd.ChatID, notifier.FormatSafeSynthesizing())
	}
	if len(plays) == 0 {
		s.trySend(ctx, cmd.ChatID, notifier.FormatEmpty())
		return
	}
	s.trySend(ctx, cmd.ChatID, notifier.FormatSafeHeader())
	s.postCards(ctx, cmd.ChatID, plays, func(rec *model.Recommendation, i int) string {
		return notifier.FormatSafeCard(rec, i+1)
	})
}

func (s *Scheduler) postCards(ctx context.Context, chatID string, recs []*model.Recommendation, format func(*model.Recommendation, int) string) {
	for i, rec := range recs {
		if ctx.Err() != nil {
			return
		}
		s.trySend(ctx, chatID, format(rec, i))
		s.trySend(ctx, chatID, notifier.Separator)
		if i < len(recs)-1 {
			s.pause(ctx)
		}
	}
}

func (s *Scheduler) pause(ctx context.Context) {
	if s.delay <= 0 {
		return
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (s *Scheduler) trySend(ctx context.Context, chatID, text string) {
	if err := s.Sender.SendWithRetry(ctx, chatID, text, s.maxRetries); err != nil {
		log.Error().Err(err).Str("chat_id", chatID).Msg("send notification")
	}
}
