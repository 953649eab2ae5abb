package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finkid/internal/domain"
	"finkid/internal/news"

	"github.com/robfig/cron/v3"
)

const (
	HourlyDigestSpec      = "0 * * * *"
	Timezone              = "UTC"
	TimezoneOffsetSeconds = 0
	sendDigestsTimeout    = 15 * time.Minute
)

type SubscriberStore interface {
	GetDigestSubscribers(ctx context.Context, hourUTC int64) ([]domain.DigestSubscriber, error)
}

type HeadlineSource interface {
	Latest(ctx context.Context, apiKey string, query string) news.Headlines
}

type DigestSender interface {
	SendDigest(ctx context.Context, chatID int64, headlines news.Headlines) error
}

type Scheduler struct {
	ctx        context.Context
	cron       *cron.Cron
	spec       string
	store      SubscriberStore
	headlines  HeadlineSource
	sender     DigestSender
	defaultKey string
	now        func() time.Time
	log        *slog.Logger
}

func New(
	ctx context.Context,
	spec string,
	store SubscriberStore,
	headlines HeadlineSource,
	sender DigestSender,
	defaultNewsAPIKey string,
	log *slog.Logger,
) *Scheduler {
	if spec == "" {
		spec = HourlyDigestSpec
	}

	return &Scheduler{
		ctx:        ctx,
		cron:       cron.New(cron.WithLocation(time.FixedZone(Timezone, TimezoneOffsetSeconds))),
		spec:       spec,
		store:      store,
		headlines:  headlines,
		sender:     sender,
		defaultKey: defaultNewsAPIKey,
		now:        time.Now,
		log:        log,
	}
}

func (s *Scheduler) Spec() string {
	return s.spec
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.sendDigests); err != nil {
		return fmt.Errorf("add cron func (spec = %s): %w", s.spec, err)
	}

	s.cron.Start()

	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendDigests() {
	ctx, cancel := context.WithTimeout(s.ctx, sendDigestsTimeout)
	defer cancel()

	s.sendHourDigests(ctx, int64(s.now().UTC().Hour()))
}

func (s *Scheduler) sendHourDigests(ctx context.Context, hourUTC int64) {
	if ctx.Err() != nil {
		s.log.InfoContext(ctx, "Scheduler context is done",
			"error", ctx.Err())
		return
	}

	subscribers, err := s.store.GetDigestSubscribers(ctx, hourUTC)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to get digest subscribers",
			"error", err,
			"hourUTC", hourUTC)
		return
	}

	sent := 0
	for _, subscriber := range subscribers {
		if ctx.Err() != nil {
			s.log.InfoContext(ctx, "Scheduler context is done",
				"error", ctx.Err(),
				"sent", sent)
			return
		}

		apiKey := subscriber.NewsAPIKey
		if apiKey == "" {
			apiKey = s.defaultKey
		}

		headlines := s.headlines.Latest(ctx, apiKey, "")

		if err = s.sender.SendDigest(ctx, subscriber.UserID, headlines); err != nil {
			s.log.ErrorContext(ctx, "Failed to send digest",
				"error", err,
				"hourUTC", hourUTC,
				"userID", subscriber.UserID,
				"source", headlines.Source)
			continue
		}
		sent++
	}

	s.log.InfoContext(ctx, "Digests are sent",
		"hourUTC", hourUTC,
		"subscribers", len(subscribers),
		"sent", sent)
}
