// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schedule delivers the daily digest to subscribers on a cron
// schedule.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/market-digest/internal/aggregate"
	"github.com/pdiddy/market-digest/internal/digest"
	"github.com/pdiddy/market-digest/internal/pipeline"
	"github.com/pdiddy/market-digest/internal/store"
)

// ErrRecipientGone is returned by a Notifier when the chat can no longer
// receive messages. Such subscribers are removed.
var ErrRecipientGone = errors.New("recipient unavailable")

// Notifier delivers a message to one chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, message string) error
}

// WriterNotifier writes each message to w under a chat marker line.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier returns a Notifier that prints to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify implements Notifier.
func (n *WriterNotifier) Notify(_ context.Context, chatID int64, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintf(n.w, "--- chat %d ---\n%s\n\n", chatID, message)
	return err
}

// Digester produces a digest. *pipeline.Pipeline implements it.
type Digester interface {
	Run(ctx context.Context, q aggregate.Query) (pipeline.Result, error)
}

// Subscribers lists and prunes recipients. *store.Store implements it.
type Subscribers interface {
	Subscribers(ctx context.Context) ([]store.Subscriber, error)
	RemoveSubscriber(ctx context.Context, chatID int64) (bool, error)
}

// Recorder keeps run history. *store.Store implements it.
type Recorder interface {
	RecordRun(ctx context.Context, r store.Run) error
}

// Delivery counts the outcome of one trigger.
type Delivery struct {
	RunID   string
	Sent    int
	Failed  int
	Removed int
}

// Daily builds the daily message and sends it to every subscriber.
type Daily struct {
	Digester    Digester
	Subscribers Subscribers
	Notifier    Notifier

	// Recorder is optional.
	Recorder Recorder

	// Location dates the header. Defaults to UTC.
	Location *time.Location

	// MaxLength bounds the message including the header.
	MaxLength int

	Log logrus.FieldLogger

	// Now is replaced in tests.
	Now func() time.Time
}

// Header is the first line of the daily message.
func Header(t time.Time) string {
	return fmt.Sprintf("📅 DAILY MARKET UPDATE - %s 📅", t.Format("Monday, 02 January 2006"))
}

// Trigger runs one delivery. Without subscribers nothing is fetched.
// Per-chat failures are logged and counted; a chat reporting
// ErrRecipientGone is unsubscribed.
func (d *Daily) Trigger(ctx context.Context) (Delivery, error) {
	log := d.logger()

	subs, err := d.Subscribers.Subscribers(ctx)
	if err != nil {
		return Delivery{}, fmt.Errorf("listing subscribers: %w", err)
	}
	if len(subs) == 0 {
		log.Info("no subscribers for daily update")
		return Delivery{}, nil
	}

	res, err := d.Digester.Run(ctx, aggregate.Query{})
	if err != nil {
		return Delivery{}, fmt.Errorf("building daily digest: %w", err)
	}
	delivery := Delivery{RunID: res.RunID}
	log = log.WithField("run_id", res.RunID)

	if d.Recorder != nil {
		if err := d.Recorder.RecordRun(ctx, res.RunRecord()); err != nil {
			log.WithError(err).Warn("recording run failed")
		}
	}

	msg := d.message(res.Digest)
	log.WithField("subscribers", len(subs)).Info("sending daily update")

	for _, sub := range subs {
		err := d.Notifier.Notify(ctx, sub.ChatID, msg)
		switch {
		case err == nil:
			delivery.Sent++
		case errors.Is(err, ErrRecipientGone):
			delivery.Failed++
			if removed, rerr := d.Subscribers.RemoveSubscriber(ctx, sub.ChatID); rerr != nil {
				log.WithError(rerr).WithField("chat_id", sub.ChatID).Warn("removing subscriber failed")
			} else if removed {
				delivery.Removed++
				log.WithField("chat_id", sub.ChatID).Info("removed unreachable subscriber")
			}
		default:
			delivery.Failed++
			log.WithError(err).WithField("chat_id", sub.ChatID).Error("daily update not delivered")
		}
	}
	return delivery, nil
}

func (d *Daily) message(body string) string {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	maxLen := d.MaxLength
	if maxLen <= 0 {
		maxLen = digest.DefaultMaxLength
	}
	return digest.Truncate(Header(now().In(loc))+"\n\n"+body, maxLen)
}

func (d *Daily) logger() logrus.FieldLogger {
	if d.Log != nil {
		return d.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Spec turns a daily HH:MM clock time in timezone tz into a cron spec
// with a CRON_TZ prefix.
func Spec(clock, tz string) (string, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return "", err
	}
	if tz == "" {
		return fmt.Sprintf("%d %d * * *", m, h), nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return "", fmt.Errorf("loading timezone %q: %w", tz, err)
	}
	return fmt.Sprintf("CRON_TZ=%s %d %d * * *", tz, m, h), nil
}

// ParseClock parses "HH:MM" on a 24-hour clock.
func ParseClock(clock string) (hour, minute int, err error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", clock)
	}
	hour, herr := strconv.Atoi(hs)
	minute, merr := strconv.Atoi(ms)
	if herr != nil || merr != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", clock)
	}
	return hour, minute, nil
}

// Start registers the daily job on a new cron under spec and starts it.
// Overlapping triggers are skipped and panics are recovered. The caller
// stops the returned cron.
func (d *Daily) Start(ctx context.Context, spec string, log cron.Logger) (*cron.Cron, error) {
	if log == nil {
		log = cron.DiscardLogger
	}
	c := cron.New(
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)
	_, err := c.AddFunc(spec, func() {
		delivery, err := d.Trigger(ctx)
		if err != nil {
			d.logger().WithError(err).Error("daily update failed")
			return
		}
		d.logger().WithFields(logrus.Fields{
			"run_id":  delivery.RunID,
			"sent":    delivery.Sent,
			"failed":  delivery.Failed,
			"removed": delivery.Removed,
		}).Info("daily update done")
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}
