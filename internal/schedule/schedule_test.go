// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schedule

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/market-digest/internal/aggregate"
	"github.com/pdiddy/market-digest/internal/pipeline"
	"github.com/pdiddy/market-digest/internal/store"
)

// --- mocks ---

type mockDigester struct {
	digest string
	err    error
	calls  int
}

func (m *mockDigester) Run(_ context.Context, _ aggregate.Query) (pipeline.Result, error) {
	m.calls++
	return pipeline.Result{RunID: "run-1", Digest: m.digest, Count: 1}, m.err
}

type memSubscribers struct {
	ids     []int64
	removed []int64
	err     error
}

func (m *memSubscribers) Subscribers(context.Context) ([]store.Subscriber, error) {
	var out []store.Subscriber
	for _, id := range m.ids {
		out = append(out, store.Subscriber{ChatID: id})
	}
	return out, m.err
}

func (m *memSubscribers) RemoveSubscriber(_ context.Context, id int64) (bool, error) {
	m.removed = append(m.removed, id)
	return true, nil
}

type recordingNotifier struct {
	sent map[int64]string
	fail map[int64]error
}

func (n *recordingNotifier) Notify(_ context.Context, chatID int64, message string) error {
	if err := n.fail[chatID]; err != nil {
		return err
	}
	if n.sent == nil {
		n.sent = map[int64]string{}
	}
	n.sent[chatID] = message
	return nil
}

type memRecorder struct{ runs []store.Run }

func (m *memRecorder) RecordRun(_ context.Context, r store.Run) error {
	m.runs = append(m.runs, r)
	return nil
}

var fixedNow = time.Date(2026, 10, 18, 3, 30, 0, 0, time.UTC)

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}

// --- Trigger ---

func TestTrigger_SendsToEverySubscriber(t *testing.T) {
	dig := &mockDigester{digest: "*📰 Market News*\n\nbody"}
	subs := &memSubscribers{ids: []int64{1, 2}}
	notifier := &recordingNotifier{}
	rec := &memRecorder{}

	d := &Daily{
		Digester:    dig,
		Subscribers: subs,
		Notifier:    notifier,
		Recorder:    rec,
		Location:    kolkata(t),
		Now:         func() time.Time { return fixedNow },
	}

	delivery, err := d.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Delivery{RunID: "run-1", Sent: 2}, delivery)

	want := "📅 DAILY MARKET UPDATE - Sunday, 18 October 2026 📅\n\n*📰 Market News*\n\nbody"
	assert.Equal(t, want, notifier.sent[1])
	assert.Equal(t, want, notifier.sent[2])
	require.Len(t, rec.runs, 1)
	assert.Equal(t, "run-1", rec.runs[0].ID)
}

func TestTrigger_NoSubscribersSkipsFetch(t *testing.T) {
	dig := &mockDigester{}
	d := &Daily{Digester: dig, Subscribers: &memSubscribers{}, Notifier: &recordingNotifier{}}

	delivery, err := d.Trigger(context.Background())
	require.NoError(t, err)
	assert.Zero(t, delivery)
	assert.Zero(t, dig.calls)
}

func TestTrigger_RemovesGoneRecipients(t *testing.T) {
	logger, hook := test.NewNullLogger()
	subs := &memSubscribers{ids: []int64{1, 2, 3}}
	notifier := &recordingNotifier{fail: map[int64]error{
		2: ErrRecipientGone,
		3: errors.New("network down"),
	}}

	d := &Daily{
		Digester:    &mockDigester{digest: "body"},
		Subscribers: subs,
		Notifier:    notifier,
		Log:         logger,
	}

	delivery, err := d.Trigger(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, delivery.Sent)
	assert.Equal(t, 2, delivery.Failed)
	assert.Equal(t, 1, delivery.Removed)
	assert.Equal(t, []int64{2}, subs.removed)
	assert.NotEmpty(t, hook.AllEntries())
}

func TestTrigger_Errors(t *testing.T) {
	_, err := (&Daily{
		Digester:    &mockDigester{},
		Subscribers: &memSubscribers{err: errors.New("db locked")},
		Notifier:    &recordingNotifier{},
	}).Trigger(context.Background())
	assert.ErrorContains(t, err, "listing subscribers")

	_, err = (&Daily{
		Digester:    &mockDigester{err: errors.New("no news providers configured")},
		Subscribers: &memSubscribers{ids: []int64{1}},
		Notifier:    &recordingNotifier{},
	}).Trigger(context.Background())
	assert.ErrorContains(t, err, "building daily digest")
}

func TestTrigger_MessageBounded(t *testing.T) {
	notifier := &recordingNotifier{}
	d := &Daily{
		Digester:    &mockDigester{digest: strings.Repeat("x", 5000)},
		Subscribers: &memSubscribers{ids: []int64{7}},
		Notifier:    notifier,
		MaxLength:   1000,
	}
	_, err := d.Trigger(context.Background())
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(notifier.sent[7])), 1000)
}

// --- helpers ---

func TestHeader(t *testing.T) {
	ist := fixedNow.In(kolkata(t))
	assert.Equal(t, "📅 DAILY MARKET UPDATE - Sunday, 18 October 2026 📅", Header(ist))
}

func TestSpec(t *testing.T) {
	tests := []struct {
		clock, tz string
		want      string
		wantErr   bool
	}{
		{clock: "09:00", tz: "Asia/Kolkata", want: "CRON_TZ=Asia/Kolkata 0 9 * * *"},
		{clock: "16:45", tz: "", want: "45 16 * * *"},
		{clock: "9:05", tz: "UTC", want: "CRON_TZ=UTC 5 9 * * *"},
		{clock: "24:00", tz: "UTC", wantErr: true},
		{clock: "0900", tz: "UTC", wantErr: true},
		{clock: "09:00", tz: "Mars/Olympus", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.clock+" "+tt.tz, func(t *testing.T) {
			got, err := Spec(tt.clock, tt.tz)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriterNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewWriterNotifier(&buf)
	require.NoError(t, n.Notify(context.Background(), 42, "hello"))
	assert.Equal(t, "--- chat 42 ---\nhello\n\n", buf.String())
}

func TestStart_RejectsBadSpec(t *testing.T) {
	d := &Daily{Digester: &mockDigester{}, Subscribers: &memSubscribers{}, Notifier: &recordingNotifier{}}
	_, err := d.Start(context.Background(), "not a spec", nil)
	assert.Error(t, err)
}

func TestStart_ValidSpec(t *testing.T) {
	d := &Daily{Digester: &mockDigester{}, Subscribers: &memSubscribers{}, Notifier: &recordingNotifier{}}
	c, err := d.Start(context.Background(), "CRON_TZ=Asia/Kolkata 0 9 * * *", nil)
	require.NoError(t, err)
	defer c.Stop()
	require.Len(t, c.Entries(), 1)
	assert.False(t, c.Entries()[0].Next.IsZero())
}
