package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alertify/go-alertify-server/email"
	"github.com/alertify/go-alertify-server/repository"
	"github.com/alertify/go-alertify-server/services"
)

type sentMail struct {
	From     string
	Password string
	To       string
}

// fakeSender records sends; failures and delays are keyed by recipient.
type fakeSender struct {
	mu     sync.Mutex
	sent   []sentMail
	failTo map[string]bool
	delay  map[string]time.Duration
}

func newFakeSender() *fakeSender {
	return &fakeSender{failTo: map[string]bool{}, delay: map[string]time.Duration{}}
}

func (f *fakeSender) Send(ctx context.Context, creds email.Credentials, msg *email.Message) error {
	f.mu.Lock()
	d := f.delay[msg.To]
	fail := f.failTo[msg.To]
	f.mu.Unlock()
	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if fail {
		return errors.New("smtp: authentication failed")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{From: creds.Address, Password: creds.AppPassword, To: msg.To})
	return nil
}

func (f *fakeSender) sentTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	recipients := make([]string, 0, len(f.sent))
	for _, s := range f.sent {
		recipients = append(recipients, s.To)
	}
	return recipients
}

func newTestCoordinator(store repository.Storage, sender email.Sender) *Coordinator {
	users := services.NewUserService(store, nil)
	return NewCoordinator(store, users, sender, 10, 2*time.Second)
}

func TestCycleSendsAndMarksCompleted(t *testing.T) {
	store := setupStore(t)
	sender := newFakeSender()
	user := addUser(t, store, "jane@example.com", true)
	reminder := addReminder(t, store, user.ID, "Pay bill", "2024-01-01 09:00:00", "", false)

	stats := newTestCoordinator(store, sender).RunCycle(context.Background())
	assert.Equal(t, 1, stats.Sent)
	assert.Equal(t, 0, stats.Failed)

	// the sender was invoked with the users email and credentials
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "jane@example.com", sender.sent[0].To)
	assert.Equal(t, "jane@example.com", sender.sent[0].From)

	loaded, err := store.GetReminder(context.Background(), reminder.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsCompleted)
}

func TestCycleSkipsUserWithEmptyAppPassword(t *testing.T) {
	store := setupStore(t)
	sender := newFakeSender()
	user := addUser(t, store, "jane@example.com", false)
	reminder := addReminder(t, store, user.ID, "Pay bill", "2024-01-01 09:00:00", "", false)

	stats := newTestCoordinator(store, sender).RunCycle(context.Background())
	assert.Equal(t, 0, stats.Sent)
	assert.Equal(t, 1, stats.Skipped)
	assert.Empty(t, sender.sent)

	loaded, err := store.GetReminder(context.Background(), reminder.ID)
	require.NoError(t, err)
	assert.False(t, loaded.IsCompleted)
}

func TestFailedSendLeavesReminderDueAndSiblingsUnaffected(t *testing.T) {
	store := setupStore(t)
	sender := newFakeSender()
	failing := addUser(t, store, "fail@example.com", true)
	healthy := addUser(t, store, "ok@example.com", true)
	failingReminder := addReminder(t, store, failing.ID, "will fail", "2024-01-01 09:00:00", "", false)
	healthyReminder := addReminder(t, store, healthy.ID, "will send", "2024-01-01 09:00:00", "", false)
	sender.failTo["fail@example.com"] = true

	stats := newTestCoordinator(store, sender).RunCycle(context.Background())
	assert.Equal(t, 1, stats.Sent)
	assert.Equal(t, 1, stats.Failed)

	loadedFailing, err := store.GetReminder(context.Background(), failingReminder.ID)
	require.NoError(t, err)
	assert.False(t, loadedFailing.IsCompleted)

	loadedHealthy, err := store.GetReminder(context.Background(), healthyReminder.ID)
	require.NoError(t, err)
	assert.True(t, loadedHealthy.IsCompleted)
}

func TestFailedSendIsRetriedNextCycle(t *testing.T) {
	store := setupStore(t)
	sender := newFakeSender()
	user := addUser(t, store, "flaky@example.com", true)
	reminder := addReminder(t, store, user.ID, "retry me", "2024-01-01 09:00:00", "", false)
	sender.failTo["flaky@example.com"] = true

	coordinator := newTestCoordinator(store, sender)
	stats := coordinator.RunCycle(context.Background())
	assert.Equal(t, 1, stats.Failed)

	// the transport recovers; the next cycle picks the reminder up again
	sender.mu.Lock()
	sender.failTo["flaky@example.com"] = false
	sender.mu.Unlock()

	stats = coordinator.RunCycle(context.Background())
	assert.Equal(t, 1, stats.Sent)

	loaded, err := store.GetReminder(context.Background(), reminder.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsCompleted)
}

func TestSlowSendDoesNotStallSiblings(t *testing.T) {
	store := setupStore(t)
	sender := newFakeSender()
	slow := addUser(t, store, "slow@example.com", true)
	fast := addUser(t, store, "fast@example.com", true)
	slowReminder := addReminder(t, store, slow.ID, "slow", "2024-01-01 09:00:00", "", false)
	fastReminder := addReminder(t, store, fast.ID, "fast", "2024-01-01 09:00:00", "", false)
	sender.delay["slow@example.com"] = 300 * time.Millisecond

	start := time.Now()
	stats := newTestCoordinator(store, sender).RunCycle(context.Background())
	elapsed := time.Since(start)

	// both complete in one cycle, roughly in the slow sends time
	assert.Equal(t, 2, stats.Sent)
	assert.Less(t, elapsed, 2*300*time.Millisecond)

	for _, id := range []string{slowReminder.ID, fastReminder.ID} {
		loaded, err := store.GetReminder(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, loaded.IsCompleted)
	}
}

func TestSendTimeoutBoundsCycleLatency(t *testing.T) {
	store := setupStore(t)
	sender := newFakeSender()
	user := addUser(t, store, "hang@example.com", true)
	reminder := addReminder(t, store, user.ID, "hangs", "2024-01-01 09:00:00", "", false)
	sender.delay["hang@example.com"] = time.Hour

	users := services.NewUserService(store, nil)
	coordinator := NewCoordinator(store, users, sender, 10, 100*time.Millisecond)

	stats := coordinator.RunCycle(context.Background())
	assert.Equal(t, 1, stats.Failed)

	loaded, err := store.GetReminder(context.Background(), reminder.ID)
	require.NoError(t, err)
	assert.False(t, loaded.IsCompleted)
}

func TestOverlappingTriggerIsNoOp(t *testing.T) {
	store := setupStore(t)
	sender := newFakeSender()
	user := addUser(t, store, "busy@example.com", true)
	addReminder(t, store, user.ID, "busy", "2024-01-01 09:00:00", "", false)
	sender.delay["busy@example.com"] = 200 * time.Millisecond

	coordinator := newTestCoordinator(store, sender)

	firstDone := make(chan *CycleStats, 1)
	go func() {
		firstDone <- coordinator.RunCycle(context.Background())
	}()
	time.Sleep(50 * time.Millisecond)

	// second trigger while the first cycle is in flight
	second := coordinator.RunCycle(context.Background())
	assert.True(t, second.AlreadyRunning)

	first := <-firstDone
	assert.Equal(t, 1, first.Sent)
	require.Len(t, sender.sent, 1)
}

func TestCredentialsResolvedFreshAtSendTime(t *testing.T) {
	store := setupStore(t)
	sender := newFakeSender()
	user := addUser(t, store, "fresh@example.com", true)
	addReminder(t, store, user.ID, "fresh", "2024-01-01 09:00:00", "", false)

	// the user rotates the app password between scan cycles
	user.AppPassword = "rotated-secret"
	require.NoError(t, store.UpdateUser(context.Background(), user))

	stats := newTestCoordinator(store, sender).RunCycle(context.Background())
	assert.Equal(t, 1, stats.Sent)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "rotated-secret", sender.sent[0].Password)
}
