package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"botdash/internal/domain"
	"botdash/internal/logger"
)

var (
	ctx       = context.Background()
	testLog   = logger.Discard().Entry()
	fixedNow  = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fixedTime = func() time.Time { return fixedNow }
)

func newAdmin() *domain.User {
	return &domain.User{ID: uuid.New(), Name: "Root", Role: domain.RoleAdmin, Plan: domain.PlanFree}
}

func newUser(plan string) *domain.User {
	return &domain.User{ID: uuid.New(), Name: "User " + plan, Role: domain.RoleUser, Plan: plan}
}

type fakeNotifier struct {
	mu        sync.Mutex
	reminders map[string]int
	failures  []domain.Signal
	err       error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{reminders: make(map[string]int)}
}

func (n *fakeNotifier) SendSubscriptionReminder(sub domain.Subscription, daysLeft int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reminders[sub.UserID] = daysLeft
	return n.err
}

func (n *fakeNotifier) SendSignalFailures(signal domain.Signal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, signal)
	return n.err
}

type upperSealer struct{}

func (upperSealer) Seal(p []byte) ([]byte, error) {
	return append([]byte("sealed:"), p...), nil
}

func uuidFor(n int) uuid.UUID {
	var id uuid.UUID
	id[15] = byte(n)
	id[14] = byte(n >> 8)
	return id
}
