package usecase_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/acdc-digital/solopro-sub000/internal/adapter/repository"
	"github.com/acdc-digital/solopro-sub000/internal/domain/entity"
	domainRepo "github.com/acdc-digital/solopro-sub000/internal/domain/repository"
	"github.com/acdc-digital/solopro-sub000/internal/metrics"
	"github.com/acdc-digital/solopro-sub000/internal/testutil"
	"github.com/acdc-digital/solopro-sub000/internal/usecase"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recordingPublisher keeps every published message in memory.
type recordingPublisher struct {
	mu       sync.Mutex
	channels []string
	messages []interface{}
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels = append(p.channels, channel)
	p.messages = append(p.messages, message)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.channels...)
}

// fixture wires the billing usecases to a private SQLite database and a
// clock the test controls.
type fixture struct {
	db            *gorm.DB
	users         domainRepo.UserRepository
	payments      domainRepo.PaymentRepository
	subscriptions domainRepo.SubscriptionRepository
	mappings      domainRepo.CustomerMappingRepository
	webhooks      domainRepo.WebhookRepository
	publisher     *recordingPublisher

	resolver   usecase.IdentityResolver
	recorder   usecase.PaymentRecorder
	upserter   usecase.SubscriptionUpserter
	dispatcher usecase.EventDispatcher

	mu  sync.Mutex
	now time.Time
}

func newFixture(t *testing.T, policy usecase.UnresolvedPolicy) *fixture {
	return newFixtureWithMetrics(t, policy, nil)
}

func newFixtureWithMetrics(t *testing.T, policy usecase.UnresolvedPolicy, m metrics.BillingMetrics) *fixture {
	t.Helper()
	logger := zap.NewNop()
	db := testutil.NewTestDB(t)

	f := &fixture{
		db:            db,
		users:         repository.NewUserRepository(db, logger),
		payments:      repository.NewPaymentRepository(db, logger),
		subscriptions: repository.NewSubscriptionRepository(db, logger),
		mappings:      repository.NewCustomerMappingRepository(db, logger),
		webhooks:      repository.NewWebhookRepository(db, logger),
		publisher:     &recordingPublisher{},
		now:           time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}

	notifier := usecase.NewSubscriptionNotifier(f.publisher, "billing.subscription", logger)
	f.resolver = usecase.NewIdentityResolver(f.users, policy, logger)
	f.recorder = usecase.NewPaymentRecorder(f.resolver, f.payments, f.users, f.mappings, f.clock, logger)
	f.upserter = usecase.NewSubscriptionUpserter(f.resolver, f.subscriptions, notifier, f.clock, logger)
	f.dispatcher = usecase.NewEventDispatcher(f.recorder, f.upserter, f.mappings, m, logger)
	return f
}

func (f *fixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func (f *fixture) addUser(t *testing.T, id, email string, createdAt time.Time) {
	t.Helper()
	user := &entity.User{ID: id, CreatedAt: createdAt}
	if email != "" {
		user.Email = &email
	}
	require.NoError(t, f.users.Create(context.Background(), user))
}

func (f *fixture) count(t *testing.T, table interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(table).Count(&n).Error)
	return n
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }
