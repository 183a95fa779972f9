package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/realtime-catalog/internal/account"
	"github.com/fairyhunter13/realtime-catalog/internal/cache"
	"github.com/fairyhunter13/realtime-catalog/internal/model"
	"github.com/fairyhunter13/realtime-catalog/internal/obs"
	"github.com/fairyhunter13/realtime-catalog/internal/store"
)

type fakeNotifier struct {
	created []model.Product
}

func (f *fakeNotifier) NotifyProductCreated(p model.Product) {
	f.created = append(f.created, p)
}

type fakeQueue struct {
	jobs   []model.Job
	reject bool
}

func (f *fakeQueue) Enqueue(job model.Job) (model.Job, bool) {
	if f.reject {
		return model.Job{}, false
	}
	job.ID = "job-" + string(job.Type)
	job.EnqueuedAt = time.Now().UTC()
	f.jobs = append(f.jobs, job)
	return job, true
}

type fixture struct {
	svc      *Service
	store    *store.Store
	cache    *cache.Listing
	notifier *fakeNotifier
	queue    *fakeQueue
	accounts *account.Store
	actor    model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	obs.InitLogger()
	st := store.New()
	c := cache.NewListing(time.Minute)
	n := &fakeNotifier{}
	q := &fakeQueue{}
	accounts := account.New()
	actor, err := accounts.Create("u1@example.com", "u1", "pw")
	require.NoError(t, err)
	return &fixture{
		svc:      NewService(st, c, n, q, accounts),
		store:    st,
		cache:    c,
		notifier: n,
		queue:    q,
		accounts: accounts,
		actor:    actor,
	}
}

func TestCreateEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.Create(ctx, CreateInput{
		Name:        "Widget",
		Description: "a widget",
		Price:       9.99,
		Quantity:    5,
		Categories:  []string{"tools"},
	}, f.actor.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.True(t, p.IsActive)
	assert.Equal(t, f.actor.ID, p.CreatedBy)

	// broadcast carried the new product
	require.Len(t, f.notifier.created, 1)
	assert.Equal(t, p.ID, f.notifier.created[0].ID)

	// both side-effect jobs enqueued, email first
	require.Len(t, f.queue.jobs, 2)
	email := f.queue.jobs[0]
	assert.Equal(t, model.JobSendEmail, email.Type)
	assert.Equal(t, "u1@example.com", email.Email.To)
	assert.Equal(t, "Product Created Successfully", email.Email.Subject)
	assert.Equal(t, "product-created", email.Email.Category)
	activity := f.queue.jobs[1]
	assert.Equal(t, model.JobLogActivity, activity.Type)
	assert.Equal(t, "Created product: Widget", activity.Activity.Description)
	assert.Equal(t, f.actor.ID, activity.Activity.ActorID)

	// synchronous ledger entry is immediately visible
	acts, err := f.accounts.Activities(f.actor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Created product: Widget", acts[0])

	// a subsequent list includes the widget
	listing, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listing.Products, 1)
	assert.Equal(t, "Widget", listing.Products[0].Name)
	assert.Equal(t, "u1", listing.Products[0].CreatedByUser.Username)
}

func TestCreateInvariantViolationHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), CreateInput{
		Name: "Bad", Description: "x", Price: -1, Quantity: 1,
	}, f.actor.ID)
	assert.ErrorIs(t, err, ErrInvariantViolation)

	assert.Equal(t, 0, f.store.Len())
	assert.Empty(t, f.notifier.created)
	assert.Empty(t, f.queue.jobs)
	acts, _ := f.accounts.Activities(f.actor.ID)
	assert.Empty(t, acts)
}

func TestCreateNeverReturnsStaleListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{Name: "first", Description: "d", Price: 1, Quantity: 1}, f.actor.ID)
	require.NoError(t, err)
	listing, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, listing.Products, 1)

	_, err = f.svc.Create(ctx, CreateInput{Name: "second", Description: "d", Price: 2, Quantity: 1}, f.actor.ID)
	require.NoError(t, err)
	listing, err = f.svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, listing.Products, 2)
}

func TestListReadsThroughCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, CreateInput{Name: "Widget", Description: "d", Price: 1, Quantity: 1}, f.actor.ID)
	require.NoError(t, err)

	first, err := f.svc.List(ctx)
	require.NoError(t, err)
	second, err := f.svc.List(ctx)
	require.NoError(t, err)
	// same snapshot, not a rebuild
	assert.Equal(t, first.GeneratedAt, second.GeneratedAt)
}

func TestUpdatePartialAndAsymmetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, CreateInput{Name: "Widget", Description: "d", Price: 9.99, Quantity: 5}, f.actor.ID)
	require.NoError(t, err)
	f.notifier.created = nil
	f.queue.jobs = nil

	price := 12.50
	got, err := f.svc.Update(ctx, p.ID, UpdateInput{Price: &price}, f.actor.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.50, got.Price)
	assert.Equal(t, "Widget", got.Name)

	// update neither broadcasts nor enqueues
	assert.Empty(t, f.notifier.created)
	assert.Empty(t, f.queue.jobs)

	acts, _ := f.accounts.Activities(f.actor.ID)
	assert.Equal(t, "Updated product: Widget", acts[0])
}

func TestUpdateMissingLeavesCacheUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, CreateInput{Name: "Widget", Description: "d", Price: 1, Quantity: 1}, f.actor.ID)
	require.NoError(t, err)
	listing, err := f.svc.List(ctx)
	require.NoError(t, err)

	price := 12.50
	_, err = f.svc.Update(ctx, "missing-id", UpdateInput{Price: &price}, f.actor.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	cached, ok := f.cache.Get()
	require.True(t, ok, "cache should still hold the snapshot")
	assert.Equal(t, listing.GeneratedAt, cached.GeneratedAt)
}

func TestUpdateInvariantViolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, CreateInput{Name: "Widget", Description: "d", Price: 1, Quantity: 1}, f.actor.ID)
	require.NoError(t, err)

	bad := -1.0
	_, err = f.svc.Update(ctx, p.ID, UpdateInput{Price: &bad}, f.actor.ID)
	assert.ErrorIs(t, err, ErrInvariantViolation)
	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Price)
}

func TestRemoveInvalidatesListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, CreateInput{Name: "Widget", Description: "d", Price: 1, Quantity: 1}, f.actor.ID)
	require.NoError(t, err)
	_, err = f.svc.List(ctx)
	require.NoError(t, err)

	require.NoError(t, f.svc.Remove(ctx, p.ID, f.actor.ID))

	listing, err := f.svc.List(ctx)
	require.NoError(t, err)
	for _, lp := range listing.Products {
		assert.NotEqual(t, p.ID, lp.ID)
	}
	_, err = f.svc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	acts, _ := f.accounts.Activities(f.actor.ID)
	assert.Equal(t, "Deleted product: Widget", acts[0])
}

func TestRemoveMissing(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.svc.Remove(context.Background(), "missing", f.actor.ID), ErrNotFound)
}

func TestGetBypassesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, CreateInput{Name: "Widget", Description: "d", Price: 1, Quantity: 1}, f.actor.ID)
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, "u1@example.com", got.CreatedByUser.Email)
}

func TestListExcludesInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.Create(ctx, CreateInput{Name: "Widget", Description: "d", Price: 1, Quantity: 1}, f.actor.ID)
	require.NoError(t, err)
	inactive := false
	_, err = f.svc.Update(ctx, p.ID, UpdateInput{IsActive: &inactive}, f.actor.ID)
	require.NoError(t, err)

	listing, err := f.svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, listing.Products)
}

func TestCreateWithUnknownActorStillPersists(t *testing.T) {
	f := newFixture(t)
	p, err := f.svc.Create(context.Background(), CreateInput{Name: "Widget", Description: "d", Price: 1, Quantity: 1}, "ghost")
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	// email job skipped (no address), activity job still enqueued
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, model.JobLogActivity, f.queue.jobs[0].Type)
}

func TestCreateWithClosedQueueStillSucceeds(t *testing.T) {
	f := newFixture(t)
	f.queue.reject = true
	p, err := f.svc.Create(context.Background(), CreateInput{Name: "Widget", Description: "d", Price: 1, Quantity: 1}, f.actor.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Empty(t, f.queue.jobs)
}

func TestCreateInputValidation(t *testing.T) {
	assert.Error(t, CreateInput{Name: "", Description: "d", Price: 1, Quantity: 1}.Validate())
	assert.Error(t, CreateInput{Name: "n", Description: "d", Price: -1, Quantity: 1}.Validate())
	assert.Error(t, CreateInput{Name: "n", Description: "d", Price: 1, Quantity: -1}.Validate())
	assert.NoError(t, CreateInput{Name: "n", Description: "d", Price: 0, Quantity: 0}.Validate())

	bad := -2.0
	assert.Error(t, UpdateInput{Price: &bad}.Validate())
	assert.NoError(t, UpdateInput{}.Validate())
}
