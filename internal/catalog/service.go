// Package catalog implements the product mutation pipeline: every write is
// the ordered sequence store -> cache invalidate -> broadcast -> enqueue ->
// ledger, and the caller's result depends only on the store step.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/fairyhunter13/realtime-catalog/internal/account"
	"github.com/fairyhunter13/realtime-catalog/internal/cache"
	"github.com/fairyhunter13/realtime-catalog/internal/model"
	"github.com/fairyhunter13/realtime-catalog/internal/obs"
	"github.com/fairyhunter13/realtime-catalog/internal/store"
)

// Notifier is the one hook the pipeline calls into the notification channel.
type Notifier interface {
	NotifyProductCreated(model.Product)
}

// Enqueuer accepts background jobs. Enqueue is synchronous; execution is not.
type Enqueuer interface {
	Enqueue(model.Job) (model.Job, bool)
}

// Service orchestrates product mutations and reads.
type Service struct {
	store    *store.Store
	cache    *cache.Listing
	notifier Notifier
	queue    Enqueuer
	accounts *account.Store
}

func NewService(st *store.Store, c *cache.Listing, n Notifier, q Enqueuer, accounts *account.Store) *Service {
	return &Service{store: st, cache: c, notifier: n, queue: q, accounts: accounts}
}

// Create persists a new product and drives the side-effect sequence. Only a
// failure before or during the store write reaches the caller; everything
// after it is best-effort.
func (s *Service) Create(ctx context.Context, in CreateInput, actorID string) (model.Product, error) {
	if in.Price < 0 || in.Quantity < 0 {
		return model.Product{}, fmt.Errorf("%w: price and quantity must be >= 0", ErrInvariantViolation)
	}

	p := s.store.Insert(model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Categories:  in.Categories,
		CreatedBy:   actorID,
		IsActive:    true,
	})

	s.cache.Invalidate()

	s.notifier.NotifyProductCreated(p)

	s.enqueueCreateJobs(p, actorID)

	if err := s.accounts.AppendActivity(actorID, "Created product: "+p.Name); err != nil {
		obs.Logger.Warn("activity_append_failed", "actor_id", actorID, "error", err)
	}

	return p, nil
}

func (s *Service) enqueueCreateJobs(p model.Product, actorID string) {
	actor, err := s.accounts.FindByID(actorID)
	if err != nil {
		obs.Logger.Warn("actor_lookup_failed", "actor_id", actorID, "error", err)
	} else {
		job, ok := s.queue.Enqueue(model.Job{
			Type: model.JobSendEmail,
			Email: &model.EmailPayload{
				To:       actor.Email,
				Subject:  "Product Created Successfully",
				Body:     fmt.Sprintf("Your product %q has been created successfully.", p.Name),
				Category: "product-created",
			},
		})
		if !ok {
			obs.Logger.Warn("enqueue_rejected", "job_type", string(model.JobSendEmail), "product_id", p.ID)
		} else {
			obs.Logger.Info("job_enqueued", "job_id", job.ID, "job_type", string(job.Type))
		}
	}

	job, ok := s.queue.Enqueue(model.Job{
		Type: model.JobLogActivity,
		Activity: &model.ActivityPayload{
			Description: "Created product: " + p.Name,
			ActorID:     actorID,
			Timestamp:   time.Now().UTC(),
		},
	})
	if !ok {
		obs.Logger.Warn("enqueue_rejected", "job_type", string(model.JobLogActivity), "product_id", p.ID)
	} else {
		obs.Logger.Info("job_enqueued", "job_id", job.ID, "job_type", string(job.Type))
	}
}

// Update applies the present fields of in to the product. It invalidates the
// cache and records a ledger entry but, unlike Create, neither broadcasts
// nor enqueues jobs.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput, actorID string) (model.Product, error) {
	if (in.Price != nil && *in.Price < 0) || (in.Quantity != nil && *in.Quantity < 0) {
		return model.Product{}, fmt.Errorf("%w: price and quantity must be >= 0", ErrInvariantViolation)
	}

	p, ok := s.store.UpdatePartial(id, store.Patch{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Categories:  in.Categories,
		IsActive:    in.IsActive,
	})
	if !ok {
		return model.Product{}, ErrNotFound
	}

	s.cache.Invalidate()

	if err := s.accounts.AppendActivity(actorID, "Updated product: "+p.Name); err != nil {
		obs.Logger.Warn("activity_append_failed", "actor_id", actorID, "error", err)
	}

	return p, nil
}

// Remove hard-deletes the product. A deleted id never resurfaces: the
// listing cache is invalidated before the call returns.
func (s *Service) Remove(ctx context.Context, id, actorID string) error {
	p, ok := s.store.FindByID(id)
	if !ok {
		return ErrNotFound
	}
	s.store.DeleteByID(id)

	s.cache.Invalidate()

	if err := s.accounts.AppendActivity(actorID, "Deleted product: "+p.Name); err != nil {
		obs.Logger.Warn("activity_append_failed", "actor_id", actorID, "error", err)
	}
	return nil
}

// List returns the active-products snapshot, read through the cache.
func (s *Service) List(ctx context.Context) (model.Listing, error) {
	return s.cache.GetOrBuild(ctx, s.buildListing)
}

func (s *Service) buildListing(ctx context.Context) (model.Listing, error) {
	active := s.store.FindWhere(func(p model.Product) bool { return p.IsActive })
	products := make([]model.ListedProduct, 0, len(active))
	for _, p := range active {
		products = append(products, s.resolve(p))
	}
	return model.Listing{Products: products, GeneratedAt: time.Now().UTC()}, nil
}

// Get bypasses the cache and reads the store directly.
func (s *Service) Get(ctx context.Context, id string) (model.ListedProduct, error) {
	p, ok := s.store.FindByID(id)
	if !ok {
		return model.ListedProduct{}, ErrNotFound
	}
	return s.resolve(p), nil
}

func (s *Service) resolve(p model.Product) model.ListedProduct {
	ref := model.UserRef{ID: p.CreatedBy}
	if u, err := s.accounts.FindByID(p.CreatedBy); err == nil {
		ref.Email = u.Email
		ref.Username = u.Username
	}
	return model.ListedProduct{Product: p, CreatedByUser: ref}
}
