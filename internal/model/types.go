// Package model defines domain types used by the service.
package model

import "time"

// Product represents a catalog product document.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Quantity    int64     `json:"quantity"`
	Categories  []string  `json:"categories"`
	CreatedBy   string    `json:"created_by"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	LastLogin    time.Time `json:"last_login"`
	Activities   []string  `json:"activities"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserRef is the display projection of a product creator.
type UserRef struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// ListedProduct is a product with its creator resolved for display.
type ListedProduct struct {
	Product
	CreatedByUser UserRef `json:"created_by_user"`
}

// Listing is the cached snapshot of all active products.
type Listing struct {
	Products    []ListedProduct `json:"products"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// JobType tags the payload carried by a queued job.
type JobType string

const (
	JobSendEmail   JobType = "send-email"
	JobLogActivity JobType = "log-activity"
)

// EmailPayload is the payload of a send-email job.
type EmailPayload struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Category string `json:"category"`
}

// ActivityPayload is the payload of a log-activity job.
type ActivityPayload struct {
	Description string    `json:"description"`
	ActorID     string    `json:"actor_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// Job is a unit of background work owned by the queue until a worker claims it.
type Job struct {
	ID         string           `json:"id"`
	Type       JobType          `json:"type"`
	Email      *EmailPayload    `json:"email,omitempty"`
	Activity   *ActivityPayload `json:"activity,omitempty"`
	EnqueuedAt time.Time        `json:"enqueued_at"`
}
