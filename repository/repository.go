package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"streetsense-be/models"
)

// ErrNotFound is returned when an identifier does not resolve to a record.
var ErrNotFound = errors.New("record not found")

// UserRepository is the persistence contract for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// CodeRepository is the persistence contract for verification codes.
type CodeRepository interface {
	// Replace atomically swaps any live code for the email with the given
	// one, so at most one code per email exists after the call.
	Replace(ctx context.Context, code models.VerificationCode) error
	GetByEmail(ctx context.Context, email string) (models.VerificationCode, error)
	// Consume deletes the code only if both email and code still match,
	// reporting ErrNotFound when another caller consumed it first.
	Consume(ctx context.Context, email, code string) error
}

// ProblemFilter holds the optional predicates of the list view. Zero-value
// fields are skipped; provided ones are ANDed together.
type ProblemFilter struct {
	Search   string
	Category string
	Status   string
	Pincode  string
}

// ProblemRepository is the persistence contract for problem reports. All
// mutations are atomic per-document operations so concurrent upvotes and
// update appends never lose writes.
type ProblemRepository interface {
	Create(ctx context.Context, problem *models.Problem) error
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Problem, error)
	List(ctx context.Context, filter ProblemFilter) ([]models.Problem, error)
	ListByReporter(ctx context.Context, userID primitive.ObjectID) ([]models.Problem, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.ProblemStatus) (models.Problem, error)
	IncrementUpvotes(ctx context.Context, id primitive.ObjectID) (models.Problem, error)
	PushUpdate(ctx context.Context, id primitive.ObjectID, update models.Update) (models.Problem, error)
}
