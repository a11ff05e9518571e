package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"streetsense-be/models"
)

// In-memory implementations of the repository contracts, used by the test
// suites and for running the service without a database. They honor the same
// atomicity guarantees as the Mongo implementations: every mutation is a
// single critical section, so concurrent upvotes and update appends never
// lose writes.

type MemoryUserRepository struct {
	mu      sync.Mutex
	byID    map[primitive.ObjectID]models.User
	byEmail map[string]primitive.ObjectID
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[primitive.ObjectID]models.User),
		byEmail: make(map[string]primitive.ObjectID),
	}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

type MemoryCodeRepository struct {
	mu    sync.Mutex
	codes map[string]models.VerificationCode
}

func NewMemoryCodeRepository() *MemoryCodeRepository {
	return &MemoryCodeRepository{codes: make(map[string]models.VerificationCode)}
}

func (r *MemoryCodeRepository) Replace(_ context.Context, code models.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[code.Email] = code
	return nil
}

func (r *MemoryCodeRepository) GetByEmail(_ context.Context, email string) (models.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.codes[email]
	if !ok {
		return models.VerificationCode{}, ErrNotFound
	}
	return code, nil
}

func (r *MemoryCodeRepository) Consume(_ context.Context, email, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.codes[email]
	if !ok || stored.Code != code {
		return ErrNotFound
	}
	delete(r.codes, email)
	return nil
}

type MemoryProblemRepository struct {
	mu       sync.Mutex
	problems map[primitive.ObjectID]models.Problem
}

func NewMemoryProblemRepository() *MemoryProblemRepository {
	return &MemoryProblemRepository{problems: make(map[primitive.ObjectID]models.Problem)}
}

func (r *MemoryProblemRepository) Create(_ context.Context, problem *models.Problem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if problem.ID.IsZero() {
		problem.ID = primitive.NewObjectID()
	}
	r.problems[problem.ID] = clone(*problem)
	return nil
}

func (r *MemoryProblemRepository) GetByID(_ context.Context, id primitive.ObjectID) (models.Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	problem, ok := r.problems[id]
	if !ok {
		return models.Problem{}, ErrNotFound
	}
	return clone(problem), nil
}

func (r *MemoryProblemRepository) List(_ context.Context, filter ProblemFilter) ([]models.Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []models.Problem{}
	for _, problem := range r.problems {
		if filter.Category != "" && string(problem.Category) != filter.Category {
			continue
		}
		if filter.Status != "" && string(problem.Status) != filter.Status {
			continue
		}
		if filter.Search != "" && !matchesSearch(problem, filter.Search) {
			continue
		}
		if filter.Pincode != "" && !containsFold(problem.Location.Address, filter.Pincode) {
			continue
		}
		matched = append(matched, clone(problem))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (r *MemoryProblemRepository) ListByReporter(_ context.Context, userID primitive.ObjectID) ([]models.Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []models.Problem{}
	for _, problem := range r.problems {
		if problem.ReportedBy == userID {
			matched = append(matched, clone(problem))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched, nil
}

func (r *MemoryProblemRepository) SetStatus(_ context.Context, id primitive.ObjectID, status models.ProblemStatus) (models.Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	problem, ok := r.problems[id]
	if !ok {
		return models.Problem{}, ErrNotFound
	}
	problem.Status = status
	problem.UpdatedAt = time.Now()
	r.problems[id] = problem
	return clone(problem), nil
}

func (r *MemoryProblemRepository) IncrementUpvotes(_ context.Context, id primitive.ObjectID) (models.Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	problem, ok := r.problems[id]
	if !ok {
		return models.Problem{}, ErrNotFound
	}
	problem.Upvotes++
	problem.UpdatedAt = time.Now()
	r.problems[id] = problem
	return clone(problem), nil
}

func (r *MemoryProblemRepository) PushUpdate(_ context.Context, id primitive.ObjectID, entry models.Update) (models.Problem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	problem, ok := r.problems[id]
	if !ok {
		return models.Problem{}, ErrNotFound
	}
	problem.Updates = append(problem.Updates, entry)
	problem.UpdatedAt = time.Now()
	r.problems[id] = problem
	return clone(problem), nil
}

func matchesSearch(problem models.Problem, term string) bool {
	return containsFold(problem.Title, term) ||
		containsFold(problem.Description, term) ||
		containsFold(problem.Location.Address, term)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func clone(problem models.Problem) models.Problem {
	if problem.Images != nil {
		problem.Images = append([]string{}, problem.Images...)
	}
	if problem.Updates != nil {
		problem.Updates = append([]models.Update{}, problem.Updates...)
	}
	return problem
}
