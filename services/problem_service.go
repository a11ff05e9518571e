package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"streetsense-be/models"
	"streetsense-be/repository"
)

// ProblemService runs the issue lifecycle workflow: creation, status
// transitions, upvotes and the append-only update log.
type ProblemService struct {
	logger   *zap.Logger
	problems repository.ProblemRepository
	users    repository.UserRepository
}

func NewProblemService(logger *zap.Logger, problems repository.ProblemRepository, users repository.UserRepository) *ProblemService {
	return &ProblemService{
		logger:   logger,
		problems: problems,
		users:    users,
	}
}

// CreateProblemInput is the validated payload of problem creation.
type CreateProblemInput struct {
	Title       string
	Description string
	Category    string
	Address     string
	Lat         *float64
	Lng         *float64
	Images      []string
	ReportedBy  primitive.ObjectID
}

// ProblemDetail is a problem with its reporter display name resolved.
type ProblemDetail struct {
	models.Problem
	ReporterName string `json:"reporterName"`
}

// Create validates the input and inserts the problem with initial status
// reported, zero upvotes and an empty update log. Every missing or invalid
// field is reported, not just the first.
func (s *ProblemService) Create(ctx context.Context, input CreateProblemInput) (models.Problem, error) {
	var fields []string
	if strings.TrimSpace(input.Title) == "" {
		fields = append(fields, "title")
	}
	if strings.TrimSpace(input.Description) == "" {
		fields = append(fields, "description")
	}
	if !models.ProblemCategory(input.Category).Valid() {
		fields = append(fields, "category")
	}
	if strings.TrimSpace(input.Address) == "" {
		fields = append(fields, "location.address")
	}
	if input.Lat == nil {
		fields = append(fields, "location.lat")
	}
	if input.Lng == nil {
		fields = append(fields, "location.lng")
	}
	if len(fields) > 0 {
		return models.Problem{}, &ValidationError{Fields: fields}
	}

	images := input.Images
	if images == nil {
		images = []string{}
	}

	now := time.Now()
	problem := models.Problem{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    models.ProblemCategory(input.Category),
		Status:      models.Reported,
		Location: models.Location{
			Address: strings.TrimSpace(input.Address),
			Lat:     *input.Lat,
			Lng:     *input.Lng,
		},
		Images:     images,
		ReportedBy: input.ReportedBy,
		Upvotes:    0,
		Updates:    []models.Update{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.problems.Create(ctx, &problem); err != nil {
		return models.Problem{}, err
	}

	s.logger.Info("problem reported",
		zap.String("id", problem.ID.Hex()),
		zap.String("category", string(problem.Category)),
	)
	return problem, nil
}

// Get returns a single problem with its reporter name resolved.
func (s *ProblemService) Get(ctx context.Context, id primitive.ObjectID) (ProblemDetail, error) {
	problem, err := s.problems.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ProblemDetail{}, ErrNotFound
		}
		return ProblemDetail{}, err
	}

	detail := ProblemDetail{Problem: problem}
	if reporter, err := s.users.GetByID(ctx, problem.ReportedBy); err == nil {
		detail.ReporterName = reporter.Name
	}
	return detail, nil
}

// List returns problems matching the filter, newest first. All provided
// predicates are ANDed; an empty result is a valid answer, not an error.
func (s *ProblemService) List(ctx context.Context, filter repository.ProblemFilter) ([]models.Problem, error) {
	if filter.Status != "" && !models.ProblemStatus(filter.Status).Valid() {
		return []models.Problem{}, nil
	}
	if filter.Category != "" && !models.ProblemCategory(filter.Category).Valid() {
		return []models.Problem{}, nil
	}
	return s.problems.List(ctx, filter)
}

// ListByReporter returns the problems a user reported, newest first.
func (s *ProblemService) ListByReporter(ctx context.Context, userID primitive.ObjectID) ([]models.Problem, error) {
	return s.problems.ListByReporter(ctx, userID)
}

// SetStatus transitions the problem to any of the three states, including
// back to an earlier one. Re-setting the current status still refreshes the
// last-modified timestamp.
func (s *ProblemService) SetStatus(ctx context.Context, id primitive.ObjectID, status models.ProblemStatus) (models.Problem, error) {
	if !status.Valid() {
		return models.Problem{}, ErrInvalidStatus
	}

	problem, err := s.problems.SetStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Problem{}, ErrNotFound
		}
		return models.Problem{}, err
	}
	return problem, nil
}

// Upvote increments the counter by exactly one. There is no per-user vote
// ledger, so repeated upvotes by the same actor all count.
func (s *ProblemService) Upvote(ctx context.Context, id primitive.ObjectID) (models.Problem, error) {
	problem, err := s.problems.IncrementUpvotes(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Problem{}, ErrNotFound
		}
		return models.Problem{}, err
	}
	return problem, nil
}

// AppendUpdate appends a new entry to the problem's update log with a fresh
// identifier and server-assigned timestamp.
func (s *ProblemService) AppendUpdate(ctx context.Context, id primitive.ObjectID, content, author string) (models.Problem, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Problem{}, ErrEmptyContent
	}

	entry := models.Update{
		ID:        uuid.NewString(),
		Content:   content,
		Author:    author,
		Timestamp: time.Now(),
	}

	problem, err := s.problems.PushUpdate(ctx, id, entry)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Problem{}, ErrNotFound
		}
		return models.Problem{}, err
	}
	return problem, nil
}
