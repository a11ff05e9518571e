package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"streetsense-be/email"
	"streetsense-be/models"
	"streetsense-be/repository"
)

// AuthService runs the OTP-gated registration and login workflows.
type AuthService struct {
	logger *zap.Logger
	users  repository.UserRepository
	codes  repository.CodeRepository
	sender email.Sender
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, codes repository.CodeRepository, sender email.Sender) *AuthService {
	return &AuthService{
		logger: logger,
		users:  users,
		codes:  codes,
		sender: sender,
	}
}

// RegistrationInput is the validated payload of the verify step.
type RegistrationInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Code     string
}

// SendRegistrationCode issues a fresh 6-digit code for the email, replacing
// any prior one, and dispatches it. The code is persisted before dispatch;
// a dispatch failure surfaces as ErrEmailDispatch without rolling it back.
func (s *AuthService) SendRegistrationCode(ctx context.Context, emailAddr string) error {
	emailAddr = normalizeEmail(emailAddr)

	exists, err := s.users.ExistsByEmail(ctx, emailAddr)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyRegistered
	}

	code, err := generateCode()
	if err != nil {
		return err
	}

	record := models.VerificationCode{
		Email:     emailAddr,
		Code:      code,
		CreatedAt: time.Now(),
	}
	if err := s.codes.Replace(ctx, record); err != nil {
		return err
	}

	if err := s.sender.SendRegistrationCode(ctx, emailAddr, code); err != nil {
		s.logger.Warn("otp email dispatch failed", zap.String("email", emailAddr), zap.Error(err))
		return ErrEmailDispatch
	}

	return nil
}

// CompleteRegistration verifies the supplied code, consumes it exactly once,
// and creates the account with the credential hashed before storage.
func (s *AuthService) CompleteRegistration(ctx context.Context, input RegistrationInput) (models.User, error) {
	emailAddr := normalizeEmail(input.Email)

	record, err := s.codes.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, ErrCodeNotFound
		}
		return models.User{}, err
	}
	if record.Expired(time.Now()) {
		return models.User{}, ErrCodeNotFound
	}
	if record.Code != input.Code {
		return models.User{}, ErrCodeMismatch
	}

	// Single-use enforcement: the conditional delete only succeeds for one
	// of two racing verifications; the loser sees the code as gone.
	if err := s.codes.Consume(ctx, emailAddr, input.Code); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, ErrCodeNotFound
		}
		return models.User{}, err
	}

	// Second guard against a registration racing between issuance and
	// verification.
	exists, err := s.users.ExistsByEmail(ctx, emailAddr)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrAlreadyRegistered
	}

	now := time.Now()
	user := models.User{
		Name:      strings.TrimSpace(input.Name),
		Email:     emailAddr,
		Password:  input.Password,
		Phone:     strings.TrimSpace(input.Phone),
		Address:   strings.TrimSpace(input.Address),
		Role:      models.RoleCitizen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.HashPassword(); err != nil {
		return models.User{}, err
	}

	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, err
	}

	s.logger.Info("user registered", zap.String("email", emailAddr))
	return user, nil
}

// Login authenticates an email/password pair. The error is identical whether
// the email is unknown or the password is wrong.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (models.User, error) {
	emailAddr = normalizeEmail(emailAddr)

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if !user.ComparePassword(password) {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser resolves the current-user projection for /me.
func (s *AuthService) GetUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// generateCode returns a uniformly random 6-digit code with leading zeros
// preserved.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func normalizeEmail(emailAddr string) string {
	return strings.ToLower(strings.TrimSpace(emailAddr))
}
