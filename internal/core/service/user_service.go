package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/madunda/task-manager-api/internal/core/domain"
	"github.com/madunda/task-manager-api/internal/core/ports"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// UserService implements account lifecycle, credential checks and token
// issuance/revocation.
type UserService struct {
	users     ports.UserRepository
	tasks     ports.TaskRepository
	mail      ports.MailQueue
	throttle  ports.LoginThrottle
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	tasks ports.TaskRepository,
	mail ports.MailQueue,
	throttle ports.LoginThrottle,
	jwtSecret string,
	tokenTTL time.Duration,
	logger zerolog.Logger,
) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &UserService{
		users:     users,
		tasks:     tasks,
		mail:      mail,
		throttle:  throttle,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// Register persists a new user with a hashed password, issues the first auth
// token and enqueues the welcome mail. The mail is best-effort and never
// blocks or fails the signup.
func (s *UserService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         input.Name,
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: string(hash),
		Age:          input.Age,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(ctx, created)
	if err != nil {
		return nil, "", err
	}

	s.mail.Enqueue(ports.MailJob{Kind: ports.MailWelcome, Email: created.Email, Name: created.Name})
	s.logger.Info().Str("user_id", created.ID).Msg("user registered")

	return created, token, nil
}

// Login verifies credentials and appends a fresh token to the user's token
// list. Unknown email and wrong password fail identically so accounts cannot
// be enumerated.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if s.throttle != nil {
		blocked, err := s.throttle.TooMany(ctx, email)
		if err != nil {
			s.logger.Warn().Err(err).Msg("login throttle check failed")
		} else if blocked {
			return nil, "", domain.ErrTooManyAttempts
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(ctx, email)
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, email)
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, "", err
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.logger.Warn().Err(err).Msg("login throttle reset failed")
		}
	}

	return user, token, nil
}

// Logout removes exactly the presented token; other sessions stay valid.
func (s *UserService) Logout(ctx context.Context, userID, token string) error {
	return s.users.RemoveToken(ctx, userID, token)
}

// LogoutAll clears the token list, invalidating every session at once.
func (s *UserService) LogoutAll(ctx context.Context, userID string) error {
	return s.users.ClearTokens(ctx, userID)
}

// Update applies the allow-listed profile fields. A new password is hashed
// before it is stored.
func (s *UserService) Update(ctx context.Context, userID string, input ports.UpdateInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Age != nil {
		user.Age = *input.Age
	}
	if input.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = time.Now().UTC()

	return s.users.UpdateProfile(ctx, user)
}

// Delete removes the account and its tasks, and enqueues the goodbye mail.
// The mail is enqueued before the record disappears but is not awaited.
func (s *UserService) Delete(ctx context.Context, user *domain.User) error {
	s.mail.Enqueue(ports.MailJob{Kind: ports.MailGoodbye, Email: user.Email, Name: user.Name})

	if err := s.tasks.DeleteByOwner(ctx, user.ID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user deleted")
	return nil
}

// List returns users for the admin listing endpoint.
func (s *UserService) List(ctx context.Context, input ports.ListUsersInput) ([]domain.User, error) {
	return s.users.List(ctx, ports.ListUsersFilter{
		Admin: input.Admin,
		Skip:  input.Skip,
		Limit: input.Limit,
		Sort:  parseSort(input.SortBy),
	})
}

// DeleteByID removes an arbitrary account on behalf of an admin.
func (s *UserService) DeleteByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Delete(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// issueToken signs a new HS256 token and appends it to the stored token list.
// The signature alone is not enough to authenticate: the middleware also
// requires list membership, which is what logout revokes.
func (s *UserService) issueToken(ctx context.Context, user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	if err := s.users.AddToken(ctx, user.ID, token); err != nil {
		return "", err
	}
	user.Tokens = append(user.Tokens, token)
	return token, nil
}

func (s *UserService) recordFailure(ctx context.Context, email string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("login throttle record failed")
	}
}

// parseSort turns a "field:asc|desc" query value into a SortSpec. Anything
// unparseable yields nil, which callers treat as natural order.
func parseSort(raw string) *ports.SortSpec {
	if raw == "" {
		return nil
	}
	parts := strings.SplitN(raw, ":", 2)
	field := strings.TrimSpace(parts[0])
	if field == "" {
		return nil
	}
	spec := &ports.SortSpec{Field: field}
	if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[1]), "desc") {
		spec.Desc = true
	}
	return spec
}
