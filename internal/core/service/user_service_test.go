package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/madunda/task-manager-api/internal/core/domain"
	"github.com/madunda/task-manager-api/internal/core/ports"
)

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Tokens = append([]string(nil), u.Tokens...)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("user-%d", r.nextID)
	stored.Tokens = []string{}
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDWithToken(_ context.Context, id, token string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok || !u.HasToken(token) {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) AddToken(_ context.Context, id, token string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Tokens = append(u.Tokens, token)
	return nil
}

func (r *stubUserRepo) RemoveToken(_ context.Context, id, token string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	kept := u.Tokens[:0]
	for _, t := range u.Tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	u.Tokens = kept
	return nil
}

func (r *stubUserRepo) ClearTokens(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Tokens = []string{}
	return nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, user *domain.User) (*domain.User, error) {
	stored, ok := r.users[user.ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	stored.Name = user.Name
	stored.Email = user.Email
	stored.PasswordHash = user.PasswordHash
	stored.Age = user.Age
	stored.UpdatedAt = user.UpdatedAt
	return cloneUser(stored), nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) List(_ context.Context, filter ports.ListUsersFilter) ([]domain.User, error) {
	out := []domain.User{}
	for _, u := range r.users {
		if filter.Admin != nil && u.Admin != *filter.Admin {
			continue
		}
		out = append(out, *cloneUser(u))
	}
	return out, nil
}

func (r *stubUserRepo) SetAvatar(_ context.Context, id string, image []byte) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Avatar = image
	return nil
}

func (r *stubUserRepo) FindAvatar(_ context.Context, id string) ([]byte, error) {
	u, ok := r.users[id]
	if !ok || len(u.Avatar) == 0 {
		return nil, domain.ErrAvatarNotFound
	}
	return u.Avatar, nil
}

func (r *stubUserRepo) ClearAvatar(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Avatar = nil
	return nil
}

type stubTaskRepo struct {
	tasks  map[string]*domain.Task
	nextID int
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) (*domain.Task, error) {
	r.nextID++
	stored := *task
	stored.ID = fmt.Sprintf("task-%d", r.nextID)
	r.tasks[stored.ID] = &stored
	copy := stored
	return &copy, nil
}

func (r *stubTaskRepo) FindByIDAndOwner(_ context.Context, id, owner string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok || t.Owner != owner {
		return nil, domain.ErrTaskNotFound
	}
	copy := *t
	return &copy, nil
}

func (r *stubTaskRepo) ListByOwner(_ context.Context, owner string, filter ports.ListTasksFilter) ([]domain.Task, error) {
	out := []domain.Task{}
	for _, t := range r.tasks {
		if t.Owner != owner {
			continue
		}
		if filter.Completed != nil && t.Completed != *filter.Completed {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *stubTaskRepo) Update(_ context.Context, task *domain.Task) (*domain.Task, error) {
	t, ok := r.tasks[task.ID]
	if !ok || t.Owner != task.Owner {
		return nil, domain.ErrTaskNotFound
	}
	t.Description = task.Description
	t.Completed = task.Completed
	t.UpdatedAt = task.UpdatedAt
	copy := *t
	return &copy, nil
}

func (r *stubTaskRepo) DeleteByIDAndOwner(_ context.Context, id, owner string) error {
	t, ok := r.tasks[id]
	if !ok || t.Owner != owner {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *stubTaskRepo) DeleteByOwner(_ context.Context, owner string) error {
	for id, t := range r.tasks {
		if t.Owner == owner {
			delete(r.tasks, id)
		}
	}
	return nil
}

type stubMailQueue struct {
	jobs []ports.MailJob
}

func (q *stubMailQueue) Enqueue(job ports.MailJob) {
	q.jobs = append(q.jobs, job)
}

type stubThrottle struct {
	blocked  bool
	failures int
	resets   int
}

func (t *stubThrottle) TooMany(_ context.Context, _ string) (bool, error) { return t.blocked, nil }
func (t *stubThrottle) RecordFailure(_ context.Context, _ string) error {
	t.failures++
	return nil
}
func (t *stubThrottle) Reset(_ context.Context, _ string) error {
	t.resets++
	return nil
}

func newTestUserService(repo *stubUserRepo, tasks *stubTaskRepo, mail *stubMailQueue, throttle ports.LoginThrottle) *UserService {
	return NewUserService(repo, tasks, mail, throttle, "secret", time.Hour, zerolog.Nop())
}

func TestUserService_Register(t *testing.T) {
	repo := newStubUserRepo()
	mail := &stubMailQueue{}
	svc := newTestUserService(repo, newStubTaskRepo(), mail, nil)

	user, token, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "Matan", Email: "M@x.com", Password: "mypass!!!!", Age: 30,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "m@x.com" {
		t.Fatalf("email not normalised: %s", user.Email)
	}
	if user.PasswordHash == "mypass!!!!" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("mypass!!!!")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}

	stored := repo.users[user.ID]
	if len(stored.Tokens) != 1 || stored.Tokens[0] != token {
		t.Fatalf("token not persisted on user: %v", stored.Tokens)
	}
	if len(mail.jobs) != 1 || mail.jobs[0].Kind != ports.MailWelcome {
		t.Fatalf("expected one welcome mail, got %v", mail.jobs)
	}
}

func TestUserService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo, newStubTaskRepo(), &stubMailQueue{}, nil)

	input := ports.RegisterInput{Name: "a", Email: "a@x.com", Password: "longenough", Age: 1}
	if _, _, err := svc.Register(context.Background(), input); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserService_Login_AppendsToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo, newStubTaskRepo(), &stubMailQueue{}, nil)

	user, first, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "a", Email: "a@x.com", Password: "longenough", Age: 1,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, second, err := svc.Login(context.Background(), "a@x.com", "longenough")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if second == first {
		t.Fatalf("expected a fresh token on login")
	}

	stored := repo.users[user.ID]
	if len(stored.Tokens) != 2 {
		t.Fatalf("expected login to append, got %d tokens", len(stored.Tokens))
	}
	if !stored.HasToken(first) || !stored.HasToken(second) {
		t.Fatalf("both tokens should be active: %v", stored.Tokens)
	}
}

func TestUserService_Login_UniformFailure(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo, newStubTaskRepo(), &stubMailQueue{}, nil)

	if _, _, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "a", Email: "a@x.com", Password: "longenough", Age: 1,
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	_, _, unknownErr := svc.Login(context.Background(), "nobody@x.com", "whatever12")
	_, _, wrongErr := svc.Login(context.Background(), "a@x.com", "wrongpass1")

	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongErr)
	}
}

func TestUserService_Login_TokenClaims(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo, newStubTaskRepo(), &stubMailQueue{}, nil)

	user, token, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "a", Email: "a@x.com", Password: "longenough", Age: 1,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["user_id"] != user.ID {
		t.Fatalf("user_id claim mismatch: %v", claims["user_id"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Fatalf("expected an exp claim")
	}
}

func TestUserService_Login_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	throttle := &stubThrottle{}
	svc := newTestUserService(repo, newStubTaskRepo(), &stubMailQueue{}, throttle)

	if _, _, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "a", Email: "a@x.com", Password: "longenough", Age: 1,
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "a@x.com", "wrongpass1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if throttle.failures != 1 {
		t.Fatalf("expected failure to be recorded, got %d", throttle.failures)
	}

	throttle.blocked = true
	if _, _, err := svc.Login(context.Background(), "a@x.com", "longenough"); !errors.Is(err, domain.ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	throttle.blocked = false
	if _, _, err := svc.Login(context.Background(), "a@x.com", "longenough"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if throttle.resets != 1 {
		t.Fatalf("expected throttle reset on success, got %d", throttle.resets)
	}
}

func TestUserService_Logout_RemovesOnlyPresentedToken(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo, newStubTaskRepo(), &stubMailQueue{}, nil)

	user, first, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "a", Email: "a@x.com", Password: "longenough", Age: 1,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	_, second, err := svc.Login(context.Background(), "a@x.com", "longenough")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), user.ID, first); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	stored := repo.users[user.ID]
	if stored.HasToken(first) {
		t.Fatalf("presented token should be revoked")
	}
	if !stored.HasToken(second) {
		t.Fatalf("other session should survive logout")
	}

	if err := svc.LogoutAll(context.Background(), user.ID); err != nil {
		t.Fatalf("logoutAll failed: %v", err)
	}
	if len(repo.users[user.ID].Tokens) != 0 {
		t.Fatalf("logoutAll should clear every token")
	}
}

func TestUserService_Update(t *testing.T) {
	repo := newStubUserRepo()
	svc := newTestUserService(repo, newStubTaskRepo(), &stubMailQueue{}, nil)

	user, _, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "a", Email: "a@x.com", Password: "longenough", Age: 1,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	name := "renamed"
	password := "evenlonger1"
	updated, err := svc.Update(context.Background(), user.ID, ports.UpdateInput{
		Name:     &name,
		Password: &password,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "renamed" {
		t.Fatalf("name not applied: %s", updated.Name)
	}
	if updated.Email != "a@x.com" {
		t.Fatalf("untouched field changed: %s", updated.Email)
	}
	if bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(password)) != nil {
		t.Fatalf("new password not hashed and stored")
	}
}

func TestUserService_Delete_CascadesTasksAndMails(t *testing.T) {
	repo := newStubUserRepo()
	tasks := newStubTaskRepo()
	mail := &stubMailQueue{}
	svc := newTestUserService(repo, tasks, mail, nil)

	user, _, err := svc.Register(context.Background(), ports.RegisterInput{
		Name: "a", Email: "a@x.com", Password: "longenough", Age: 1,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	taskSvc := NewTaskService(tasks, zerolog.Nop())
	if _, err := taskSvc.Create(context.Background(), user.ID, ports.CreateTaskInput{Description: "x"}); err != nil {
		t.Fatalf("task create failed: %v", err)
	}

	if err := svc.Delete(context.Background(), user); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, ok := repo.users[user.ID]; ok {
		t.Fatalf("user should be gone")
	}
	if len(tasks.tasks) != 0 {
		t.Fatalf("tasks should cascade with the account")
	}
	last := mail.jobs[len(mail.jobs)-1]
	if last.Kind != ports.MailGoodbye {
		t.Fatalf("expected goodbye mail, got %v", last.Kind)
	}
}

func TestUserService_DeleteByID_NotFound(t *testing.T) {
	svc := newTestUserService(newStubUserRepo(), newStubTaskRepo(), &stubMailQueue{}, nil)

	if _, err := svc.DeleteByID(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestParseSort(t *testing.T) {
	cases := []struct {
		raw     string
		field   string
		desc    bool
		natural bool
	}{
		{raw: "created_at:desc", field: "created_at", desc: true},
		{raw: "age:asc", field: "age"},
		{raw: "age", field: "age"},
		{raw: "age:bogus", field: "age"},
		{raw: "", natural: true},
		{raw: ":desc", natural: true},
	}

	for _, tc := range cases {
		spec := parseSort(tc.raw)
		if tc.natural {
			if spec != nil {
				t.Fatalf("%q: expected nil spec, got %+v", tc.raw, spec)
			}
			continue
		}
		if spec == nil {
			t.Fatalf("%q: expected spec, got nil", tc.raw)
		}
		if spec.Field != tc.field || spec.Desc != tc.desc {
			t.Fatalf("%q: got %+v", tc.raw, spec)
		}
	}
}
