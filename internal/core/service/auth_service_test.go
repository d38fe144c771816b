package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/man7ober/natours/internal/core/domain"
	"github.com/man7ober/natours/internal/core/ports"
	"github.com/man7ober/natours/internal/core/query"
)

type stubUserRepo struct {
	users map[primitive.ObjectID]*domain.User

	resetTokenHash    string
	resetTokenCleared bool
	passwordUpdatedAt time.Time
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[primitive.ObjectID]*domain.User)}
}

func (r *stubUserRepo) Insert(_ context.Context, user *domain.User) error {
	user.ID = primitive.NewObjectID()
	r.users[user.ID] = user
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	if u, ok := r.users[id]; ok && u.Active {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.Active {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) Find(context.Context, query.Criteria) ([]domain.User, error) {
	return nil, nil
}

func (r *stubUserRepo) FindByResetToken(_ context.Context, tokenHash string, _ time.Time) (*domain.User, error) {
	for _, u := range r.users {
		if r.resetTokenHash != "" && r.resetTokenHash == tokenHash {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UpdateFields(_ context.Context, id primitive.ObjectID, _ map[string]any) (*domain.User, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string, changedAt time.Time) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	u.PasswordChangedAt = changedAt
	r.passwordUpdatedAt = changedAt
	r.resetTokenHash = ""
	return nil
}

func (r *stubUserRepo) SetResetToken(_ context.Context, _ primitive.ObjectID, tokenHash string, _ time.Time) error {
	r.resetTokenHash = tokenHash
	return nil
}

func (r *stubUserRepo) ClearResetToken(context.Context, primitive.ObjectID) error {
	r.resetTokenHash = ""
	r.resetTokenCleared = true
	return nil
}

func (r *stubUserRepo) Deactivate(_ context.Context, id primitive.ObjectID) error {
	if u, ok := r.users[id]; ok {
		u.Active = false
	}
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) EnsureIndexes(context.Context) error { return nil }

type stubMailer struct {
	welcomeSent bool
	resetURL    string
	fail        bool
}

func (m *stubMailer) SendWelcome(context.Context, *domain.User, string) error {
	m.welcomeSent = true
	if m.fail {
		return errors.New("smtp down")
	}
	return nil
}

func (m *stubMailer) SendPasswordReset(_ context.Context, _ *domain.User, url string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.resetURL = url
	return nil
}

func newAuthService(repo *stubUserRepo, mailer *stubMailer) *AuthService {
	return NewAuthService(repo, mailer, zerolog.Nop(), "test-secret", time.Hour, 24*time.Hour)
}

func TestSignup_HashesAndNormalizes(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	svc := newAuthService(repo, mailer)

	result, err := svc.Signup(context.Background(), ports.SignupInput{
		Name:            "Ayla Cornell",
		Email:           " Ayla@Example.COM ",
		Password:        "pass1234",
		PasswordConfirm: "pass1234",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	user := result.User
	if user.Email != "ayla@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("expected default role, got %q", user.Role)
	}
	if user.Photo != "default.jpg" {
		t.Fatalf("expected default photo, got %q", user.Photo)
	}
	if user.PasswordHash == "pass1234" || user.PasswordHash == "" {
		t.Fatalf("password stored unhashed")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass1234")) != nil {
		t.Fatalf("stored hash does not match password")
	}
	if result.Token == "" {
		t.Fatalf("no token issued")
	}
	if !mailer.welcomeSent {
		t.Fatalf("welcome mail not attempted")
	}
}

func TestSignup_MailFailureIsNotFatal(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{fail: true})

	_, err := svc.Signup(context.Background(), ports.SignupInput{
		Name:            "Ayla Cornell",
		Email:           "ayla@example.com",
		Password:        "pass1234",
		PasswordConfirm: "pass1234",
	})
	if err != nil {
		t.Fatalf("signup should survive a mail failure: %v", err)
	}
}

func TestSignup_ConfirmMismatch(t *testing.T) {
	svc := newAuthService(newStubUserRepo(), &stubMailer{})

	_, err := svc.Signup(context.Background(), ports.SignupInput{
		Name:            "Ayla Cornell",
		Email:           "ayla@example.com",
		Password:        "pass1234",
		PasswordConfirm: "different",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogin_GenericOnUnknownEmailAndWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{})

	if _, err := svc.Signup(context.Background(), ports.SignupInput{
		Name: "Ayla Cornell", Email: "ayla@example.com",
		Password: "pass1234", PasswordConfirm: "pass1234",
	}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := svc.Login(context.Background(), "nobody@example.com", "pass1234"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ayla@example.com", "wrong-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "ayla@example.com", "pass1234"); err != nil {
		t.Fatalf("valid login rejected: %v", err)
	}
}

func TestVerifyToken_RejectsAfterPasswordChange(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{})

	result, err := svc.Signup(context.Background(), ports.SignupInput{
		Name: "Ayla Cornell", Email: "ayla@example.com",
		Password: "pass1234", PasswordConfirm: "pass1234",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if _, err := svc.VerifyToken(context.Background(), result.Token); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}

	// A change after issuance invalidates the old token.
	result.User.PasswordChangedAt = time.Now().Add(time.Minute)
	if _, err := svc.VerifyToken(context.Background(), result.Token); !errors.Is(err, domain.ErrPasswordChanged) {
		t.Fatalf("expected password-changed rejection, got %v", err)
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	svc := newAuthService(newStubUserRepo(), &stubMailer{})
	if _, err := svc.VerifyToken(context.Background(), "not-a-token"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestForgotPassword_MailFailureClearsToken(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	svc := newAuthService(repo, mailer)

	if _, err := svc.Signup(context.Background(), ports.SignupInput{
		Name: "Ayla Cornell", Email: "ayla@example.com",
		Password: "pass1234", PasswordConfirm: "pass1234",
	}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	mailer.fail = true
	if err := svc.ForgotPassword(context.Background(), "ayla@example.com", "http://x/reset"); err == nil {
		t.Fatalf("expected an error when mail fails")
	}
	if !repo.resetTokenCleared {
		t.Fatalf("undeliverable token was not cleared")
	}
}

func TestResetPassword_FullFlow(t *testing.T) {
	repo := newStubUserRepo()
	mailer := &stubMailer{}
	svc := newAuthService(repo, mailer)

	if _, err := svc.Signup(context.Background(), ports.SignupInput{
		Name: "Ayla Cornell", Email: "ayla@example.com",
		Password: "pass1234", PasswordConfirm: "pass1234",
	}); err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := svc.ForgotPassword(context.Background(), "ayla@example.com", "http://x/reset"); err != nil {
		t.Fatalf("forgot password: %v", err)
	}

	// The emailed URL ends with the raw token.
	token := mailer.resetURL[len("http://x/reset/"):]

	result, err := svc.ResetPassword(context.Background(), token, "newpass99", "newpass99")
	if err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("no fresh token issued")
	}
	if !repo.passwordUpdatedAt.Before(time.Now()) {
		t.Fatalf("changed-at stamp not backdated")
	}

	if _, err := svc.ResetPassword(context.Background(), "bogus", "newpass99", "newpass99"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Fatalf("expected invalid token error, got %v", err)
	}
}

func TestUpdatePassword_RequiresCurrent(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, &stubMailer{})

	result, err := svc.Signup(context.Background(), ports.SignupInput{
		Name: "Ayla Cornell", Email: "ayla@example.com",
		Password: "pass1234", PasswordConfirm: "pass1234",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	id := result.User.ID.Hex()

	if _, err := svc.UpdatePassword(context.Background(), id, "wrong", "newpass99", "newpass99"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.UpdatePassword(context.Background(), id, "pass1234", "short", "short"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}
	if _, err := svc.UpdatePassword(context.Background(), id, "pass1234", "newpass99", "newpass99"); err != nil {
		t.Fatalf("update password: %v", err)
	}
}
