package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/studika/gradebook-backend/internal/model"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakePrincipalStore, *fakeSessionStore) {
	t.Helper()

	principals := &fakePrincipalStore{byID: map[int]*model.Principal{}}
	sessions := newFakeSessionStore()
	svc := NewAuthService(testConfig(), principals, sessions, newTestAudit(&fakeAuditStore{}), nil, zerolog.Nop())

	hash, err := svc.HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	principals.byID[1] = &model.Principal{
		ID: 1, Username: "teacher1", PasswordHash: hash,
		Role: model.RoleTeacher, Active: true,
	}

	return svc, principals, sessions
}

func setNow(t *testing.T, at time.Time) {
	t.Helper()
	nowFunc = func() time.Time { return at }
	t.Cleanup(func() { nowFunc = time.Now })
}

func TestLoginIssuesOpaqueToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	session, principal, err := svc.Login(ctx, "teacher1", "secret123", model.ClientMeta{Address: "127.0.0.1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if principal.Username != "teacher1" {
		t.Errorf("principal = %q, want teacher1", principal.Username)
	}
	// 32 random bytes, hex-encoded.
	if len(session.Token) != 64 {
		t.Errorf("token length = %d, want 64", len(session.Token))
	}

	got, err := svc.Validate(ctx, session.Token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got.ID != principal.ID {
		t.Errorf("validated principal = %d, want %d", got.ID, principal.ID)
	}
}

func TestLoginConcurrentSessionsAllowed(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	s1, _, err := svc.Login(ctx, "teacher1", "secret123", model.ClientMeta{})
	if err != nil {
		t.Fatal(err)
	}
	s2, _, err := svc.Login(ctx, "teacher1", "secret123", model.ClientMeta{})
	if err != nil {
		t.Fatal(err)
	}

	if s1.Token == s2.Token {
		t.Fatal("two logins produced the same token")
	}
	if _, err := svc.Validate(ctx, s1.Token); err != nil {
		t.Errorf("first session invalidated by second login: %v", err)
	}
	if _, err := svc.Validate(ctx, s2.Token); err != nil {
		t.Errorf("second session invalid: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, _, err := svc.Login(context.Background(), "teacher1", "wrong", model.ClientMeta{})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	_, _, err := svc.Login(context.Background(), "nobody", "secret123", model.ClientMeta{})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, principals, _ := newAuthFixture(t)
	principals.byID[1].Active = false

	_, _, err := svc.Login(context.Background(), "teacher1", "secret123", model.ClientMeta{})
	if !errors.Is(err, ErrAccountInactive) {
		t.Errorf("Login() error = %v, want ErrAccountInactive", err)
	}
}

func TestValidateUnknownToken(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	if _, err := svc.Validate(context.Background(), "deadbeef"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Validate() error = %v, want ErrNoSession", err)
	}
	if _, err := svc.Validate(context.Background(), ""); !errors.Is(err, ErrNoSession) {
		t.Errorf("Validate(\"\") error = %v, want ErrNoSession", err)
	}
}

func TestLogoutRevokesPermanently(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	session, _, err := svc.Login(ctx, "teacher1", "secret123", model.ClientMeta{})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Logout(ctx, session.Token, "127.0.0.1"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if _, err := svc.Validate(ctx, session.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Errorf("Validate() after logout error = %v, want ErrSessionRevoked", err)
	}

	// Revocation is terminal; a second logout is a no-op.
	if err := svc.Logout(ctx, session.Token, "127.0.0.1"); err != nil {
		t.Errorf("repeated Logout() error = %v", err)
	}
	if _, err := svc.Validate(ctx, session.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Errorf("Validate() still = %v, want ErrSessionRevoked", err)
	}
}

func TestLogoutUnknownTokenIsNoop(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	if err := svc.Logout(context.Background(), "deadbeef", ""); err != nil {
		t.Errorf("Logout() error = %v, want nil", err)
	}
}

func TestIdleTimeoutExpiresLazily(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	setNow(t, base)

	session, _, err := svc.Login(ctx, "teacher1", "secret123", model.ClientMeta{})
	if err != nil {
		t.Fatal(err)
	}

	// 31 minutes idle against a 30 minute timeout.
	setNow(t, base.Add(31*time.Minute))
	if _, err := svc.Validate(ctx, session.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Validate() error = %v, want ErrSessionExpired", err)
	}

	// Expiry is terminal even if time rolls back within the window.
	setNow(t, base.Add(5*time.Minute))
	if _, err := svc.Validate(ctx, session.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Errorf("Validate() after expiry = %v, want ErrSessionRevoked", err)
	}
}

func TestActivityExtendsIdleWindow(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	setNow(t, base)

	session, _, err := svc.Login(ctx, "teacher1", "secret123", model.ClientMeta{})
	if err != nil {
		t.Fatal(err)
	}

	// Touch at +20m keeps the session alive at +40m.
	setNow(t, base.Add(20*time.Minute))
	if _, err := svc.Validate(ctx, session.Token); err != nil {
		t.Fatalf("Validate() at +20m error = %v", err)
	}

	setNow(t, base.Add(40*time.Minute))
	if _, err := svc.Validate(ctx, session.Token); err != nil {
		t.Errorf("Validate() at +40m error = %v, want nil", err)
	}
}

func TestAbsoluteLifetimeCapsActiveSessions(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	setNow(t, base)

	session, _, err := svc.Login(ctx, "teacher1", "secret123", model.ClientMeta{})
	if err != nil {
		t.Fatal(err)
	}

	// Keep touching every 20 minutes; the 12 hour cap still wins.
	for elapsed := 20 * time.Minute; elapsed < 12*time.Hour; elapsed += 20 * time.Minute {
		setNow(t, base.Add(elapsed))
		if _, err := svc.Validate(ctx, session.Token); err != nil {
			t.Fatalf("Validate() at +%v error = %v", elapsed, err)
		}
	}

	setNow(t, base.Add(12*time.Hour+time.Minute))
	if _, err := svc.Validate(ctx, session.Token); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("Validate() past max lifetime = %v, want ErrSessionExpired", err)
	}
}

func TestDeactivatedPrincipalLosesSession(t *testing.T) {
	svc, principals, _ := newAuthFixture(t)
	ctx := context.Background()

	session, _, err := svc.Login(ctx, "teacher1", "secret123", model.ClientMeta{})
	if err != nil {
		t.Fatal(err)
	}

	principals.byID[1].Active = false

	if _, err := svc.Validate(ctx, session.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Errorf("Validate() error = %v, want ErrSessionRevoked", err)
	}
}

func TestRevokePrincipalSessions(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	s1, _, _ := svc.Login(ctx, "teacher1", "secret123", model.ClientMeta{})
	s2, _, _ := svc.Login(ctx, "teacher1", "secret123", model.ClientMeta{})

	if err := svc.RevokePrincipalSessions(ctx, 1); err != nil {
		t.Fatalf("RevokePrincipalSessions() error = %v", err)
	}

	for _, token := range []string{s1.Token, s2.Token} {
		if _, err := svc.Validate(ctx, token); !errors.Is(err, ErrSessionRevoked) {
			t.Errorf("Validate() error = %v, want ErrSessionRevoked", err)
		}
	}
}
