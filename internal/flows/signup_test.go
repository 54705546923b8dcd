package flows

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

var (
	errInvalid = errors.New("invalid")
	errPolicy  = errors.New("policy")
	errExists  = errors.New("exists")
)

type fakeSignupEnv struct {
	users    map[string]SignupUserRecord
	counters map[int]int
}

func newSignupDeps(env *fakeSignupEnv) SignupDeps {
	env.users = map[string]SignupUserRecord{}
	env.counters = map[int]int{}
	return SignupDeps{
		Now:           func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
		Sanitize:      strings.TrimSpace,
		StrengthScore: func(pw string) int { return len(pw) / 2 },
		HashPassword:  func(pw string) (string, error) { return "hash:" + pw, nil },
		NewUserID:     func() string { return "id-1" },
		EmailExists: func(_ context.Context, email string) (bool, error) {
			_, ok := env.users[email]
			return ok, nil
		},
		CreateUser: func(_ context.Context, rec SignupUserRecord) (SignupUserRecord, error) {
			if _, ok := env.users[rec.Email]; ok {
				return SignupUserRecord{}, errExists
			}
			env.users[rec.Email] = rec
			return rec, nil
		},
		IssueVerification: func(context.Context, string) (string, error) { return "verify", nil },
		IssueTokens: func(context.Context, SignupUserRecord) (string, string, error) {
			return "access", "refresh", nil
		},
		MetricInc: func(id int) { env.counters[id]++ },
		Metrics:   SignupMetrics{SignupSuccess: 1, SignupDuplicate: 2, SignupRejected: 3},
		Errors:    SignupErrors{EngineNotReady: errNotReady, SignupInvalid: errInvalid, PasswordPolicy: errPolicy, AccountExists: errExists},
	}
}

func TestRunSignupCreatesUser(t *testing.T) {
	env := &fakeSignupEnv{}
	res, err := RunSignup(context.Background(), SignupInput{
		FirstName: " Ada ", LastName: "Lovelace", Email: "ada@example.com", Password: "Secret123!",
	}, newSignupDeps(env))
	if err != nil {
		t.Fatalf("RunSignup error: %v", err)
	}
	if res.User.FirstName != "Ada" || res.User.PasswordHash != "" || res.VerificationToken != "verify" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if env.users["ada@example.com"].PasswordHash != "hash:Secret123!" {
		t.Fatal("stored record must carry the hash")
	}
	if env.counters[1] != 1 {
		t.Fatalf("expected success metric, got %v", env.counters)
	}
}

func TestRunSignupDuplicate(t *testing.T) {
	env := &fakeSignupEnv{}
	deps := newSignupDeps(env)
	in := SignupInput{FirstName: "A", LastName: "B", Email: "dup@example.com", Password: "pw"}

	if _, err := RunSignup(context.Background(), in, deps); err != nil {
		t.Fatalf("first signup failed: %v", err)
	}
	if _, err := RunSignup(context.Background(), in, deps); !errors.Is(err, errExists) {
		t.Fatalf("expected account exists, got %v", err)
	}
	if env.counters[2] != 1 {
		t.Fatalf("expected duplicate metric, got %v", env.counters)
	}
}

func TestRunSignupValidationAndPolicy(t *testing.T) {
	env := &fakeSignupEnv{}
	deps := newSignupDeps(env)
	deps.Validate = func() error { return errInvalid }
	if _, err := RunSignup(context.Background(), SignupInput{}, deps); !errors.Is(err, errInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}

	deps = newSignupDeps(env)
	deps.MinStrengthScore = 4
	_, err := RunSignup(context.Background(), SignupInput{FirstName: "A", LastName: "B", Email: "w@example.com", Password: "short"}, deps)
	if !errors.Is(err, errPolicy) {
		t.Fatalf("expected policy error, got %v", err)
	}
	if len(env.users) != 0 {
		t.Fatal("rejected signup must not create a user")
	}
}

func TestRunSignupSanitizedNameMustRemain(t *testing.T) {
	env := &fakeSignupEnv{}
	_, err := RunSignup(context.Background(), SignupInput{FirstName: "   ", LastName: "B", Email: "n@example.com", Password: "pw"}, newSignupDeps(env))
	if !errors.Is(err, errInvalid) {
		t.Fatalf("expected invalid after sanitizing, got %v", err)
	}
}
