package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeDirectory struct {
	principals map[string]*Principal
	err        error
	lookups    int
}

func (d *fakeDirectory) FindBySubject(_ context.Context, subject string) (*Principal, error) {
	d.lookups++
	if d.err != nil {
		return nil, d.err
	}
	principal, ok := d.principals[subject]
	if !ok {
		return nil, ErrPrincipalNotFound
	}
	return principal, nil
}

func newGateFixture(t *testing.T) (*Gate, *JWTManager, *fakeDirectory) {
	t.Helper()
	manager := NewJWTManager("gate-secret", time.Hour, "episteme")
	directory := &fakeDirectory{principals: map[string]*Principal{
		"user-1": {ID: "user-1", Email: "ada@episteme.example", DisplayName: "Ada", Role: "researcher"},
	}}
	return NewGate(manager, directory), manager, directory
}

func TestGateResolvesKnownPrincipal(t *testing.T) {
	gate, manager, _ := newGateFixture(t)

	token, err := manager.Generate("user-1", "researcher")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	principal := gate.Resolve(context.Background(), "Bearer "+token)
	if principal == nil || principal.ID != "user-1" {
		t.Fatalf("expected user-1, got %#v", principal)
	}
}

func TestGateNoHeaderNoPrincipal(t *testing.T) {
	gate, _, directory := newGateFixture(t)

	for _, header := range []string{"", "Basic abc", "Bearer ", "Token xyz"} {
		if principal := gate.Resolve(context.Background(), header); principal != nil {
			t.Fatalf("header %q: expected no principal, got %#v", header, principal)
		}
	}
	if directory.lookups != 0 {
		t.Fatalf("malformed headers must not reach the directory; %d lookups", directory.lookups)
	}
}

func TestGateBadTokensIndistinguishable(t *testing.T) {
	gate, _, directory := newGateFixture(t)
	forger := NewJWTManager("other-secret", time.Hour, "episteme")
	expiredMinter := NewJWTManager("gate-secret", -time.Minute, "episteme")

	forged, err := forger.Generate("user-1", "researcher")
	if err != nil {
		t.Fatalf("generate forged token: %v", err)
	}
	expired, err := expiredMinter.Generate("user-1", "researcher")
	if err != nil {
		t.Fatalf("generate expired token: %v", err)
	}

	for _, token := range []string{forged, expired, "garbage"} {
		if principal := gate.Resolve(context.Background(), "Bearer "+token); principal != nil {
			t.Fatalf("token %q: expected no principal, got %#v", token, principal)
		}
	}
	if directory.lookups != 0 {
		t.Fatalf("failed validation must not reach the directory; %d lookups", directory.lookups)
	}
}

func TestGateUnknownSubjectNoPrincipal(t *testing.T) {
	gate, manager, directory := newGateFixture(t)

	token, err := manager.Generate("ghost", "researcher")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if principal := gate.Resolve(context.Background(), "Bearer "+token); principal != nil {
		t.Fatalf("expected no principal for unknown subject, got %#v", principal)
	}
	if directory.lookups != 1 {
		t.Fatalf("expected exactly one lookup, got %d", directory.lookups)
	}
}

func TestGateDirectoryFailureNoPrincipal(t *testing.T) {
	gate, manager, directory := newGateFixture(t)
	directory.err = errors.New("connection refused")

	token, err := manager.Generate("user-1", "researcher")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if principal := gate.Resolve(context.Background(), "Bearer "+token); principal != nil {
		t.Fatalf("expected store failure to fold to no principal, got %#v", principal)
	}
}

func TestGateCancelledContextSkipsLookup(t *testing.T) {
	gate, manager, directory := newGateFixture(t)

	token, err := manager.Generate("user-1", "researcher")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if principal := gate.Resolve(ctx, "Bearer "+token); principal != nil {
		t.Fatalf("expected no principal on cancelled context, got %#v", principal)
	}
	if directory.lookups != 0 {
		t.Fatalf("cancelled context must not start the lookup; %d lookups", directory.lookups)
	}
}
