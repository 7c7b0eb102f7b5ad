package auth

import (
	"context"
	"testing"

	"github.com/rostra-dev/rostra/internal/api"
	"github.com/rostra-dev/rostra/internal/debate"
	"github.com/rostra-dev/rostra/internal/errors"
)

type fakeSource struct {
	user  *api.User
	err   error
	calls int
}

func (f *fakeSource) CurrentUser(context.Context) (*api.User, error) {
	f.calls++
	return f.user, f.err
}

func TestService_CachesIdentity(t *testing.T) {
	source := &fakeSource{user: &api.User{ID: "u1", Username: "ada"}}
	svc := NewService(source, nil)

	for i := 0; i < 3; i++ {
		user, err := svc.CurrentUser(context.Background())
		if err != nil {
			t.Fatalf("CurrentUser() error = %v", err)
		}
		if user.ID != "u1" {
			t.Errorf("user.ID = %q", user.ID)
		}
	}
	if source.calls != 1 {
		t.Errorf("source fetched %d times, want 1", source.calls)
	}
	if svc.UserID() != "u1" {
		t.Errorf("UserID() = %q", svc.UserID())
	}
}

func TestService_FailedFetchIsNotCached(t *testing.T) {
	source := &fakeSource{err: errors.ErrUnauthenticated}
	svc := NewService(source, nil)

	if _, err := svc.CurrentUser(context.Background()); !errors.Is(err, errors.ErrUnauthenticated) {
		t.Fatalf("error = %v, want ErrUnauthenticated", err)
	}
	if svc.UserID() != "" {
		t.Error("UserID cached after failed fetch")
	}

	source.err = nil
	source.user = &api.User{ID: "u1"}
	if _, err := svc.CurrentUser(context.Background()); err != nil {
		t.Fatalf("recovery fetch error = %v", err)
	}
	if source.calls != 2 {
		t.Errorf("source fetched %d times, want 2", source.calls)
	}
}

func TestService_Invalidate(t *testing.T) {
	source := &fakeSource{user: &api.User{ID: "u1"}}
	svc := NewService(source, nil)

	svc.CurrentUser(context.Background())
	svc.Invalidate()
	svc.CurrentUser(context.Background())

	if source.calls != 2 {
		t.Errorf("source fetched %d times after Invalidate, want 2", source.calls)
	}
}

func TestCheckOwnership(t *testing.T) {
	session := &debate.Session{ID: "42", UserID: "u1"}

	tests := []struct {
		name    string
		user    *api.User
		session *debate.Session
		wantErr error
	}{
		{"owner", &api.User{ID: "u1"}, session, nil},
		{"admin bypass", &api.User{ID: "u9", IsAdmin: true}, session, nil},
		{"foreign user", &api.User{ID: "u2"}, session, errors.ErrNotOwner},
		{"no user", nil, session, errors.ErrUnauthenticated},
		{"unowned session", &api.User{ID: "u2"}, &debate.Session{ID: "43"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckOwnership(tt.user, tt.session)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("CheckOwnership() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckOwnership() = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == errors.ErrNotOwner && !errors.IsAuthorization(err) {
				t.Error("ownership failure not classified as authorization error")
			}
		})
	}
}
