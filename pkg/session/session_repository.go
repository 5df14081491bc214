package session

import (
	"context"

	"pantrysync/entities"
	"pantrysync/pkg/gateway"
)

type (
	SessionRepository interface {
		GetSession(ctx context.Context) (*gateway.Session, error)
		SignUp(ctx context.Context, email, password string) (*gateway.Session, error)
		SignIn(ctx context.Context, email, password string) (*gateway.Session, error)
		SignOut(ctx context.Context) error
		ResetPassword(ctx context.Context, email string) error
		OnAuthStateChange(fn gateway.AuthChangeFunc) func()

		GetProfile(ctx context.Context, userID string) (*entities.Profile, error)
		InsertProfile(ctx context.Context, row map[string]any) error
		UpdateProfile(ctx context.Context, userID string, patch map[string]any) error
	}

	sessionRepository struct {
		client *gateway.Client
	}
)

func NewSessionRepository(client *gateway.Client) SessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) GetSession(ctx context.Context) (*gateway.Session, error) {
	return r.client.GetSession(ctx)
}

func (r *sessionRepository) SignUp(ctx context.Context, email, password string) (*gateway.Session, error) {
	return r.client.SignUp(ctx, email, password)
}

func (r *sessionRepository) SignIn(ctx context.Context, email, password string) (*gateway.Session, error) {
	return r.client.SignInWithPassword(ctx, email, password)
}

func (r *sessionRepository) SignOut(ctx context.Context) error {
	return r.client.SignOut(ctx)
}

func (r *sessionRepository) ResetPassword(ctx context.Context, email string) error {
	return r.client.ResetPasswordForEmail(ctx, email)
}

func (r *sessionRepository) OnAuthStateChange(fn gateway.AuthChangeFunc) func() {
	return r.client.OnAuthStateChange(fn)
}

// GetProfile returns (nil, nil) when no profile row exists yet; absence is
// not an error during session establishment.
func (r *sessionRepository) GetProfile(ctx context.Context, userID string) (*entities.Profile, error) {
	var profile entities.Profile
	err := r.client.From("profiles").
		Select("*").
		Eq("id", userID).
		Single().
		Get(ctx, &profile)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *sessionRepository) InsertProfile(ctx context.Context, row map[string]any) error {
	return r.client.From("profiles").Insert(ctx, row, nil)
}

func (r *sessionRepository) UpdateProfile(ctx context.Context, userID string, patch map[string]any) error {
	return r.client.From("profiles").Eq("id", userID).Update(ctx, patch, nil)
}
