package session

import (
	"context"
	"sync"

	"pantrysync/domain"
	"pantrysync/entities"
	"pantrysync/pkg/gateway"

	"github.com/go-playground/validator/v10"
)

type (
	// SessionService holds the current identity and profile and gates the
	// rest of the app's view of protected data. Every method records its
	// failure in Err; all but FetchProfile also return it to the caller.
	SessionService interface {
		Initialize(ctx context.Context) error
		SignUp(ctx context.Context, req domain.SignUpRequest) error
		SignIn(ctx context.Context, req domain.SignInRequest) error
		SignOut(ctx context.Context) error
		ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error
		UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) error
		FetchProfile(ctx context.Context)
		Close()

		User() *gateway.User
		Session() *gateway.Session
		Profile() *entities.Profile
		Loading() bool
		Err() string
	}

	sessionService struct {
		sessionRepository SessionRepository
		validate          *validator.Validate

		mu          sync.Mutex
		user        *gateway.User
		session     *gateway.Session
		profile     *entities.Profile
		loading     bool
		err         string
		unsubscribe func()
	}
)

func NewSessionService(sessionRepository SessionRepository, validate *validator.Validate) SessionService {
	return &sessionService{
		sessionRepository: sessionRepository,
		validate:          validate,
	}
}

// Initialize recovers any existing session, fetches its profile and installs
// the auth-change subscription that keeps user/session/profile synced. This
// subscription is the only push-driven behavior in the layer.
func (s *sessionService) Initialize(ctx context.Context) error {
	s.begin()
	defer s.end()

	session, err := s.sessionRepository.GetSession(ctx)
	if err != nil {
		s.setErr(err)
		return err
	}
	if session != nil {
		s.setSession(session)
		s.FetchProfile(ctx)
	}

	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.mu.Unlock()

	unsubscribe := s.sessionRepository.OnAuthStateChange(func(_ string, session *gateway.Session) {
		s.setSession(session)
		if session != nil {
			s.FetchProfile(context.Background())
		} else {
			s.mu.Lock()
			s.profile = nil
			s.mu.Unlock()
		}
	})

	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
	return nil
}

// Close drops the auth-change subscription.
func (s *sessionService) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// SignUp creates the gateway identity and its profile row.
func (s *sessionService) SignUp(ctx context.Context, req domain.SignUpRequest) error {
	s.begin()
	defer s.end()

	if err := s.validate.Struct(req); err != nil {
		s.setErr(err)
		return err
	}

	session, err := s.sessionRepository.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		s.setErr(err)
		return err
	}
	if session == nil || session.User.ID == "" {
		s.setErr(domain.ErrSignUpIncomplete)
		return domain.ErrSignUpIncomplete
	}

	err = s.sessionRepository.InsertProfile(ctx, map[string]any{
		"id":                   session.User.ID,
		"full_name":            req.FullName,
		"notification_enabled": true,
	})
	if err != nil {
		s.setErr(err)
		return err
	}
	return nil
}

func (s *sessionService) SignIn(ctx context.Context, req domain.SignInRequest) error {
	s.begin()
	defer s.end()

	if err := s.validate.Struct(req); err != nil {
		s.setErr(err)
		return err
	}
	if _, err := s.sessionRepository.SignIn(ctx, req.Email, req.Password); err != nil {
		s.setErr(err)
		return err
	}
	return nil
}

// SignOut clears local state only after the gateway call succeeds; on failure
// the error is surfaced and nothing is cleared.
func (s *sessionService) SignOut(ctx context.Context) error {
	s.begin()
	defer s.end()

	if err := s.sessionRepository.SignOut(ctx); err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	s.user = nil
	s.session = nil
	s.profile = nil
	s.mu.Unlock()
	return nil
}

// ResetPassword triggers the gateway's out-of-band reset flow.
func (s *sessionService) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	s.begin()
	defer s.end()

	if err := s.validate.Struct(req); err != nil {
		s.setErr(err)
		return err
	}
	if err := s.sessionRepository.ResetPassword(ctx, req.Email); err != nil {
		s.setErr(err)
		return err
	}
	return nil
}

// UpdateProfile writes the patch then re-fetches the canonical profile; the
// local copy is never derived.
func (s *sessionService) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) error {
	s.begin()
	defer s.end()

	if err := s.validate.Struct(req); err != nil {
		s.setErr(err)
		return err
	}

	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	if user == nil {
		s.setErr(domain.ErrNoUserLoggedIn)
		return domain.ErrNoUserLoggedIn
	}

	if err := s.sessionRepository.UpdateProfile(ctx, user.ID, req.Patch()); err != nil {
		s.setErr(err)
		return err
	}
	s.FetchProfile(ctx)
	return nil
}

// FetchProfile loads the profile of the current user. Failures are recorded
// in Err only; a signed-out service is a no-op.
func (s *sessionService) FetchProfile(ctx context.Context) {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	if user == nil {
		return
	}

	profile, err := s.sessionRepository.GetProfile(ctx, user.ID)
	if err != nil {
		s.setErr(err)
		return
	}
	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()
}

func (s *sessionService) User() *gateway.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	copied := *s.user
	return &copied
}

func (s *sessionService) Session() *gateway.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	copied := *s.session
	return &copied
}

func (s *sessionService) Profile() *entities.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	copied := *s.profile
	return &copied
}

func (s *sessionService) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *sessionService) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *sessionService) setSession(session *gateway.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	if session != nil {
		user := session.User
		s.user = &user
	} else {
		s.user = nil
	}
}

func (s *sessionService) begin() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

func (s *sessionService) end() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
}

func (s *sessionService) setErr(err error) {
	s.mu.Lock()
	s.err = err.Error()
	s.mu.Unlock()
}
