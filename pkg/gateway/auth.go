package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	AuthEventSignedIn       = "SIGNED_IN"
	AuthEventSignedOut      = "SIGNED_OUT"
	AuthEventTokenRefreshed = "TOKEN_REFRESHED"
)

// refreshSkew refreshes sessions slightly before their recorded expiry so an
// almost-expired token is never sent.
const refreshSkew = 30 * time.Second

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().Add(refreshSkew).After(s.ExpiresAt)
}

type AuthChangeFunc func(event string, session *Session)

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         User   `json:"user"`
}

// session builds a Session, falling back to the access token's own claims for
// identity and expiry when the response body omits them. The token is parsed
// only; the gateway signs and verifies its own tokens.
func (t tokenResponse) session() *Session {
	s := &Session{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		User:         t.User,
	}
	if t.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.AccessToken, claims); err == nil {
		if s.User.ID == "" {
			if sub, ok := claims["sub"].(string); ok {
				s.User.ID = sub
			}
		}
		if s.User.Email == "" {
			if email, ok := claims["email"].(string); ok {
				s.User.Email = email
			}
		}
		if s.ExpiresAt.IsZero() {
			if exp, ok := claims["exp"].(float64); ok {
				s.ExpiresAt = time.Unix(int64(exp), 0)
			}
		}
	}
	return s
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.authGrant(ctx, "/auth/v1/signup", email, password, AuthEventSignedIn)
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	return c.authGrant(ctx, "/auth/v1/token?grant_type=password", email, password, AuthEventSignedIn)
}

func (c *Client) authGrant(ctx context.Context, path, email, password, event string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := c.do(req, &tr); err != nil {
		return nil, err
	}

	session := tr.session()
	c.setSession(session, event)
	return session, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	current := c.session
	c.mu.Unlock()
	if current == nil {
		return nil
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+current.AccessToken)

	if err := c.do(req, nil); err != nil {
		return err
	}
	c.setSession(nil, AuthEventSignedOut)
	return nil
}

func (c *Client) ResetPasswordForEmail(ctx context.Context, email string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/recover", map[string]string{"email": email})
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// GetSession returns the current session, refreshing it first when expired.
// A nil session with nil error means signed out.
func (c *Client) GetSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	current := c.session
	c.mu.Unlock()

	if current == nil {
		return nil, nil
	}
	if !current.Expired() {
		copied := *current
		return &copied, nil
	}
	if current.RefreshToken == "" {
		c.setSession(nil, AuthEventSignedOut)
		return nil, nil
	}
	return c.refreshSession(ctx, current.RefreshToken)
}

func (c *Client) refreshSession(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/token?grant_type=refresh_token", body)
	if err != nil {
		return nil, err
	}

	var tr tokenResponse
	if err := c.do(req, &tr); err != nil {
		return nil, err
	}

	session := tr.session()
	c.setSession(session, AuthEventTokenRefreshed)
	return session, nil
}

// CurrentUserID resolves the session identity, or "" when signed out.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	session, err := c.GetSession(ctx)
	if err != nil {
		return "", err
	}
	if session == nil {
		return "", nil
	}
	return session.User.ID, nil
}

// OnAuthStateChange subscribes fn to session transitions (sign-in, sign-out,
// token refresh). The returned func unsubscribes.
func (c *Client) OnAuthStateChange(fn AuthChangeFunc) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) setSession(s *Session, event string) {
	c.mu.Lock()
	c.session = s
	fns := make([]AuthChangeFunc, 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	c.persistSession(s)
	for _, fn := range fns {
		fn(event, s)
	}
}

// accessToken picks the bearer for tabular calls: the session token when
// signed in, the anon key otherwise.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	session, err := c.GetSession(ctx)
	if err != nil {
		return "", err
	}
	if session == nil {
		return c.apiKey, nil
	}
	return session.AccessToken, nil
}
