// Package session owns the Session lifecycle. The session is read by many
// components but written only here, by Login, Register and Logout.
package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/skilltracker/skt/internal/api"
	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
	"github.com/skilltracker/skt/internal/store"
)

// storageKey is the fixed settings key holding the session JSON.
const storageKey = "session"

// Store combines the persisted record with the in-memory session.
type Store struct {
	kv  *store.Store
	api *api.Client
	log *zap.Logger

	current *models.Session
}

func NewStore(kv *store.Store, client *api.Client, log *zap.Logger) *Store {
	return &Store{kv: kv, api: client, log: log}
}

// Current returns the in-memory session, nil when signed out.
func (s *Store) Current() *models.Session {
	return s.current
}

// Load reads the persisted record. A corrupt or expired record is cleared
// and treated as absent; Load never fails.
func (s *Store) Load() *models.Session {
	raw, err := s.kv.Get(storageKey)
	if err != nil || raw == "" {
		return nil
	}

	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.log.Warn("discarding corrupt session record", zap.Error(err))
		_ = s.kv.Delete(storageKey)
		return nil
	}
	if _, err := models.ParseRole(string(sess.Role)); err != nil || sess.Token == "" {
		s.log.Warn("discarding invalid session record")
		_ = s.kv.Delete(storageKey)
		return nil
	}
	if tokenExpired(sess.Token, time.Now()) {
		s.log.Info("discarding expired session", zap.String("email", sess.Email))
		_ = s.kv.Delete(storageKey)
		return nil
	}

	s.current = &sess
	s.api.SetToken(sess.Token)
	return s.current
}

// Login exchanges credentials for a token, fetches the profile, persists the
// combined session and returns it.
func (s *Store) Login(ctx context.Context, email, password string) (*models.Session, error) {
	token, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.api.SetToken(token)
	profile, err := s.api.Me(ctx)
	if err != nil {
		s.api.SetToken("")
		return nil, apperr.Wrap(err, apperr.Auth, apperr.Message(err))
	}

	role, err := models.ParseRole(profile.Role)
	if err != nil {
		role = models.RoleEmployee
	}
	sess := &models.Session{
		Token:  token,
		UserID: profile.ID,
		Email:  profile.Email,
		Name:   profile.DisplayName(),
		Role:   role,
	}

	if err := s.persist(sess); err != nil {
		s.log.Error("could not persist session", zap.Error(err))
	}
	s.current = sess
	s.log.Info("logged in", zap.String("email", sess.Email), zap.String("role", string(sess.Role)))
	return sess, nil
}

// Register creates the account and then logs in with the same credentials.
func (s *Store) Register(ctx context.Context, p api.RegisterPayload) (*models.Session, error) {
	p.IsActive = true
	if err := s.api.Register(ctx, p); err != nil {
		return nil, err
	}
	return s.Login(ctx, p.Email, p.Password)
}

// Logout clears the persisted record and the in-memory session. No network
// call is made.
func (s *Store) Logout() {
	if s.current != nil {
		s.log.Info("logged out", zap.String("email", s.current.Email))
	}
	s.current = nil
	s.api.SetToken("")
	_ = s.kv.Delete(storageKey)
}

func (s *Store) persist(sess *models.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.kv.Set(storageKey, string(b))
}

// tokenExpired inspects the token's exp claim without verifying the
// signature; verification is the backend's job. Tokens without a readable
// exp claim are kept.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
