package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skilltracker/skt/internal/api"
	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
	"github.com/skilltracker/skt/internal/store"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "1", "exp": exp.Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func testBackend(t *testing.T, token string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/jwt/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("password") != "correct-password" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"detail": "LOGIN_BAD_CREDENTIALS"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": token})
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(api.Profile{
			ID: 7, Email: "jo@example.com", Role: "manager", GivenName: "Jo", FamilyName: "Smith",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testStore(t *testing.T, baseURL string) (*Store, *store.Store) {
	t.Helper()
	kv, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	client := api.New(baseURL, time.Second, zap.NewNop())
	return NewStore(kv, client, zap.NewNop()), kv
}

func TestLoginPersistsSession(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	srv := testBackend(t, token)
	s, kv := testStore(t, srv.URL)

	sess, err := s.Login(context.Background(), "jo@example.com", "correct-password")
	require.NoError(t, err)
	assert.Equal(t, token, sess.Token)
	assert.EqualValues(t, 7, sess.UserID)
	assert.Equal(t, models.RoleManager, sess.Role)
	assert.Equal(t, "Jo Smith", sess.Name)
	assert.Equal(t, sess, s.Current())

	raw, err := kv.Get(storageKey)
	require.NoError(t, err)
	var stored models.Session
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	assert.Equal(t, *sess, stored)
}

func TestLoginWrongPasswordLeavesStorageUntouched(t *testing.T) {
	srv := testBackend(t, signedToken(t, time.Now().Add(time.Hour)))
	s, kv := testStore(t, srv.URL)

	_, err := s.Login(context.Background(), "jo@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Auth))
	assert.Nil(t, s.Current())

	raw, err := kv.Get(storageKey)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestLoadRestoresPersistedSession(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	srv := testBackend(t, token)
	s, kv := testStore(t, srv.URL)

	_, err := s.Login(context.Background(), "jo@example.com", "correct-password")
	require.NoError(t, err)

	// a fresh store over the same record, as after a restart
	client := api.New(srv.URL, time.Second, zap.NewNop())
	fresh := NewStore(kv, client, zap.NewNop())
	sess := fresh.Load()
	require.NotNil(t, sess)
	assert.Equal(t, "jo@example.com", sess.Email)
	assert.Equal(t, models.RoleManager, sess.Role)
}

func TestLoadClearsCorruptRecord(t *testing.T) {
	srv := testBackend(t, signedToken(t, time.Now().Add(time.Hour)))
	s, kv := testStore(t, srv.URL)

	require.NoError(t, kv.Set(storageKey, "{not json"))
	assert.Nil(t, s.Load())

	raw, err := kv.Get(storageKey)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestLoadClearsRecordWithUnknownRole(t *testing.T) {
	srv := testBackend(t, signedToken(t, time.Now().Add(time.Hour)))
	s, kv := testStore(t, srv.URL)

	b, _ := json.Marshal(models.Session{Token: "tok", Role: "superadmin"})
	require.NoError(t, kv.Set(storageKey, string(b)))
	assert.Nil(t, s.Load())

	raw, err := kv.Get(storageKey)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestLoadClearsExpiredSession(t *testing.T) {
	expired := signedToken(t, time.Now().Add(-time.Hour))
	srv := testBackend(t, expired)
	s, kv := testStore(t, srv.URL)

	b, _ := json.Marshal(models.Session{Token: expired, UserID: 7, Email: "jo@example.com", Role: models.RoleManager})
	require.NoError(t, kv.Set(storageKey, string(b)))
	assert.Nil(t, s.Load())

	raw, err := kv.Get(storageKey)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestLogoutClearsEverything(t *testing.T) {
	token := signedToken(t, time.Now().Add(time.Hour))
	srv := testBackend(t, token)
	s, kv := testStore(t, srv.URL)

	_, err := s.Login(context.Background(), "jo@example.com", "correct-password")
	require.NoError(t, err)

	s.Logout()
	assert.Nil(t, s.Current())

	raw, err := kv.Get(storageKey)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	assert.True(t, tokenExpired(signedToken(t, now.Add(-time.Minute)), now))
	assert.False(t, tokenExpired(signedToken(t, now.Add(time.Minute)), now))
	// opaque tokens are kept; the backend decides
	assert.False(t, tokenExpired("not-a-jwt", now))
}
