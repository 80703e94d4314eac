package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, time.Second, zap.NewNop())
}

func TestListNormalisationBareArray(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks/", r.URL.Path)
		json.NewEncoder(w).Encode([]models.Task{{ID: 1, Title: "one"}, {ID: 2, Title: "two"}})
	}))

	tasks, err := c.Tasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "one", tasks[0].Title)
}

func TestListNormalisationCountPair(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[2, [{"id":1,"title":"one"},{"id":2,"title":"two"}]]`))
	}))

	tasks, err := c.Tasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "two", tasks[1].Title)
}

func TestListNormalisationRejectsOtherShapes(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": []}`))
	}))

	_, err := c.Tasks(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Fetch))
}

func TestErrorDetailSurfaced(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "deadline is in the past"}`))
	}))

	_, err := c.Task(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, "deadline is in the past", apperr.Message(err))
}

func TestUnauthorizedMapsToAuthKind(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "Unauthorized"}`))
	}))

	_, err := c.Task(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Auth))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "REGISTER_USER_ALREADY_EXISTS"}`))
	}))

	err := c.Register(context.Background(), RegisterPayload{
		Email:     "jo@example.com",
		Password:  "password123",
		GivenName: "Jo",
		Role:      models.RoleEmployee,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsAlreadyExists(err))
}

func TestRegisterValidatesBeforeDispatch(t *testing.T) {
	called := false
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	err := c.Register(context.Background(), RegisterPayload{
		Email:     "not-an-email",
		Password:  "short",
		GivenName: "Jo",
		Role:      models.RoleEmployee,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
	assert.False(t, called)
}

func TestLoginSendsFormEncodedCredentials(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/jwt/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "jo@example.com", r.PostFormValue("username"))
		assert.Equal(t, "secret123", r.PostFormValue("password"))
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok"})
	}))

	token, err := c.Login(context.Background(), "jo@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
}

func TestLoginRejectionIsAuthKind(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "LOGIN_BAD_CREDENTIALS"}`))
	}))

	_, err := c.Login(context.Background(), "jo@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Auth))
}

func TestBearerTokenAttached(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(models.Task{ID: 5, Title: "t"})
	}))
	c.SetToken("tok")

	task, err := c.Task(context.Background(), 5)
	require.NoError(t, err)
	assert.EqualValues(t, 5, task.ID)
}

func TestCommentsSortedByCreationTime(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("task_id"))
		json.NewEncoder(w).Encode([]models.Comment{
			{ID: 2, Text: "later", CreatedAt: base.Add(time.Hour)},
			{ID: 1, Text: "earlier", CreatedAt: base},
		})
	}))

	comments, err := c.Comments(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "earlier", comments[0].Text)
	assert.Equal(t, "later", comments[1].Text)
}

func TestSubmitAnswerRequiresContent(t *testing.T) {
	called := false
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := c.SubmitAnswer(context.Background(), 1, Answer{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
	assert.False(t, called)
}

func TestSubmitAnswerGrading(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tasks/9/submit", r.URL.Path)
		var a Answer
		require.NoError(t, json.NewDecoder(r.Body).Decode(&a))
		assert.Equal(t, []int64{4}, a.OptionIDs)
		json.NewEncoder(w).Encode(SubmitResult{IsCorrect: true})
	}))

	res, err := c.SubmitAnswer(context.Background(), 9, Answer{OptionIDs: []int64{4}})
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
}

func TestCreateCourseValidatesBeforeDispatch(t *testing.T) {
	called := false
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	_, err := c.CreateCourse(context.Background(), CoursePayload{Title: "t", Description: "d"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Validation))
	assert.False(t, called)
}
