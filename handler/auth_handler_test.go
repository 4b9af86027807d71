package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aashish23092/statement-parser/service"
	"github.com/Aashish23092/statement-parser/storage"
)

type fakeStore struct {
	users map[string]*storage.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*storage.User{}}
}

func (f *fakeStore) CreateUser(_ context.Context, user *storage.User) error {
	if _, exists := f.users[user.Email]; exists {
		return storage.ErrDuplicateEmail
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	f.users[user.Email] = user
	return nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*storage.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

func (f *fakeStore) SaveStatement(context.Context, *storage.Statement) error { return nil }

func (f *fakeStore) ListStatements(context.Context, uuid.UUID) ([]*storage.Statement, error) {
	return nil, nil
}

func (f *fakeStore) GetStatement(context.Context, uuid.UUID, int64) (*storage.Statement, error) {
	return nil, storage.ErrNotFound
}

func authRouter() (*gin.Engine, *service.AuthService) {
	gin.SetMode(gin.TestMode)
	authService := service.NewAuthService(newFakeStore(), "test-secret", time.Hour, zerolog.Nop())
	h := NewAuthHandler(authService, zerolog.Nop())

	router := gin.New()
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
	router.GET("/protected", AuthRequired(authService), func(c *gin.Context) {
		id, _ := currentUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id.String()})
	})
	return router, authService
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterLoginAndAccessProtected(t *testing.T) {
	router, _ := authRouter()

	rec := postJSON(router, "/register", `{"email":"a@b.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(router, "/login", `{"email":"a@b.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "access_token")

	var token struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &token))

	protected := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	router.ServeHTTP(protected, req)
	assert.Equal(t, http.StatusOK, protected.Code)
}

func TestRegisterDuplicate(t *testing.T) {
	router, _ := authRouter()

	rec := postJSON(router, "/register", `{"email":"a@b.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(router, "/register", `{"email":"a@b.com","password":"hunter2hunter2"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	router, _ := authRouter()
	rec := postJSON(router, "/register", `{"email":"a@b.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	router, _ := authRouter()

	postJSON(router, "/register", `{"email":"a@b.com","password":"hunter2hunter2"}`)
	rec := postJSON(router, "/login", `{"email":"a@b.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedWithoutToken(t *testing.T) {
	router, _ := authRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/protected", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedWithGarbageToken(t *testing.T) {
	router, _ := authRouter()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
