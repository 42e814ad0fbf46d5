package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"freshcart-backend/models"
	"freshcart-backend/store"
)

type memUsers struct {
	byEmail map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: make(map[string]*models.User)}
}

func (m *memUsers) InsertUser(_ context.Context, u *models.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return store.ErrDuplicateEmail
	}
	u.ID = primitive.NewObjectID()
	saved := *u
	m.byEmail[u.Email] = &saved
	return nil
}

func (m *memUsers) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func newAuthTestRouter(users *memUsers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/register", Register(users))
	r.POST("/api/login", Login(users, []byte("test-secret")))
	return r
}

func TestRegisterAndLogin(t *testing.T) {
	r := newAuthTestRouter(newMemUsers())

	w := doJSON(t, r, http.MethodPost, "/api/register", gin.H{
		"name": "Asha", "email": "asha@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code)
	// The stored hash must never be echoed back.
	assert.NotContains(t, w.Body.String(), "hunter22")
	assert.NotContains(t, w.Body.String(), "$2a$")

	w = doJSON(t, r, http.MethodPost, "/api/login", gin.H{
		"email": "asha@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "asha@example.com", resp.User.Email)
	assert.Empty(t, resp.User.Password)
}

func TestRegisterDuplicateEmailIs409(t *testing.T) {
	r := newAuthTestRouter(newMemUsers())

	body := gin.H{"name": "Asha", "email": "asha@example.com", "password": "hunter22"}
	w := doJSON(t, r, http.MethodPost, "/api/register", body)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/register", body)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newMemUsers()
	r := newAuthTestRouter(users)

	w := doJSON(t, r, http.MethodPost, "/api/register", gin.H{
		"name": "Asha", "email": "asha@example.com", "password": "hunter22",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/login", gin.H{
		"email": "asha@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	r := newAuthTestRouter(newMemUsers())

	w := doJSON(t, r, http.MethodPost, "/api/login", gin.H{
		"email": "nobody@example.com", "password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
