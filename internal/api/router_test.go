package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/talentlink/talentlink/internal/auth"
	"github.com/talentlink/talentlink/internal/cache"
	testutil "github.com/talentlink/talentlink/internal/database/testutil"
	"github.com/talentlink/talentlink/internal/models"
	"github.com/talentlink/talentlink/internal/services"
)

type apiTestEnv struct {
	router *gin.Engine
	db     *gorm.DB
	jwt    *iauth.JWTService
}

func newAPITestEnv(t *testing.T) *apiTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	store := cache.NewDatabaseStore(db)

	jwt, err := iauth.NewJWTService(iauth.JWTConfig{Secret: "test-secret", Issuer: "talentlink"})
	require.NoError(t, err)

	users, err := services.NewUserService(db)
	require.NoError(t, err)
	notifications, err := services.NewNotificationService(db, store)
	require.NoError(t, err)
	notifier, err := services.NewNotifier(db, notifications)
	require.NoError(t, err)

	router := NewRouter(Dependencies{
		DB:            db,
		JWT:           jwt,
		Users:         users,
		Notifications: notifications,
		Notifier:      notifier,
	})

	return &apiTestEnv{router: router, db: db, jwt: jwt}
}

func (env *apiTestEnv) seedUser(t *testing.T, email string, staff bool) (models.User, string) {
	t.Helper()

	user := models.User{
		Name:     strings.SplitN(email, "@", 2)[0],
		Email:    email,
		Password: "hashed-password",
		IsStaff:  staff,
		IsActive: true,
	}
	require.NoError(t, env.db.Create(&user).Error)

	token, err := env.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		UserID:  user.ID,
		Email:   user.Email,
		IsStaff: user.IsStaff,
	})
	require.NoError(t, err)

	return user, token
}

func (env *apiTestEnv) request(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndLoginFlow(t *testing.T) {
	env := newAPITestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/auth/register", "",
		`{"name": "Alice", "email": "alice@example.com", "password": "long enough"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/auth/login", "",
		`{"email": "alice@example.com", "password": "long enough"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.NotEmpty(t, payload.Token)
	require.Equal(t, "alice@example.com", payload.User.Email)

	rec = env.request(t, http.MethodGet, "/api/auth/me", payload.Token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/auth/login", "",
		`{"email": "alice@example.com", "password": "wrong password"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error": "Invalid email or password"}`, rec.Body.String())
}

func TestNotificationEndpointsRequireAuth(t *testing.T) {
	env := newAPITestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/notifications", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"error": "Authentication required"}`, rec.Body.String())
}

func TestNotificationLifecycleOverHTTP(t *testing.T) {
	env := newAPITestEnv(t)
	_, token := env.seedUser(t, "alice@example.com", false)

	rec := env.request(t, http.MethodPost, "/api/notifications", token,
		`{"title": "Welcome", "message": "Hello!", "notification_type": "info"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID   string `json:"id"`
		Read bool   `json:"read"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.False(t, created.Read)

	rec = env.request(t, http.MethodGet, "/api/notifications", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items, 1)

	rec = env.request(t, http.MethodGet, "/api/notifications/unread-count", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"unread_count": 1}`, rec.Body.String())

	rec = env.request(t, http.MethodPost, "/api/notifications/"+created.ID+"/read", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(t, http.MethodGet, "/api/notifications/unread-count", token, "")
	require.JSONEq(t, `{"unread_count": 0}`, rec.Body.String())

	rec = env.request(t, http.MethodGet, "/api/notifications/statistics", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Total  int64 `json:"total"`
		Read   int64 `json:"read"`
		Unread int64 `json:"unread"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, int64(1), stats.Total)
	require.Equal(t, int64(1), stats.Read)

	rec = env.request(t, http.MethodDelete, "/api/notifications/"+created.ID, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message": "Notification deleted"}`, rec.Body.String())

	rec = env.request(t, http.MethodDelete, "/api/notifications/"+created.ID, token, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error": "Resource not found"}`, rec.Body.String())
}

func TestNotificationSerializationShape(t *testing.T) {
	env := newAPITestEnv(t)
	_, token := env.seedUser(t, "alice@example.com", false)

	rec := env.request(t, http.MethodPost, "/api/notifications", token,
		`{"title": "Bare", "message": "No link or data.", "notification_type": "info"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	// Optional fields are present even when empty.
	for _, key := range []string{"id", "title", "message", "notification_type", "read", "link", "data", "created_at"} {
		require.Contains(t, body, key)
	}
	require.Equal(t, "", body["link"])
	require.Nil(t, body["data"])
}

func TestNotificationValidationErrorShape(t *testing.T) {
	env := newAPITestEnv(t)
	_, token := env.seedUser(t, "alice@example.com", false)

	rec := env.request(t, http.MethodPost, "/api/notifications", token,
		`{"message": "no title", "notification_type": "info"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"title": ["This field is required."]}`, rec.Body.String())

	longTitle := strings.Repeat("a", 201)
	rec = env.request(t, http.MethodPost, "/api/notifications", token,
		fmt.Sprintf(`{"title": %q, "message": "hi", "notification_type": "info"}`, longTitle))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"title": ["Ensure this field has no more than 200 characters."]}`, rec.Body.String())
}

func TestMarkAllReadResponseShape(t *testing.T) {
	env := newAPITestEnv(t)
	_, token := env.seedUser(t, "alice@example.com", false)

	for i := 0; i < 2; i++ {
		rec := env.request(t, http.MethodPost, "/api/notifications", token,
			fmt.Sprintf(`{"title": "Item %d", "message": "body", "notification_type": "info"}`, i))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.request(t, http.MethodPost, "/api/notifications/read-all", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message": "All notifications marked as read", "count": 2}`, rec.Body.String())

	rec = env.request(t, http.MethodPost, "/api/notifications/read-all", token, "")
	require.JSONEq(t, `{"message": "All notifications marked as read", "count": 0}`, rec.Body.String())
}

func TestCrossUserAccessReturnsNotFound(t *testing.T) {
	env := newAPITestEnv(t)
	_, aliceToken := env.seedUser(t, "alice@example.com", false)
	_, bobToken := env.seedUser(t, "bob@example.com", false)

	rec := env.request(t, http.MethodPost, "/api/notifications", aliceToken,
		`{"title": "Private", "message": "body", "notification_type": "info"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = env.request(t, http.MethodPost, "/api/notifications/"+created.ID+"/read", bobToken, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"error": "Resource not found"}`, rec.Body.String())

	rec = env.request(t, http.MethodDelete, "/api/notifications/"+created.ID, bobToken, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSystemBroadcastRequiresStaff(t *testing.T) {
	env := newAPITestEnv(t)
	_, userToken := env.seedUser(t, "user@example.com", false)
	_, adminToken := env.seedUser(t, "admin@example.com", true)

	rec := env.request(t, http.MethodPost, "/api/notifications/system", userToken,
		`{"title": "Downtime", "message": "Maintenance at noon."}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.JSONEq(t, `{"error": "Permission denied"}`, rec.Body.String())

	// The rejected broadcast created nothing.
	var count int64
	require.NoError(t, env.db.Model(&models.Notification{}).Count(&count).Error)
	require.Zero(t, count)

	rec = env.request(t, http.MethodPost, "/api/notifications/system", adminToken,
		`{"title": "Downtime", "message": "Maintenance at noon."}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message": "System notification sent", "count": 2}`, rec.Body.String())
}

func TestCleanupEndpointRequiresStaff(t *testing.T) {
	env := newAPITestEnv(t)
	_, userToken := env.seedUser(t, "user@example.com", false)
	_, adminToken := env.seedUser(t, "admin@example.com", true)

	rec := env.request(t, http.MethodPost, "/api/notifications/cleanup", userToken, "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.request(t, http.MethodPost, "/api/notifications/cleanup", adminToken, `{"days": 15}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message": "Old notifications cleaned up", "count": 0}`, rec.Body.String())
}

func TestMalformedJSONIsBadRequest(t *testing.T) {
	env := newAPITestEnv(t)
	_, token := env.seedUser(t, "alice@example.com", false)

	rec := env.request(t, http.MethodPost, "/api/notifications", token, `{"title": `)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error": "invalid JSON payload"}`, rec.Body.String())
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	env := newAPITestEnv(t)

	rec := env.request(t, http.MethodGet, "/nope", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "error")
}

func TestHealthEndpoint(t *testing.T) {
	env := newAPITestEnv(t)

	rec := env.request(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}
