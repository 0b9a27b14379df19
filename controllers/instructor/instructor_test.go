package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"devcourses/config"
	instructorControllers "devcourses/controllers/instructor"
	"devcourses/database"
	"devcourses/middleware"
	"devcourses/models"
	"devcourses/routers/instructorRoutes"
	"devcourses/utils"
)

type instructorEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config

	mu             sync.Mutex
	chargesEnabled bool
	accountsMade   int
}

func newInstructorEnv(t *testing.T) *instructorEnv {
	t.Helper()
	env := &instructorEnv{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/accounts", func(w http.ResponseWriter, r *http.Request) {
		env.mu.Lock()
		env.accountsMade++
		id := fmt.Sprintf("acct_test_%d", env.accountsMade)
		env.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
	})
	mux.HandleFunc("POST /v1/account_links", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://connect.stripe.com/setup/s/test"})
	})
	mux.HandleFunc("GET /v1/accounts/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/v1/accounts/")
		env.mu.Lock()
		enabled := env.chargesEnabled
		env.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"id": id, "charges_enabled": enabled})
	})
	mux.HandleFunc("GET /v1/balance", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"available": []map[string]any{{"amount": 12500, "currency": "usd"}},
			"pending":   []map[string]any{},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	env.cfg = &config.Config{
		JWTKey:            "test-secret",
		StripeApiURL:      srv.URL,
		StripeSecretKey:   "sk_test_x",
		StripeRedirectURL: "http://localhost:3000/stripe/callback",
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	env.db = db

	ic := instructorControllers.NewInstructorController(db, env.cfg, utils.NewStripeClient(env.cfg), utils.NewLogger("development"))
	env.app = fiber.New()
	instructorRoutes.SetupInstructorRoutes(env.app, env.cfg, ic)

	return env
}

func (e *instructorEnv) createUser(t *testing.T, name string, roles ...string) (models.User, string) {
	t.Helper()
	if len(roles) == 0 {
		roles = []string{models.RoleSubscriber}
	}
	user := models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@devcourses.test",
		Password: "not-a-real-hash",
		Roles:    roles,
	}
	require.NoError(t, e.db.Create(&user).Error)
	token, err := middleware.GenerateJWT(e.cfg, user.ID)
	require.NoError(t, err)
	return user, token
}

func (e *instructorEnv) request(t *testing.T, method, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestMakeInstructorLinksAccountOnce(t *testing.T) {
	env := newInstructorEnv(t)
	user, token := env.createUser(t, "Ada")

	resp := env.request(t, http.MethodPost, "/api/make-instructor", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	url := body["data"].(map[string]any)["url"].(string)
	assert.Contains(t, url, "stripe_user%5Bemail%5D=ada%40devcourses.test")

	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, user.ID).Error)
	assert.Equal(t, "acct_test_1", reloaded.StripeAccountID)

	// a second call reuses the linked account
	resp = env.request(t, http.MethodPost, "/api/make-instructor", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	env.mu.Lock()
	assert.Equal(t, 1, env.accountsMade)
	env.mu.Unlock()
}

func TestAccountStatusBeforeOnboarding(t *testing.T) {
	env := newInstructorEnv(t)
	user, token := env.createUser(t, "Ada")
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", user.ID).Update("stripe_account_id", "acct_test_9").Error)

	resp := env.request(t, http.MethodPost, "/api/get-account-status", token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, user.ID).Error)
	assert.False(t, reloaded.HasRole(models.RoleInstructor))
}

func TestAccountStatusGrantsInstructorRole(t *testing.T) {
	env := newInstructorEnv(t)
	user, token := env.createUser(t, "Ada")
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", user.ID).Update("stripe_account_id", "acct_test_9").Error)
	env.mu.Lock()
	env.chargesEnabled = true
	env.mu.Unlock()

	// repeated confirmation keeps a single role entry
	for i := 0; i < 2; i++ {
		resp := env.request(t, http.MethodPost, "/api/get-account-status", token)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	var reloaded models.User
	require.NoError(t, env.db.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.HasRole(models.RoleInstructor))
	assert.Equal(t, []string{models.RoleSubscriber, models.RoleInstructor}, []string(reloaded.Roles))
}

func TestCurrentInstructor(t *testing.T) {
	env := newInstructorEnv(t)
	_, subscriberToken := env.createUser(t, "Bob")
	_, instructorToken := env.createUser(t, "Ada", models.RoleSubscriber, models.RoleInstructor)

	resp := env.request(t, http.MethodGet, "/api/current-instructor", subscriberToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = env.request(t, http.MethodGet, "/api/current-instructor", instructorToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestInstructorBalance(t *testing.T) {
	env := newInstructorEnv(t)
	user, token := env.createUser(t, "Ada", models.RoleSubscriber, models.RoleInstructor)
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", user.ID).Update("stripe_account_id", "acct_test_9").Error)

	resp := env.request(t, http.MethodGet, "/api/instructor-balance", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()

	available := body["data"].(map[string]any)["available"].([]any)
	require.Len(t, available, 1)
	assert.Equal(t, 12500.0, available[0].(map[string]any)["amount"])
}

func TestInstructorCoursesNewestFirst(t *testing.T) {
	env := newInstructorEnv(t)
	user, token := env.createUser(t, "Ada", models.RoleSubscriber, models.RoleInstructor)

	for _, name := range []string{"Older", "Newer"} {
		course := models.Course{Name: name, Slug: strings.ToLower(name), Description: "d", InstructorID: user.ID}
		require.NoError(t, env.db.Create(&course).Error)
	}

	resp := env.request(t, http.MethodGet, "/api/instructor-courses", token)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()

	courses := body["data"].(map[string]any)["courses"].([]any)
	require.Len(t, courses, 2)
}
