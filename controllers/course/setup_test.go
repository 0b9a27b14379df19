package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"devcourses/config"
	courseControllers "devcourses/controllers/course"
	"devcourses/database"
	"devcourses/middleware"
	"devcourses/models"
	"devcourses/routers/courseRoutes"
	"devcourses/utils"
)

// stripeStub fakes the Stripe endpoints the enrollment workflow calls.
type stripeStub struct {
	srv *httptest.Server

	mu       sync.Mutex
	sessions map[string]string // session id -> payment_status
	created  int
	failing  bool
}

func newStripeStub(t *testing.T) *stripeStub {
	t.Helper()
	stub := &stripeStub{sessions: make(map[string]string)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/checkout/sessions", func(w http.ResponseWriter, r *http.Request) {
		if stub.serveFailure(w) {
			return
		}
		stub.mu.Lock()
		stub.created++
		id := fmt.Sprintf("cs_test_%d", stub.created)
		stub.sessions[id] = "unpaid"
		stub.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
	})
	mux.HandleFunc("GET /v1/checkout/sessions/", func(w http.ResponseWriter, r *http.Request) {
		if stub.serveFailure(w) {
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/v1/checkout/sessions/")
		stub.mu.Lock()
		status, ok := stub.sessions[id]
		stub.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "No such checkout session"}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id, "payment_status": status})
	})
	mux.HandleFunc("POST /v1/accounts", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "acct_test_1"})
	})
	mux.HandleFunc("POST /v1/account_links", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://connect.stripe.com/setup/s/test"})
	})

	stub.srv = httptest.NewServer(mux)
	t.Cleanup(stub.srv.Close)
	return stub
}

// markPaid flips a session to captured, as the hosted checkout would.
func (s *stripeStub) markPaid(sessionID string) {
	s.mu.Lock()
	s.sessions[sessionID] = "paid"
	s.mu.Unlock()
}

// setFailing makes every stubbed endpoint answer 500 until reset.
func (s *stripeStub) setFailing(failing bool) {
	s.mu.Lock()
	s.failing = failing
	s.mu.Unlock()
}

func (s *stripeStub) serveFailure(w http.ResponseWriter) bool {
	s.mu.Lock()
	failing := s.failing
	s.mu.Unlock()
	if failing {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"message": "An unknown error occurred"}})
	}
	return failing
}

type testEnv struct {
	app    *fiber.App
	db     *gorm.DB
	cfg    *config.Config
	stripe *stripeStub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	stub := newStripeStub(t)

	// Sink for the sendgrid calls fired after paid enrollment
	mailSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(mailSrv.Close)

	cfg := &config.Config{
		JWTKey:           "test-secret",
		SaltRound:        4,
		StripeApiURL:     stub.srv.URL,
		StripeSecretKey:  "sk_test_x",
		StripeSuccessURL: "http://localhost:3000/stripe/success",
		StripeCancelURL:  "http://localhost:3000/stripe/cancel",
		SendgridHost:     mailSrv.URL,
		EmailFrom:        "noreply@devcourses.test",
		GCSBucket:        "devcourses-test",
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	appLog := utils.NewLogger("development")
	cc := courseControllers.NewCourseController(db, cfg, utils.NewStripeClient(cfg), nil, utils.NewMailer(cfg), appLog)

	app := fiber.New()
	courseRoutes.SetupCourseRoutes(app, cfg, db, cc)

	return &testEnv{app: app, db: db, cfg: cfg, stripe: stub}
}

// createUser inserts a user and returns it with its session cookie value.
func (e *testEnv) createUser(t *testing.T, name string, roles ...string) (models.User, string) {
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

func (e *testEnv) createCourse(t *testing.T, instructorID uint, name string, paid bool, price float64) models.Course {
	t.Helper()
	course := models.Course{
		Name:         name,
		Slug:         utils.Slugify(name),
		Description:  "test course",
		Paid:         paid,
		Price:        price,
		Published:    true,
		InstructorID: instructorID,
	}
	require.NoError(t, e.db.Create(&course).Error)
	return course
}

// request performs an authenticated JSON request against the test app.
func (e *testEnv) request(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// envelope decodes the unified response body.
func envelope(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// reloadUser fetches the latest user row.
func (e *testEnv) reloadUser(t *testing.T, id uint) *models.User {
	t.Helper()
	var user models.User
	require.NoError(t, e.db.First(&user, id).Error)
	return &user
}
