package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"fittrack/internal/database"
	"fittrack/internal/handlers"
	"fittrack/internal/middleware"
	"fittrack/internal/models"
	"fittrack/internal/repositories"
	"fittrack/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test_jwt_secret_that_is_long_enough"

// today is the fixed "now" of the daily-task service under test.
var today = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	app         *fiber.App
	authService *services.AuthService
	authHandler *handlers.AuthHandler
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all handlers/services.
func setupApp(t *testing.T, loginRateLimit int) *testEnv {
	t.Helper()

	// Every test gets its own database.
	db, err := database.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	// Initialize Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	tokenRepo := repositories.NewGORMTokenRepository(db)

	// Initialize Services
	authService := services.NewAuthService(userRepo, tokenRepo, services.NewSessionStore(), services.AuthConfig{
		JWTSecret:  testSecret,
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	stepService := services.NewStepService(repositories.NewGORMStepRepository(db), nil)
	weightService := services.NewWeightService(repositories.NewGORMWeightRepository(db), nil)
	workoutService := services.NewWorkoutService(repositories.NewGORMWorkoutRepository(db), nil)
	dailyTaskService := services.NewDailyTaskService(repositories.NewGORMDailyTaskRepository(db), nil, time.UTC)
	dailyTaskService.SetClock(func() time.Time { return today })
	importService := services.NewImportService(stepService, weightService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	// Public routes
	authHandler := handlers.NewAuthHandler(authService, handlers.AuthHandlerConfig{LoginRateLimit: loginRateLimit})
	authHandler.RegisterRoutes(apiV1)
	handlers.NewNavHandler().RegisterRoutes(apiV1)

	// Protected routes (require JWT authentication)
	protected := apiV1.Group("", middleware.AuthRequired(authService))
	handlers.NewStepHandler(stepService).RegisterRoutes(protected)
	handlers.NewWeightHandler(weightService).RegisterRoutes(protected)
	handlers.NewWorkoutHandler(workoutService).RegisterRoutes(protected)
	handlers.NewDailyTaskHandler(dailyTaskService).RegisterRoutes(protected)
	handlers.NewImportHandler(importService).RegisterRoutes(protected)

	return &testEnv{app: app, authService: authService, authHandler: authHandler}
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func cookieNamed(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// signUp registers email and returns its token.
func (e *testEnv) signUp(t *testing.T, email string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	session := decode[services.Session](t, resp)
	require.NotEmpty(t, session.Token)
	return session.Token
}

func TestAuthSignUpAndLogin(t *testing.T) {
	env := setupApp(t, 100)

	credentials := map[string]string{"email": "test@example.com", "password": "password123"}
	resp := env.do(t, http.MethodPost, "/api/v1/auth/signup", "", credentials)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := cookieNamed(resp, middleware.TokenCookie)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	signedUp := decode[services.Session](t, resp)
	assert.Equal(t, "test@example.com", signedUp.User.Email)
	assert.Equal(t, cookie.Value, signedUp.Token)

	// Duplicate registration
	resp = env.do(t, http.MethodPost, "/api/v1/auth/signup", "", credentials)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Wrong password
	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "test@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Missing password
	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "test@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "Email and password required", body["message"])

	resp = env.do(t, http.MethodPost, "/api/v1/auth/login", "", credentials)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	session := decode[services.Session](t, resp)
	assert.NotEmpty(t, session.Token)

	claims, err := env.authService.ValidateToken(t.Context(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.ID, claims.UserID)

	// The cookie alone is enough for browser clients.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: session.Token})
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	current := decode[services.Session](t, resp)
	assert.Equal(t, "test@example.com", current.User.Email)
	assert.Empty(t, current.Token)
}

func TestLogoutRevokesToken(t *testing.T) {
	env := setupApp(t, 100)
	token := env.signUp(t, "logout@example.com")

	resp := env.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	cleared := cookieNamed(resp, middleware.TokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/auth/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, middleware.LoginPath, body["redirect"])
}

func TestLoginRateLimit(t *testing.T) {
	env := setupApp(t, 2)

	wrong := map[string]string{"email": "nobody@example.com", "password": "password123"}
	for i := 0; i < 2; i++ {
		resp := env.do(t, http.MethodPost, "/api/v1/auth/login", "", wrong)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		resp.Body.Close()
	}
	resp := env.do(t, http.MethodPost, "/api/v1/auth/login", "", wrong)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	resp.Body.Close()
}

func TestProtectedRoutesWithoutAuth(t *testing.T) {
	env := setupApp(t, 100)

	resp := env.do(t, http.MethodGet, "/api/v1/steps", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, middleware.LoginPath, body["redirect"])

	resp = env.do(t, http.MethodPost, "/api/v1/weights", "", map[string]any{"date": "2024-06-10", "weight": 180.5})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/steps", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestStepEndpoints(t *testing.T) {
	env := setupApp(t, 100)
	token := env.signUp(t, "steps@example.com")

	// --- Create ---
	resp := env.do(t, http.MethodPost, "/api/v1/steps", token, map[string]any{"date": "2024-06-10", "steps": 8000})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.StepEntry](t, resp)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, 8000, created.Steps)

	resp = env.do(t, http.MethodPost, "/api/v1/steps", token, map[string]any{"date": "2024-06-08", "steps": 4000})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// --- Missing required field ---
	resp = env.do(t, http.MethodPost, "/api/v1/steps", token, map[string]any{"date": "2024-06-10"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "Date and steps required", body["message"])

	// --- List, newest first ---
	resp = env.do(t, http.MethodGet, "/api/v1/steps", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]models.StepEntry](t, resp)
	require.Len(t, list, 2)
	assert.Equal(t, "2024-06-10", list[0].Date)
	assert.Equal(t, "2024-06-08", list[1].Date)

	resp = env.do(t, http.MethodGet, "/api/v1/steps?from=2024-06-09", token, nil)
	list = decode[[]models.StepEntry](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	resp = env.do(t, http.MethodGet, "/api/v1/steps?from=June", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// --- Update ---
	resp = env.do(t, http.MethodPut, "/api/v1/steps/"+created.ID, token, map[string]any{"date": "2024-06-09", "steps": 9000})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[models.StepEntry](t, resp)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "2024-06-09", updated.Date)
	assert.Equal(t, 9000, updated.Steps)

	resp = env.do(t, http.MethodPut, "/api/v1/steps/"+uuid.NewString(), token, map[string]any{"date": "2024-06-09", "steps": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// --- Delete needs confirmation ---
	resp = env.do(t, http.MethodDelete, "/api/v1/steps/"+created.ID, token, nil)
	assert.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)
	body = decode[map[string]any](t, resp)
	assert.Equal(t, "Delete this entry?", body["message"])

	resp = env.do(t, http.MethodGet, "/api/v1/steps/"+created.ID, token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, "/api/v1/steps/"+created.ID+"?confirm=true", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	deleted := decode[map[string]string](t, resp)
	assert.Contains(t, deleted["message"], "deleted successfully")

	resp = env.do(t, http.MethodGet, "/api/v1/steps/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestWorkoutNotesAreRendered(t *testing.T) {
	env := setupApp(t, 100)
	token := env.signUp(t, "lifter@example.com")

	resp := env.do(t, http.MethodPost, "/api/v1/workouts", token, map[string]any{
		"date":         "2024-06-10",
		"workout_name": "Squat",
		"reps":         5,
		"weight":       225,
		"notes":        "felt **heavy**",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	workout := decode[models.WorkoutEntry](t, resp)
	require.NotNil(t, workout.Reps)
	assert.Equal(t, 5, *workout.Reps)
	assert.Nil(t, workout.Distance)
	assert.Contains(t, workout.NotesHTML, "<strong>heavy</strong>")

	resp = env.do(t, http.MethodPost, "/api/v1/workouts", token, map[string]any{"date": "2024-06-10", "workout_name": "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "Date and workout name required", body["message"])
}

func TestEntriesAreIsolatedPerUser(t *testing.T) {
	env := setupApp(t, 100)
	alice := env.signUp(t, "alice@example.com")
	bob := env.signUp(t, "bob@example.com")

	resp := env.do(t, http.MethodPost, "/api/v1/weights", alice, map[string]any{"date": "2024-06-10", "weight": 150.2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	entry := decode[models.WeightEntry](t, resp)

	resp = env.do(t, http.MethodGet, "/api/v1/weights", bob, nil)
	assert.Empty(t, decode[[]models.WeightEntry](t, resp))

	resp = env.do(t, http.MethodGet, "/api/v1/weights/"+entry.ID, bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPut, "/api/v1/weights/"+entry.ID, bob, map[string]any{"date": "2024-06-10", "weight": 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodDelete, "/api/v1/weights/"+entry.ID+"?confirm=true", bob, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/weights/"+entry.ID, alice, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 150.2, decode[models.WeightEntry](t, resp).Weight)
}

func TestDailyTaskEndpoints(t *testing.T) {
	env := setupApp(t, 100)
	token := env.signUp(t, "tasks@example.com")

	resp := env.do(t, http.MethodGet, "/api/v1/daily-tasks/tasks", token, nil)
	tasks := decode[map[string][]string](t, resp)
	assert.Equal(t, models.DailyTasks, tasks["tasks"])

	// Toggling the same checkbox twice leaves one row holding the last value.
	resp = env.do(t, http.MethodPut, "/api/v1/daily-tasks", token, map[string]any{"date": "2024-06-10", "task_name": models.TaskProteinShake, "value": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decode[models.DailyTaskEntry](t, resp)
	resp = env.do(t, http.MethodPut, "/api/v1/daily-tasks", token, map[string]any{"date": "2024-06-10", "task_name": models.TaskProteinShake, "value": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decode[models.DailyTaskEntry](t, resp)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.Value)

	resp = env.do(t, http.MethodPut, "/api/v1/daily-tasks", token, map[string]any{"date": "2024-06-08", "task_name": models.TaskDailyVitamin, "value": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Out of the window; must not show up in the summary.
	resp = env.do(t, http.MethodPut, "/api/v1/daily-tasks", token, map[string]any{"date": "2024-06-01", "task_name": models.TaskDailyVitamin, "value": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPut, "/api/v1/daily-tasks", token, map[string]any{"date": "2024-06-10", "task_name": "cold plunge", "value": true})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPut, "/api/v1/daily-tasks", token, map[string]any{"date": "2024-06-10", "task_name": models.TaskDailyVitamin})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "Date, task and value required", body["message"])

	// Today's states.
	resp = env.do(t, http.MethodGet, "/api/v1/daily-tasks", token, nil)
	forDate := decode[struct {
		Date  string          `json:"date"`
		Tasks map[string]bool `json:"tasks"`
	}](t, resp)
	assert.Equal(t, "2024-06-10", forDate.Date)
	assert.Equal(t, map[string]bool{models.TaskProteinShake: false}, forDate.Tasks)

	resp = env.do(t, http.MethodGet, "/api/v1/daily-tasks/summary", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[struct {
		Today string   `json:"today"`
		Dates []string `json:"dates"`
		Rows  []struct {
			Date  string            `json:"date"`
			Tasks map[string]string `json:"tasks"`
		} `json:"rows"`
	}](t, resp)
	assert.Equal(t, "2024-06-10", summary.Today)
	assert.Equal(t, []string{
		"2024-06-10", "2024-06-09", "2024-06-08", "2024-06-07",
		"2024-06-06", "2024-06-05", "2024-06-04",
	}, summary.Dates)
	require.Len(t, summary.Rows, 7)
	assert.Equal(t, "false", summary.Rows[0].Tasks[models.TaskProteinShake])
	assert.Equal(t, "unset", summary.Rows[0].Tasks[models.TaskDailyVitamin])
	assert.Equal(t, "true", summary.Rows[2].Tasks[models.TaskDailyVitamin])
	for _, row := range summary.Rows[3:] {
		assert.Equal(t, "unset", row.Tasks[models.TaskDailyVitamin], row.Date)
	}

	// Delete with confirmation.
	resp = env.do(t, http.MethodDelete, "/api/v1/daily-tasks/"+first.ID, token, nil)
	assert.Equal(t, http.StatusPreconditionRequired, resp.StatusCode)
	resp.Body.Close()
	resp = env.do(t, http.MethodDelete, "/api/v1/daily-tasks/"+first.ID+"?confirm=true", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodGet, "/api/v1/daily-tasks?date=2024-06-10", token, nil)
	forDate = decode[struct {
		Date  string          `json:"date"`
		Tasks map[string]bool `json:"tasks"`
	}](t, resp)
	assert.Empty(t, forDate.Tasks)
}

func TestThemeToggle(t *testing.T) {
	env := setupApp(t, 100)

	resp := env.do(t, http.MethodGet, "/api/v1/nav", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	nav := decode[struct {
		Links     []handlers.NavLink `json:"links"`
		Theme     string             `json:"theme"`
		RootClass string             `json:"root_class"`
	}](t, resp)
	assert.Equal(t, handlers.ThemeLight, nav.Theme)
	assert.Empty(t, nav.RootClass)
	require.Len(t, nav.Links, 6)
	assert.Equal(t, handlers.NavLink{Title: "Daily Tasks", Path: "/daily-tasks"}, nav.Links[4])

	resp = env.do(t, http.MethodPost, "/api/v1/theme/toggle", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := cookieNamed(resp, handlers.ThemeCookie)
	require.NotNil(t, cookie)
	assert.Equal(t, "true", cookie.Value)
	// Session cookie: no expiry.
	assert.True(t, cookie.Expires.IsZero())
	assert.Zero(t, cookie.MaxAge)
	state := decode[map[string]string](t, resp)
	assert.Equal(t, handlers.ThemeDark, state["theme"])
	assert.Equal(t, "dark", state["root_class"])

	// Toggling from dark goes back to light.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/theme/toggle", nil)
	req.AddCookie(&http.Cookie{Name: handlers.ThemeCookie, Value: "true"})
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	cookie = cookieNamed(resp, handlers.ThemeCookie)
	require.NotNil(t, cookie)
	assert.Equal(t, "false", cookie.Value)
	state = decode[map[string]string](t, resp)
	assert.Equal(t, handlers.ThemeLight, state["theme"])

	resp = env.do(t, http.MethodPut, "/api/v1/theme", "", map[string]string{"theme": "dark"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPut, "/api/v1/theme", "", map[string]string{"theme": "sepia"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestImportCSV(t *testing.T) {
	env := setupApp(t, 100)
	token := env.signUp(t, "import@example.com")

	csvBody := "date,steps\n2024-06-01,1200\nyesterday,50\n2024-06-02,3400\n"
	req := httptest.NewRequest(http.MethodPost, "/api/v1/import/steps", strings.NewReader(csvBody))
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[services.ImportResult](t, resp)
	assert.Equal(t, 2, result.Imported)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 3, result.Failed[0].Line)

	// Multipart upload.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "weights.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("date,weight,measured_at\n2024-06-03,181.4,home\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req = httptest.NewRequest(http.MethodPost, "/api/v1/import/weights", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[services.ImportResult](t, resp).Imported)

	resp = env.do(t, http.MethodGet, "/api/v1/steps", token, nil)
	assert.Len(t, decode[[]models.StepEntry](t, resp), 2)

	resp = env.do(t, http.MethodPost, "/api/v1/import/workouts", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSessionEventStream(t *testing.T) {
	env := setupApp(t, 100)
	token := env.signUp(t, "stream@example.com")
	sessions := env.authService.Sessions()

	type result struct {
		resp *http.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/events", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := env.app.Test(req, -1)
		done <- result{resp, err}
	}()

	require.Eventually(t, func() bool { return sessions.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Another user's events are not delivered.
	other := env.signUp(t, "other@example.com")
	resp := env.do(t, http.MethodPost, "/api/v1/auth/logout", other, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = env.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var res result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("event stream did not end after sign-out")
	}
	require.NoError(t, res.err)
	defer res.resp.Body.Close()
	assert.Equal(t, "text/event-stream", res.resp.Header.Get("Content-Type"))

	stream, err := io.ReadAll(res.resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(stream), "event: signed_out\n")
	assert.NotContains(t, string(stream), "other@example.com")
	assert.Equal(t, 1, strings.Count(string(stream), "event: "))
	assert.Equal(t, 0, sessions.Subscribers())
}

func TestSessionEventStreamEndsOnCloseStreams(t *testing.T) {
	env := setupApp(t, 100)
	token := env.signUp(t, "shutdown@example.com")
	sessions := env.authService.Sessions()

	type result struct {
		resp *http.Response
		err  error
	}
	done := make(chan result, 1)
	go func() {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/events", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := env.app.Test(req, -1)
		done <- result{resp, err}
	}()

	require.Eventually(t, func() bool { return sessions.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Closing twice is harmless.
	env.authHandler.CloseStreams()
	env.authHandler.CloseStreams()

	var res result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("event stream stayed open after CloseStreams")
	}
	require.NoError(t, res.err)
	stream, err := io.ReadAll(res.resp.Body)
	res.resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(stream), "event: shutdown\n")
	assert.Equal(t, 0, sessions.Subscribers())

	// New streams are refused once closing has begun.
	resp := env.do(t, http.MethodGet, "/api/v1/auth/events", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()
}
