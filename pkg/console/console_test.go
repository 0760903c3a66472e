package console

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harveywai/jokeadmin/pkg/apiclient"
	"github.com/harveywai/jokeadmin/pkg/database"
	"github.com/harveywai/jokeadmin/pkg/models"
	"github.com/harveywai/jokeadmin/pkg/stubapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// apiLog records every request that reaches the bot API.
type apiLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *apiLog) add(r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, r.Method+" "+r.URL.Path)
}

// take returns the recorded calls and clears the log.
func (l *apiLog) take() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	calls := l.calls
	l.calls = nil
	return calls
}

type harness struct {
	t       *testing.T
	db      *gorm.DB
	api     *apiLog
	console *gin.Engine
	cookie  *http.Cookie

	// failPosts makes the bot API answer every POST with 500.
	failPosts atomic.Bool
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	h := &harness{t: t, db: db, api: &apiLog{}}
	stub := stubapi.NewRouter(db, zap.NewNop())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.api.add(r)
		if h.failPosts.Load() && r.Method == http.MethodPost {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
			return
		}
		stub.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	client := apiclient.New(server.URL, apiclient.WithTimeout(5*time.Second))
	h.console = New(client, NewSessionStore(client, time.Hour, nil), nil).Router()
	return h
}

func (h *harness) serve(req *http.Request) *httptest.ResponseRecorder {
	h.t.Helper()
	if h.cookie != nil {
		req.AddCookie(h.cookie)
	}
	w := httptest.NewRecorder()
	h.console.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookie {
			h.cookie = c
		}
	}
	return w
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	return h.serve(httptest.NewRequest(http.MethodGet, path, nil))
}

func (h *harness) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.serve(req)
}

func (h *harness) seedTrigger(value string, jokes ...string) models.Trigger {
	h.t.Helper()
	trigger := models.Trigger{Value: value}
	for _, text := range jokes {
		trigger.Jokes = append(trigger.Jokes, models.Joke{Text: text})
	}
	require.NoError(h.t, h.db.Create(&trigger).Error)
	return trigger
}

func TestEmptyTagsPageShowsPlaceholder(t *testing.T) {
	h := newHarness(t)

	w := h.get("/tags")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, strings.Count(w.Body.String(), `class="empty-row"`))
	assert.Contains(t, w.Body.String(), "Нет триггеров для отображения")
	assert.Equal(t, []string{"GET /api/triggers"}, h.api.take())
	require.NotNil(t, h.cookie)
	assert.True(t, h.cookie.HttpOnly)
}

func TestCreateTriggerRefetchesOnce(t *testing.T) {
	h := newHarness(t)
	h.get("/tags")
	h.api.take()

	w := h.post("/tags", url.Values{"value": {"кот"}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"POST /api/triggers", "GET /api/triggers"}, h.api.take())
	body := w.Body.String()
	assert.Contains(t, body, ">кот</a>")
	assert.Contains(t, body, `href="/jokes/1"`)
	assert.Contains(t, body, `value=""`, "draft is cleared after a successful create")
	assert.NotContains(t, body, `class="empty-row"`)
}

func TestBlankCreateMakesNoRequest(t *testing.T) {
	h := newHarness(t)
	h.get("/jokes-x")
	h.api.take()

	w := h.post("/jokes-x", url.Values{"text": {"   "}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, h.api.take())
}

func TestCreateSendsUntrimmedText(t *testing.T) {
	h := newHarness(t)
	h.get("/jokes-x")

	h.post("/jokes-x", url.Values{"text": {"  padded joke  "}})

	var stored []models.StandaloneJoke
	require.NoError(t, h.db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, "  padded joke  ", stored[0].Text)
}

func TestCreateFailureKeepsDraft(t *testing.T) {
	h := newHarness(t)
	h.get("/jokes-x")
	h.api.take()
	h.failPosts.Store(true)

	w := h.post("/jokes-x", url.Values{"text": {"keep me"}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"POST /api/jokes-x"}, h.api.take())
	assert.Contains(t, w.Body.String(), `value="keep me"`)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	h := newHarness(t)
	trigger := h.seedTrigger("понедельник", "шутка")
	h.get("/tags")
	h.api.take()

	w := h.post("/tags/1/delete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="confirm-dialog"`)
	assert.Contains(t, w.Body.String(), `data-pending-id="1"`)
	assert.Empty(t, h.api.take(), "requesting deletion is local")

	w = h.post("/tags/delete/cancel", nil)
	assert.NotContains(t, w.Body.String(), `id="confirm-dialog"`)
	assert.Empty(t, h.api.take(), "cancelling is local")

	h.post("/tags/1/delete", nil)
	w = h.post("/tags/delete/confirm", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"DELETE /api/triggers/1", "GET /api/triggers"}, h.api.take())
	assert.NotContains(t, w.Body.String(), `id="confirm-dialog"`)
	assert.Contains(t, w.Body.String(), "Нет триггеров для отображения")

	var jokes int64
	require.NoError(t, h.db.Model(&models.Joke{}).Where("trigger_id = ?", trigger.ID).Count(&jokes).Error)
	assert.Zero(t, jokes)
}

func TestConfirmWithoutRequestMakesNoCall(t *testing.T) {
	h := newHarness(t)
	h.get("/tags")
	h.api.take()

	w := h.post("/tags/delete/confirm", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, h.api.take())
}

func TestJokesPageUsesTriggerEndpoints(t *testing.T) {
	h := newHarness(t)
	h.seedTrigger("кот", "мяу")

	w := h.get("/jokes/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "мяу")
	assert.Equal(t, []string{"GET /api/triggers/1/jokes"}, h.api.take())

	h.post("/jokes/1", url.Values{"text": {"мур"}})
	assert.Equal(t, []string{"POST /api/triggers/1/jokes", "GET /api/triggers/1/jokes"}, h.api.take())

	h.post("/jokes/1/1/delete", nil)
	w = h.post("/jokes/1/delete/confirm", nil)
	assert.Equal(t, []string{"DELETE /api/jokes/1", "GET /api/triggers/1/jokes"}, h.api.take())
	assert.NotContains(t, w.Body.String(), "мяу")
	assert.Contains(t, w.Body.String(), "мур")
}

func TestJokesPageScopeChange(t *testing.T) {
	h := newHarness(t)
	h.seedTrigger("a", "joke of a")
	h.seedTrigger("b")

	h.get("/jokes/1")
	h.post("/jokes/1/1/delete", nil)
	w := h.get("/jokes/2")

	body := w.Body.String()
	assert.NotContains(t, body, "joke of a")
	assert.NotContains(t, body, `id="confirm-dialog"`)
	assert.Contains(t, body, "Нет ответов для отображения")
	assert.Contains(t, body, `action="/jokes/2"`)
}

func TestPostToAnotherScopeLoadsIt(t *testing.T) {
	h := newHarness(t)
	h.seedTrigger("a", "joke of a")
	h.seedTrigger("b", "joke of b")
	h.get("/jokes/1")
	h.api.take()

	w := h.post("/jokes/2/delete/cancel", nil)

	assert.Equal(t, []string{"GET /api/triggers/2/jokes"}, h.api.take())
	assert.Contains(t, w.Body.String(), "joke of b")
	assert.NotContains(t, w.Body.String(), "joke of a")
}

func TestNonNumericIDsAreRejected(t *testing.T) {
	h := newHarness(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/jokes/abc"},
		{http.MethodPost, "/tags/x/delete"},
		{http.MethodPost, "/jokes/1/x/delete"},
		{http.MethodPost, "/jokes-x/-1/delete"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		w := h.serve(req)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.path)
	}
	assert.Empty(t, h.api.take())
}

func TestSessionsAreIsolated(t *testing.T) {
	h := newHarness(t)
	h.seedTrigger("shared")
	h.get("/tags")
	h.post("/tags/1/delete", nil)
	first := h.cookie

	h.cookie = nil
	w := h.get("/tags")
	assert.NotContains(t, w.Body.String(), `id="confirm-dialog"`)
	assert.NotEqual(t, first.Value, h.cookie.Value)

	h.cookie = first
	w = h.post("/tags/delete/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDashboardTotals(t *testing.T) {
	h := newHarness(t)
	h.seedTrigger("a", "1", "2")
	h.seedTrigger("b", "3")
	require.NoError(t, h.db.Create(&models.StandaloneJoke{Text: "x"}).Error)

	w := h.get("/")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `data-stat="Триггеры">2<`)
	assert.Contains(t, body, `data-stat="Ответы на триггеры">3<`)
	assert.Contains(t, body, `data-stat="Анекдоты">1<`)
	assert.ElementsMatch(t, []string{"GET /api/triggers", "GET /api/jokes-x"}, h.api.take())
}

func TestDashboardWithUnreachableAPI(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	client := apiclient.New(server.URL, apiclient.WithTimeout(time.Second))
	router := New(client, NewSessionStore(client, time.Hour, nil), nil).Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="dashboard-error"`)
	assert.Contains(t, w.Body.String(), ">n/a<")
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	w := h.get("/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
