package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"hypertodo/internal/adapter/database/sqlite"
	"hypertodo/internal/adapter/database/sqlite/repository"
	"hypertodo/internal/adapter/http/handler"
	"hypertodo/internal/adapter/http/routes"
	"hypertodo/internal/core/domain"
	"hypertodo/internal/core/port"
	"hypertodo/internal/core/service"
	"hypertodo/pkg/config"
	. "hypertodo/pkg/test"
)

// failingRepository fails every call while fail is set and delegates otherwise.
type failingRepository struct {
	port.TodoRepository
	fail atomic.Bool
}

var errDiskGone = errors.New("disk gone")

func (r *failingRepository) ListAll(ctx context.Context) ([]domain.TodoItem, error) {
	if r.fail.Load() {
		return nil, domain.StorageError("list todos", errDiskGone)
	}
	return r.TodoRepository.ListAll(ctx)
}

func (r *failingRepository) Insert(ctx context.Context, text string) (int64, error) {
	if r.fail.Load() {
		return 0, domain.StorageError("insert todo", errDiskGone)
	}
	return r.TodoRepository.Insert(ctx, text)
}

func (r *failingRepository) Toggle(ctx context.Context, id int64) (domain.CompletionState, error) {
	if r.fail.Load() {
		return domain.TodoPending, domain.StorageError("toggle todo", errDiskGone)
	}
	return r.TodoRepository.Toggle(ctx, id)
}

func (r *failingRepository) Delete(ctx context.Context, id int64) error {
	if r.fail.Load() {
		return domain.StorageError("delete todo", errDiskGone)
	}
	return r.TodoRepository.Delete(ctx, id)
}

func (r *failingRepository) Ping(ctx context.Context) error {
	if r.fail.Load() {
		return domain.StorageError("ping", errDiskGone)
	}
	return r.TodoRepository.Ping(ctx)
}

type TodoHandlerSuite struct {
	suite.Suite
	DB       *sqlite.DB
	TodoRepo *failingRepository
	Router   *gin.Engine
}

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Port:             3000,
		Environment:      "test",
		ServiceName:      "hypertodo-test",
		RateLimitEnabled: false,
		RequestTimeout:   5 * time.Second,
	}
}

func (s *TodoHandlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.DB = InitTestDB()
	s.TodoRepo = &failingRepository{TodoRepository: repository.NewTodoRepository(s.DB, nil)}

	todoService := service.NewTodoService(s.TodoRepo, nil)

	s.Router = routes.SetupTodoRouter(routes.TodoHandlers{
		TodoHandler:   handler.NewTodoHandler(todoService, nil),
		HealthHandler: handler.NewHealthHandler(s.TodoRepo),
	}, routes.Dependencies{Config: testConfig()})
}

func (s *TodoHandlerSuite) TearDownTest() {
	if s.DB != nil {
		s.DB.Close()
	}
}

func TestTodoHandlerSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoHandlerSuite))
}

func (s *TodoHandlerSuite) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request

	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	return w
}

func (s *TodoHandlerSuite) addTodo(text string) domain.TodoItem {
	w := s.do(http.MethodPost, "/add_todo", url.Values{"todo": {text}})
	Expect(w.Code).To(Equal(http.StatusOK))

	items, err := s.TodoRepo.ListAll(context.Background())
	Expect(err).To(BeNil())

	return items[len(items)-1]
}

func (s *TodoHandlerSuite) TestIndex_Empty() {
	w := s.do(http.MethodGet, "/", nil)

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Header().Get("Content-Type")).To(Equal("text/html; charset=utf-8"))
	Expect(w.Body.String()).To(ContainSubstring(`<ul id="todos">`))
	Expect(w.Body.String()).NotTo(ContainSubstring("<li"))
}

func (s *TodoHandlerSuite) TestAddTodo_ReturnsFragment() {
	w := s.do(http.MethodPost, "/add_todo", url.Values{"todo": {"Buy milk"}})

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(HavePrefix("<li id="))
	Expect(w.Body.String()).To(ContainSubstring("<span>Buy milk</span>"))
	Expect(w.Body.String()).NotTo(ContainSubstring("checked"))
	Expect(w.Body.String()).NotTo(ContainSubstring("<html"))

	items, _ := s.TodoRepo.ListAll(context.Background())
	Expect(items).To(HaveLen(1))
	Expect(items[0].State).To(Equal(domain.TodoPending))
}

func (s *TodoHandlerSuite) TestAddTodo_BlankIsRejected() {
	for _, text := range []string{"", "   ", "\t"} {
		w := s.do(http.MethodPost, "/add_todo", url.Values{"todo": {text}})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	}

	w := s.do(http.MethodPost, "/add_todo", url.Values{})
	Expect(w.Code).To(Equal(http.StatusBadRequest))

	items, _ := s.TodoRepo.ListAll(context.Background())
	Expect(items).To(BeEmpty())
}

func (s *TodoHandlerSuite) TestAddTodo_EscapesMarkup() {
	w := s.do(http.MethodPost, "/add_todo", url.Values{"todo": {"<script>alert(1)</script>"}})

	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).NotTo(ContainSubstring("<script>"))

	items, _ := s.TodoRepo.ListAll(context.Background())
	Expect(items[0].Text).To(Equal("<script>alert(1)</script>"))
}

func (s *TodoHandlerSuite) TestAddTodo_LongTextIsStoredVerbatim() {
	text := strings.Repeat("a", 5000) + " end "

	w := s.do(http.MethodPost, "/add_todo", url.Values{"todo": {text}})

	Expect(w.Code).To(Equal(http.StatusOK))

	items, _ := s.TodoRepo.ListAll(context.Background())
	Expect(items).To(HaveLen(1))
	Expect(items[0].Text).To(Equal(text))
}

func (s *TodoHandlerSuite) TestToggle_TwiceRestoresState() {
	item := s.addTodo("Walk dog")

	w := s.do(http.MethodPatch, item.Path(), nil)
	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Header().Get("Content-Type")).To(Equal("text/html; charset=utf-8"))
	Expect(w.Body.Len()).To(Equal(0))

	fetched, _ := s.TodoRepo.FetchOne(context.Background(), item.ID)
	Expect(fetched.State).To(Equal(domain.TodoComplete))

	w = s.do(http.MethodPatch, item.Path(), nil)
	Expect(w.Code).To(Equal(http.StatusOK))

	fetched, _ = s.TodoRepo.FetchOne(context.Background(), item.ID)
	Expect(fetched.State).To(Equal(domain.TodoPending))
}

func (s *TodoHandlerSuite) TestToggle_MissingIsNotFound() {
	w := s.do(http.MethodPatch, "/todo/999", nil)

	Expect(w.Code).To(Equal(http.StatusNotFound))

	items, _ := s.TodoRepo.ListAll(context.Background())
	Expect(items).To(BeEmpty())
}

func (s *TodoHandlerSuite) TestBadIdIsBadRequest() {
	Expect(s.do(http.MethodPatch, "/todo/abc", nil).Code).To(Equal(http.StatusBadRequest))
	Expect(s.do(http.MethodDelete, "/todo/abc", nil).Code).To(Equal(http.StatusBadRequest))
}

func (s *TodoHandlerSuite) TestDelete_IsIdempotent() {
	keep := s.addTodo("keep")
	drop := s.addTodo("drop")

	w := s.do(http.MethodDelete, drop.Path(), nil)
	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Header().Get("Content-Type")).To(Equal("text/html; charset=utf-8"))
	Expect(w.Body.Len()).To(Equal(0))

	w = s.do(http.MethodDelete, drop.Path(), nil)
	Expect(w.Code).To(Equal(http.StatusOK))

	items, _ := s.TodoRepo.ListAll(context.Background())
	Expect(items).To(HaveLen(1))
	Expect(items[0].ID).To(Equal(keep.ID))
}

func (s *TodoHandlerSuite) TestBuyMilkScenario() {
	item := s.addTodo("Buy milk")

	page := s.do(http.MethodGet, "/", nil).Body.String()
	Expect(page).To(ContainSubstring("<span>Buy milk</span>"))
	Expect(page).NotTo(ContainSubstring("checked"))

	Expect(s.do(http.MethodPatch, item.Path(), nil).Code).To(Equal(http.StatusOK))

	page = s.do(http.MethodGet, "/", nil).Body.String()
	Expect(page).To(ContainSubstring(" checked>"))

	Expect(s.do(http.MethodDelete, item.Path(), nil).Code).To(Equal(http.StatusOK))

	page = s.do(http.MethodGet, "/", nil).Body.String()
	Expect(page).NotTo(ContainSubstring("Buy milk"))
}

func (s *TodoHandlerSuite) TestStorageFailure_Returns500AndKeepsServing() {
	item := s.addTodo("survivor")

	s.TodoRepo.fail.Store(true)

	Expect(s.do(http.MethodGet, "/", nil).Code).To(Equal(http.StatusInternalServerError))
	Expect(s.do(http.MethodPost, "/add_todo", url.Values{"todo": {"x"}}).Code).To(Equal(http.StatusInternalServerError))
	Expect(s.do(http.MethodPatch, item.Path(), nil).Code).To(Equal(http.StatusInternalServerError))
	Expect(s.do(http.MethodDelete, item.Path(), nil).Code).To(Equal(http.StatusInternalServerError))
	Expect(s.do(http.MethodGet, "/healthz", nil).Code).To(Equal(http.StatusServiceUnavailable))

	s.TodoRepo.fail.Store(false)

	w := s.do(http.MethodGet, "/", nil)
	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Body.String()).To(ContainSubstring("survivor"))
	Expect(s.do(http.MethodGet, "/healthz", nil).Code).To(Equal(http.StatusOK))
}

func (s *TodoHandlerSuite) TestWrongMethod() {
	Expect(s.do(http.MethodGet, "/add_todo", nil).Code).To(Equal(http.StatusMethodNotAllowed))
}

func TestTodoRouter_RateLimitIgnoresForwardedForByDefault(t *testing.T) {
	RegisterTestingT(t)
	gin.SetMode(gin.TestMode)

	db := InitTestDB()
	defer db.Close()

	cfg := testConfig()
	cfg.RateLimitEnabled = true
	cfg.RateLimitConfigs = map[string]config.RateLimitConfig{
		"POST /add_todo": {Requests: 1, Window: time.Minute},
	}

	todoService := service.NewTodoService(repository.NewTodoRepository(db, nil), nil)
	router := routes.SetupTodoRouter(routes.TodoHandlers{
		TodoHandler:   handler.NewTodoHandler(todoService, nil),
		HealthHandler: handler.NewHealthHandler(nil),
	}, routes.Dependencies{Config: cfg})

	add := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodPost, "/add_todo", strings.NewReader(url.Values{"todo": {"x"}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", forwardedFor)
		req.RemoteAddr = "203.0.113.9:5555"

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	Expect(add("10.1.1.1")).To(Equal(http.StatusOK))
	Expect(add("10.1.1.2")).To(Equal(http.StatusTooManyRequests))
}
