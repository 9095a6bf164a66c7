package attempts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"gitlab.com/fcv-2025.net/attempt-service/internal/adapter/logging"
	"gitlab.com/fcv-2025.net/attempt-service/internal/config"
	"gitlab.com/fcv-2025.net/attempt-service/internal/domain"
	"gitlab.com/fcv-2025.net/attempt-service/internal/handlers"
	"gitlab.com/fcv-2025.net/attempt-service/internal/handlers/response"
	"gitlab.com/fcv-2025.net/attempt-service/internal/static/errs"
)

const testSecret = "test-secret"

type stubService struct {
	failGet bool
}

func (s *stubService) Create(context.Context, domain.CreateAttemptCommand) (*domain.Attempt, error) {
	return nil, errors.New("not used")
}

func (s *stubService) ApplyGradedEvent(context.Context, domain.GradedEvent) error { return nil }

func (s *stubService) ExpireStale(context.Context, time.Time) (int, error) { return 0, nil }

func (s *stubService) Get(_ context.Context, id int64) (*domain.Attempt, error) {
	if s.failGet {
		return nil, errors.New("db down")
	}
	if id != 1 {
		return nil, errs.AttemptNotFound
	}
	return &domain.Attempt{ID: 1, UserID: 9, ExerciseID: 2, Score: 75, Status: domain.AttemptStatusCompleted}, nil
}

func (s *stubService) ListByUser(context.Context, int64) ([]domain.AttemptSummary, error) {
	return []domain.AttemptSummary{{ID: 1, ExerciseID: 2, Score: 75}}, nil
}

func (s *stubService) ListByExercise(context.Context, int64, int) ([]*domain.Attempt, error) {
	return nil, nil
}

func (s *stubService) Best(context.Context, int64, int64) (*domain.Attempt, error) { return nil, nil }

func (s *stubService) BestPerExercise(context.Context, int64) (map[int64]*domain.Attempt, error) {
	return map[int64]*domain.Attempt{2: {ID: 1, ExerciseID: 2, Stars: 3, Score: 100, CodeSubmitted: "secret"}}, nil
}

func newRouter(svc *stubService, secret string) *mux.Router {
	r := mux.NewRouter()
	NewHandler(svc, logging.NewNopLogger()).Register(r, handlers.New(&config.JwtConfig{Secret: secret}))
	return r
}

func signedToken(t *testing.T, secret string, method jwt.SigningMethod, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, jwt.MapClaims{"sub": "9", "exp": exp.Unix()})
	s, err := tok.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func serve(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthentication(t *testing.T) {
	t.Parallel()
	r := newRouter(&stubService{}, testSecret)
	valid := signedToken(t, testSecret, jwt.SigningMethodHS256, time.Now().Add(time.Hour))

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "missing", token: "", want: http.StatusUnauthorized},
		{name: "garbage", token: "not-a-jwt", want: http.StatusUnauthorized},
		{name: "wrong secret", token: signedToken(t, "other", jwt.SigningMethodHS256, time.Now().Add(time.Hour)), want: http.StatusUnauthorized},
		{name: "expired", token: signedToken(t, testSecret, jwt.SigningMethodHS256, time.Now().Add(-time.Hour)), want: http.StatusUnauthorized},
		{name: "valid", token: valid, want: http.StatusOK},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if rec := serve(r, "/api/attempts/1", tt.token); rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestMissingSecretRejects(t *testing.T) {
	t.Parallel()
	r := newRouter(&stubService{}, "")
	token := signedToken(t, "anything", jwt.SigningMethodHS256, time.Now().Add(time.Hour))

	if rec := serve(r, "/api/attempts/1", token); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestGetAttempt(t *testing.T) {
	t.Parallel()
	token := signedToken(t, testSecret, jwt.SigningMethodHS256, time.Now().Add(time.Hour))

	tests := []struct {
		name string
		svc  *stubService
		path string
		want int
	}{
		{name: "found", svc: &stubService{}, path: "/api/attempts/1", want: http.StatusOK},
		{name: "not found", svc: &stubService{}, path: "/api/attempts/2", want: http.StatusNotFound},
		{name: "bad id", svc: &stubService{}, path: "/api/attempts/abc", want: http.StatusBadRequest},
		{name: "store failure", svc: &stubService{failGet: true}, path: "/api/attempts/1", want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := serve(newRouter(tt.svc, testSecret), tt.path, token)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			if rec.Code == http.StatusNotFound {
				var msg response.ErrorMessage
				if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil || msg.Message != "Attempt not found" {
					t.Fatalf("unexpected error body %s", rec.Body.String())
				}
			}
		})
	}
}

func TestBestAttemptsHideCode(t *testing.T) {
	t.Parallel()
	r := newRouter(&stubService{}, testSecret)
	token := signedToken(t, testSecret, jwt.SigningMethodHS512, time.Now().Add(time.Hour))

	rec := serve(r, "/api/users/9/best-attempts", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	best, ok := body["2"]
	if !ok || best["stars"] != float64(3) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if _, leaked := best["code_submitted"]; leaked {
		t.Fatalf("expected code to be omitted, got %s", rec.Body.String())
	}

	rec = serve(r, "/api/users/9/attempts", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func tokenWithClaims(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestReadsAreScopedToTokenSubject(t *testing.T) {
	t.Parallel()
	r := newRouter(&stubService{}, testSecret)
	owner := tokenWithClaims(t, jwt.MapClaims{"sub": "9"})
	stranger := tokenWithClaims(t, jwt.MapClaims{"sub": "8"})
	reader := tokenWithClaims(t, jwt.MapClaims{"sub": "8", "permission": []string{handlers.PermissionReadAllAttempts}})
	anonymous := tokenWithClaims(t, jwt.MapClaims{})

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{name: "owner reads attempt", path: "/api/attempts/1", token: owner, want: http.StatusOK},
		{name: "stranger reads attempt", path: "/api/attempts/1", token: stranger, want: http.StatusForbidden},
		{name: "stranger lists attempts", path: "/api/users/9/attempts", token: stranger, want: http.StatusForbidden},
		{name: "stranger lists best", path: "/api/users/9/best-attempts", token: stranger, want: http.StatusForbidden},
		{name: "stranger lists own", path: "/api/users/8/attempts", token: stranger, want: http.StatusOK},
		{name: "read all permission", path: "/api/users/9/attempts", token: reader, want: http.StatusOK},
		{name: "read all permission attempt", path: "/api/attempts/1", token: reader, want: http.StatusOK},
		{name: "no subject", path: "/api/users/9/attempts", token: anonymous, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if rec := serve(r, tt.path, tt.token); rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}
