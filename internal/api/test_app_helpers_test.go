package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/endocare/internal/db"
	"github.com/terraincognita07/endocare/internal/inference"
	"github.com/terraincognita07/endocare/internal/models"
	"github.com/terraincognita07/endocare/internal/services"
)

const testAuthSecret = "endocare-test-secret"

const testModelArtifact = `{
  "format": "endocare-model/v1",
  "model_type": "tree_ensemble",
  "n_features": 6,
  "feature_names": ["duration_h", "quality_pct", "cycle_day", "processed_sugar", "caffeine_evening", "pain_today"],
  "ensemble": {
    "base_margin": 0,
    "trees": [
      [{"feature": 5, "threshold": 5, "left": 1, "right": 2}, {"leaf": -1}, {"leaf": 1}]
    ]
  }
}`

type testAppOptions struct {
	backend      services.RecordBackend
	scorer       services.FlareScorer
	policy       services.ReadFailurePolicy
	authRequired bool
}

type failingBackend struct {
	insertErr error
	listErr   error
	pingErr   error
}

func (backend *failingBackend) Name() string { return "failing" }

func (backend *failingBackend) Insert(context.Context, models.Record) error {
	return backend.insertErr
}

func (backend *failingBackend) List(context.Context, models.Kind, uint) ([]models.Record, error) {
	return nil, backend.listErr
}

func (backend *failingBackend) LatestCreatedAt(context.Context, models.Kind) (time.Time, error) {
	return time.Time{}, backend.listErr
}

func (backend *failingBackend) Ping(context.Context) error { return backend.pingErr }

func (backend *failingBackend) Close() error { return nil }

type failingScorer struct{}

func (failingScorer) Predict(inference.Features) (float64, error) {
	return 0, inference.ErrInference
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestApp(t *testing.T, options testAppOptions) *fiber.App {
	t.Helper()

	backend := options.backend
	if backend == nil {
		database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "endocare.db"))
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		repo := db.NewRecordRepository("sqlite", database)
		t.Cleanup(func() { _ = repo.Close() })
		backend = repo
	}

	scorer := options.scorer
	if scorer == nil {
		model, err := inference.DecodeArtifact(strings.NewReader(testModelArtifact))
		if err != nil {
			t.Fatalf("decode test model: %v", err)
		}
		predictor, err := inference.NewPredictor(model, "test")
		if err != nil {
			t.Fatalf("new predictor: %v", err)
		}
		scorer = predictor
	}

	logger := quietLogger()
	store := services.NewRecordStore(backend, services.WithReadFailurePolicy(options.policy), services.WithStoreLogger(logger))
	flares := services.NewFlareService(scorer, store, logger)

	handler, err := NewHandler(store, flares, HandlerOptions{
		AuthSecret:     testAuthSecret,
		AuthRequired:   options.authRequired,
		DefaultOwnerID: 1,
		Logger:         logger,
	})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return NewApp(handler, AppConfig{Name: "EndoCare test"})
}

func doRequest(t *testing.T, app *fiber.App, method string, path string, body string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != "" {
		request.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("%s %s read body failed: %v", method, path, err)
	}
	return response, payload
}

func decodeJSON[T any](t *testing.T, payload []byte) T {
	t.Helper()

	var value T
	if err := json.Unmarshal(payload, &value); err != nil {
		t.Fatalf("decode %q: %v", string(payload), err)
	}
	return value
}

func readAPIError(t *testing.T, payload []byte) map[string]string {
	t.Helper()
	return decodeJSON[map[string]string](t, payload)
}

func bearerToken(t *testing.T, ownerID uint, secret string, ttl time.Duration) string {
	t.Helper()

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, ownerClaims{
		OwnerID: ownerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

var errBackendDown = errors.New("backend unavailable")
