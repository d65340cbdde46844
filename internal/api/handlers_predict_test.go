package api

import (
	"net/http"
	"testing"
)

const validFlareBody = `{"date":"2025-08-02","duration_h":6.5,"quality_pct":70,"cycle_day":14,"pain_today":7,"processed_sugar":1,"caffeine_evening":0}`

func TestPredictFlareReturnsRoundedProbabilityAndRecordsIt(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testAppOptions{})
	response, payload := doRequest(t, app, http.MethodPost, "/predict-flare", validFlareBody, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", response.StatusCode, payload)
	}
	body := decodeJSON[map[string]any](t, payload)
	if body["flareProbability"] != 0.731 {
		t.Fatalf("expected probability 0.731, got %v", body["flareProbability"])
	}
	if body["recorded"] != true {
		t.Fatalf("expected prediction to be recorded, got %v", body["recorded"])
	}
	if body["predictionId"] != float64(1) {
		t.Fatalf("expected predictionId 1, got %v", body["predictionId"])
	}

	_, payload = doRequest(t, app, http.MethodGet, "/get_all_predictions", "", nil)
	predictions := decodeJSON[[]map[string]any](t, payload)
	if len(predictions) != 1 {
		t.Fatalf("expected one prediction record, got %d", len(predictions))
	}
	if predictions[0]["cycle_day"] != float64(14) || predictions[0]["probability"] != 0.731 || predictions[0]["date"] != "2025-08-02" {
		t.Fatalf("unexpected prediction record: %v", predictions[0])
	}
}

func TestPredictFlareSucceedsWhenAuditWriteFails(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testAppOptions{backend: &failingBackend{insertErr: errBackendDown}})
	response, payload := doRequest(t, app, http.MethodPost, "/predict-flare", validFlareBody, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", response.StatusCode, payload)
	}
	body := decodeJSON[map[string]any](t, payload)
	if body["flareProbability"] != 0.731 || body["recorded"] != false {
		t.Fatalf("unexpected payload %v", body)
	}
	if _, ok := body["predictionId"]; ok {
		t.Fatalf("expected no predictionId without an audit record, got %v", body["predictionId"])
	}
}

func TestPredictFlareMissingField(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testAppOptions{})
	response, payload := doRequest(t, app, http.MethodPost, "/predict-flare",
		`{"date":"2025-08-02","duration_h":6.5,"quality_pct":70,"cycle_day":14,"processed_sugar":1,"caffeine_evening":0}`, nil)
	if response.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", response.StatusCode)
	}
	if body := readAPIError(t, payload); body["field"] != "pain_today" {
		t.Fatalf("expected pain_today to be reported, got %v", body)
	}
}

func TestPredictFlareInferenceFailureIsServerError(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testAppOptions{scorer: failingScorer{}})
	response, payload := doRequest(t, app, http.MethodPost, "/predict-flare", validFlareBody, nil)
	if response.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", response.StatusCode)
	}
	if body := readAPIError(t, payload); body["error"] != "prediction failed" {
		t.Fatalf("unexpected error payload %v", body)
	}
}
