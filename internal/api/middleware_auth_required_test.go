package api

import (
	"net/http"
	"testing"
	"time"
)

const symptomsBody = `{"date":"2025-08-02","nausea":1,"fatigue":2,"pain":3,"notes":""}`

func TestResolveOwnerScopesRecordsByToken(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testAppOptions{})
	ownerTwo := map[string]string{"Authorization": bearerToken(t, 2, testAuthSecret, time.Hour)}

	if response, payload := doRequest(t, app, http.MethodPost, "/insert_symptoms", symptomsBody, ownerTwo); response.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", response.StatusCode, payload)
	}

	_, payload := doRequest(t, app, http.MethodGet, "/get_all_symptoms", "", ownerTwo)
	if records := decodeJSON[[]map[string]any](t, payload); len(records) != 1 {
		t.Fatalf("expected owner 2 to see one record, got %d", len(records))
	}

	_, payload = doRequest(t, app, http.MethodGet, "/get_all_symptoms", "", nil)
	if records := decodeJSON[[]map[string]any](t, payload); len(records) != 0 {
		t.Fatalf("expected default owner to see no records, got %d", len(records))
	}
}

func TestResolveOwnerRejectsBadTokens(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testAppOptions{})
	tests := []struct {
		name   string
		header string
	}{
		{name: "wrong secret", header: bearerToken(t, 2, "another-secret", time.Hour)},
		{name: "expired", header: bearerToken(t, 2, testAuthSecret, -time.Hour)},
		{name: "zero owner", header: bearerToken(t, 0, testAuthSecret, time.Hour)},
		{name: "not bearer", header: "Basic dXNlcjpwYXNz"},
		{name: "garbage", header: "Bearer not-a-token"},
	}

	for _, testCase := range tests {
		response, payload := doRequest(t, app, http.MethodGet, "/get_all_sleep", "", map[string]string{"Authorization": testCase.header})
		if response.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", testCase.name, response.StatusCode)
		}
		if body := readAPIError(t, payload); body["error"] != "unauthorized" {
			t.Fatalf("%s: unexpected payload %v", testCase.name, body)
		}
	}
}

func TestResolveOwnerRequiredAuthRejectsAnonymousRequests(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, testAppOptions{authRequired: true})
	response, _ := doRequest(t, app, http.MethodPost, "/insert_symptoms", symptomsBody, nil)
	if response.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", response.StatusCode)
	}

	response, _ = doRequest(t, app, http.MethodGet, "/health", "", nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected health to stay public, got %d", response.StatusCode)
	}

	authorized := map[string]string{"Authorization": bearerToken(t, 5, testAuthSecret, time.Hour)}
	response, payload := doRequest(t, app, http.MethodPost, "/insert_symptoms", symptomsBody, authorized)
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 with token, got %d: %s", response.StatusCode, payload)
	}
}
