package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhvinik1/devicetrack/internal/reports"
)

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	code := ts.do(http.MethodGet, "/health", "", nil, &body)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestAuth_MissingAndUnknownToken(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/devices", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/devices", "nope", nil, nil))
}

func TestProjects_SameNameDifferentUsers(t *testing.T) {
	// ARRANGE
	ts := newTestServer(t)
	var alice, bob struct {
		ID int64 `json:"user_id"`
	}
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/users", "", map[string]any{"username": "alice"}, &alice))
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/users", "", map[string]any{"username": "bob"}, &bob))

	// ACT
	aliceCode := ts.do(http.MethodPost, "/api/projects", "", map[string]any{"user_id": alice.ID, "name": "Demo"}, nil)
	bobCode := ts.do(http.MethodPost, "/api/projects", "", map[string]any{"user_id": bob.ID, "name": "Demo"}, nil)
	var dup errorBody
	dupCode := ts.do(http.MethodPost, "/api/projects", "", map[string]any{"user_id": alice.ID, "name": "Demo"}, &dup)

	// ASSERT
	assert.Equal(t, http.StatusCreated, aliceCode)
	assert.Equal(t, http.StatusCreated, bobCode)
	assert.Equal(t, http.StatusBadRequest, dupCode)
	assert.Equal(t, "Resource already exists.", dup.Message)
}

func TestDevices_InitThenListing(t *testing.T) {
	// ARRANGE
	ts := newTestServer(t)
	_, token := ts.seed("alice", "Demo")

	// ACT
	for i := 0; i < 2; i++ {
		code := ts.do(http.MethodPost, "/api/devices/init", token, map[string]any{
			"instance_id": 1001,
			"name":        "Pixel 8",
			"platform":    "android",
		}, nil)
		require.Equal(t, http.StatusOK, code)
	}
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/logs", token, map[string]any{
		"instance_id": 1001, "message": "opened", "level": "INFO", "tag": "app_open",
	}, nil))

	var list listBody[map[string]any]
	code := ts.do(http.MethodGet, "/api/devices", token, nil, &list)

	// ASSERT
	require.Equal(t, http.StatusOK, code)
	require.Len(t, list.Items, 1)
	item := list.Items[0]
	assert.Equal(t, float64(1001), item["instance_id"])
	assert.Equal(t, "Pixel 8", item["name"])
	assert.Equal(t, float64(2), item["total_sessions"])
	assert.Equal(t, float64(1), item["total_logs"])
	assert.Equal(t, float64(1), item["total_actions"])
	assert.Equal(t, paginationBody{Page: 1, PerPage: 20, TotalPages: 1, TotalItems: 1}, list.Pagination)
	assert.True(t, strings.HasSuffix(list.Filters["start"].(string), "Z"))
}

func TestDevices_InitPatchNullClears(t *testing.T) {
	// ARRANGE
	ts := newTestServer(t)
	_, token := ts.seed("alice", "Demo")
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/devices/init", token, map[string]any{
		"instance_id": 5, "name": "Phone", "country": "US",
	}, nil))

	// ACT
	var device map[string]any
	code := ts.do(http.MethodPost, "/api/devices/init", token, `{"instance_id": 5, "country": null}`, &device)

	// ASSERT
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Phone", device["name"])
	assert.Nil(t, device["country"])
}

func TestDevices_ForeignProjectIsNotFound(t *testing.T) {
	// ARRANGE
	ts := newTestServer(t)
	_, aliceToken := ts.seed("alice", "Demo")
	_, bobToken := ts.seed("bob", "Demo")
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/devices/init", aliceToken, map[string]any{"instance_id": 77}, nil))

	// ACT / ASSERT
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/devices/77", aliceToken, nil, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/devices/77", bobToken, nil, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, "/api/devices/init", bobToken, map[string]any{"instance_id": 77}, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, "/api/logs", bobToken, map[string]any{
		"instance_id": 77, "message": "x", "level": "INFO",
	}, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodDelete, "/api/devices/77", bobToken, nil, nil))
}

func TestDevices_ValidationErrors(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.seed("alice", "Demo")

	tests := []struct {
		name  string
		path  string
		field string
	}{
		{"bad start", "/api/devices?start=yesterday&end=2025-11-12T00:00:00Z", "start"},
		{"bad platform", "/api/devices?platform=symbian", "platform"},
		{"bad order", "/api/devices?order=random", "order"},
		{"per_page too large", "/api/devices?per_page=101", "per_page"},
		{"page zero", "/api/devices?page=0", "page"},
		{"page not a number", "/api/devices?page=abc", "page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body errorBody
			code := ts.do(http.MethodGet, tt.path, token, nil, &body)

			require.Equal(t, http.StatusBadRequest, code)
			require.NotEmpty(t, body.Errors)
			assert.Equal(t, tt.field, body.Errors[0].Field)
		})
	}
}

func TestDevices_PageOffsetOutOfRange(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.seed("alice", "Demo")
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/devices/init", token, map[string]any{"instance_id": 1}, nil))

	var body errorBody
	code := ts.do(http.MethodGet, "/api/devices?page=100000000000000000&per_page=100", token, nil, &body)
	require.Equal(t, http.StatusBadRequest, code)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "page", body.Errors[0].Field)

	var list listBody[map[string]any]
	lastCode := ts.do(http.MethodGet, fmt.Sprintf("/api/devices?page=%d&per_page=100", reports.MaxOffset/100+1), token, nil, &list)
	require.Equal(t, http.StatusOK, lastCode)
	assert.Empty(t, list.Items)
	assert.Equal(t, int64(1), list.Pagination.TotalItems)

	var logs errorBody
	logsCode := ts.do(http.MethodGet, "/api/logs/by-instance?instance_id=1&page=9223372036854775807", token, nil, &logs)
	require.Equal(t, http.StatusBadRequest, logsCode)
	assert.Equal(t, "page", logs.Errors[0].Field)
}

func TestDevices_InitRequiresInstanceID(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.seed("alice", "Demo")

	var body errorBody
	code := ts.do(http.MethodPost, "/api/devices/init", token, map[string]any{"name": "x"}, &body)

	require.Equal(t, http.StatusBadRequest, code)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "instance_id", body.Errors[0].Field)
}

func TestLogs_ByInstanceRequiresInstanceID(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.seed("alice", "Demo")

	var body errorBody
	code := ts.do(http.MethodGet, "/api/logs/by-instance", token, nil, &body)

	require.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "instance_id", body.Errors[0].Field)
}

func TestLogs_InvertedDateRangeIsEmpty(t *testing.T) {
	// ARRANGE
	ts := newTestServer(t)
	_, token := ts.seed("alice", "Demo")
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/devices/init", token, map[string]any{"instance_id": 1}, nil))
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/logs", token, map[string]any{
		"instance_id": 1, "message": "m", "level": "ERROR", "actual_log_time": "2025-11-15T10:00:00Z",
	}, nil))

	// ACT
	var list listBody[map[string]any]
	code := ts.do(http.MethodGet, "/api/logs/by-instance?instance_id=1&start_date=2025-11-20&end_date=2025-11-10", token, nil, &list)
	var full listBody[map[string]any]
	fullCode := ts.do(http.MethodGet, "/api/logs/by-instance?instance_id=1&start_date=2025-11-15&end_date=2025-11-15", token, nil, &full)

	// ASSERT
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, list.Items)
	assert.Zero(t, list.Pagination.TotalItems)
	require.Equal(t, http.StatusOK, fullCode)
	require.Len(t, full.Items, 1)
	assert.Equal(t, "2025-11-15T10:00:00Z", full.Items[0]["actual_log_time"])
}

func TestSummaries(t *testing.T) {
	// ARRANGE
	ts := newTestServer(t)
	_, token := ts.seed("alice", "Demo")
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/devices/init", token, map[string]any{
		"instance_id": 1, "platform": "ios", "actual_log_time": "2025-11-12T08:00:00Z",
	}, nil))
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/logs", token, map[string]any{
		"instance_id": 1, "message": "m", "level": "INFO", "tag": "checkout", "actual_log_time": "2025-11-12T09:00:00Z",
	}, nil))
	window := "start=2025-11-12T00:00:00Z&end=2025-11-13T00:00:00Z"

	// ACT
	var platforms struct {
		Start     string `json:"start"`
		Platforms []struct {
			Platform    string `json:"platform"`
			DeviceCount int64  `json:"device_count"`
			LogCount    int64  `json:"log_count"`
		} `json:"platforms"`
	}
	platformCode := ts.do(http.MethodGet, "/api/logs/summary?"+window, token, nil, &platforms)
	var tags struct {
		Tags []struct {
			Tag   string `json:"tag"`
			Count int64  `json:"count"`
		} `json:"tags"`
	}
	tagCode := ts.do(http.MethodGet, "/api/log_tags/summary?"+window, token, nil, &tags)

	// ASSERT
	require.Equal(t, http.StatusOK, platformCode)
	assert.Equal(t, "2025-11-12T00:00:00Z", platforms.Start)
	require.Len(t, platforms.Platforms, 5)
	for _, p := range platforms.Platforms {
		if p.Platform == "ios" {
			assert.Equal(t, int64(1), p.DeviceCount)
			assert.Equal(t, int64(1), p.LogCount)
		} else {
			assert.Zero(t, p.DeviceCount+p.LogCount)
		}
	}
	require.Equal(t, http.StatusOK, tagCode)
	require.Len(t, tags.Tags, 1)
	assert.Equal(t, "checkout", tags.Tags[0].Tag)
	assert.Equal(t, int64(1), tags.Tags[0].Count)
}

func TestActionsAndSessions(t *testing.T) {
	// ARRANGE
	ts := newTestServer(t)
	_, token := ts.seed("alice", "Demo")
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/devices/init", token, map[string]any{
		"instance_id": 1, "actual_log_time": "2025-11-12T08:00:00Z",
	}, nil))
	require.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/api/logs", token, map[string]any{
		"instance_id": 1, "message": "m", "level": "INFO", "tag": "share", "actual_log_time": "2025-11-12T09:00:00Z",
	}, nil))
	window := "&start=2025-11-12T00:00:00Z&end=2025-11-13T00:00:00Z"

	// ACT
	var actions listBody[map[string]any]
	actionsCode := ts.do(http.MethodGet, "/api/actions?instance_id=1"+window, token, nil, &actions)
	var sessions listBody[map[string]any]
	sessionsCode := ts.do(http.MethodGet, "/api/sessions?instance_id=1"+window, token, nil, &sessions)

	// ASSERT
	require.Equal(t, http.StatusOK, actionsCode)
	require.Len(t, actions.Items, 1)
	assert.Equal(t, "share", actions.Items[0]["tag"])
	require.Equal(t, http.StatusOK, sessionsCode)
	require.Len(t, sessions.Items, 1)
	assert.Equal(t, "2025-11-12T08:00:00Z", sessions.Items[0]["actual_log_time"])
}

func TestTokens_DeactivateTakesEffectImmediately(t *testing.T) {
	// ARRANGE
	ts := newTestServer(t)
	_, token := ts.seed("alice", "Demo")
	require.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/devices", token, nil, nil))
	require.Equal(t, 1, ts.cache.Len())

	// ACT
	code := ts.do(http.MethodPut, "/api/tokens/"+token, "", map[string]any{"status": "INACTIVE"}, nil)

	// ASSERT
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/devices", token, nil, nil))
}

func TestTokens_ListingMasksTokenValues(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.seed("alice", "Demo")

	var list listBody[map[string]any]
	code := ts.do(http.MethodGet, "/api/tokens", "", nil, &list)

	require.Equal(t, http.StatusOK, code)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "****"+token[len(token)-4:], list.Items[0]["token"])
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/api/devices", token, nil, nil))
}

func TestTags_CRUD(t *testing.T) {
	// ARRANGE
	ts := newTestServer(t)
	_, token := ts.seed("alice", "Demo")
	require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/devices/init", token, map[string]any{"instance_id": 3}, nil))

	// ACT
	createCode := ts.do(http.MethodPost, "/api/tags", token, map[string]any{
		"instance_id": 3, "tag_name": "env", "tag_value": "beta",
	}, nil)
	dupCode := ts.do(http.MethodPost, "/api/tags", token, map[string]any{
		"instance_id": 3, "tag_name": "env", "tag_value": "beta",
	}, nil)
	updateCode := ts.do(http.MethodPut, "/api/tags/3/env/beta", token, map[string]any{"tag_value": "stable"}, nil)
	var list listBody[map[string]any]
	listCode := ts.do(http.MethodGet, "/api/tags?instance_id=3", token, nil, &list)
	deleteCode := ts.do(http.MethodDelete, "/api/tags/3/env/stable", token, nil, nil)
	missingCode := ts.do(http.MethodDelete, "/api/tags/3/env/stable", token, nil, nil)

	// ASSERT
	assert.Equal(t, http.StatusCreated, createCode)
	assert.Equal(t, http.StatusBadRequest, dupCode)
	assert.Equal(t, http.StatusOK, updateCode)
	require.Equal(t, http.StatusOK, listCode)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "stable", list.Items[0]["tag_value"])
	assert.Equal(t, http.StatusNoContent, deleteCode)
	assert.Equal(t, http.StatusNotFound, missingCode)
}

func TestGithubWebhook(t *testing.T) {
	ts := newTestServer(t)
	payload := `{"ref":"refs/heads/main"}`
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(payload))
	valid := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	send := func(signature string) int {
		req := httptest.NewRequest(http.MethodPost, "/github-webhook", strings.NewReader(payload))
		if signature != "" {
			req.Header.Set("X-Hub-Signature-256", signature)
		}
		rec := httptest.NewRecorder()
		ts.handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusForbidden, send(""))
	assert.Equal(t, http.StatusForbidden, send("sha256=deadbeef"))
	assert.Zero(t, ts.runner.calls)
	assert.Equal(t, http.StatusOK, send(valid))
	assert.Equal(t, 1, ts.runner.calls)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodGet, "/health", "", nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `devicetrack_http_requests_total{method="GET",route="/health",status="200"}`)
}
