package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebasr/target-manager/internal/logging"
	"github.com/sebasr/target-manager/internal/models"
	"github.com/sebasr/target-manager/internal/repository"
)

func setupTargetTest() (*TargetHandler, *repository.MockTargetRepository) {
	gin.SetMode(gin.TestMode)

	repo := repository.NewMockTargetRepository()
	handler := NewTargetHandler(repo, logging.Nop())
	handler.newID = func() string { return "new-id" }

	return handler, repo
}

func sampleTarget() *models.Target {
	return &models.Target{
		ID:        "t-1",
		Latitude:  32.0853,
		Longitude: 34.7818,
		Altitude:  150.5,
		Frequency: 2.4,
		Speed:     25,
		Bearing:   180,
		IPAddress: "192.168.1.1",
	}
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestTargetHandler_List(t *testing.T) {
	handler, repo := setupTargetTest()
	repo.ListFunc = func(_ context.Context) ([]*models.Target, error) {
		return []*models.Target{sampleTarget()}, nil
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/targets", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var targets []models.Target
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &targets))
	require.Len(t, targets, 1)
	assert.Equal(t, *sampleTarget(), targets[0])
}

func TestTargetHandler_List_EmptyIsArray(t *testing.T) {
	handler, _ := setupTargetTest()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/targets", nil)

	handler.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestTargetHandler_List_RepositoryError(t *testing.T) {
	handler, repo := setupTargetTest()
	repo.ListFunc = func(_ context.Context) ([]*models.Target, error) {
		return nil, errors.New("connection reset")
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/targets", nil)

	handler.List(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, CodeInternalError, resp.Code)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestTargetHandler_Get(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		wantStatus int
		wantCode   string
	}{
		{name: "existing target", id: "t-1", wantStatus: http.StatusOK},
		{name: "unknown target", id: "nope", wantStatus: http.StatusNotFound, wantCode: CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := setupTargetTest()
			repo.GetByIDFunc = func(_ context.Context, id string) (*models.Target, error) {
				if id == "t-1" {
					return sampleTarget(), nil
				}
				return nil, repository.ErrTargetNotFound
			}

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/targets/"+tt.id, nil)
			c.Params = gin.Params{{Key: "id", Value: tt.id}}

			handler.Get(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				resp := decodeError(t, w)
				assert.Equal(t, tt.wantCode, resp.Code)
				assert.Equal(t, "Target not found", resp.Error)
			}
		})
	}
}

func TestTargetHandler_Create(t *testing.T) {
	handler, repo := setupTargetTest()

	var stored *models.Target
	repo.CreateFunc = func(_ context.Context, target *models.Target) error {
		stored = target
		return nil
	}

	body := `{"latitude":0,"longitude":-180,"altitude":-12.5,"frequency":915,"speed":0,"bearing":360,"ip_address":"01.02.03.04"}`
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPost, "/api/v1/targets", body)

	handler.Create(c)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Target
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "new-id", created.ID)
	assert.Equal(t, 0.0, created.Latitude)
	assert.Equal(t, -180.0, created.Longitude)
	assert.Equal(t, 360.0, created.Bearing)
	assert.Equal(t, "01.02.03.04", created.IPAddress)
	require.NotNil(t, stored)
	assert.Equal(t, created, *stored)
}

func TestTargetHandler_Create_ValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
		wantDetails map[string]string
	}{
		{
			name:        "empty body",
			body:        ``,
			wantMessage: "Request body is required",
		},
		{
			name:        "latitude out of range",
			body:        `{"latitude":90.0001,"longitude":0,"altitude":0,"frequency":1,"speed":0,"bearing":0,"ip_address":"1.1.1.1"}`,
			wantMessage: "Validation error",
			wantDetails: map[string]string{"latitude": "Must be between -90 and 90"},
		},
		{
			name:        "several invalid fields",
			body:        `{"latitude":0,"longitude":0,"altitude":0,"frequency":0,"speed":-1,"bearing":360.5,"ip_address":"1.2.3.256"}`,
			wantMessage: "Validation error",
			wantDetails: map[string]string{
				"frequency":  "Must be a positive number",
				"speed":      "Must be a non-negative number",
				"bearing":    "Must be between 0 and 360",
				"ip_address": "Must be a valid IPv4 address",
			},
		},
		{
			name:        "missing field",
			body:        `{"latitude":0,"longitude":0,"frequency":1,"speed":0,"bearing":0,"ip_address":"1.1.1.1"}`,
			wantMessage: "Validation error",
			wantDetails: map[string]string{"altitude": "This field is required"},
		},
		{
			name:        "wrong type",
			body:        `{"latitude":"north","longitude":0,"altitude":0,"frequency":1,"speed":0,"bearing":0,"ip_address":"1.1.1.1"}`,
			wantMessage: "Validation error",
			wantDetails: map[string]string{"latitude": "Must be between -90 and 90"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := setupTargetTest()
			repo.CreateFunc = func(_ context.Context, _ *models.Target) error {
				t.Fatal("repository must not be called for invalid input")
				return nil
			}

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = jsonRequest(http.MethodPost, "/api/v1/targets", tt.body)

			handler.Create(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, CodeValidationError, resp.Code)
			assert.Equal(t, http.StatusBadRequest, resp.Status)
			assert.Equal(t, tt.wantMessage, resp.Error)
			if tt.wantDetails != nil {
				assert.Equal(t, tt.wantDetails, resp.Details)
			}
		})
	}
}

func TestTargetHandler_Update_ShallowMerge(t *testing.T) {
	handler, repo := setupTargetTest()
	repo.GetByIDFunc = func(_ context.Context, _ string) (*models.Target, error) {
		return sampleTarget(), nil
	}
	var saved models.Target
	repo.UpdateFunc = func(_ context.Context, target *models.Target) error {
		saved = *target
		return nil
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest(http.MethodPut, "/api/v1/targets/t-1", `{"speed":0,"ip_address":"10.0.0.1"}`)
	c.Params = gin.Params{{Key: "id", Value: "t-1"}}

	handler.Update(c)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	want := *sampleTarget()
	want.Speed = 0
	want.IPAddress = "10.0.0.1"
	assert.Equal(t, want, saved)

	var resp models.Target
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, want, resp)
}

func TestTargetHandler_Update_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		found      bool
		wantStatus int
		wantCode   string
	}{
		{name: "empty object", body: `{}`, found: true, wantStatus: http.StatusBadRequest, wantCode: CodeValidationError},
		{name: "invalid bearing", body: `{"bearing":-1}`, found: true, wantStatus: http.StatusBadRequest, wantCode: CodeValidationError},
		{name: "unknown target", body: `{"speed":3}`, found: false, wantStatus: http.StatusNotFound, wantCode: CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := setupTargetTest()
			repo.GetByIDFunc = func(_ context.Context, _ string) (*models.Target, error) {
				if tt.found {
					return sampleTarget(), nil
				}
				return nil, repository.ErrTargetNotFound
			}
			repo.UpdateFunc = func(_ context.Context, _ *models.Target) error {
				t.Fatal("repository update must not be called")
				return nil
			}

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = jsonRequest(http.MethodPut, "/api/v1/targets/t-1", tt.body)
			c.Params = gin.Params{{Key: "id", Value: "t-1"}}

			handler.Update(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}

func TestTargetHandler_Delete(t *testing.T) {
	handler, repo := setupTargetTest()
	deleted := map[string]bool{}
	repo.DeleteFunc = func(_ context.Context, id string) error {
		if id != "t-1" || deleted[id] {
			return repository.ErrTargetNotFound
		}
		deleted[id] = true
		return nil
	}

	router := gin.New()
	router.DELETE("/api/v1/targets/:id", handler.Delete)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/targets/t-1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/targets/t-1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, decodeError(t, w).Code)
}
