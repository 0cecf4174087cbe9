package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"face-enhancer/internal/entity"
)

type stubEnhanceService struct {
	raw    []byte
	result *entity.EnhanceResult
	err    error
	status *entity.StatusResponse
}

func (s *stubEnhanceService) Enhance(raw []byte) (*entity.EnhanceResult, error) {
	s.raw = raw
	return s.result, s.err
}

func (s *stubEnhanceService) Status() *entity.StatusResponse {
	return s.status
}

type stubBatchService struct {
	request  *entity.BatchRequest
	response *entity.BatchResponse
	job      *entity.BatchJob
	err      error
}

func (s *stubBatchService) CreateJob(request *entity.BatchRequest) (*entity.BatchResponse, error) {
	s.request = request
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func (s *stubBatchService) GetJob(id string) (*entity.BatchJob, error) {
	return s.job, s.err
}

func testRouter(t *testing.T, enhance *stubEnhanceService, batch *stubBatchService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return InitRoutes(NewEnhanceHandler(enhance, batch), t.TempDir())
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestEnhanceEndpointRouting(t *testing.T) {
	tests := []struct {
		name       string
		result     *entity.EnhanceResult
		err        error
		wantStatus int
	}{
		{
			name:       "success",
			result:     &entity.EnhanceResult{Success: true, Method: "simulation"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "no image payload",
			result:     &entity.EnhanceResult{Success: false, Error: "no image data received"},
			err:        entity.ErrNoImageData,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "all engines down",
			result:     &entity.EnhanceResult{Success: false, Error: "enhancement engine unavailable"},
			err:        entity.ErrEngineUnavailable,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enhance := &stubEnhanceService{result: tt.result, err: tt.err}
			router := testRouter(t, enhance, &stubBatchService{})

			recorder := perform(router, http.MethodPost, "/api/enhance", "data:image/jpeg;base64,QUJD")

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, []byte("data:image/jpeg;base64,QUJD"), enhance.raw)

			var body entity.EnhanceResult
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.result.Success, body.Success)
			assert.Equal(t, tt.result.Error, body.Error)
		})
	}
}

// TestPreflight проверяет, что OPTIONS гасится на любом пути со статусом 200
func TestPreflight(t *testing.T) {
	router := testRouter(t, &stubEnhanceService{}, &stubBatchService{})

	for _, path := range []string{"/api/enhance", "/api/status", "/nowhere"} {
		recorder := perform(router, http.MethodOptions, path, "")

		assert.Equal(t, http.StatusOK, recorder.Code, path)
		assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "GET, POST, OPTIONS", recorder.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", recorder.Header().Get("Access-Control-Allow-Headers"))
	}
}

func TestStatusEndpoint(t *testing.T) {
	enhance := &stubEnhanceService{status: &entity.StatusResponse{
		Available:      true,
		BackendWorking: true,
		Models:         []string{"OpenCV Algorithms", "Imaging Filters"},
		Mode:           "OpenCV Enhanced",
		Features:       entity.StatusFeatures{AIEnhancement: true, BatchProcessing: true},
	}}
	router := testRouter(t, enhance, &stubBatchService{})

	recorder := perform(router, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var status entity.StatusResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &status))
	assert.True(t, status.Available)
	assert.Equal(t, "OpenCV Enhanced", status.Mode)
	assert.Equal(t, []string{"OpenCV Algorithms", "Imaging Filters"}, status.Models)
	assert.True(t, status.Features.BatchProcessing)
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t, &stubEnhanceService{}, &stubBatchService{})

	recorder := perform(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "face-enhancer", body["service"])
}

func TestCreateBatchEndpoint(t *testing.T) {
	batch := &stubBatchService{response: &entity.BatchResponse{
		ID:     "job-1",
		Status: entity.JobStatusProcessing,
		Total:  2,
	}}
	router := testRouter(t, &stubEnhanceService{}, batch)

	payload := `{"images":["data:image/jpeg;base64,QQ==","data:image/jpeg;base64,Qg=="],"parameters":{"mode":"fast"}}`
	recorder := perform(router, http.MethodPost, "/api/batch", payload)

	require.Equal(t, http.StatusAccepted, recorder.Code)
	require.NotNil(t, batch.request)
	assert.Len(t, batch.request.Images, 2)

	var response entity.BatchResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "job-1", response.ID)
	assert.Equal(t, entity.JobStatusProcessing, response.Status)
	assert.Equal(t, 2, response.Total)
}

func TestCreateBatchRejections(t *testing.T) {
	t.Run("malformed json", func(t *testing.T) {
		router := testRouter(t, &stubEnhanceService{}, &stubBatchService{})

		recorder := perform(router, http.MethodPost, "/api/batch", "{not json")

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("no images", func(t *testing.T) {
		batch := &stubBatchService{err: entity.ErrNoImageData}
		router := testRouter(t, &stubEnhanceService{}, batch)

		recorder := perform(router, http.MethodPost, "/api/batch", `{"images":[]}`)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestGetBatchEndpoint(t *testing.T) {
	t.Run("known job", func(t *testing.T) {
		batch := &stubBatchService{job: &entity.BatchJob{
			ID:     "job-7",
			Status: entity.JobStatusCompleted,
			Total:  1,
			Done:   1,
		}}
		router := testRouter(t, &stubEnhanceService{}, batch)

		recorder := perform(router, http.MethodGet, "/api/batch/job-7", "")
		require.Equal(t, http.StatusOK, recorder.Code)

		var job entity.BatchJob
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &job))
		assert.Equal(t, "job-7", job.ID)
		assert.Equal(t, entity.JobStatusCompleted, job.Status)
	})

	t.Run("unknown job", func(t *testing.T) {
		router := testRouter(t, &stubEnhanceService{}, &stubBatchService{})

		recorder := perform(router, http.MethodGet, "/api/batch/missing", "")

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}
