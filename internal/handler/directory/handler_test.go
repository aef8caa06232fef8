package directory

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drbooking/booking-api/internal/model"
	"github.com/drbooking/booking-api/internal/repository/memory"
	availabilityService "github.com/drbooking/booking-api/internal/service/availability"
	directoryService "github.com/drbooking/booking-api/internal/service/directory"
	"github.com/drbooking/booking-api/pkg/metrics"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *model.Doctor) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	doctor := &model.Doctor{ID: uuid.New(), FirstName: "Claire", LastName: "Bernard"}
	store.AddDoctor(doctor)

	dirSvc := directoryService.NewService(store)
	availSvc := availabilityService.NewService(store, store, availabilityService.Config{}, metrics.New("test"))

	h := NewHandler(dirSvc, availSvc)
	engine := gin.New()
	h.RegisterRoutes(engine.Group("/api/v1"))
	return engine, doctor
}

func doRequest(t *testing.T, engine *gin.Engine, path string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var body apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestGetAvailabilities(t *testing.T) {
	engine, doctor := newTestRouter(t)

	rec, body := doRequest(t, engine, fmt.Sprintf("/api/v1/doctors/%s/availabilities?date=2024-06-10", doctor.ID))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, body.Success)

	var slots []model.Slot
	require.NoError(t, json.Unmarshal(body.Data, &slots))
	assert.Len(t, slots, 12)
}

func TestGetAvailabilitiesBadDate(t *testing.T) {
	engine, doctor := newTestRouter(t)

	for _, date := range []string{"", "10/06/2024", "2024-13-45", "yesterday"} {
		rec, body := doRequest(t, engine, fmt.Sprintf("/api/v1/doctors/%s/availabilities?date=%s", doctor.ID, date))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "date %q", date)
		require.NotNil(t, body.Error)
		assert.Equal(t, "INVALID_DATE", body.Error.Code)
	}
}

func TestGetAvailabilitiesUnknownDoctor(t *testing.T) {
	engine, _ := newTestRouter(t)

	rec, body := doRequest(t, engine, fmt.Sprintf("/api/v1/doctors/%s/availabilities?date=2024-06-10", uuid.New()))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestListDoctorsFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := memory.NewSeededStore()
	dirSvc := directoryService.NewService(store)
	availSvc := availabilityService.NewService(store, store, availabilityService.Config{}, metrics.New("test"))

	engine := gin.New()
	NewHandler(dirSvc, availSvc).RegisterRoutes(engine.Group("/api/v1"))

	rec, body := doRequest(t, engine, "/api/v1/specialties")
	require.Equal(t, http.StatusOK, rec.Code)

	var specialties []model.Specialty
	require.NoError(t, json.Unmarshal(body.Data, &specialties))
	require.Len(t, specialties, 6)

	rec, body = doRequest(t, engine, fmt.Sprintf("/api/v1/doctors?specialty_id=%s", specialties[1].ID))
	require.Equal(t, http.StatusOK, rec.Code)

	var doctors []model.Doctor
	require.NoError(t, json.Unmarshal(body.Data, &doctors))
	require.Len(t, doctors, 1)
	assert.Equal(t, "Martin", doctors[0].LastName)
}
