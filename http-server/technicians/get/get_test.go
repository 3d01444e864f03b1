package get

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTechnicians struct {
	mock.Mock
}

func (m *MockTechnicians) GetActiveTechnicians(ctx context.Context) ([]storage.Technician, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.Technician), args.Error(1)
}

func TestGetTechnicians(t *testing.T) {
	techs := new(MockTechnicians)
	techs.On("GetActiveTechnicians", mock.Anything).Return([]storage.Technician{{ID: 1, Name: "Ana", IsActive: true}}, nil)

	rr := httptest.NewRecorder()
	GetTechnicians(slog.Default(), techs).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/technicians", nil))

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []storage.Technician
	require.NoError(t, render.DecodeJSON(strings.NewReader(rr.Body.String()), &got))
	assert.Equal(t, "Ana", got[0].Name)
}

func TestGetTechnicians_StorageError(t *testing.T) {
	techs := new(MockTechnicians)
	techs.On("GetActiveTechnicians", mock.Anything).Return(nil, assert.AnError)

	rr := httptest.NewRecorder()
	GetTechnicians(slog.Default(), techs).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/technicians", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
