package save

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sstrulea/ascutzit-crm-sub001/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockTechnicianCreator struct {
	mock.Mock
}

func (m *MockTechnicianCreator) CreateTechnicianAdmin(ctx context.Context, t storage.Technician) (int64, error) {
	args := m.Called(ctx, t)
	return args.Get(0).(int64), args.Error(1)
}

func post(creator TechnicianCreator, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/technicians", strings.NewReader(body))
	SaveTechnicianAdmin(slog.Default(), creator).ServeHTTP(rr, req)
	return rr
}

func TestSaveTechnicianAdmin_DefaultsToActive(t *testing.T) {
	creator := new(MockTechnicianCreator)
	creator.On("CreateTechnicianAdmin", mock.Anything, storage.Technician{Name: "Ana", IsActive: true}).Return(int64(12), nil)

	rr := post(creator, `{"name":"Ana"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id":12}`, rr.Body.String())
	creator.AssertExpectations(t)
}

func TestSaveTechnicianAdmin_Inactive(t *testing.T) {
	creator := new(MockTechnicianCreator)
	creator.On("CreateTechnicianAdmin", mock.Anything, storage.Technician{Name: "Dan", IsActive: false}).Return(int64(13), nil)

	rr := post(creator, `{"name":"Dan","is_active":false}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	creator.AssertExpectations(t)
}

func TestSaveTechnicianAdmin_Errors(t *testing.T) {
	creator := new(MockTechnicianCreator)
	rr := post(creator, `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	creator.AssertNotCalled(t, "CreateTechnicianAdmin")

	creator = new(MockTechnicianCreator)
	creator.On("CreateTechnicianAdmin", mock.Anything, mock.Anything).Return(int64(0), storage.ErrTechnicianExists)
	rr = post(creator, `{"name":"Ana"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
}
