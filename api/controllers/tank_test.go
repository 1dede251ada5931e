package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vegobolt/vegobolt-backend/internal/tank"
	pkgerrors "github.com/vegobolt/vegobolt-backend/pkg/errors"
)

type stubTankService struct {
	latest   *tank.ReadingDTO
	history  []tank.ReadingDTO
	alerts   []tank.AlertDTO
	recorded *tank.ReadingDTO

	gotLimit  int
	gotRecord tank.RecordReadingRequest
}

func (s *stubTankService) RecordReading(_ context.Context, req tank.RecordReadingRequest) (*tank.ReadingDTO, error) {
	s.gotRecord = req
	return s.recorded, nil
}

func (s *stubTankService) Latest(_ context.Context) (*tank.ReadingDTO, error) {
	return s.latest, nil
}

func (s *stubTankService) History(_ context.Context, limit int) ([]tank.ReadingDTO, error) {
	s.gotLimit = limit
	return s.history, nil
}

func (s *stubTankService) Alerts(_ context.Context) ([]tank.AlertDTO, error) {
	return s.alerts, nil
}

func TestTankLatest(t *testing.T) {
	svc := &stubTankService{latest: &tank.ReadingDTO{Status: "Full", Level: 95}}
	handler := TankLatest(svc, nil)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/tank/latest", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Full"`)
}

func TestTankHistoryParsesLimit(t *testing.T) {
	svc := &stubTankService{history: []tank.ReadingDTO{}}
	handler := TankHistory(svc, nil)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/tank/history?limit=25", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 25, svc.gotLimit)
}

func TestTankHistoryRejectsBadLimit(t *testing.T) {
	handler := TankHistory(&stubTankService{}, nil)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/tank/history?limit=abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), string(pkgerrors.CodeValidation))
}

func TestTankAlerts(t *testing.T) {
	svc := &stubTankService{alerts: []tank.AlertDTO{{
		Type:      "overheating",
		Message:   "Machine temperature is 57.0°C",
		MachineID: "VB-0001",
		Location:  "Barangay 171",
		Timestamp: time.Now(),
	}}}
	handler := TankAlerts(svc, nil)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/tank/alerts", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "overheating")
	assert.Contains(t, rec.Body.String(), "VB-0001")
}

func TestTankRecordReading(t *testing.T) {
	svc := &stubTankService{recorded: &tank.ReadingDTO{Status: "Normal", Level: 40}}
	handler := TankRecordReading(svc, nil)

	body := `{"status":"Normal","level":40,"temperature":31.5}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tank/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	handler(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Normal", svc.gotRecord.Status)
	assert.Equal(t, 40.0, svc.gotRecord.Level)
}

func TestTankRecordReadingAcceptsMissingStatus(t *testing.T) {
	svc := &stubTankService{recorded: &tank.ReadingDTO{Status: "Unknown"}}
	handler := TankRecordReading(svc, nil)

	body := `{"level":40,"temperature":31.5}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tank/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	handler(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestTankRecordReadingRejectsOutOfRange(t *testing.T) {
	handler := TankRecordReading(&stubTankService{}, nil)

	body := `{"status":"Normal","level":250,"temperature":31.5}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tank/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
