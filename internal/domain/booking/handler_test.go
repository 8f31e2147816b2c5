package booking

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func postJSON(t *testing.T, h echo.HandlerFunc, body string) *echo.HTTPError {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h(c)
	if err == nil {
		return nil
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("expected *echo.HTTPError, got %T: %v", err, err)
	}
	return httpErr
}

func TestBookHandler_LimitExceededIs409(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	dentist := f.reg.addDentist()
	for _, slot := range weekSlots() {
		f.mustBook(t, f.reg.addPatient().ID, dentist.ID, slot)
	}
	patient := f.reg.addPatient()

	body := `{"type":"checkup","start_time":"2024-06-07T11:00:00Z","patient_id":"` +
		patient.ID.String() + `","dentist_id":"` + dentist.ID.String() +
		`","location_id":"` + f.loc.ID.String() + `"}`
	httpErr := postJSON(t, h.Book, body)
	if httpErr == nil || httpErr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", httpErr)
	}
	if !strings.Contains(httpErr.Message.(string), "Appointment Limit Exceeded") {
		t.Errorf("expected limit message, got %v", httpErr.Message)
	}
}

func TestBookHandler_OutstandingBillsIs409(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	patient := f.reg.addPatient()
	dentist := f.reg.addDentist()
	f.bills.outstanding[patient.ID] = 1

	body := `{"type":"checkup","start_time":"2024-06-04T10:00:00Z","patient_id":"` +
		patient.ID.String() + `","dentist_id":"` + dentist.ID.String() +
		`","location_id":"` + f.loc.ID.String() + `"}`
	httpErr := postJSON(t, h.Book, body)
	if httpErr == nil || httpErr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %v", httpErr)
	}
	if !strings.Contains(httpErr.Message.(string), "Outstanding Bills") {
		t.Errorf("expected bill message, got %v", httpErr.Message)
	}
}

func TestBookHandler_ValidationIs400(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	patient := f.reg.addPatient()
	dentist := f.reg.addDentist()

	// Sunday slot
	body := `{"type":"checkup","start_time":"2024-06-02T10:00:00Z","patient_id":"` +
		patient.ID.String() + `","dentist_id":"` + dentist.ID.String() +
		`","location_id":"` + f.loc.ID.String() + `"}`
	httpErr := postJSON(t, h.Book, body)
	if httpErr == nil || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", httpErr)
	}
}

func TestBookHandler_Success(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)
	patient := f.reg.addPatient()
	dentist := f.reg.addDentist()

	e := echo.New()
	body := `{"type":"checkup","start_time":"2024-06-04T10:00:00Z","patient_id":"` +
		patient.ID.String() + `","dentist_id":"` + dentist.ID.String() +
		`","location_id":"` + f.loc.ID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Book(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"pending"`) {
		t.Errorf("expected pending status in response, got %s", rec.Body.String())
	}
}
