package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-portal/internal/model"
	"hospital-portal/internal/session"
)

func TestAllPagesRender(t *testing.T) {
	rd, err := New()
	require.NoError(t, err)

	email := "a@x.com"
	apts := []model.Appointment{{
		ID: 1, PatientName: "Alice", Description: "checkup",
		Date: model.NewDate(2024, time.May, 1), PatientEmail: &email,
	}}
	patient := model.PatientIdentity(&model.Patient{Email: email, Name: "Alice"})
	doctor := model.DoctorIdentity(&model.Doctor{Email: "d@x.com", Name: "Dr Who"})

	pages := map[string]Page{
		"index.html":              {},
		"patientSignup.html":      {},
		"patientLogin.html":       {},
		"doctorSignup.html":       {},
		"doctorLogin.html":        {},
		"home.html":               {Identity: patient, Data: apts},
		"seeApp.html":             {Identity: doctor, Data: apts},
		"doctorAppointments.html": {Identity: doctor, Data: apts},
	}
	for name, p := range pages {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, rd.Render(rec, http.StatusOK, name, p))
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			assert.Contains(t, rec.Body.String(), "<main>")
		})
	}
}

func TestRenderShowsFlashesAndData(t *testing.T) {
	rd, err := New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = rd.Render(rec, http.StatusOK, "seeApp.html", Page{
		Flashes: []session.Flash{session.Error("Password is incorrect!")},
		Data: []model.Appointment{{
			ID: 7, PatientName: "<b>Bob</b>", Description: "flu", Date: model.NewDate(2024, time.June, 2),
		}},
	})
	require.NoError(t, err)

	body := rec.Body.String()
	assert.Contains(t, body, `flash-error`)
	assert.Contains(t, body, "Password is incorrect!")
	assert.Contains(t, body, "2024-06-02")
	assert.Contains(t, body, "/delete1/7")
	assert.Contains(t, body, "&lt;b&gt;Bob&lt;/b&gt;")
	// anonymous viewers get no assign button
	assert.NotContains(t, body, "/assign/7")
}

func TestRenderUnknownPage(t *testing.T) {
	rd, err := New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	assert.Error(t, rd.Render(rec, http.StatusOK, "nope.html", Page{}))
	assert.Equal(t, 0, rec.Body.Len())
}

func TestDoctorCancelLinkNamesDestination(t *testing.T) {
	rd, err := New()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, rd.Render(rec, http.StatusOK, "doctorAppointments.html", Page{
		Identity: model.DoctorIdentity(&model.Doctor{Email: "d@x.com", Name: "Dr Who"}),
		Data:     []model.Appointment{{ID: 3, PatientName: "Alice", Date: model.NewDate(2024, time.May, 1)}},
	}))
	assert.Contains(t, rec.Body.String(), `<a href="/delete1/3">Cancel (opens all appointments)</a>`)
}
