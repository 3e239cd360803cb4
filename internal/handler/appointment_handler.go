package handler

import (
	"errors"
	"net/http"
	"strings"

	"hospital-portal/internal/middleware"
	"hospital-portal/internal/model"
	"hospital-portal/internal/session"
	"hospital-portal/internal/store"
	"hospital-portal/internal/web"
)

const (
	msgBadDate            = "Date must be in YYYY-MM-DD format!"
	msgNameRequired       = "Name is required!"
	msgDescriptionMissing = "Please describe the problem!"
	msgNoSuchAppointment  = "Appointment does not exist!"
	msgAssigned           = "Appointment assigned to you!"
)

// Appointment shows the patient's own appointments and books new ones.
// RequirePatient guarantees a patient identity in the context.
func (h *Handler) Appointment(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.FromContext(r.Context())
	if r.Method == http.MethodPost {
		h.book(w, r, id)
		return
	}
	h.renderBooking(w, r, id)
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request, id model.Identity) {
	ctx := r.Context()
	name := r.FormValue("name")
	desc := r.FormValue("message")

	date, err := model.ParseDate(r.FormValue("date"))
	switch {
	case err != nil:
		h.redirect(w, r, "/appointment", session.Error(msgBadDate))
		return
	case strings.TrimSpace(name) == "":
		h.redirect(w, r, "/appointment", session.Error(msgNameRequired))
		return
	case strings.TrimSpace(desc) == "":
		h.redirect(w, r, "/appointment", session.Error(msgDescriptionMissing))
		return
	}

	email := id.Email()
	a := &model.Appointment{
		PatientName:  name,
		Description:  desc,
		Date:         date,
		PatientEmail: &email,
	}
	if err := h.store.CreateAppointment(ctx, a); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.log.Info(ctx, "appointment booked", "id", a.ID, "patient", email, "date", a.Date.String())
	h.redirect(w, r, "/appointment")
}

func (h *Handler) renderBooking(w http.ResponseWriter, r *http.Request, id model.Identity) {
	apts, err := h.store.ListPatientAppointments(r.Context(), id.Email())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, "home.html", web.Page{Title: "Appointments", Identity: id, Data: apts})
}

// SeeAll lists every appointment regardless of who is asking.
func (h *Handler) SeeAll(w http.ResponseWriter, r *http.Request) {
	apts, err := h.store.ListAppointments(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, "seeApp.html", web.Page{Title: "All appointments", Data: apts})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.deleteAndRedirect(w, r, "/appointment")
}

func (h *Handler) DeleteFromAll(w http.ResponseWriter, r *http.Request) {
	h.deleteAndRedirect(w, r, "/seeApp")
}

// deleteAndRedirect removes the appointment named in the path. There is no
// ownership check and a missing id is a no-op.
func (h *Handler) deleteAndRedirect(w http.ResponseWriter, r *http.Request, to string) {
	aid, ok := appointmentID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.store.DeleteAppointment(r.Context(), aid); err != nil {
		h.serverError(w, r, err)
		return
	}
	who, _ := middleware.FromContext(r.Context())
	h.log.Info(r.Context(), "appointment deleted", "id", aid, "by", who.Email())
	http.Redirect(w, r, to, http.StatusFound)
}

func (h *Handler) DoctorAppointments(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.FromContext(r.Context())
	h.renderDoctorAppointments(w, r, id)
}

func (h *Handler) renderDoctorAppointments(w http.ResponseWriter, r *http.Request, id model.Identity) {
	apts, err := h.store.ListDoctorAppointments(r.Context(), id.Email())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, "doctorAppointments.html", web.Page{Title: "My appointments", Identity: id, Data: apts})
}

// Assign attaches the appointment to the signed-in doctor.
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	aid, ok := appointmentID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()
	id, _ := middleware.FromContext(ctx)

	err := h.store.AssignDoctor(ctx, aid, id.Email())
	switch {
	case errors.Is(err, store.ErrNotFound):
		h.redirect(w, r, "/doctorAppointments", session.Error(msgNoSuchAppointment))
	case err != nil:
		h.serverError(w, r, err)
	default:
		h.log.Info(ctx, "appointment assigned", "id", aid, "doctor", id.Email())
		h.redirect(w, r, "/doctorAppointments", session.Success(msgAssigned))
	}
}
