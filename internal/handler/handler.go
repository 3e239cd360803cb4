package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"hospital-portal/internal/logging"
	"hospital-portal/internal/middleware"
	"hospital-portal/internal/model"
	"hospital-portal/internal/session"
	"hospital-portal/internal/web"
)

type Store interface {
	CreatePatient(ctx context.Context, p *model.Patient) error
	PatientByEmail(ctx context.Context, email string) (*model.Patient, error)
	CreateDoctor(ctx context.Context, d *model.Doctor) error
	DoctorByEmail(ctx context.Context, email string) (*model.Doctor, error)
	ResolveIdentity(ctx context.Context, email string) (model.Identity, error)

	CreateAppointment(ctx context.Context, a *model.Appointment) error
	ListAppointments(ctx context.Context) ([]model.Appointment, error)
	ListPatientAppointments(ctx context.Context, patientEmail string) ([]model.Appointment, error)
	ListDoctorAppointments(ctx context.Context, doctorEmail string) ([]model.Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error
	AssignDoctor(ctx context.Context, id int64, doctorEmail string) error
}

type Handler struct {
	store    Store
	sessions *session.Manager
	views    *web.Renderer
	log      logging.Logger
}

func New(st Store, sessions *session.Manager, views *web.Renderer, log logging.Logger) *Handler {
	return &Handler{store: st, sessions: sessions, views: views, log: log}
}

// Routes wires every page onto a router wrapped in recovery, request
// logging and identity loading.
func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(
		middleware.Recover(h.log),
		middleware.Logging(h.log),
		middleware.Identity(h.sessions, h.store, h.log),
	)

	patientOnly := middleware.RequirePatient(patientRole.loginPath)
	doctorOnly := middleware.RequireDoctor(doctorRole.loginPath)
	loggedIn := middleware.RequireLogin(patientRole.loginPath)

	r.HandleFunc("/", h.Home).Methods(http.MethodGet)

	r.HandleFunc("/patientSignup", h.PatientSignup).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/patientLogin", h.PatientLogin).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/doctorSignup", h.DoctorSignup).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/doctorLogin", h.DoctorLogin).Methods(http.MethodGet, http.MethodPost)
	r.Handle("/logout", loggedIn(http.HandlerFunc(h.Logout))).Methods(http.MethodGet)

	r.Handle("/appointment", patientOnly(http.HandlerFunc(h.Appointment))).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/seeApp", h.SeeAll).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/delete/{id:[0-9]+}", h.Delete).Methods(http.MethodGet)
	r.HandleFunc("/delete1/{id:[0-9]+}", h.DeleteFromAll).Methods(http.MethodGet)

	r.Handle("/doctorAppointments", doctorOnly(http.HandlerFunc(h.DoctorAppointments))).Methods(http.MethodGet)
	r.Handle("/assign/{id:[0-9]+}", doctorOnly(http.HandlerFunc(h.Assign))).Methods(http.MethodPost)

	return r
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "index.html", web.Page{})
}

// render fills in the current identity (unless the page already carries
// one) and the pending flashes, then writes the page. now are flashes raised
// by this very request.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, p web.Page, now ...session.Flash) {
	if p.Identity.Kind == 0 {
		p.Identity, _ = middleware.FromContext(r.Context())
	}
	p.Flashes = append(h.sessions.Flashes(w, r), now...)
	if err := h.views.Render(w, http.StatusOK, page, p); err != nil {
		h.serverError(w, r, err)
	}
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, to string, flashes ...session.Flash) {
	for _, f := range flashes {
		if err := h.sessions.AddFlash(w, r, f); err != nil {
			h.log.Warn(r.Context(), "flash dropped", "msg", f.Message, "err", err)
		}
	}
	http.Redirect(w, r, to, http.StatusFound)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// appointmentID reads the {id} route variable; the route pattern already
// guarantees digits.
func appointmentID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}
