package handler

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	"hospital-portal/internal/auth"
	"hospital-portal/internal/model"
	"hospital-portal/internal/session"
	"hospital-portal/internal/store"
	"hospital-portal/internal/web"
)

const (
	msgUserExists       = "User already exists!"
	msgNameTooShort     = "Name must be greater than 2 characters!"
	msgEmailTooShort    = "Email must be greater than 4 characters!"
	msgPasswordTooShort = "Password must be greater than 4 characters!"
	msgPasswordMismatch = "Passwords do not match!"
	msgAccountCreated   = "Account created!"
	msgNoSuchUser       = "User does not exist!"
	msgBadPassword      = "Password is incorrect!"
)

// role holds what differs between the patient and doctor account flows:
// form field names, templates and paths.
type role struct {
	kind          model.Kind
	nameField     string
	passwordField string
	confirmField  string
	signupPage    string
	loginPage     string
	signupPath    string
	loginPath     string
}

var (
	patientRole = role{
		kind:          model.KindPatient,
		nameField:     "pName",
		passwordField: "pPassword1",
		confirmField:  "pPassword2",
		signupPage:    "patientSignup.html",
		loginPage:     "patientLogin.html",
		signupPath:    "/patientSignup",
		loginPath:     "/patientLogin",
	}
	doctorRole = role{
		kind:          model.KindDoctor,
		nameField:     "dName",
		passwordField: "dPassword1",
		confirmField:  "dPassword2",
		signupPage:    "doctorSignup.html",
		loginPage:     "doctorLogin.html",
		signupPath:    "/doctorSignup",
		loginPath:     "/doctorLogin",
	}
)

type signupForm struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// validate returns the first failing rule's message, or "" when the form is
// acceptable.
func (f signupForm) validate() string {
	switch {
	case utf8.RuneCountInString(f.Name) < 3:
		return msgNameTooShort
	case utf8.RuneCountInString(f.Email) < 5:
		return msgEmailTooShort
	case utf8.RuneCountInString(f.Password) < 5:
		return msgPasswordTooShort
	case f.Password != f.Confirm:
		return msgPasswordMismatch
	}
	return ""
}

func (h *Handler) PatientSignup(w http.ResponseWriter, r *http.Request) { h.signup(w, r, patientRole) }
func (h *Handler) DoctorSignup(w http.ResponseWriter, r *http.Request)  { h.signup(w, r, doctorRole) }
func (h *Handler) PatientLogin(w http.ResponseWriter, r *http.Request)  { h.login(w, r, patientRole) }
func (h *Handler) DoctorLogin(w http.ResponseWriter, r *http.Request)   { h.login(w, r, doctorRole) }

func (h *Handler) signup(w http.ResponseWriter, r *http.Request, rl role) {
	if r.Method != http.MethodPost {
		h.render(w, r, rl.signupPage, web.Page{})
		return
	}

	ctx := r.Context()
	f := signupForm{
		Name:     r.FormValue(rl.nameField),
		Email:    r.FormValue("email"),
		Password: r.FormValue(rl.passwordField),
		Confirm:  r.FormValue(rl.confirmField),
	}

	_, _, err := h.lookup(ctx, rl.kind, f.Email)
	switch {
	case err == nil:
		h.redirect(w, r, rl.loginPath, session.Error(msgUserExists))
		return
	case !errors.Is(err, store.ErrNotFound):
		h.serverError(w, r, err)
		return
	}

	if msg := f.validate(); msg != "" {
		h.render(w, r, rl.signupPage, web.Page{}, session.Error(msg))
		return
	}

	hash, err := auth.HashPassword(f.Password)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	err = h.create(ctx, rl.kind, f, hash)
	if errors.Is(err, store.ErrAlreadyExists) {
		h.redirect(w, r, rl.loginPath, session.Error(msgUserExists))
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if err := h.sessions.Login(ctx, w, f.Email, rl.kind); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.log.Info(ctx, "account created", "kind", rl.kind, "email", f.Email)
	h.redirect(w, r, "/", session.Success(msgAccountCreated))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, rl role) {
	if r.Method != http.MethodPost {
		h.render(w, r, rl.loginPage, web.Page{})
		return
	}

	ctx := r.Context()
	email := r.FormValue("email")

	id, hash, err := h.lookup(ctx, rl.kind, email)
	if errors.Is(err, store.ErrNotFound) {
		h.redirect(w, r, rl.signupPath, session.Error(msgNoSuchUser))
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	if !auth.CheckPassword(hash, r.FormValue(rl.passwordField)) {
		h.log.Warn(ctx, "bad password", "kind", rl.kind, "email", email)
		h.render(w, r, rl.loginPage, web.Page{}, session.Error(msgBadPassword))
		return
	}

	if err := h.sessions.Login(ctx, w, email, rl.kind); err != nil {
		h.serverError(w, r, err)
		return
	}
	h.log.Info(ctx, "logged in", "kind", rl.kind, "email", email)

	if rl.kind == model.KindDoctor {
		h.renderDoctorAppointments(w, r, id)
		return
	}
	h.renderBooking(w, r, id)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(w, r); err != nil {
		h.log.Warn(r.Context(), "revoke session", "err", err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// lookup loads the account of the given kind, returning it as an identity
// along with its password hash.
func (h *Handler) lookup(ctx context.Context, k model.Kind, email string) (model.Identity, string, error) {
	if k == model.KindDoctor {
		d, err := h.store.DoctorByEmail(ctx, email)
		if err != nil {
			return model.Identity{}, "", err
		}
		return model.DoctorIdentity(d), d.PasswordHash, nil
	}
	p, err := h.store.PatientByEmail(ctx, email)
	if err != nil {
		return model.Identity{}, "", err
	}
	return model.PatientIdentity(p), p.PasswordHash, nil
}

func (h *Handler) create(ctx context.Context, k model.Kind, f signupForm, hash string) error {
	if k == model.KindDoctor {
		return h.store.CreateDoctor(ctx, &model.Doctor{
			Email:        f.Email,
			Name:         f.Name,
			PasswordHash: hash,
			IsDoctor:     true,
		})
	}
	return h.store.CreatePatient(ctx, &model.Patient{
		Email:        f.Email,
		Name:         f.Name,
		PasswordHash: hash,
	})
}
