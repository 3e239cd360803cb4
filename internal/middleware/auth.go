package middleware

import (
	"context"
	"errors"
	"net/http"

	"hospital-portal/internal/logging"
	"hospital-portal/internal/model"
	"hospital-portal/internal/store"
)

type ctxKey string

const IdentityKey ctxKey = "identity"

type SessionReader interface {
	Subject(r *http.Request) (email string, kind model.Kind, err error)
}

type IdentityResolver interface {
	PatientByEmail(ctx context.Context, email string) (*model.Patient, error)
	DoctorByEmail(ctx context.Context, email string) (*model.Doctor, error)
	ResolveIdentity(ctx context.Context, email string) (model.Identity, error)
}

// Identity loads the session's patient or doctor into the request context.
// A session only ever resolves to the kind of account it was opened for.
// Requests without a usable session continue anonymously.
func Identity(sessions SessionReader, resolver IdentityResolver, log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, kind, err := sessions.Subject(r)
			if err != nil {
				log.Warn(r.Context(), "session lookup", "err", err)
			}
			if email == "" {
				next.ServeHTTP(w, r)
				return
			}

			id, err := resolve(r.Context(), resolver, email, kind)
			if err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					log.Warn(r.Context(), "resolve identity", "email", email, "err", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), IdentityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolve loads the account of the given kind. Sessions without a kind fall
// back to the patient-first lookup.
func resolve(ctx context.Context, res IdentityResolver, email string, kind model.Kind) (model.Identity, error) {
	switch kind {
	case model.KindPatient:
		p, err := res.PatientByEmail(ctx, email)
		if err != nil {
			return model.Identity{}, err
		}
		return model.PatientIdentity(p), nil
	case model.KindDoctor:
		d, err := res.DoctorByEmail(ctx, email)
		if err != nil {
			return model.Identity{}, err
		}
		return model.DoctorIdentity(d), nil
	}
	return res.ResolveIdentity(ctx, email)
}

func FromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(model.Identity)
	return id, ok
}

// RequireLogin redirects anonymous requests to loginPath.
func RequireLogin(loginPath string) func(http.Handler) http.Handler {
	return guard(loginPath, func(model.Identity) bool { return true })
}

// RequirePatient lets through only requests whose identity is a patient.
func RequirePatient(loginPath string) func(http.Handler) http.Handler {
	return guard(loginPath, model.Identity.IsPatient)
}

// RequireDoctor lets through only requests whose identity is a doctor.
func RequireDoctor(loginPath string) func(http.Handler) http.Handler {
	return guard(loginPath, model.Identity.IsDoctor)
}

func guard(loginPath string, allow func(model.Identity) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromContext(r.Context())
			if !ok || !allow(id) {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
