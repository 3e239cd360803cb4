package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hospital-portal/internal/model"
)

func (s *Store) CreatePatient(ctx context.Context, p *model.Patient) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO patients (email, name, password_hash, assigned_doctor_email) VALUES ($1,$2,$3,$4)`,
		p.Email, p.Name, p.PasswordHash, p.AssignedDoctorEmail,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

func (s *Store) PatientByEmail(ctx context.Context, email string) (*model.Patient, error) {
	p := &model.Patient{}
	err := s.db.QueryRowContext(ctx,
		`SELECT email, name, password_hash, assigned_doctor_email
		 FROM patients WHERE email = $1`, email,
	).Scan(&p.Email, &p.Name, &p.PasswordHash, &p.AssignedDoctorEmail)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patient by email: %w", err)
	}
	return p, nil
}

// DeletePatient removes the patient; their appointments go with them.
func (s *Store) DeletePatient(ctx context.Context, email string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM patients WHERE email = $1`, email); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	return nil
}

func (s *Store) CreateDoctor(ctx context.Context, d *model.Doctor) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO doctors (email, name, password_hash, is_doctor) VALUES ($1,$2,$3,$4)`,
		d.Email, d.Name, d.PasswordHash, d.IsDoctor,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create doctor: %w", err)
	}
	return nil
}

func (s *Store) DoctorByEmail(ctx context.Context, email string) (*model.Doctor, error) {
	d := &model.Doctor{}
	err := s.db.QueryRowContext(ctx,
		`SELECT email, name, password_hash, is_doctor
		 FROM doctors WHERE email = $1`, email,
	).Scan(&d.Email, &d.Name, &d.PasswordHash, &d.IsDoctor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("doctor by email: %w", err)
	}
	return d, nil
}

// DeleteDoctor removes the doctor and their appointments. Patients assigned
// to the doctor keep their record with the assignment cleared.
func (s *Store) DeleteDoctor(ctx context.Context, email string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM doctors WHERE email = $1`, email); err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	return nil
}

// ResolveIdentity maps a session email to the patient or doctor it names.
// Emails are unique per kind only; when both kinds share one, the patient wins.
func (s *Store) ResolveIdentity(ctx context.Context, email string) (model.Identity, error) {
	if email == "" {
		return model.Identity{}, ErrNotFound
	}
	p, err := s.PatientByEmail(ctx, email)
	if err == nil {
		return model.PatientIdentity(p), nil
	}
	if !errors.Is(err, ErrNotFound) {
		return model.Identity{}, err
	}
	d, err := s.DoctorByEmail(ctx, email)
	if err != nil {
		return model.Identity{}, err
	}
	return model.DoctorIdentity(d), nil
}
