package store

import (
	"context"
	"fmt"

	"hospital-portal/internal/model"
)

const appointmentColumns = `id, patient_name, description, date, patient_email, doctor_email`

// CreateAppointment inserts a and sets its generated ID.
func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO appointments (patient_name, description, date, patient_email, doctor_email)
		 VALUES ($1,$2,$3,$4,$5) RETURNING id`,
		a.PatientName, a.Description, a.Date, a.PatientEmail, a.DoctorEmail,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

func (s *Store) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	apts, err := s.listAppointments(ctx, s.db,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(apts) == 0 {
		return nil, ErrNotFound
	}
	return &apts[0], nil
}

// ListAppointments returns every appointment in insertion order.
func (s *Store) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	return s.listAppointments(ctx, s.db,
		`SELECT `+appointmentColumns+` FROM appointments ORDER BY id`)
}

func (s *Store) ListPatientAppointments(ctx context.Context, patientEmail string) ([]model.Appointment, error) {
	return s.listAppointments(ctx, s.db,
		`SELECT `+appointmentColumns+` FROM appointments WHERE patient_email = $1 ORDER BY id`,
		patientEmail)
}

func (s *Store) ListDoctorAppointments(ctx context.Context, doctorEmail string) ([]model.Appointment, error) {
	return s.listAppointments(ctx, s.db,
		`SELECT `+appointmentColumns+` FROM appointments WHERE doctor_email = $1 ORDER BY id`,
		doctorEmail)
}

func (s *Store) listAppointments(ctx context.Context, q dbtx, query string, args ...any) ([]model.Appointment, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(
			&a.ID, &a.PatientName, &a.Description, &a.Date, &a.PatientEmail, &a.DoctorEmail,
		); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

// DeleteAppointment removes the appointment with id. A missing id is not an
// error.
func (s *Store) DeleteAppointment(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

// AssignDoctor links the appointment to the doctor and records the doctor as
// the owning patient's assigned doctor.
func (s *Store) AssignDoctor(ctx context.Context, id int64, doctorEmail string) error {
	return s.withTx(ctx, func(tx dbtx) error {
		apts, err := s.listAppointments(ctx, tx,
			`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if len(apts) == 0 {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE appointments SET doctor_email = $1 WHERE id = $2`, doctorEmail, id,
		); err != nil {
			return fmt.Errorf("assign doctor: %w", err)
		}

		if pe := apts[0].PatientEmail; pe != nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE patients SET assigned_doctor_email = $1 WHERE email = $2`, doctorEmail, *pe,
			); err != nil {
				return fmt.Errorf("assign doctor: %w", err)
			}
		}
		return nil
	})
}
