package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

type Patient struct {
	Email               string
	Name                string
	PasswordHash        string
	AssignedDoctorEmail *string
}

type Doctor struct {
	Email        string
	Name         string
	PasswordHash string
	IsDoctor     bool
}

type Appointment struct {
	ID           int64
	PatientName  string
	Description  string
	Date         Date
	PatientEmail *string
	DoctorEmail  *string
}

// Kind tags which record an Identity carries.
type Kind int

const (
	KindPatient Kind = iota + 1
	KindDoctor
)

func (k Kind) String() string {
	switch k {
	case KindPatient:
		return "patient"
	case KindDoctor:
		return "doctor"
	}
	return "unknown"
}

// ParseKind is the inverse of Kind.String. Anything else, including "",
// yields the zero Kind.
func ParseKind(s string) Kind {
	switch s {
	case "patient":
		return KindPatient
	case "doctor":
		return KindDoctor
	}
	return 0
}

// Identity is the authenticated principal: exactly one of Patient or Doctor
// is set, matching Kind.
type Identity struct {
	Kind    Kind
	Patient *Patient
	Doctor  *Doctor
}

func PatientIdentity(p *Patient) Identity { return Identity{Kind: KindPatient, Patient: p} }

func DoctorIdentity(d *Doctor) Identity { return Identity{Kind: KindDoctor, Doctor: d} }

func (i Identity) IsPatient() bool { return i.Kind == KindPatient && i.Patient != nil }

func (i Identity) IsDoctor() bool { return i.Kind == KindDoctor && i.Doctor != nil }

func (i Identity) Email() string {
	switch {
	case i.IsPatient():
		return i.Patient.Email
	case i.IsDoctor():
		return i.Doctor.Email
	}
	return ""
}

func (i Identity) Name() string {
	switch {
	case i.IsPatient():
		return i.Patient.Name
	case i.IsDoctor():
		return i.Doctor.Name
	}
	return ""
}

const DateLayout = "2006-01-02"

// Date is a calendar day. It is stored as YYYY-MM-DD text so the same value
// round-trips through SQLite TEXT and Postgres DATE columns.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string { return d.Format(DateLayout) }

func (d Date) Value() (driver.Value, error) { return d.String(), nil }

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = NewDate(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		return d.parsePrefix(v)
	case []byte:
		return d.parsePrefix(string(v))
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("date: cannot scan %T", src)
}

// drivers may hand back "2024-05-01T00:00:00Z" or "2024-05-01 00:00:00"
func (d *Date) parsePrefix(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	*d = parsed
	return nil
}
