package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateScan(t *testing.T) {
	want := NewDate(2024, time.May, 1)

	tests := []struct {
		name string
		src  any
	}{
		{"text", "2024-05-01"},
		{"bytes", []byte("2024-05-01")},
		{"rfc3339 text", "2024-05-01T00:00:00Z"},
		{"time", time.Date(2024, 5, 1, 0, 0, 0, 0, time.FixedZone("x", 3600))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, want.String(), d.String())
		})
	}

	var d Date
	assert.Error(t, d.Scan("01/05/2024"))
	assert.Error(t, d.Scan(42))
}

func TestDateValue(t *testing.T) {
	v, err := NewDate(2024, time.May, 1).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", v)
}

func TestParseDateRejectsOtherLayouts(t *testing.T) {
	for _, s := range []string{"", "2024/05/01", "01-05-2024", "2024-13-01", "tomorrow"} {
		_, err := ParseDate(s)
		assert.Error(t, err, s)
	}
}

func TestIdentity(t *testing.T) {
	p := PatientIdentity(&Patient{Email: "a@x.com", Name: "Alice"})
	assert.True(t, p.IsPatient())
	assert.False(t, p.IsDoctor())
	assert.Equal(t, "a@x.com", p.Email())
	assert.Equal(t, "Alice", p.Name())
	assert.Equal(t, "patient", p.Kind.String())

	d := DoctorIdentity(&Doctor{Email: "d@x.com", Name: "Dr Who"})
	assert.True(t, d.IsDoctor())
	assert.Equal(t, "d@x.com", d.Email())
	assert.Equal(t, "Dr Who", d.Name())

	var anon Identity
	assert.False(t, anon.IsPatient())
	assert.False(t, anon.IsDoctor())
	assert.Empty(t, anon.Email())
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindPatient, KindDoctor} {
		assert.Equal(t, k, ParseKind(k.String()))
	}
	assert.Equal(t, Kind(0), ParseKind(""))
	assert.Equal(t, Kind(0), ParseKind("admin"))
}
