package jobs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_seek/internal/engine/frame"
)

func TestParseSalary(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		typ    string
		want   SalaryBounds
		wantOK bool
	}{
		{"annual exact", "$85,000", "AnnualPackage", SalaryBounds{85000, 85000, 85000}, true},
		{"annual thousands", "85", "AnnualPackage", SalaryBounds{85000, 85000, 85000}, true},
		{"annual range", "$90k - $110k + super", "AnnualPackage", SalaryBounds{90000, 110000, 100000}, true},
		{"hourly", "40.00 per hour", "HourlyRate", SalaryBounds{83200, 83200, 83200}, true},
		{"hourly range before period", "$35 - $45 p.h.", "HourlyRate", SalaryBounds{72800, 93600, 83200}, true},
		{"hourly overflow dropped", "$5000000000000 or $40 per hour", "HourlyRate", SalaryBounds{83200, 83200, 83200}, true},
		{"hourly overflow only", "5000000000000", "HourlyRate", SalaryBounds{}, false},
		{"below floor", "$20,000", "AnnualPackage", SalaryBounds{}, false},
		{"unknown type", "$85,000", "", SalaryBounds{}, false},
		{"no digits", "competitive", "AnnualPackage", SalaryBounds{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSalary(tt.text, tt.typ)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractSalary(t *testing.T) {
	jobs := &frame.Frame{
		Columns: []string{"job_id", "salary", "salary_type"},
		Rows: []frame.Row{
			{"job_id": int64(1), "salary": "$85,000", "salary_type": "AnnualPackage"},
			{"job_id": int64(2), "salary": "40.00 per hour", "salary_type": "HourlyRate"},
			{"job_id": int64(3), "salary": "Great culture", "salary_type": "AnnualPackage"},
			{"job_id": int64(4), "salary": nil, "salary_type": "AnnualPackage"},
			{"job_id": int64(5), "salary": "$90,000", "salary_type": nil},
		},
	}

	got, err := ExtractSalary(jobs)
	require.NoError(t, err)
	require.Equal(t, 5, got.Len())
	assert.True(t, got.Has(ColSalaryMid))

	assert.Equal(t, int64(85000), got.Rows[0][ColSalaryLower])
	assert.Equal(t, int64(85000), got.Rows[0][ColSalaryUpper])
	assert.Equal(t, 85000.0, got.Rows[0][ColSalaryMid])
	assert.Equal(t, int64(83200), got.Rows[1][ColSalaryLower])
	for _, i := range []int{2, 3, 4} {
		assert.Nil(t, got.Rows[i][ColSalaryLower], "row %d", i)
	}
}

func TestExtractSalaryMissingColumns(t *testing.T) {
	_, err := ExtractSalary(frame.New("job_id", "salary"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, frame.ErrMissingColumns))
	assert.Contains(t, err.Error(), "salary_type")
}
