package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/cashewph/lending-platform/internal/domain"
)

func completeSnapshot() *domain.SubmitApplicationRequest {
	return &domain.SubmitApplicationRequest{
		PersonalInfo: domain.PersonalInfo{
			FirstName:   "Juan",
			MiddleName:  "Santos",
			LastName:    "Dela Cruz",
			Email:       "juan@example.com",
			Phone:       "+639171234567",
			DateOfBirth: "1990-05-12",
			Address:     "123 Rizal St",
			City:        "Makati",
		},
		EmploymentInfo: domain.EmploymentInfo{
			EmploymentStatus: "employed",
			Company:          "Acme Corp",
			Position:         "Engineer",
			MonthlyIncome:    "45,000",
			EmploymentLength: "3-5",
		},
		LoanInfo: domain.LoanInfo{
			LoanAmount:  "50,000",
			LoanPurpose: "business",
			LoanTerm:    "12-months",
		},
	}
}

var testNow = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

func TestValidateAll_CompleteSnapshotPasses(t *testing.T) {
	v := NewFormValidator(decimal.NewFromInt(5000))
	assert.Equal(t, 0, v.ValidateAll(completeSnapshot(), testNow))
}

func TestValidateStep_Idempotent(t *testing.T) {
	v := NewFormValidator(decimal.NewFromInt(5000))
	snap := completeSnapshot()

	first := v.ValidateStep(2, snap, testNow)
	second := v.ValidateStep(2, snap, testNow)
	assert.True(t, first)
	assert.Equal(t, first, second)
}

func TestValidateStep_PersonalInfo(t *testing.T) {
	v := NewFormValidator(decimal.NewFromInt(5000))

	snap := completeSnapshot()
	snap.PersonalInfo.FirstName = ""
	assert.False(t, v.ValidateStep(1, snap, testNow))

	snap = completeSnapshot()
	snap.PersonalInfo.Email = "not-an-email"
	assert.False(t, v.ValidateStep(1, snap, testNow))

	snap = completeSnapshot()
	snap.PersonalInfo.DateOfBirth = "2050-01-01"
	assert.False(t, v.ValidateStep(1, snap, testNow), "future birth date must fail")
}

func TestValidateStep_LoanAmountFloorInclusive(t *testing.T) {
	v := NewFormValidator(decimal.NewFromInt(5000))

	snap := completeSnapshot()
	snap.LoanInfo.LoanAmount = "4,999"
	assert.False(t, v.ValidateStep(3, snap, testNow))

	snap.LoanInfo.LoanAmount = "5,000"
	assert.True(t, v.ValidateStep(3, snap, testNow), "exactly the minimum must pass")
}

func TestValidateStep_UnknownStepFails(t *testing.T) {
	v := NewFormValidator(decimal.NewFromInt(5000))
	snap := completeSnapshot()

	assert.False(t, v.ValidateStep(0, snap, testNow))
	assert.False(t, v.ValidateStep(4, snap, testNow))
}

func TestValidateAll_ReturnsFirstFailingStep(t *testing.T) {
	v := NewFormValidator(decimal.NewFromInt(5000))

	snap := completeSnapshot()
	snap.EmploymentInfo.MonthlyIncome = "0"
	snap.LoanInfo.LoanAmount = "100"
	assert.Equal(t, 2, v.ValidateAll(snap, testNow))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@b.c"))
	assert.True(t, IsValidEmail("juan.delacruz@mail.example.ph"))
	assert.False(t, IsValidEmail("a@b"))
	assert.False(t, IsValidEmail("a.com"))
	assert.False(t, IsValidEmail("a @b.c"))
	assert.False(t, IsValidEmail(""))
}

func TestParseLoanTerm(t *testing.T) {
	months, ok := ParseLoanTerm("12-months")
	assert.True(t, ok)
	assert.Equal(t, 12, months)

	_, ok = ParseLoanTerm("13-months")
	assert.False(t, ok)

	_, ok = ParseLoanTerm("")
	assert.False(t, ok)
}

func TestYearsFromEmploymentLength(t *testing.T) {
	assert.True(t, YearsFromEmploymentLength("less-than-1").Equal(decimal.NewFromFloat(0.5)))
	assert.True(t, YearsFromEmploymentLength("1-2").Equal(decimal.NewFromFloat(1.5)))
	assert.True(t, YearsFromEmploymentLength("3-5").Equal(decimal.NewFromInt(4)))
	assert.True(t, YearsFromEmploymentLength("5-plus").Equal(decimal.NewFromInt(5)))
}
