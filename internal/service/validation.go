package service

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cashewph/lending-platform/internal/domain"
	"github.com/cashewph/lending-platform/pkg/utils"
)

// emailPattern matches the bare shape local@domain.tld; anything
// without a dot after the @ is rejected.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var employmentStatuses = map[string]bool{
	"employed":       true,
	"self-employed":  true,
	"freelancer":     true,
	"business-owner": true,
}

var loanPurposes = map[string]bool{
	"business":           true,
	"personal":           true,
	"education":          true,
	"medical":            true,
	"home-improvement":   true,
	"debt-consolidation": true,
	"other":              true,
}

var loanTermMonths = map[int]bool{6: true, 12: true, 18: true, 24: true, 36: true}

// IsValidEmail reports whether the address is syntactically acceptable.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ParseLoanTerm extracts the month count from a term selection such as
// "12-months".
func ParseLoanTerm(term string) (int, bool) {
	months := 0
	for _, r := range term {
		if r >= '0' && r <= '9' {
			months = months*10 + int(r-'0')
		}
	}
	return months, loanTermMonths[months]
}

// FormValidator gates forward navigation through the application form.
// Each step has a pure predicate over the form snapshot; predicates
// never mutate the snapshot, so repeated evaluation is stable.
type FormValidator struct {
	minLoanAmount decimal.Decimal
}

func NewFormValidator(minLoanAmount decimal.Decimal) *FormValidator {
	return &FormValidator{minLoanAmount: minLoanAmount}
}

type stepPredicate func(snap *domain.SubmitApplicationRequest, now time.Time) bool

// steps returns the ordered predicate list, indexed by step number - 1.
func (v *FormValidator) steps() []stepPredicate {
	return []stepPredicate{
		v.personalInfoComplete,
		v.employmentInfoComplete,
		v.loanInfoComplete,
	}
}

// StepCount returns how many gated steps the form has.
func (v *FormValidator) StepCount() int {
	return len(v.steps())
}

// ValidateStep evaluates one step's predicate. Unknown steps fail.
func (v *FormValidator) ValidateStep(step int, snap *domain.SubmitApplicationRequest, now time.Time) bool {
	preds := v.steps()
	if step < 1 || step > len(preds) {
		return false
	}
	return preds[step-1](snap, now)
}

// ValidateAll evaluates every step in order and returns the first
// failing step, or 0 when the whole snapshot passes.
func (v *FormValidator) ValidateAll(snap *domain.SubmitApplicationRequest, now time.Time) int {
	for i, pred := range v.steps() {
		if !pred(snap, now) {
			return i + 1
		}
	}
	return 0
}

func (v *FormValidator) personalInfoComplete(snap *domain.SubmitApplicationRequest, now time.Time) bool {
	p := snap.PersonalInfo
	if p.FirstName == "" || p.MiddleName == "" || p.LastName == "" || p.Phone == "" {
		return false
	}
	if !IsValidEmail(p.Email) {
		return false
	}

	dob, err := time.Parse("2006-01-02", p.DateOfBirth)
	if err != nil {
		return false
	}
	return !dob.After(now)
}

func (v *FormValidator) employmentInfoComplete(snap *domain.SubmitApplicationRequest, _ time.Time) bool {
	e := snap.EmploymentInfo
	if !employmentStatuses[e.EmploymentStatus] {
		return false
	}

	income, err := utils.ParseMoney(e.MonthlyIncome)
	if err != nil {
		return false
	}
	return income.IsPositive()
}

func (v *FormValidator) loanInfoComplete(snap *domain.SubmitApplicationRequest, _ time.Time) bool {
	l := snap.LoanInfo
	if !loanPurposes[l.LoanPurpose] {
		return false
	}
	if _, ok := ParseLoanTerm(l.LoanTerm); !ok {
		return false
	}

	amount, err := utils.ParseMoney(l.LoanAmount)
	if err != nil {
		return false
	}
	// Floor is inclusive: exactly the minimum passes.
	return amount.GreaterThanOrEqual(v.minLoanAmount)
}

// YearsFromEmploymentLength maps the form's employment length buckets
// to a numeric years-employed value.
func YearsFromEmploymentLength(bucket string) decimal.Decimal {
	switch bucket {
	case "less-than-1":
		return decimal.NewFromFloat(0.5)
	case "1-2":
		return decimal.NewFromFloat(1.5)
	case "3-5":
		return decimal.NewFromInt(4)
	default:
		return decimal.NewFromInt(5)
	}
}
