package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var twelve = decimal.NewFromInt(12)

// CalculateMonthlyPayment calculates the flat-rate monthly payment:
// (Principal + Principal * AnnualRate * Years) / TermMonths, rounded
// to 2 decimal places for currency.
func CalculateMonthlyPayment(principal decimal.Decimal, annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	years := decimal.NewFromInt(int64(termMonths)).Div(twelve)
	totalInterest := principal.Mul(annualRate).Mul(years)
	totalAmount := principal.Add(totalInterest)
	monthly := totalAmount.Div(decimal.NewFromInt(int64(termMonths)))

	return monthly.Round(2)
}

// TotalRepayable returns principal plus flat interest over the term.
func TotalRepayable(principal decimal.Decimal, annualRate decimal.Decimal, termMonths int) decimal.Decimal {
	years := decimal.NewFromInt(int64(termMonths)).Div(twelve)
	return principal.Add(principal.Mul(annualRate).Mul(years)).Round(2)
}

// CalculateDueDate returns the due date for a payment number, one
// month apart starting one month after origination.
func CalculateDueDate(originationDate time.Time, paymentNumber int) time.Time {
	return originationDate.AddDate(0, paymentNumber, 0)
}

// IsDateOverdue checks if a due date has passed relative to now.
func IsDateOverdue(dueDate time.Time, now time.Time) bool {
	return now.After(dueDate)
}

// DaysOverdue returns whole days elapsed since the due date, zero when
// the date is not yet due.
func DaysOverdue(dueDate time.Time, now time.Time) int {
	if !now.After(dueDate) {
		return 0
	}
	return int(now.Sub(dueDate).Hours() / 24)
}

// ParseMoney parses a user-entered currency string, tolerating
// grouping separators and currency symbols ("₱100,000" -> 100000).
func ParseMoney(s string) (decimal.Decimal, error) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return decimal.NewFromString(b.String())
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
