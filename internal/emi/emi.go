// Package emi implements the equated-monthly-installment calculator shown
// on the project detail page.
package emi

import (
	"errors"
	"math"
)

var (
	ErrPrincipal = errors.New("principal must be greater than zero")
	ErrRate      = errors.New("interest rate cannot be negative")
	ErrTenure    = errors.New("tenure must be at least one month")
)

type Breakdown struct {
	Monthly       float64 `json:"monthly"`
	TotalInterest float64 `json:"total_interest"`
	TotalPayable  float64 `json:"total_payable"`
}

// Row is one line of the amortization schedule.
type Row struct {
	Month     int     `json:"month"`
	Principal float64 `json:"principal"`
	Interest  float64 `json:"interest"`
	Balance   float64 `json:"balance"`
}

// round2 rounds to two decimals (paise).
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Calculate returns the EMI breakdown using the standard closed form
// P*r*(1+r)^n / ((1+r)^n - 1), with r the monthly rate. A zero-rate loan
// divides the principal evenly.
func Calculate(principal, annualRatePct float64, months int) (Breakdown, error) {
	if principal <= 0 {
		return Breakdown{}, ErrPrincipal
	}
	if annualRatePct < 0 {
		return Breakdown{}, ErrRate
	}
	if months < 1 {
		return Breakdown{}, ErrTenure
	}

	var monthly float64
	if annualRatePct == 0 {
		monthly = principal / float64(months)
	} else {
		r := annualRatePct / 12 / 100
		factor := math.Pow(1+r, float64(months))
		monthly = principal * r * factor / (factor - 1)
	}

	monthly = round2(monthly)
	total := round2(monthly * float64(months))
	return Breakdown{
		Monthly:       monthly,
		TotalInterest: round2(total - principal),
		TotalPayable:  total,
	}, nil
}

// Schedule returns the month-by-month amortization for the same loan. The
// final row absorbs rounding drift so the balance closes at zero.
func Schedule(principal, annualRatePct float64, months int) ([]Row, error) {
	breakdown, err := Calculate(principal, annualRatePct, months)
	if err != nil {
		return nil, err
	}

	r := annualRatePct / 12 / 100
	balance := principal
	rows := make([]Row, 0, months)
	for m := 1; m <= months; m++ {
		interest := round2(balance * r)
		principalPart := round2(breakdown.Monthly - interest)
		if m == months || principalPart > balance {
			principalPart = round2(balance)
		}
		balance = round2(balance - principalPart)
		rows = append(rows, Row{
			Month:     m,
			Principal: principalPart,
			Interest:  interest,
			Balance:   balance,
		})
	}
	return rows, nil
}
