package service

import (
	"time"

	"librarydesk/internal/config"
	"librarydesk/internal/model"
)

// Policy holds the configurable lending rules.
type Policy struct {
	LoanPeriod          time.Duration
	UserMaxBorrow       int
	AdminMaxBorrow      int
	AllowDuplicateLoans bool
}

// DefaultPolicy is a 30 day loan with limits of 5 for users and 10 for admins.
func DefaultPolicy() Policy {
	return Policy{
		LoanPeriod:     30 * 24 * time.Hour,
		UserMaxBorrow:  5,
		AdminMaxBorrow: 10,
	}
}

// PolicyFromConfig builds the policy from LOAN_PERIOD_DAYS and the borrow limit settings.
func PolicyFromConfig(cfg *config.Config) Policy {
	p := DefaultPolicy()
	if cfg.LoanPeriodDays > 0 {
		p.LoanPeriod = time.Duration(cfg.LoanPeriodDays) * 24 * time.Hour
	}
	if cfg.UserMaxBorrow > 0 {
		p.UserMaxBorrow = cfg.UserMaxBorrow
	}
	if cfg.AdminMaxBorrow > 0 {
		p.AdminMaxBorrow = cfg.AdminMaxBorrow
	}
	p.AllowDuplicateLoans = cfg.AllowDuplicateLoans
	return p
}

// MaxBorrowFor returns the default limit for role.
func (p Policy) MaxBorrowFor(role string) int {
	if role == model.RoleAdmin {
		return p.AdminMaxBorrow
	}
	return p.UserMaxBorrow
}

// limitFor prefers the limit stored on the user at registration.
func (p Policy) limitFor(u *model.User) int {
	if u.MaxBorrow > 0 {
		return u.MaxBorrow
	}
	return p.MaxBorrowFor(u.Role)
}
