package models

type UserRole string

const (
	UserRoleAdmin    UserRole = "ADMIN"
	UserRoleAdjuster UserRole = "ADJUSTER"
	UserRoleUser     UserRole = "USER"
)

func IsAllowedUserRole(r string) bool {
	switch UserRole(r) {
	case UserRoleAdmin, UserRoleAdjuster, UserRoleUser:
		return true
	default:
		return false
	}
}

// Case status transitions are free-form strings; these are the values the UI
// offers, not an enforced state machine.
const (
	CaseStatusOpen    = "OPEN"
	CaseStatusPending = "PENDING"
	CaseStatusClosed  = "CLOSED"
)

type FeeStatus string

const (
	FeeStatusPending  FeeStatus = "PENDING"
	FeeStatusInvoiced FeeStatus = "INVOICED"
	FeeStatusPaid     FeeStatus = "PAID"
	FeeStatusVoid     FeeStatus = "VOID"
)

func IsAllowedFeeStatus(s string) bool {
	switch FeeStatus(s) {
	case FeeStatusPending, FeeStatusInvoiced, FeeStatusPaid, FeeStatusVoid:
		return true
	default:
		return false
	}
}

type CommissionStatus string

const (
	CommissionStatusPending CommissionStatus = "PENDING"
	CommissionStatusPaid    CommissionStatus = "PAID"
	CommissionStatusVoid    CommissionStatus = "VOID"
)

func IsAllowedCommissionStatus(s string) bool {
	switch CommissionStatus(s) {
	case CommissionStatusPending, CommissionStatusPaid, CommissionStatusVoid:
		return true
	default:
		return false
	}
}
