package models

import (
	"database/sql/driver"
	"fmt"
)

// --- Role Enum ---
type Role string

const (
	RoleHirer    Role = "hirer"
	RoleProvider Role = "provider"
)

func (r Role) Valid() bool { return r == RoleHirer || r == RoleProvider }

// Scan implements the sql.Scanner interface for Role
func (r *Role) Scan(value interface{}) error {
	s, err := scanString("Role", value)
	if err != nil {
		return err
	}
	v := Role(s)
	if !v.Valid() {
		return fmt.Errorf("invalid Role value: %s", s)
	}
	*r = v
	return nil
}

// Value implements the driver.Valuer interface for Role
func (r Role) Value() (driver.Value, error) { return string(r), nil }

// --- Job Status Enum ---
type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusAssigned   JobStatus = "assigned"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusOpen, JobStatusAssigned, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

// HasProvider reports whether a job in status s must carry an assigned provider.
func (s JobStatus) HasProvider() bool {
	return s == JobStatusAssigned || s == JobStatusInProgress || s == JobStatusCompleted
}

// CanTransition reports whether the lifecycle allows moving from s to next.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch s {
	case JobStatusOpen:
		return next == JobStatusAssigned || next == JobStatusCancelled
	case JobStatusAssigned:
		return next == JobStatusInProgress || next == JobStatusCancelled
	case JobStatusInProgress:
		return next == JobStatusCompleted
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for JobStatus
func (s *JobStatus) Scan(value interface{}) error {
	str, err := scanString("JobStatus", value)
	if err != nil {
		return err
	}
	v := JobStatus(str)
	if !v.Valid() {
		return fmt.Errorf("invalid JobStatus value: %s", str)
	}
	*s = v
	return nil
}

// Value implements the driver.Valuer interface for JobStatus
func (s JobStatus) Value() (driver.Value, error) { return string(s), nil }

// --- Budget Type Enum ---
type BudgetType string

const (
	BudgetFixed  BudgetType = "fixed"
	BudgetHourly BudgetType = "hourly"
)

func (b BudgetType) Valid() bool { return b == BudgetFixed || b == BudgetHourly }

// Scan implements the sql.Scanner interface for BudgetType
func (b *BudgetType) Scan(value interface{}) error {
	s, err := scanString("BudgetType", value)
	if err != nil {
		return err
	}
	v := BudgetType(s)
	if !v.Valid() {
		return fmt.Errorf("invalid BudgetType value: %s", s)
	}
	*b = v
	return nil
}

// Value implements the driver.Valuer interface for BudgetType
func (b BudgetType) Value() (driver.Value, error) { return string(b), nil }

// --- Application Status Enum ---
type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

func (a ApplicationStatus) Valid() bool {
	return a == ApplicationPending || a == ApplicationAccepted || a == ApplicationRejected
}

// Scan implements the sql.Scanner interface for ApplicationStatus
func (a *ApplicationStatus) Scan(value interface{}) error {
	s, err := scanString("ApplicationStatus", value)
	if err != nil {
		return err
	}
	v := ApplicationStatus(s)
	if !v.Valid() {
		return fmt.Errorf("invalid ApplicationStatus value: %s", s)
	}
	*a = v
	return nil
}

// Value implements the driver.Valuer interface for ApplicationStatus
func (a ApplicationStatus) Value() (driver.Value, error) { return string(a), nil }

// --- Payment Status Enum ---
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
)

// Scan implements the sql.Scanner interface for PaymentStatus
func (p *PaymentStatus) Scan(value interface{}) error {
	s, err := scanString("PaymentStatus", value)
	if err != nil {
		return err
	}
	v := PaymentStatus(s)
	if v != PaymentPending && v != PaymentCompleted {
		return fmt.Errorf("invalid PaymentStatus value: %s", s)
	}
	*p = v
	return nil
}

// Value implements the driver.Valuer interface for PaymentStatus
func (p PaymentStatus) Value() (driver.Value, error) { return string(p), nil }

func scanString(typ string, value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("failed to scan %s: value is not string or []byte", typ)
	}
}
