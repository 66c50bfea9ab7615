package store

import "time"

// RequestStatus is the lifecycle of a support request. NEW and IN_WORK are
// open; CLOSED is the sole terminal status.
type RequestStatus string

const (
	StatusNew    RequestStatus = "NEW"
	StatusInWork RequestStatus = "IN_WORK"
	StatusClosed RequestStatus = "CLOSED"
)

// Contact is the intake contact card for one chat. Fields fill in
// incrementally across dialogue steps.
type Contact struct {
	ID          int64
	PhoneNumber string
	FirstName   string
	LastName    string
	UserID      int64
	Username    string
	Email       string
}

// ContactPatch is a partial contact update: zero-valued fields are absent
// and never overwrite stored values.
type ContactPatch struct {
	PhoneNumber string
	FirstName   string
	LastName    string
	UserID      int64
	Username    string
	Email       string
}

// Request is one support request. Operator is 0 while unassigned.
type Request struct {
	ID          string
	ChatID      int64
	Description string
	Status      RequestStatus
	Operator    int64
}

// RequestPatch is a partial request update; zero-valued fields are absent.
type RequestPatch struct {
	ChatID      int64
	Description string
	Status      RequestStatus
	Operator    int64
}

// Operator is a roster entry. Load counts currently assigned work and drives
// the fairness ordering.
type Operator struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	Adder     string
	AddedAt   time.Time
	Load      int
	ChatID    int64
}

// Admin is a roster entry; only super-admins manage other admins.
type Admin struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
	IsSuper   bool
	Adder     string
	AddedAt   time.Time
	ChatID    int64
}
