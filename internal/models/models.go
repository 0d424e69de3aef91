package models

import (
	"fmt"
	"time"
)

// DirectoryEntry represents an account that has messaged the bot
type DirectoryEntry struct {
	AccountID   int64
	DisplayName string
	Handle      string // Telegram username without "@", may be empty
	LastSeenAt  time.Time
}

// Member represents a group member as reported by the messaging gateway
type Member struct {
	AccountID   int64
	DisplayName string
	Handle      string
}

// MemberStatus is the membership state of an account in a group
type MemberStatus string

const (
	StatusActive  MemberStatus = "active"
	StatusLeft    MemberStatus = "left"
	StatusRemoved MemberStatus = "removed"
)

// IsMember reports whether the status counts as current membership
func (s MemberStatus) IsMember() bool {
	return s == StatusActive
}

// Candidate represents an account eligible to receive a broadcast
type Candidate struct {
	AccountID   int64
	DisplayName string
	Handle      string
	IsAdmin     bool
}

// Label returns the human readable name used on selection buttons.
// First name wins, then the handle, then the raw id.
func (c Candidate) Label() string {
	switch {
	case c.DisplayName != "":
		return c.DisplayName
	case c.Handle != "":
		return "@" + c.Handle
	default:
		return fmt.Sprintf("ID %d", c.AccountID)
	}
}

// DeliveryReport summarizes a fan-out
type DeliveryReport struct {
	Delivered int
	Failed    int
}
