package model

import "time"

// Entitlement is the premium flag and its optional expiration.
type Entitlement struct {
	Granted   bool       `json:"granted"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// ActiveAt reports whether the entitlement is in force at now.
func (e Entitlement) ActiveAt(now time.Time) bool {
	if !e.Granted {
		return false
	}
	return e.ExpiresAt == nil || !now.After(*e.ExpiresAt)
}
