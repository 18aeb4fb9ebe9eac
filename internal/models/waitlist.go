package models

import (
	"time"

	"gorm.io/gorm"
)

// SourceWebsite tags signups that came through the marketing site.
const SourceWebsite = "website"

// WaitlistEntry is one enrolled email with its issued access code.
// Email is stored normalized (trimmed, lowercased) and is the
// uniqueness key for the whole enrollment workflow.
type WaitlistEntry struct {
	gorm.Model
	Email      string `gorm:"not null;uniqueIndex"`
	AccessCode string `gorm:"not null"`
	Source     string `gorm:"not null"`
	// NotifiedAt is set once, after the welcome email is delivered.
	// nil covers both "not attempted yet" and "attempt failed".
	NotifiedAt *time.Time
}

// ModelRegistry lists every model auto-migrated in development.
var ModelRegistry = []interface{}{
	&WaitlistEntry{},
}
