package model

// Package model contains domain models/data structures.
// No business logic here.

// Preferences are the user's presentation settings, persisted next to the journal.
type Preferences struct {
	DarkMode bool `json:"dark_mode"`
}
