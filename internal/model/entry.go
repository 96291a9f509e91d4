package model

import "time"

// UnknownLocation is stored when the location of a capture could not be resolved.
const UnknownLocation = "Unknown Location"

// Entry is one journal record. It is created once by the capture pipeline and
// never updated in place; it is either present exactly as created or absent.
type Entry struct {
	ID        string    `json:"id"`
	Image     string    `json:"image"`
	Location  string    `json:"location"`
	Timestamp time.Time `json:"timestamp"`
}

// Coordinates is a device position in decimal degrees.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Address holds the civic components returned by reverse geocoding.
// Any component may be empty.
type Address struct {
	Name    string `json:"name,omitempty"`
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
}
