package domain

import (
	"strings"
	"time"
)

// Kind distinguishes the entity types the onboarding workflow can create.
type Kind string

const (
	KindSupervisor Kind = "supervisor"
	KindDriver     Kind = "driver"
)

func (k Kind) String() string { return string(k) }

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Location is the council/district/ward path an entity is filed under.
type Location struct {
	Council  string
	District string
	Ward     string
}

// Normalize trims every segment and lower-cases the council so that supervisors and
// their drivers always resolve the same directory path.
func (l Location) Normalize() Location {
	return Location{
		Council:  strings.ToLower(strings.TrimSpace(l.Council)),
		District: strings.TrimSpace(l.District),
		Ward:     strings.TrimSpace(l.Ward),
	}
}

func (l Location) String() string {
	return l.Council + "/" + l.District + "/" + l.Ward
}

// Entity is the domain representation of an onboarded supervisor or driver.
type Entity struct {
	ID   EntityID
	Kind Kind

	Name       string
	NationalID string
	// Email is optional; nil means unset.
	Email *string
	// PhoneNumber is stored in international format; nil means unset.
	PhoneNumber *string

	Location Location

	// Driver-only fields.
	LicensePlate string
	SupervisorID EntityID

	Status             Status
	MustChangePassword bool

	CreatedAt time.Time
	CreatedBy SubjectID
}
