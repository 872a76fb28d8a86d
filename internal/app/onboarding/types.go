package onboarding

import (
	"regexp"
	"strings"

	"github.com/vatelanka/waste-admin-api/internal/domain"
)

// Input is the raw onboarding payload. Strings are trimmed by the workflow.
type Input struct {
	Name       string
	NationalID string
	// Email and PhoneNumber are optional; nil or blank means absent.
	Email       *string
	PhoneNumber *string

	MunicipalCouncil string
	District         string
	Ward             string

	// Driver only.
	LicensePlate string
	SupervisorID string
}

// Result is a created entity plus its one-time initial password.
type Result struct {
	Entity   domain.Entity
	Password string
}

// NameScope selects the set of records a name must be unique within.
type NameScope string

const (
	// NameScopeLocal is the record's parent: the ward for supervisors, the owning supervisor for drivers.
	NameScopeLocal   NameScope = "local"
	NameScopeCouncil NameScope = "council"
	NameScopeGlobal  NameScope = "global"
)

func ParseNameScope(s string) (NameScope, bool) {
	switch NameScope(strings.ToLower(strings.TrimSpace(s))) {
	case "", NameScopeLocal:
		return NameScopeLocal, true
	case NameScopeCouncil:
		return NameScopeCouncil, true
	case NameScopeGlobal:
		return NameScopeGlobal, true
	default:
		return "", false
	}
}

// DefaultPlatePattern is the Western Province plate format, e.g. "WP AB-1234".
const DefaultPlatePattern = `^WP [A-Z]{2}-\d{4}$`

// Options configures the workflow rules that vary by deployment.
type Options struct {
	// CallingCode is prepended to local phone numbers, e.g. "+94".
	CallingCode  string
	PlatePattern *regexp.Regexp
	NameScope    NameScope
	// AllowedDistricts restricts onboarding to these districts (case-insensitive). Empty allows any.
	AllowedDistricts []string
	RequireEmail     bool
	RequirePhone     bool
}

func DefaultOptions() Options {
	return Options{
		CallingCode:  "+94",
		PlatePattern: regexp.MustCompile(DefaultPlatePattern),
		NameScope:    NameScopeLocal,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.CallingCode == "" {
		o.CallingCode = d.CallingCode
	}
	if o.PlatePattern == nil {
		o.PlatePattern = d.PlatePattern
	}
	if o.NameScope == "" {
		o.NameScope = d.NameScope
	}
	return o
}
