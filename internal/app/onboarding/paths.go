package onboarding

import (
	"strings"

	"github.com/vatelanka/waste-admin-api/internal/domain"
	"github.com/vatelanka/waste-admin-api/internal/ports/out/directory"
)

// WardPath returns the directory path of the ward node for loc.
func WardPath(loc domain.Location) directory.Path {
	return directory.Collection(collMunicipalCouncils).Doc(loc.Council).
		Collection(collDistricts).Doc(loc.District).
		Collection(collWards).Doc(loc.Ward)
}

func supervisorPath(loc domain.Location, supervisorID string) directory.Path {
	return WardPath(loc).Collection(SupervisorKind.Collection).Doc(supervisorID)
}

// parentCollection is the collection a new record of spec is filed in.
func parentCollection(spec KindSpec, r request) directory.CollectionRef {
	if spec.HasSupervisor {
		return supervisorPath(r.location, r.supervisorID).Collection(spec.Collection)
	}
	return WardPath(r.location).Collection(spec.Collection)
}

func nationalIDPath(nic string) directory.Path {
	return directory.Collection(collNationalIDs).Doc(directory.KeyID(nic))
}

func licensePlatePath(plate string) directory.Path {
	return directory.Collection(collLicensePlates).Doc(directory.KeyID(plate))
}

func entityIDPath(id string) directory.Path {
	return directory.Collection(collEntityIDs).Doc(directory.KeyID(id))
}

func emailPath(spec KindSpec, email string) directory.Path {
	return directory.Collection(spec.EmailIndex).Doc(directory.KeyID(strings.ToLower(email)))
}

func phonePath(spec KindSpec, phone string) directory.Path {
	return directory.Collection(spec.PhoneIndex).Doc(directory.KeyID(phone))
}

// nameClaimPath reserves a name within its scope so concurrent duplicates collide in CreateAll.
// Parts are escaped before joining, so a "|" inside a council, ward or name cannot
// make two different claims share a key.
func nameClaimPath(spec KindSpec, scopeKey, name string) directory.Path {
	key := strings.Join([]string{
		directory.KeyID(spec.Collection),
		directory.KeyID(scopeKey),
		directory.KeyID(name),
	}, "|")
	return directory.Collection(collNameClaims).Doc(directory.KeyID(key))
}

// locationOf extracts council/district/ward from any path at or below a ward node.
func locationOf(p directory.Path) (domain.Location, bool) {
	segs := strings.Split(string(p), "/")
	if len(segs) < 6 || segs[0] != collMunicipalCouncils || segs[2] != collDistricts || segs[4] != collWards {
		return domain.Location{}, false
	}
	return domain.Location{Council: segs[1], District: segs[3], Ward: segs[5]}, true
}
