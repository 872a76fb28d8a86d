package directory

import (
	"testing"

	"github.com/vatelanka/waste-admin-api/internal/adapters/contracttest"
	directoryport "github.com/vatelanka/waste-admin-api/internal/ports/out/directory"
)

func TestContract_DirectoryStore(t *testing.T) {
	contracttest.RunDirectoryStore(t, func(t *testing.T) (directoryport.Store, func()) {
		t.Helper()
		return NewStore(), nil
	})
}
