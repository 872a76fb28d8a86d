//go:build integration

package itest

import (
	"testing"

	pgdirectory "github.com/vatelanka/waste-admin-api/internal/adapters/postgres/directory"
	pgidempotency "github.com/vatelanka/waste-admin-api/internal/adapters/postgres/idempotency"
	pgidentity "github.com/vatelanka/waste-admin-api/internal/adapters/postgres/identity"
	postgres_testutil "github.com/vatelanka/waste-admin-api/internal/adapters/postgres/testutil"
	clockport "github.com/vatelanka/waste-admin-api/internal/ports/out/clock"
)

func init() {
	backendFactories[backendPostgres] = func(t *testing.T, _ clockport.Clock) adapters {
		pool := postgres_testutil.OpenMigratedPool(t)
		return adapters{
			store: pgdirectory.NewStore(pool),
			idp:   pgidentity.NewProvider(pool),
			idem:  pgidempotency.NewStore(pool, "dev"),
		}
	}
}
