package contracttest

import (
	"context"
	"errors"
	"testing"

	directoryport "github.com/vatelanka/waste-admin-api/internal/ports/out/directory"
)

type DirectoryStoreFactory func(t *testing.T) (directoryport.Store, CleanupFunc)

// RunDirectoryStore exercises the directory.Store contract.
func RunDirectoryStore(t *testing.T, newStore DirectoryStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	ward := directoryport.Collection("municipalCouncils").Doc("colombo").
		Collection("districts").Doc("Colombo").
		Collection("wards").Doc("Ward 1")

	if _, err := store.Get(ctx, ward); !errors.Is(err, directoryport.ErrNotFound) {
		t.Fatalf("Get missing: err=%v, want ErrNotFound", err)
	}
	if err := store.Set(ctx, ward, map[string]any{"name": "Ward 1"}); err != nil {
		t.Fatalf("Set ward: %v", err)
	}
	got, err := store.Get(ctx, ward)
	if err != nil {
		t.Fatalf("Get ward: %v", err)
	}
	if got.Path != ward || got.String("name") != "Ward 1" {
		t.Fatalf("unexpected ward: %+v", got)
	}

	// Set replaces.
	if err := store.Set(ctx, ward, map[string]any{"name": "Ward One", "active": true}); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _ = store.Get(ctx, ward)
	if got.String("name") != "Ward One" || got.Data["active"] != true {
		t.Fatalf("expected overwritten ward, got %+v", got)
	}

	sups := ward.Collection("supervisors")
	supA := sups.Doc("SUPAAAAAA")
	supB := sups.Doc("SUPBBBBBB")
	if err := store.CreateAll(ctx, []directoryport.Document{
		{Path: supB, Data: map[string]any{"name": "Nimal Perera", "nationalId": "200012345678"}},
		{Path: supA, Data: map[string]any{"name": "Nimal Perera", "nationalId": "991234567V"}},
		{Path: "nationalIds/200012345678", Data: map[string]any{"entityId": "SUPBBBBBB"}},
	}); err != nil {
		t.Fatalf("CreateAll: %v", err)
	}

	// Collection query is scoped to direct children and ordered by path.
	res, err := store.Query(ctx, sups, "name", "Nimal Perera")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res) != 2 || res[0].Path != supA || res[1].Path != supB {
		t.Fatalf("unexpected Query result: %+v", res)
	}
	res, err = store.Query(ctx, ward.Collection("trucks"), "name", "Nimal Perera")
	if err != nil || len(res) != 0 {
		t.Fatalf("expected empty Query in other collection, got %+v err=%v", res, err)
	}

	// Group query spans every collection with the same id, at any depth.
	otherWard := directoryport.Collection("municipalCouncils").Doc("kandy").
		Collection("districts").Doc("Kandy").
		Collection("wards").Doc("Ward 9")
	supC := otherWard.Collection("supervisors").Doc("SUPCCCCCC")
	truck := supA.Collection("trucks").Doc("TRUCKAAAAAA")
	if err := store.CreateAll(ctx, []directoryport.Document{
		{Path: supC, Data: map[string]any{"name": "Nimal Perera"}},
		{Path: truck, Data: map[string]any{"name": "Nimal Perera"}},
	}); err != nil {
		t.Fatalf("CreateAll second batch: %v", err)
	}
	res, err = store.QueryGroup(ctx, "supervisors", "name", "Nimal Perera")
	if err != nil {
		t.Fatalf("QueryGroup: %v", err)
	}
	if len(res) != 3 {
		t.Fatalf("QueryGroup len=%d, want 3: %+v", len(res), res)
	}
	for i := 1; i < len(res); i++ {
		if res[i-1].Path >= res[i].Path {
			t.Fatalf("QueryGroup not ordered by path: %+v", res)
		}
	}
	res, err = store.QueryGroup(ctx, "trucks", "name", "Nimal Perera")
	if err != nil || len(res) != 1 || res[0].Path != truck {
		t.Fatalf("unexpected trucks group result: %+v err=%v", res, err)
	}

	// CreateAll is all-or-nothing.
	fresh := sups.Doc("SUPDDDDDD")
	err = store.CreateAll(ctx, []directoryport.Document{
		{Path: fresh, Data: map[string]any{"name": "Kamal"}},
		{Path: "nationalIds/200012345678", Data: map[string]any{"entityId": "SUPDDDDDD"}},
	})
	var conflict *directoryport.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("CreateAll conflict: err=%v, want *ConflictError", err)
	}
	if conflict.Path != "nationalIds/200012345678" {
		t.Fatalf("conflict path=%q", conflict.Path)
	}
	if !errors.Is(err, directoryport.ErrAlreadyExists) {
		t.Fatalf("conflict must unwrap to ErrAlreadyExists")
	}
	if _, err := store.Get(ctx, fresh); !errors.Is(err, directoryport.ErrNotFound) {
		t.Fatalf("partial write leaked: err=%v", err)
	}
	idx, err := store.Get(ctx, "nationalIds/200012345678")
	if err != nil || idx.String("entityId") != "SUPBBBBBB" {
		t.Fatalf("existing index doc changed: %+v err=%v", idx, err)
	}

	// Escaped ids round-trip.
	emailPath := directoryport.Collection("supervisorEmails").Doc(directoryport.KeyID("a/b@example.com"))
	if err := store.CreateAll(ctx, []directoryport.Document{{Path: emailPath, Data: map[string]any{"entityId": "SUPAAAAAA"}}}); err != nil {
		t.Fatalf("CreateAll escaped id: %v", err)
	}
	if _, err := store.Get(ctx, emailPath); err != nil {
		t.Fatalf("Get escaped id: %v", err)
	}
}
