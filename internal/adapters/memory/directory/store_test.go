package directory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vatelanka/waste-admin-api/internal/ports/out/directory"
)

func TestStore_CreateAll_ConcurrentSamePath_OneWins(t *testing.T) {
	t.Parallel()

	s := NewStore()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.CreateAll(context.Background(), []directory.Document{
				{Path: directory.Path(fmt.Sprintf("things/t-%d", i)), Data: map[string]any{"n": "x"}},
				{Path: "nationalIds/200012345678", Data: map[string]any{"owner": fmt.Sprint(i)}},
			})
			if err == nil {
				wins.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("wins=%d, want 1", wins.Load())
	}
	if s.Len() != 2 {
		t.Fatalf("Len()=%d, want 2", s.Len())
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	if err := s.Set(ctx, "a/1", map[string]any{"name": "x"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	d, err := s.Get(ctx, "a/1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	d.Data["name"] = "mutated"

	again, _ := s.Get(ctx, "a/1")
	if again.String("name") != "x" {
		t.Fatalf("stored data was mutated through returned document")
	}
}
