// Package health implements the readiness probe over the process's backing services.
package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

// Status is the outcome of a readiness run.
type Status struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks"`
}

// Checker runs named checks concurrently with a shared timeout.
type Checker struct {
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]Check
}

func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{timeout: timeout, checks: make(map[string]Check)}
}

func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Run executes every check. Checks map each name to "ok" or the error text.
func (c *Checker) Run(ctx context.Context) Status {
	c.mu.RLock()
	names := make([]string, 0, len(c.checks))
	for n := range c.checks {
		names = append(names, n)
	}
	checks := make(map[string]Check, len(c.checks))
	for k, v := range c.checks {
		checks[k] = v
	}
	c.mu.RUnlock()
	sort.Strings(names)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// Failures are collected per check rather than returned, so one slow or
	// failing dependency does not cancel the others.
	results := make([]error, len(names))
	var g errgroup.Group
	for i, n := range names {
		check := checks[n]
		g.Go(func() error {
			results[i] = check(ctx)
			return nil
		})
	}
	_ = g.Wait()

	st := Status{OK: true, Checks: make(map[string]string, len(names))}
	for i, n := range names {
		if results[i] != nil {
			st.OK = false
			st.Checks[n] = results[i].Error()
			continue
		}
		st.Checks[n] = "ok"
	}
	return st
}

// Postgres pings the pool.
func Postgres(pool *pgxpool.Pool) Check {
	return func(ctx context.Context) error { return pool.Ping(ctx) }
}

// Redis pings the client.
func Redis(client redis.UniversalClient) Check {
	return func(ctx context.Context) error { return client.Ping(ctx).Err() }
}
