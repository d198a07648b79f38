//go:build integration

package testinfra

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

type TestSuite struct {
	Postgres *PostgresContainer
	Redis    *RedisContainer
}

type SuiteOptions struct {
	WithRedis bool
}

// NewTestSuite starts containers in parallel; on failure everything that did
// start is torn down.
func NewTestSuite(ctx context.Context, opts SuiteOptions) (*TestSuite, error) {
	suite := &TestSuite{}
	var g errgroup.Group

	g.Go(func() error {
		pg, err := NewPostgres(ctx)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		suite.Postgres = pg
		return nil
	})

	if opts.WithRedis {
		g.Go(func() error {
			r, err := NewRedis(ctx)
			if err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			suite.Redis = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		suite.Cleanup(ctx)
		return nil, fmt.Errorf("test suite: %w", err)
	}
	return suite, nil
}

func (s *TestSuite) Cleanup(ctx context.Context) {
	if s.Postgres != nil {
		s.Postgres.Cleanup(ctx)
	}
	if s.Redis != nil {
		s.Redis.Cleanup(ctx)
	}
}
