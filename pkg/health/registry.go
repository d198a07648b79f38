package health

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type Registry struct {
	checkers []Checker
}

func NewRegistry(checkers ...Checker) *Registry {
	return &Registry{checkers: checkers}
}

func (r *Registry) Register(c Checker) {
	r.checkers = append(r.checkers, c)
}

type CheckResult struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status Status        `json:"status"`
	Checks []CheckResult `json:"checks,omitempty"`
}

// CheckAll runs every checker concurrently; one down check marks the whole
// response down.
func (r *Registry) CheckAll(ctx context.Context) ReadinessResponse {
	results := make([]CheckResult, len(r.checkers))

	var g errgroup.Group
	for i, c := range r.checkers {
		i, c := i, c
		g.Go(func() error {
			res := c.Check(ctx)
			results[i] = CheckResult{Name: c.Name(), Status: res.Status, Message: res.Message}
			return nil
		})
	}
	_ = g.Wait()

	overall := StatusUp
	for _, res := range results {
		if res.Status == StatusDown {
			overall = StatusDown
		}
	}
	return ReadinessResponse{Status: overall, Checks: results}
}
