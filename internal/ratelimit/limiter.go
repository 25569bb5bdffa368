package ratelimit

import (
	"context"
	"time"
)

// Policy is a fixed-window request budget.
type Policy struct {
	Name   string
	Window time.Duration
	Max    int
	// Message is returned to clients that exhaust the budget.
	Message string
	// SkipSuccessful excludes requests that ended below HTTP 400 from the count.
	SkipSuccessful bool
}

var (
	AuthPolicy = Policy{
		Name:           "auth",
		Window:         15 * time.Minute,
		Max:            5,
		Message:        "too many authentication attempts, please try again later",
		SkipSuccessful: true,
	}
	GeneralPolicy = Policy{
		Name:    "general",
		Window:  time.Minute,
		Max:     100,
		Message: "too many requests, please try again later",
	}
	SensitivePolicy = Policy{
		Name:    "sensitive",
		Window:  time.Hour,
		Max:     10,
		Message: "too many attempts for this operation, please try again later",
	}
)

// Store counts hits per key within a window that starts at the first hit.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
	// Decrement removes one hit from a live window and never goes below zero.
	Decrement(ctx context.Context, key string) error
}

type Result struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	Allowed   bool
}

type Limiter struct {
	policy Policy
	store  Store
	now    func() time.Time
}

func New(policy Policy, store Store) *Limiter {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Limiter{policy: policy, store: store, now: time.Now}
}

func (l *Limiter) Policy() Policy {
	return l.policy
}

// Hit records one request for key. When the store fails the request is
// allowed and the store error is returned alongside the permissive result.
func (l *Limiter) Hit(ctx context.Context, key string) (Result, error) {
	count, resetAt, err := l.store.Increment(ctx, l.storeKey(key), l.policy.Window)
	if err != nil {
		return Result{
			Limit:     l.policy.Max,
			Remaining: l.policy.Max,
			ResetAt:   l.now().Add(l.policy.Window),
			Allowed:   true,
		}, err
	}
	remaining := l.policy.Max - count
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Limit:     l.policy.Max,
		Remaining: remaining,
		ResetAt:   resetAt,
		Allowed:   count <= l.policy.Max,
	}, nil
}

// Undo takes back one hit recorded for key.
func (l *Limiter) Undo(ctx context.Context, key string) error {
	return l.store.Decrement(ctx, l.storeKey(key))
}

func (l *Limiter) storeKey(key string) string {
	return "ratelimit:" + l.policy.Name + ":" + key
}
