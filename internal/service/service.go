package service

import (
	"context"
	"time"

	"github.com/andresuchdata/pharmacare/backend-go/internal/domain"
)

// Actor is the authenticated account a service call is made on behalf of
type Actor struct {
	ID   string
	Role domain.Role
}

func (a Actor) IsAdmin() bool      { return a.Role == domain.RoleAdmin }
func (a Actor) IsPharmacist() bool { return a.Role == domain.RolePharmacist }
func (a Actor) IsCustomer() bool   { return a.Role == domain.RoleCustomer }

// Clock returns the current time in the configured business timezone
type Clock func() time.Time

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return func() time.Time { return time.Now().In(loc) }
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

const cleanupTimeout = 10 * time.Second

// detached outlives a cancelled request so that compensating writes
// (restocking, reverting an approval) still reach the store.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
}
