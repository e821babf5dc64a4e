package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tallyfin/tally/internal/apperrors"
	"github.com/tallyfin/tally/internal/core/domain"
	portsevents "github.com/tallyfin/tally/internal/core/ports/events"
	portssvc "github.com/tallyfin/tally/internal/core/ports/services"
)

// guardServiceImpl implements the GuardSvcFacade interface. A single mutable
// owner slot, checked synchronously before every privileged call.
type guardServiceImpl struct {
	BaseService
	publisher portsevents.EventPublisher

	mu    sync.RWMutex
	owner string
}

// NewGuardService creates the access guard with its initial owner principal.
func NewGuardService(initialOwner string, publisher portsevents.EventPublisher) portssvc.GuardSvcFacade {
	return &guardServiceImpl{
		publisher: publisher,
		owner:     initialOwner,
	}
}

// Ensure guardServiceImpl implements the GuardSvcFacade interface
var _ portssvc.GuardSvcFacade = (*guardServiceImpl)(nil)

// Authorize reports whether caller is the current owner.
func (s *guardServiceImpl) Authorize(caller string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return caller != "" && caller == s.owner
}

// Owner returns the current owner principal.
func (s *guardServiceImpl) Owner() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner
}

// TransferOwnership atomically overwrites the owner slot. A rejected transfer
// leaves the owner unchanged and emits no event.
func (s *guardServiceImpl) TransferOwnership(ctx context.Context, caller, newOwner string) error {
	if newOwner == "" {
		return apperrors.ErrInvalidAccount
	}

	s.mu.Lock()
	if caller != s.owner {
		s.mu.Unlock()
		s.LogWarn(ctx, "Unauthorized ownership transfer attempt", slog.String("caller", caller))
		return apperrors.ErrNotOwner
	}
	previous := s.owner
	s.owner = newOwner
	s.mu.Unlock()

	event := domain.OwnershipTransferred{
		PreviousOwner: previous,
		NewOwner:      newOwner,
		Timestamp:     time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, domain.TopicOwnershipTransferred, event); err != nil {
		s.LogError(ctx, err, "Failed to publish ownership transferred event")
	}

	s.LogInfo(ctx, "Ledger ownership transferred",
		slog.String("previous_owner", previous),
		slog.String("new_owner", newOwner),
	)
	return nil
}
