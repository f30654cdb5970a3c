package service

import (
	"context"

	"github.com/iliyamo/musicuration-desk/internal/model"
	"github.com/iliyamo/musicuration-desk/internal/queue"
	"github.com/iliyamo/musicuration-desk/internal/repository"
)

// CollectionService records possessions and attendance for the
// authenticated user and announces them on the audit queue.
type CollectionService struct {
	store  *repository.Store
	events Publisher
}

func NewCollectionService(store *repository.Store, events Publisher) *CollectionService {
	if events == nil {
		events = NopPublisher{}
	}
	return &CollectionService{store: store, events: events}
}

func (s *CollectionService) AddPossession(ctx context.Context, user *model.User, in model.PossessionInput) (*model.UserPossession, error) {
	var p *model.UserPossession
	err := s.store.Tx(ctx, func(q *repository.Queries) error {
		var err error
		p, err = q.Collections.AddPossession(ctx, user.ID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, queue.NewCollectionEvent(queue.EventPossession, user.ID, p.EntityType, p.EntityID))
	return p, nil
}

func (s *CollectionService) AddAttendance(ctx context.Context, user *model.User, in model.AttendanceInput) (*model.UserAttendance, error) {
	var a *model.UserAttendance
	err := s.store.Tx(ctx, func(q *repository.Queries) error {
		var err error
		a, err = q.Collections.AddAttendance(ctx, user.ID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.events, queue.NewCollectionEvent(queue.EventAttendance, user.ID, "performance", a.PerformanceID))
	return a, nil
}

func (s *CollectionService) Possessions(ctx context.Context, user *model.User) ([]model.UserPossession, error) {
	return s.store.Q().Collections.Possessions(ctx, user.ID)
}

func (s *CollectionService) Attendances(ctx context.Context, user *model.User) ([]model.UserAttendance, error) {
	return s.store.Q().Collections.Attendances(ctx, user.ID)
}
