package announcement

import (
	"context"

	"github.com/google/uuid"
	"github.com/placementcell/placementcell/internal/auth"
	"github.com/placementcell/placementcell/internal/utils"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Create(ctx context.Context, announcement Announcement) (Announcement, error)
	GetAll(ctx context.Context) ([]Announcement, error)
	Delete(ctx context.Context, id string) error
}

type ServiceImpl struct {
	repo  Repository
	clock utils.Clock
}

func NewService(repo Repository, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, clock: clock}
}

func (s *ServiceImpl) Create(ctx context.Context, announcement Announcement) (Announcement, error) {
	announcement.ID = uuid.NewString()
	announcement.CreatedAt = s.clock.Now()
	if announcement.PostedBy == "" {
		if actor, err := auth.CurrentActor(ctx); err == nil {
			announcement.PostedBy = actor.Name
		}
	}
	if err := s.repo.Store(ctx, announcement); err != nil {
		return Announcement{}, err
	}
	return announcement, nil
}

func (s *ServiceImpl) GetAll(ctx context.Context) ([]Announcement, error) {
	return s.repo.FindAll(ctx)
}

func (s *ServiceImpl) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		log.Warnf("announcement not deleted, probably because it does not exist (%s)", id)
		return ErrAnnouncementNotFound
	}
	return nil
}
