// Package event implements campus event listings, creation and optimistic
// join/leave membership toggles. Events are campus-scoped: every operation
// except leaving requires the signed-in user to belong to a campus.
package event

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/application/optimistic"
	"github.com/ifconnect/client/internal/application/session"
	"github.com/ifconnect/client/internal/domain/shared"
	"github.com/ifconnect/client/internal/domain/social"
	"github.com/ifconnect/client/internal/infrastructure/api"
)

// CreateInput carries the fields for publishing an event
type CreateInput struct {
	Title       string        `json:"title" validate:"required,max=120"`
	Description string        `json:"description,omitempty" validate:"max=2000"`
	Location    string        `json:"location,omitempty" validate:"max=200"`
	EventDate   string        `json:"eventDate" validate:"required"`
	CampusID    int64         `json:"campusId" validate:"required,gt=0"`
	CreatorID   social.UserID `json:"creatorId" validate:"required,gt=0"`
}

// Service handles campus event operations
type Service struct {
	api      *api.Client
	sessions *session.Store
	toggles  *optimistic.Engine
	validate *validator.Validate
	logger   *zap.Logger
}

// NewService creates a new event service
func NewService(apiClient *api.Client, sessions *session.Store, toggles *optimistic.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:      apiClient,
		sessions: sessions,
		toggles:  toggles,
		validate: validator.New(),
		logger:   logger.Named("event"),
	}
}

// ByCampus lists the signed-in user's campus events. Users without a campus
// have no event board.
func (s *Service) ByCampus(ctx context.Context) ([]social.Event, error) {
	user, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	if !user.HasCampus() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "join a campus to see its events")
	}
	var events []social.Event
	if err := s.api.Get(ctx, fmt.Sprintf("/events/campus/%d", user.CampusID), &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Create publishes an event on the signed-in user's campus.
func (s *Service) Create(ctx context.Context, title, description, location, eventDate string) (*social.Event, error) {
	user, err := s.currentUser()
	if err != nil {
		return nil, err
	}
	if !user.HasCampus() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "join a campus to create events")
	}

	input := CreateInput{
		Title:       title,
		Description: description,
		Location:    location,
		EventDate:   eventDate,
		CampusID:    user.CampusID,
		CreatorID:   user.ID,
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "title and date are required")
	}

	var created social.Event
	if err := s.api.Post(ctx, "/events", input, &created); err != nil {
		return nil, err
	}
	s.logger.Info("event created",
		zap.Int64("event_id", created.ID),
		zap.Int64("campus_id", created.CampusID))
	return &created, nil
}

// ToggleMembership joins or leaves the event optimistically. The participant
// set changes before this returns; the returned channel reports whether the
// backend confirmed the change or it was rolled back.
//
// The event must not be mutated elsewhere until the flip resolves.
func (s *Service) ToggleMembership(ctx context.Context, e *social.Event) (<-chan optimistic.Result, error) {
	user, err := s.currentUser()
	if err != nil {
		return nil, err
	}

	userID := user.ID
	joining := !e.HasParticipant(userID)
	action := "leave"
	if joining {
		action = "join"
	}
	path := fmt.Sprintf("/events/%d/%s?userId=%d", e.ID, action, userID)

	return s.toggles.Do(ctx, optimistic.Flip{
		Key:    fmt.Sprintf("event:%d:%d", e.ID, userID),
		Apply:  func() { e.SetParticipant(userID, joining) },
		Revert: func() { e.SetParticipant(userID, !joining) },
		Commit: func(ctx context.Context) error {
			return s.api.Post(ctx, path, nil, nil)
		},
	})
}

func (s *Service) currentUser() (*social.User, error) {
	snapshot := s.sessions.Current()
	if snapshot.State != session.StateAuthenticated || snapshot.User == nil {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "sign in first")
	}
	return snapshot.User, nil
}
