package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/ifconnect/client/internal/application/optimistic"
	"github.com/ifconnect/client/internal/application/session"
	"github.com/ifconnect/client/internal/domain/shared"
	"github.com/ifconnect/client/internal/domain/social"
)

// EventBoard provides the campus event operations.
type EventBoard interface {
	ByCampus(ctx context.Context) ([]social.Event, error)
	Create(ctx context.Context, title, description, location, eventDate string) (*social.Event, error)
	ToggleMembership(ctx context.Context, e *social.Event) (<-chan optimistic.Result, error)
}

// EventsView renders the campus event board with optimistic join/leave.
type EventsView struct {
	board    EventBoard
	sessions *session.Store
	out      io.Writer
	logger   *zap.Logger

	mu     sync.Mutex
	events []social.Event
}

// NewEventsView creates an events view.
func NewEventsView(board EventBoard, sessions *session.Store, out io.Writer, logger *zap.Logger) *EventsView {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsView{
		board:    board,
		sessions: sessions,
		out:      out,
		logger:   logger.Named("events"),
	}
}

// Render lists the signed-in user's campus events.
func (v *EventsView) Render(ctx context.Context) error {
	events, err := v.board.ByCampus(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	v.mu.Lock()
	v.events = events
	v.mu.Unlock()

	snapshot := v.sessions.Current()

	fmt.Fprintln(v.out, "== campus events ==")
	if len(events) == 0 {
		fmt.Fprintln(v.out, "No events scheduled.")
		return nil
	}
	for i := range events {
		e := &events[i]
		fmt.Fprintf(v.out, "[%d] %s - %s", i, e.Title, e.EventDate.Format("Mon Jan 2 15:04"))
		if e.Location != "" {
			fmt.Fprintf(v.out, " @ %s", e.Location)
		}
		fmt.Fprintf(v.out, " (%d going)", e.ParticipantCount())
		if snapshot.User != nil && e.HasParticipant(snapshot.User.ID) {
			fmt.Fprint(v.out, " [going]")
		}
		fmt.Fprintln(v.out)
	}
	return nil
}

// Create publishes an event and puts it on the rendered list.
func (v *EventsView) Create(ctx context.Context, title, description, location, eventDate string) error {
	created, err := v.board.Create(ctx, title, description, location, eventDate)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.events = append(v.events, *created)
	v.mu.Unlock()
	fmt.Fprintf(v.out, "Created %q\n", created.Title)
	return nil
}

// Toggle joins or leaves the nth listed event optimistically.
func (v *EventsView) Toggle(ctx context.Context, index int) (<-chan optimistic.Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if index < 0 || index >= len(v.events) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("no event #%d on screen", index))
	}
	return v.board.ToggleMembership(ctx, &v.events[index])
}

// Events returns the currently listed events.
func (v *EventsView) Events() []social.Event {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]social.Event, len(v.events))
	copy(out, v.events)
	return out
}
