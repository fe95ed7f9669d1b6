package notification

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Poller periodically refreshes the unread badge in the background.
type Poller struct {
	svc      *Service
	interval time.Duration
	logger   *zap.Logger
}

// NewPoller creates a poller. Intervals under a second are rejected by the
// configuration layer before this is ever constructed.
func NewPoller(svc *Service, interval time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		svc:      svc,
		interval: interval,
		logger:   logger.Named("notification-poller"),
	}
}

// Start fetches the unread count immediately and then on every tick until
// ctx is cancelled. Delivery is latest-wins: a slow reader sees the newest
// count. Fetch failures are logged and skipped; the badge keeps its last
// value until the next successful poll. The channel closes when ctx ends.
func (p *Poller) Start(ctx context.Context) <-chan int {
	counts := make(chan int, 1)

	go func() {
		defer close(counts)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.poll(ctx, counts)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx, counts)
			}
		}
	}()

	return counts
}

func (p *Poller) poll(ctx context.Context, counts chan int) {
	count, err := p.svc.UnreadCount(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Debug("unread count poll failed", zap.Error(err))
		}
		return
	}
	select {
	case counts <- count:
	default:
		select {
		case <-counts:
		default:
		}
		select {
		case counts <- count:
		default:
		}
	}
}
