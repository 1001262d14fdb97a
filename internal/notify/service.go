package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"danceslot/internal/logger"
	"danceslot/internal/metrics"
)

const (
	QueueKey  = "notifications"
	FailedKey = "notifications:failed"

	maxTries   = 3
	popTimeout = 2 * time.Second
)

// Lead is a new booking or contact request the studio should hear about.
type Lead struct {
	BookingID string `json:"booking_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	Summary   string `json:"summary"`
	Source    string `json:"source"`
}

type Job struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Lead    Lead      `json:"lead"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Deliverer hands a job to the outside world.
type Deliverer func(ctx context.Context, job Job) error

// LogDelivery writes the notification to the log. Nothing is sent.
func LogDelivery(_ context.Context, job Job) error {
	logger.Info("[Notification] New lead",
		"to", job.To,
		"booking_id", job.Lead.BookingID,
		"name", job.Lead.Name,
		"phone", job.Lead.Phone,
		"email", job.Lead.Email,
		"source", job.Lead.Source,
		"summary", job.Lead.Summary,
	)
	return nil
}

// Service queues lead notifications in a Redis list and drains them with
// a single worker.
type Service struct {
	redis      *redis.Client
	to         string
	deliver    Deliverer
	retryDelay time.Duration
}

func New(rdb *redis.Client, to string) *Service {
	return &Service{
		redis:      rdb,
		to:         to,
		deliver:    LogDelivery,
		retryDelay: 5 * time.Second,
	}
}

func (s *Service) QueueLead(ctx context.Context, lead Lead) error {
	job := Job{
		Type:    "lead",
		To:      s.to,
		Lead:    lead,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	if err := s.redis.LPush(ctx, QueueKey, data).Err(); err != nil {
		metrics.RecordNotification(job.Type, "queue_failed")
		logger.Errorf("Failed to queue notification for booking %s: %v", lead.BookingID, err)
		return err
	}

	metrics.RecordNotification(job.Type, "queued")
	logger.Infof("Notification queued for booking %s", lead.BookingID)
	return nil
}

// Start drains the queue until ctx is done. When Redis stops answering the
// worker waits retryDelay between attempts.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification worker started", "queue", QueueKey)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return
		default:
		}

		handled, err := s.processNext(ctx)
		if err != nil {
			logger.Warn("Notification queue unavailable", "error", err, "retry_in", s.retryDelay.String())
			select {
			case <-ctx.Done():
				logger.Info("Notification worker stopped")
				return
			case <-time.After(s.retryDelay):
			}
			continue
		}

		if !handled {
			// idle: the pop timed out on an empty queue
			s.QueueLength(ctx)
		}
	}
}

// processNext pops and delivers one job. It reports false with a nil error
// when the queue stayed empty for popTimeout, and an error only when Redis
// itself failed.
func (s *Service) processNext(ctx context.Context) (bool, error) {
	result, err := s.redis.BRPop(ctx, popTimeout, QueueKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		if ctx.Err() != nil {
			return false, nil
		}
		return false, err
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return true, nil
	}

	job.Tries++
	if err := s.deliver(ctx, job); err != nil {
		logger.Errorf("Failed to deliver notification for booking %s: %v", job.Lead.BookingID, err)

		if job.Tries < maxTries {
			select {
			case <-ctx.Done():
			case <-time.After(s.retryDelay):
			}
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), QueueKey, data)
			metrics.RecordNotification(job.Type, "retried")
		} else {
			s.saveFailed(job, err)
		}
		return true, nil
	}

	metrics.RecordNotification(job.Type, "delivered")
	return true, nil
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), FailedKey, data)
	metrics.RecordNotification(job.Type, "failed")
	logger.Errorf("Notification for booking %s moved to failed queue after %d attempts", job.Lead.BookingID, job.Tries)
}

// QueueLength reads the backlog size and publishes it as a gauge. The gauge
// keeps its last value when Redis does not answer.
func (s *Service) QueueLength(ctx context.Context) int64 {
	length, err := s.redis.LLen(ctx, QueueKey).Result()
	if err != nil {
		return 0
	}
	metrics.NotificationQueueLength.Set(float64(length))
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

// Inline delivers leads immediately without a queue. Used when Redis is not
// available.
type Inline struct {
	to      string
	deliver Deliverer
}

func NewInline(to string) *Inline {
	return &Inline{to: to, deliver: LogDelivery}
}

func (n *Inline) QueueLead(ctx context.Context, lead Lead) error {
	err := n.deliver(ctx, Job{Type: "lead", To: n.to, Lead: lead, Tries: 1, Created: time.Now()})
	if err != nil {
		metrics.RecordNotification("lead", "failed")
		return err
	}
	metrics.RecordNotification("lead", "delivered")
	return nil
}

// Summary joins the non-empty parts with " • ".
func Summary(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " • ")
}
