package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/yousafkhamza/devops-mcq-bot/internal/domain/entities"
	"github.com/yousafkhamza/devops-mcq-bot/internal/repository"
)

const attemptsKey = "attempts"

const dateLayout = "2006-01-02"

// RateLimiter bounds quiz attempts per calendar day. The counter is persisted
// as an AttemptRecord under a fixed key and resets implicitly when the stored
// date no longer matches today.
type RateLimiter struct {
	kv          repository.KV
	maxAttempts int

	now func() time.Time
}

// NewRateLimiter creates a RateLimiter with the given daily cap.
func NewRateLimiter(kv repository.KV, maxAttempts int) *RateLimiter {
	return &RateLimiter{
		kv:          kv,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// TryConsumeAttempt consumes one attempt for today if the cap allows it.
// On denial the stored record is left untouched; the caller must not start
// a session.
func (l *RateLimiter) TryConsumeAttempt(ctx context.Context) (bool, error) {
	record, err := l.load(ctx)
	if err != nil {
		return false, err
	}

	if record.Count >= l.maxAttempts {
		return false, nil
	}

	record.Count++
	if err := l.store(ctx, record); err != nil {
		return false, err
	}

	return true, nil
}

// Remaining reports how many attempts are left today.
func (l *RateLimiter) Remaining(ctx context.Context) (int, error) {
	record, err := l.load(ctx)
	if err != nil {
		return 0, err
	}

	remaining := l.maxAttempts - record.Count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (l *RateLimiter) load(ctx context.Context) (entities.AttemptRecord, error) {
	today := l.now().Format(dateLayout)
	record := entities.AttemptRecord{Date: today}

	raw, err := l.kv.Get(ctx, attemptsKey)
	switch {
	case err == nil:
		if uerr := json.Unmarshal([]byte(raw), &record); uerr != nil {
			// A corrupt record counts as a fresh day rather than a locked-out one.
			record = entities.AttemptRecord{Date: today}
		}
	case !errors.Is(err, repository.ErrKeyNotFound):
		return entities.AttemptRecord{}, fmt.Errorf("read attempt record: %w", err)
	}

	if record.Date != today {
		record = entities.AttemptRecord{Date: today}
	}

	return record, nil
}

func (l *RateLimiter) store(ctx context.Context, record entities.AttemptRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode attempt record: %w", err)
	}

	if err := l.kv.Set(ctx, attemptsKey, string(data)); err != nil {
		return fmt.Errorf("persist attempt record: %w", err)
	}

	return nil
}
