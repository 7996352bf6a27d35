package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/yousafkhamza/devops-mcq-bot/internal/domain/entities"
	"github.com/yousafkhamza/devops-mcq-bot/internal/repository"
)

const offsetKey = "questionOffset"

// Shuffler selects an unbiased random subset of the question pool and
// permutes each selected question's options. A persisted rotation offset
// shifts the starting point of the pool between sessions, so repeated
// attempts surface different leading subsets over time.
type Shuffler struct {
	kv     repository.KV
	stride int

	rng *rand.Rand
}

// NewShuffler creates a Shuffler with the given rotation stride.
func NewShuffler(kv repository.KV, stride int) *Shuffler {
	return &Shuffler{
		kv:     kv,
		stride: stride,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SelectQuestions rotates the pool by the persisted offset, shuffles it,
// truncates to min(count, pool size) and permutes each question's options.
// The offset advances by the stride (mod pool size) as a side effect.
func (s *Shuffler) SelectQuestions(ctx context.Context, pool []entities.Question, count int) ([]entities.Question, error) {
	if len(pool) == 0 || count <= 0 {
		return nil, nil
	}

	offset, err := s.nextOffset(ctx, len(pool))
	if err != nil {
		return nil, err
	}

	rotated := make([]entities.Question, 0, len(pool))
	rotated = append(rotated, pool[offset:]...)
	rotated = append(rotated, pool[:offset]...)

	s.rng.Shuffle(len(rotated), func(i, j int) {
		rotated[i], rotated[j] = rotated[j], rotated[i]
	})

	if count < len(rotated) {
		rotated = rotated[:count]
	}

	selected := make([]entities.Question, len(rotated))
	for i, q := range rotated {
		selected[i] = s.ShuffleOptions(q)
	}

	return selected, nil
}

// ShuffleOptions permutes a question's options and re-points CorrectIndex at
// the originally-correct option's text. When option texts are duplicated the
// first match wins.
func (s *Shuffler) ShuffleOptions(q entities.Question) entities.Question {
	correct := q.Options[q.CorrectIndex]

	options := append([]string(nil), q.Options...)
	s.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	for i, opt := range options {
		if opt == correct {
			q.CorrectIndex = i
			break
		}
	}
	q.Options = options

	return q
}

// nextOffset reads the persisted rotation offset and advances it by the
// stride modulo the pool size. The returned offset is the one to use for
// the current session.
func (s *Shuffler) nextOffset(ctx context.Context, poolSize int) (int, error) {
	offset := 0

	raw, err := s.kv.Get(ctx, offsetKey)
	switch {
	case err == nil:
		if n, perr := strconv.Atoi(raw); perr == nil && n >= 0 {
			offset = n % poolSize
		}
	case !errors.Is(err, repository.ErrKeyNotFound):
		return 0, fmt.Errorf("read rotation offset: %w", err)
	}

	next := (offset + s.stride) % poolSize
	if err := s.kv.Set(ctx, offsetKey, strconv.Itoa(next)); err != nil {
		return 0, fmt.Errorf("persist rotation offset: %w", err)
	}

	return offset, nil
}
