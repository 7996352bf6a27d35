package service

import (
	"context"

	"github.com/yousafkhamza/devops-mcq-bot/internal/domain/entities"
)

// BankRepository supplies the raw question pool.
type BankRepository interface {
	Fetch(ctx context.Context) ([]entities.Question, error)
}
