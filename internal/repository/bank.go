package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/yousafkhamza/devops-mcq-bot/internal/domain/entities"
)

// BankRepository fetches the question bank from its published URL.
// The loader performs no validation beyond decoding the raw JSON shape;
// malformed records surface later as errors at the point of use.
type BankRepository struct {
	url    string
	client *http.Client
}

// NewBankRepository creates a BankRepository for the given questions URL.
func NewBankRepository(url string) *BankRepository {
	return &BankRepository{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Fetch downloads and decodes the question bank.
func (r *BankRepository) Fetch(ctx context.Context) ([]entities.Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build bank request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch question bank: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch question bank: unexpected status %d", resp.StatusCode)
	}

	var questions []entities.Question
	if err := json.NewDecoder(resp.Body).Decode(&questions); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	return questions, nil
}

// FileBankRepository loads the question bank from a local JSON file,
// for offline decks and tests.
type FileBankRepository struct {
	path string
}

// NewFileBankRepository creates a FileBankRepository for the given path.
func NewFileBankRepository(path string) *FileBankRepository {
	return &FileBankRepository{path: path}
}

// Fetch reads and decodes the question bank file.
func (r *FileBankRepository) Fetch(_ context.Context) ([]entities.Question, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	var questions []entities.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	return questions, nil
}
