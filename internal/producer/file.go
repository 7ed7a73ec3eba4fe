package producer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wonny/predictarena/internal/contracts"
)

// ErrNoSubmission means the forecaster has not submitted for the date
var ErrNoSubmission = errors.New("no submission")

// FileProducer reads batches dropped into an inbox directory:
// {inbox}/{date}/{id}.json, or {id}.txt containing prose with embedded JSON.
type FileProducer struct {
	id          string
	displayName string
	inbox       string
}

// NewFileProducer creates an inbox producer
func NewFileProducer(id, displayName, inbox string) *FileProducer {
	return &FileProducer{id: id, displayName: displayName, inbox: inbox}
}

func (p *FileProducer) ID() string          { return p.id }
func (p *FileProducer) DisplayName() string { return p.displayName }

// Generate implements contracts.Producer
func (p *FileProducer) Generate(ctx context.Context, date time.Time) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Join(p.inbox, contracts.FormatDate(date))
	for _, ext := range []string{".json", ".txt"} {
		path := filepath.Join(dir, p.id+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		obj, err := ExtractJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return obj, nil
	}

	return nil, fmt.Errorf("%s in %s: %w", p.id, dir, ErrNoSubmission)
}
