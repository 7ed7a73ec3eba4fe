package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
)

// ErrNotFound is returned when a document does not exist
var ErrNotFound = errors.New("document not found")

// Document categories
const (
	CategoryPredictions = "predictions"
	CategoryScores      = "scores"
	CategoryState       = "" // 루트 문서 (leaderboard, winner, simulator)
)

// Key identifies one persisted JSON document.
//
//	predictions/{date}/{forecaster}.json
//	scores/{date}.json
//	leaderboard.json, winner-today.json, simulator.json
type Key struct {
	Category string
	Date     string
	Name     string
}

// PredictionKey is one forecaster's batch for a date
func PredictionKey(date, forecasterID string) Key {
	return Key{Category: CategoryPredictions, Date: date, Name: forecasterID}
}

// ScoresKey is the score document for a date
func ScoresKey(date string) Key {
	return Key{Category: CategoryScores, Date: date}
}

// Root documents
var (
	LeaderboardKey = Key{Name: "leaderboard"}
	WinnerKey      = Key{Name: "winner-today"}
	SimulatorKey   = Key{Name: "simulator"}
)

// Path returns the slash-separated relative path of the document
func (k Key) Path() string {
	switch {
	case k.Category == CategoryScores:
		return path.Join(k.Category, k.Date+".json")
	case k.Category != "" && k.Date != "":
		return path.Join(k.Category, k.Date, k.Name+".json")
	case k.Category != "":
		return path.Join(k.Category, k.Name+".json")
	default:
		return k.Name + ".json"
	}
}

func (k Key) String() string {
	return k.Path()
}

// ParsePath is the inverse of Path for the known layouts
func ParsePath(p string) (Key, error) {
	clean := path.Clean(p)
	if path.Ext(clean) != ".json" {
		return Key{}, fmt.Errorf("not a json document: %s", p)
	}
	base := clean[:len(clean)-len(".json")]
	dir, file := path.Split(base)
	dir = path.Clean(dir)

	switch {
	case dir == ".":
		return Key{Name: file}, nil
	case dir == CategoryScores:
		return ScoresKey(file), nil
	case path.Dir(dir) == CategoryPredictions:
		return PredictionKey(path.Base(dir), file), nil
	}
	return Key{}, fmt.Errorf("unknown document path: %s", p)
}

// Store persists JSON documents
// ⭐ SSOT: 모든 문서 I/O 는 이 인터페이스를 통해서만
type Store interface {
	Get(ctx context.Context, key Key, dest interface{}) error
	Put(ctx context.Context, key Key, doc interface{}) error
	Exists(ctx context.Context, key Key) (bool, error)
	// List returns the keys in category/date, sorted by name
	List(ctx context.Context, category, date string) ([]Key, error)
}

// Encode renders a document the way it is stored (2-space indent, trailing newline)
func Encode(doc interface{}) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(data, '\n'), nil
}
