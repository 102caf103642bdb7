package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/line-edge/internal/config"
)

// Publisher writes a finished snapshot somewhere downstream consumers read it
type Publisher interface {
	Publish(ctx context.Context, snapshot *Snapshot) error
}

// FilePublisher writes one JSON file per sport into the output directory
type FilePublisher struct {
	dir    string
	pretty bool
}

// NewFilePublisher creates a publisher from the artifact configuration
func NewFilePublisher(cfg config.ArtifactConfig) *FilePublisher {
	return &FilePublisher{dir: cfg.OutputDir, pretty: cfg.Pretty}
}

// Publish writes the snapshot to <dir>/<sport>.json. The write goes through a
// temp file and rename so readers never observe a half-written snapshot.
func (p *FilePublisher) Publish(ctx context.Context, snapshot *Snapshot) error {
	if snapshot == nil {
		return fmt.Errorf("snapshot is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	var data []byte
	var err error
	if p.pretty {
		data, err = json.MarshalIndent(snapshot, "", "  ")
	} else {
		data, err = json.Marshal(snapshot)
	}
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	finalPath := p.Path(snapshot.Sport.String())
	tmpPath := finalPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}
	return nil
}

// Path returns where the sport's snapshot lands
func (p *FilePublisher) Path(sport string) string {
	return filepath.Join(p.dir, sport+".json")
}
