package engine

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/securetender/bidguard/pkg/features"
)

// Artifact file names under the store directory. All three must be present
// and parse cleanly for a load to succeed.
const (
	forestArtifact     = "isolation_forest.gob"
	scalerArtifact     = "scaler.gob"
	vectorizerArtifact = "text_vectorizer.gob"
)

// FileStore persists a trained model as three independently named artifacts
// under a fixed directory. Absence or corruption of any one artifact is
// treated as "no model".
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the artifact directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes the model's three artifacts. The directory is created if needed.
func (s *FileStore) Save(m *Model) error {
	if !m.trained {
		return fmt.Errorf("model not trained")
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}

	forestBytes, err := m.forest.Save()
	if err != nil {
		return fmt.Errorf("serialize forest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, forestArtifact), forestBytes, 0o644); err != nil {
		return fmt.Errorf("write forest: %w", err)
	}

	if err := writeGob(filepath.Join(s.dir, scalerArtifact), m.scaler); err != nil {
		return fmt.Errorf("write scaler: %w", err)
	}
	if err := writeGob(filepath.Join(s.dir, vectorizerArtifact), m.extractor.Vectorizer); err != nil {
		return fmt.Errorf("write vectorizer: %w", err)
	}

	return nil
}

// Load restores a persisted model into m and marks it trained. It is
// all-or-nothing: every artifact is deserialized into temporaries first, and
// m is untouched on any failure.
func (s *FileStore) Load(m *Model) error {
	forestBytes, err := os.ReadFile(filepath.Join(s.dir, forestArtifact))
	if err != nil {
		return fmt.Errorf("read forest: %w", err)
	}
	forest := m.newForest(0)
	if err := forest.Load(forestBytes); err != nil {
		return fmt.Errorf("deserialize forest: %w", err)
	}

	var scaler features.Scaler
	if err := readGob(filepath.Join(s.dir, scalerArtifact), &scaler); err != nil {
		return fmt.Errorf("read scaler: %w", err)
	}
	if !scaler.Fitted {
		return fmt.Errorf("persisted scaler is not fitted")
	}

	var vectorizer features.Vectorizer
	if err := readGob(filepath.Join(s.dir, vectorizerArtifact), &vectorizer); err != nil {
		return fmt.Errorf("read vectorizer: %w", err)
	}
	if !vectorizer.Fitted {
		return fmt.Errorf("persisted vectorizer is not fitted")
	}

	m.forest = forest
	m.scaler = &scaler
	m.extractor = &features.Extractor{Vectorizer: &vectorizer}
	m.trained = true
	return nil
}

func writeGob(path string, v any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func readGob(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
