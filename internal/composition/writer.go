package composition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/animato-app/animato-server/internal/storage"
)

// Writer persists composition documents through the file store.
type Writer struct {
	store *storage.FileStore
}

func NewWriter(store *storage.FileStore) *Writer {
	return &Writer{store: store}
}

// WriteDocument marshals the document and stores it under a key derived from
// the project and document kind. It returns the storage key and the encoded
// bytes so callers can persist both the asset row and the raw payload.
func (w *Writer) WriteDocument(ctx context.Context, doc Document) (string, []byte, error) {
	if w == nil || w.store == nil {
		return "", nil, errors.New("composition: no store configured")
	}
	if doc.ProjectID == "" {
		return "", nil, errors.New("composition: document missing project id")
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", nil, fmt.Errorf("composition: marshal document: %w", err)
	}

	key := documentKey(doc)
	stored, err := w.store.Write(ctx, key, data)
	if err != nil {
		return "", nil, err
	}
	return stored, data, nil
}

func documentKey(doc Document) string {
	if doc.Kind == KindCompiled {
		return fmt.Sprintf("projects/%s/compositions/compiled.json", doc.ProjectID)
	}
	return fmt.Sprintf("projects/%s/compositions/segment_%d.json", doc.ProjectID, doc.SegmentIndex)
}
