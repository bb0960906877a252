package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type memObject struct {
	data        []byte
	contentType string
	uploaded    bool
}

// MemoryStore is an in-process ObjectStore for tests and local development.
// Its Handler speaks the same raw-binary PUT protocol as the real backend, so
// client upload code runs unmodified against it.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]*memObject
	baseURL string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]*memObject),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SetBaseURL rebinds resolved URLs, e.g. to an httptest server address.
func (m *MemoryStore) SetBaseURL(baseURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseURL = strings.TrimRight(baseURL, "/")
}

func (m *MemoryStore) CreateUploadTicket(ctx context.Context) (UploadTicket, error) {
	objectID := uuid.New().String()

	m.mu.Lock()
	m.objects[objectID] = &memObject{}
	m.mu.Unlock()

	return UploadTicket{
		UploadURL: fmt.Sprintf("%s/upload/%s", m.baseURL, objectID),
		ObjectID:  objectID,
	}, nil
}

func (m *MemoryStore) Resolve(ctx context.Context, objectID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[objectID]
	if !ok || !obj.uploaded {
		return "", nil
	}
	return fmt.Sprintf("%s/object/%s", m.baseURL, objectID), nil
}

func (m *MemoryStore) Delete(ctx context.Context, objectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, objectID)
	return nil
}

// Put completes an upload directly, bypassing HTTP. Test convenience.
func (m *MemoryStore) Put(objectID string, data []byte, contentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectID] = &memObject{data: data, contentType: contentType, uploaded: true}
}

// Handler serves PUT /upload/{id} and GET /object/{id}.
func (m *MemoryStore) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/upload/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut && r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		objectID := strings.TrimPrefix(r.URL.Path, "/upload/")

		m.mu.Lock()
		obj, ok := m.objects[objectID]
		m.mu.Unlock()
		if !ok {
			http.Error(w, "unknown upload ticket", http.StatusNotFound)
			return
		}

		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}

		m.mu.Lock()
		obj.data = data
		obj.contentType = r.Header.Get("Content-Type")
		obj.uploaded = true
		m.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"storageId":%q}`, objectID)
	})

	mux.HandleFunc("/object/", func(w http.ResponseWriter, r *http.Request) {
		objectID := strings.TrimPrefix(r.URL.Path, "/object/")

		m.mu.Lock()
		obj, ok := m.objects[objectID]
		m.mu.Unlock()
		if !ok || !obj.uploaded {
			http.NotFound(w, r)
			return
		}

		if obj.contentType != "" {
			w.Header().Set("Content-Type", obj.contentType)
		}
		_, _ = w.Write(obj.data)
	})

	return mux
}
