package profile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/release-manifest/internal/config"
	"github.com/oshokin/release-manifest/internal/domain/manifest"
)

// Repository defines persistence operations for profile documents.
// Identifiers are compared by their string form.
type Repository interface {
	GetAll(ctx context.Context) ([]manifest.Document, error)
	Get(ctx context.Context, id string) (manifest.Document, error)
	Upsert(ctx context.Context, doc manifest.Document) (created bool, err error)
	Put(ctx context.Context, id string, doc manifest.Document) (created bool, err error)
	ReplaceAll(ctx context.Context, docs []manifest.Document) error
	Delete(ctx context.Context, id string) (bool, error)
}

// FileRepository persists profiles to a JSON file on disk.
// JSON is produced and consumed via protobuf JSON (protojson) over
// structpb.ListValue so stored documents match what the API transports.
type FileRepository struct {
	// path is the filesystem location of the JSON profiles file.
	path string
	// mu serialises read-modify-write cycles on the file.
	mu sync.Mutex
}

var (
	// ErrNotFound is returned when no profile matches the requested id.
	ErrNotFound = errors.New("profile not found")
	// ErrMissingID is returned when upserting a document without sw_package_id.
	ErrMissingID = fmt.Errorf("%w: sw_package_id is required", manifest.ErrInvalidInput)
)

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// GetAll returns every stored profile in storage order.
func (r *FileRepository) GetAll(_ context.Context) ([]manifest.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

// Get returns the profile with the given id.
func (r *FileRepository) Get(_ context.Context, id string) (manifest.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := r.load()
	if err != nil {
		return nil, err
	}

	if i := indexByID(profiles, id); i >= 0 {
		return profiles[i], nil
	}

	return nil, ErrNotFound
}

// Upsert replaces the profile with the same id in place or appends a new one.
func (r *FileRepository) Upsert(ctx context.Context, doc manifest.Document) (bool, error) {
	if !doc.HasID() {
		return false, ErrMissingID
	}

	return r.Put(ctx, doc.ID(), doc)
}

// Put stores doc in the slot of id, in place when it exists and appended
// otherwise. The stored document keeps its own sw_package_id.
func (r *FileRepository) Put(_ context.Context, id string, doc manifest.Document) (bool, error) {
	if id == "" {
		return false, ErrMissingID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := r.load()
	if err != nil {
		return false, err
	}

	created := false
	if i := indexByID(profiles, id); i >= 0 {
		profiles[i] = doc
	} else {
		profiles = append(profiles, doc)
		created = true
	}

	if err = r.save(profiles); err != nil {
		return false, err
	}

	return created, nil
}

// ReplaceAll overwrites the stored list.
func (r *FileRepository) ReplaceAll(_ context.Context, docs []manifest.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.save(docs)
}

// Delete removes the profile with the given id and reports whether it existed.
func (r *FileRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profiles, err := r.load()
	if err != nil {
		return false, err
	}

	i := indexByID(profiles, id)
	if i < 0 {
		return false, nil
	}

	profiles = append(profiles[:i], profiles[i+1:]...)

	if err = r.save(profiles); err != nil {
		return false, err
	}

	return true, nil
}

// load reads the file; a missing or empty file is an empty list.
func (r *FileRepository) load() ([]manifest.Document, error) {
	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	if len(contents) == 0 {
		return nil, nil
	}

	var list structpb.ListValue
	if err = protojson.Unmarshal(contents, &list); err != nil {
		return nil, fmt.Errorf("decode profiles file: %w", err)
	}

	items := list.AsSlice()
	profiles := make([]manifest.Document, 0, len(items))

	for i, item := range items {
		doc, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("decode profiles file: entry %d is not an object", i)
		}

		profiles = append(profiles, doc)
	}

	return profiles, nil
}

func (r *FileRepository) save(profiles []manifest.Document) error {
	list, err := ToListValue(profiles)
	if err != nil {
		return err
	}

	marshalOptions := protojson.MarshalOptions{
		Multiline: true,
		Indent:    "  ",
	}

	data, err := marshalOptions.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write profiles file: %w", err)
	}

	return nil
}

// ToListValue converts documents to a protobuf list.
func ToListValue(docs []manifest.Document) (*structpb.ListValue, error) {
	items := make([]any, 0, len(docs))
	for _, doc := range docs {
		items = append(items, map[string]any(doc.Clone()))
	}

	list, err := structpb.NewList(items)
	if err != nil {
		return nil, fmt.Errorf("encode profiles: %w", err)
	}

	return list, nil
}

func indexByID(profiles []manifest.Document, id string) int {
	for i, p := range profiles {
		if manifest.SameID(p[manifest.IDKey], id) {
			return i
		}
	}

	return -1
}
