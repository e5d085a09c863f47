// Package storefs keeps CV documents and exported PDFs on the local
// filesystem. Writes go through a temp file and rename so readers never
// observe partial files.
package storefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-cvbuilder/cv"
)

const (
	documentsDir = "documents"
	artifactsDir = "exports"
)

// Store is a filesystem-backed cv.Persistence and cv.ArtifactStore.
type Store struct {
	Root string
	Now  func() time.Time
}

var (
	_ cv.Persistence   = (*Store)(nil)
	_ cv.ArtifactStore = (*Store)(nil)
)

// NewStore creates a store rooted at root.
func NewStore(root string) *Store {
	return &Store{Root: root, Now: time.Now}
}

// Save writes doc to documents/<id>.json.
func (s *Store) Save(ctx context.Context, doc cv.Document) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	name, err := documentFile(doc.ID)
	if err != nil {
		return err
	}
	target, err := s.resolve(documentsDir, name)
	if err != nil {
		return err
	}
	data, err := cv.MarshalDocument(doc)
	if err != nil {
		return cv.NewError(cv.KindPersistence, "encode document", err)
	}
	if _, err := writeAtomic(target, ".doc-*", func(w io.Writer) (int64, error) {
		n, err := w.Write(data)
		return int64(n), err
	}); err != nil {
		return cv.NewError(cv.KindPersistence, fmt.Sprintf("save document %q", doc.ID), err)
	}
	return nil
}

// Load reads a document by id.
func (s *Store) Load(ctx context.Context, id string) (cv.Document, error) {
	if err := s.check(ctx); err != nil {
		return cv.Document{}, err
	}
	name, err := documentFile(id)
	if err != nil {
		return cv.Document{}, err
	}
	target, err := s.resolve(documentsDir, name)
	if err != nil {
		return cv.Document{}, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cv.Document{}, cv.NewError(cv.KindNotFound, fmt.Sprintf("document %q not found", id), err)
		}
		return cv.Document{}, cv.NewError(cv.KindPersistence, fmt.Sprintf("load document %q", id), err)
	}
	doc, err := cv.UnmarshalDocument(data)
	if err != nil {
		return cv.Document{}, cv.NewError(cv.KindPersistence, fmt.Sprintf("decode document %q", id), err)
	}
	return doc, nil
}

// Documents lists stored document ids in lexical order.
func (s *Store) Documents(ctx context.Context) ([]string, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	dir, err := s.areaRoot(documentsDir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, cv.NewError(cv.KindPersistence, "list documents", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Put stores a PDF under exports/<key>.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, meta cv.ArtifactMeta) (cv.ArtifactRef, error) {
	if err := s.check(ctx); err != nil {
		return cv.ArtifactRef{}, err
	}
	if key == "" {
		return cv.ArtifactRef{}, cv.NewError(cv.KindValidation, "artifact key is required", nil)
	}
	target, err := s.resolve(artifactsDir, key)
	if err != nil {
		return cv.ArtifactRef{}, err
	}

	size, err := writeAtomic(target, ".export-*", func(w io.Writer) (int64, error) {
		return io.Copy(w, r)
	})
	if err != nil {
		return cv.ArtifactRef{}, cv.NewError(cv.KindPersistence, fmt.Sprintf("store artifact %q", key), err)
	}

	meta.Size = size
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = s.now()
	}
	if meta.ContentType == "" {
		meta.ContentType = mime.TypeByExtension(filepath.Ext(target))
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return cv.ArtifactRef{}, cv.NewError(cv.KindPersistence, "encode artifact meta", err)
	}
	if _, err := writeAtomic(metaPath(target), ".meta-*", func(w io.Writer) (int64, error) {
		n, err := w.Write(payload)
		return int64(n), err
	}); err != nil {
		return cv.ArtifactRef{}, cv.NewError(cv.KindPersistence, fmt.Sprintf("store artifact meta %q", key), err)
	}
	return cv.ArtifactRef{Key: key, Meta: meta}, nil
}

// Open reads a stored PDF. The caller closes the reader.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, cv.ArtifactMeta, error) {
	if err := s.check(ctx); err != nil {
		return nil, cv.ArtifactMeta{}, err
	}
	target, err := s.resolve(artifactsDir, key)
	if err != nil {
		return nil, cv.ArtifactMeta{}, err
	}
	file, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cv.ArtifactMeta{}, cv.NewError(cv.KindNotFound, fmt.Sprintf("artifact %q not found", key), err)
		}
		return nil, cv.ArtifactMeta{}, cv.NewError(cv.KindPersistence, fmt.Sprintf("open artifact %q", key), err)
	}

	meta := readMeta(target)
	if meta.ContentType == "" {
		meta.ContentType = mime.TypeByExtension(filepath.Ext(target))
	}
	if meta.Size == 0 {
		if info, err := file.Stat(); err == nil {
			meta.Size = info.Size()
			if meta.CreatedAt.IsZero() {
				meta.CreatedAt = info.ModTime()
			}
		}
	}
	return file, meta, nil
}

// Delete removes a stored PDF and its metadata. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	target, err := s.resolve(artifactsDir, key)
	if err != nil {
		return err
	}
	for _, p := range []string{target, metaPath(target)} {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cv.NewError(cv.KindPersistence, fmt.Sprintf("delete artifact %q", key), err)
		}
	}
	return nil
}

func (s *Store) check(ctx context.Context) error {
	if s == nil {
		return cv.NewError(cv.KindInternal, "store is nil", nil)
	}
	if s.Root == "" {
		return cv.NewError(cv.KindValidation, "store root is required", nil)
	}
	return ctx.Err()
}

func (s *Store) areaRoot(area string) (string, error) {
	root, err := filepath.Abs(filepath.Join(s.Root, area))
	if err != nil {
		return "", cv.NewError(cv.KindInternal, "resolve store root", err)
	}
	return root, nil
}

// resolve maps key below Root/area, rejecting keys that escape it.
func (s *Store) resolve(area, key string) (string, error) {
	rel := strings.TrimPrefix(path.Clean("/"+key), "/")
	if rel == "" {
		return "", cv.NewError(cv.KindValidation, "invalid key", nil)
	}
	root, err := s.areaRoot(area)
	if err != nil {
		return "", err
	}
	target := filepath.Join(root, filepath.FromSlash(rel))
	if !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", cv.NewError(cv.KindValidation, "key escapes store root", nil)
	}
	return target, nil
}

func documentFile(id string) (string, error) {
	if id == "" {
		return "", cv.NewError(cv.KindValidation, "document id is required", nil)
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", cv.NewError(cv.KindValidation, fmt.Sprintf("invalid document id %q", id), nil)
	}
	return id + ".json", nil
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

func writeAtomic(target, pattern string, fill func(io.Writer) (int64, error)) (int64, error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	n, err := fill(tmp)
	if err != nil {
		return n, err
	}
	if err := tmp.Sync(); err != nil {
		return n, err
	}
	if err := tmp.Close(); err != nil {
		return n, err
	}
	return n, os.Rename(tmp.Name(), target)
}

func readMeta(target string) cv.ArtifactMeta {
	data, err := os.ReadFile(metaPath(target))
	if err != nil {
		return cv.ArtifactMeta{}
	}
	var meta cv.ArtifactMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return cv.ArtifactMeta{}
	}
	return meta
}

func metaPath(target string) string {
	return target + ".meta.json"
}
