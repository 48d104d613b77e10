// Package dataset enumerates and reads collection files from a directory.
//
// Each *.json file holds the documents of one collection, named after the
// file (orders.json -> orders). A file whose top-level value is an array is
// a list of documents; any other value is a single document.
package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/schemata/pkg/schema"
)

var (
	// ErrSourceMissing is returned when the dataset location cannot be used at all.
	ErrSourceMissing = errors.New("dataset directory not accessible")

	// ErrUnreadable is returned when a single file cannot be read or parsed.
	ErrUnreadable = errors.New("unreadable document")
)

// Extension is the file extension of collection files.
const Extension = ".json"

// File is one collection file in the source directory.
type File struct {
	Name       string `json:"name"`
	Collection string `json:"collection"`
	Path       string `json:"-"`
}

// Source is a directory of collection files.
type Source struct {
	Dir string
}

// Open checks that dir is an accessible directory.
func Open(dir string) (*Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceMissing, dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceMissing, dir)
	}
	return &Source{Dir: dir}, nil
}

// Files lists the collection files sorted by name.
func (s *Source) Files() ([]File, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceMissing, err)
	}

	files := make([]File, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, Extension) {
			continue
		}
		files = append(files, File{
			Name:       name,
			Collection: strings.TrimSuffix(name, Extension),
			Path:       filepath.Join(s.Dir, name),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Read parses f and returns its documents in file order.
func (s *Source) Read(f File) ([]schema.Value, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, f.Name, err)
	}
	docs, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, f.Name, err)
	}
	return docs, nil
}

// Decode parses raw JSON into a list of documents: the elements of a
// top-level array, or the single top-level value.
func Decode(data []byte) ([]schema.Value, error) {
	v, err := schema.ParseJSON(data)
	if err != nil {
		return nil, err
	}
	if v.Kind() == schema.ArrayValue {
		return v.Items(), nil
	}
	return []schema.Value{v}, nil
}
