package scene

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"scenestudio/internal/imagedata"
)

// Element is one entry of a named list: a stable id, a display name, and an
// optional attached image.
type Element struct {
	ID    int64             `json:"id"`
	Name  string            `json:"name"`
	Image *imagedata.Record `json:"image,omitempty"`
}

// List is an ordered collection of elements with unique ids. Insertion order
// is preserved except where Reorder moves an element explicitly.
type List struct {
	label string
	next  func() int64
	elems []*Element
}

// Upload is a raw file handed to BulkAdd: a name, a declared content type, and
// the file bytes.
type Upload struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewList creates an empty list whose default element names start with label
// ("Character", "Object").
func NewList(label string) *List {
	return &List{label: label, next: timestampSequence()}
}

// timestampSequence yields ids from the creation timestamp, bumped past the
// previous value so two adds in the same millisecond still differ.
func timestampSequence() func() int64 {
	var last int64
	return func() int64 {
		id := time.Now().UnixMilli()
		if id <= last {
			id = last + 1
		}
		last = id
		return id
	}
}

// Add appends a new element with a fresh id and a positional default name.
func (l *List) Add() *Element {
	e := &Element{
		ID:   l.next(),
		Name: fmt.Sprintf("%s %d", l.label, len(l.elems)+1),
	}
	l.elems = append(l.elems, e)
	return e
}

// Remove deletes the element with the given id. Removing an unknown id is a
// no-op, not an error.
func (l *List) Remove(id int64) {
	for i, e := range l.elems {
		if e.ID == id {
			l.elems = append(l.elems[:i], l.elems[i+1:]...)
			return
		}
	}
}

// AttachImage sets or clears the element's image. When an image is attached
// and a source file name is supplied, the element is renamed after the file.
// Clearing the image leaves the name untouched. Returns false when the id is
// unknown.
func (l *List) AttachImage(id int64, image *imagedata.Record, sourceFileName string) bool {
	e := l.Get(id)
	if e == nil {
		return false
	}
	if image == nil {
		e.Image = nil
		return true
	}
	copied := *image
	e.Image = &copied
	if sourceFileName != "" {
		e.Name = NameFromFile(sourceFileName)
	}
	return true
}

// Reorder moves the element at from to the position to. A from equal to to is
// a silent no-op. An out-of-range from is rejected (returns false); an
// out-of-range to is clamped into the valid range, so a stale index can never
// corrupt the list.
func (l *List) Reorder(from, to int) bool {
	if from == to {
		return true
	}
	if from < 0 || from >= len(l.elems) {
		return false
	}
	if to < 0 {
		to = 0
	}
	if to >= len(l.elems) {
		to = len(l.elems) - 1
	}
	e := l.elems[from]
	l.elems = append(l.elems[:from], l.elems[from+1:]...)
	l.elems = append(l.elems[:to], append([]*Element{e}, l.elems[to:]...)...)
	return true
}

// BulkAdd filters uploads to image-typed files, decodes them all concurrently,
// and appends the results in decode-completion order. The list is only mutated
// after every decode succeeded; a single failure abandons the whole batch.
func (l *List) BulkAdd(ctx context.Context, uploads []Upload) error {
	type decoded struct {
		name string
		rec  imagedata.Record
	}

	var mu sync.Mutex
	var done []decoded

	g, gctx := errgroup.WithContext(ctx)
	for _, up := range uploads {
		if !strings.HasPrefix(up.ContentType, "image/") {
			continue
		}
		up := up
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if len(up.Data) == 0 {
				return fmt.Errorf("decode %s: %w", up.Name, imagedata.ErrFormat)
			}
			rec := imagedata.FromBytes(up.Data, up.ContentType)
			mu.Lock()
			done = append(done, decoded{name: NameFromFile(up.Name), rec: rec})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, d := range done {
		e := l.Add()
		e.Name = d.name
		rec := d.rec
		e.Image = &rec
	}
	return nil
}

// Clone returns an independent deep copy of the list and its elements.
func (l *List) Clone() *List {
	c := NewList(l.label)
	c.elems = make([]*Element, len(l.elems))
	for i, e := range l.elems {
		copied := *e
		if e.Image != nil {
			img := *e.Image
			copied.Image = &img
		}
		c.elems[i] = &copied
	}
	return c
}

// Get returns the element with the given id, or nil.
func (l *List) Get(id int64) *Element {
	for _, e := range l.elems {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Elements returns the elements in list order. The slice is a copy; the
// elements are shared.
func (l *List) Elements() []*Element {
	out := make([]*Element, len(l.elems))
	copy(out, l.elems)
	return out
}

// Len returns the number of elements.
func (l *List) Len() int {
	return len(l.elems)
}

// NameFromFile derives a display name from an uploaded file name: the base
// name without extension, with underscores and hyphens replaced by spaces.
func NameFromFile(fileName string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.NewReplacer("_", " ", "-", " ").Replace(base)
}
