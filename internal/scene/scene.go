// Package scene holds the composable form state behind the studio UI: the
// scene description, cinematic choices, the character and object lists, and
// the images that steer generation.
package scene

import (
	"strings"

	"scenestudio/internal/imagedata"
)

const (
	// DefaultAspectRatio is applied when the form omits the aspect ratio.
	DefaultAspectRatio = "16:9"
	// DefaultLighting is the initial lighting choice.
	DefaultLighting = "Natural"
	// DefaultCamera is the initial camera-perspective choice.
	DefaultCamera = "Eye-level"
	// MinImages and MaxImages bound the per-request generation count.
	MinImages = 1
	MaxImages = 4
)

var allowedAspectRatios = map[string]struct{}{
	"1:1":  {},
	"4:3":  {},
	"3:4":  {},
	"16:9": {},
	"9:16": {},
}

// Scene is the full form state for one composition session.
type Scene struct {
	Text           string
	AspectRatio    string
	Lighting       string
	Camera         string
	NumberOfImages int

	Characters *List
	Objects    *List

	Location *imagedata.Record
	Style    *imagedata.Record

	// Edit-mode state: the base image being edited and the instruction text.
	Base     *imagedata.Record
	EditText string
}

// New returns a scene with the studio defaults and empty lists.
func New() *Scene {
	return &Scene{
		AspectRatio:    DefaultAspectRatio,
		Lighting:       DefaultLighting,
		Camera:         DefaultCamera,
		NumberOfImages: MinImages,
		Characters:     NewList("Character"),
		Objects:        NewList("Object"),
	}
}

// Clone returns an independent deep copy. Generation runs work on a clone so
// concurrent form edits never touch the scene a run is reading.
func (s *Scene) Clone() *Scene {
	c := *s
	c.Characters = s.Characters.Clone()
	c.Objects = s.Objects.Clone()
	c.Location = cloneRecord(s.Location)
	c.Style = cloneRecord(s.Style)
	c.Base = cloneRecord(s.Base)
	return &c
}

func cloneRecord(r *imagedata.Record) *imagedata.Record {
	if r == nil {
		return nil
	}
	copied := *r
	return &copied
}

// Normalize clamps the image count and falls back to defaults for fields the
// client left empty or set to unsupported values.
func (s *Scene) Normalize() {
	if s.NumberOfImages < MinImages {
		s.NumberOfImages = MinImages
	}
	if s.NumberOfImages > MaxImages {
		s.NumberOfImages = MaxImages
	}
	if _, ok := allowedAspectRatios[s.AspectRatio]; !ok {
		s.AspectRatio = DefaultAspectRatio
	}
	if strings.TrimSpace(s.Lighting) == "" {
		s.Lighting = DefaultLighting
	}
	if strings.TrimSpace(s.Camera) == "" {
		s.Camera = DefaultCamera
	}
}

// ReadyForGenerate reports whether a generate request may start: at least one
// of scene text, an imaged character, an imaged object, or a location image.
func (s *Scene) ReadyForGenerate() bool {
	if strings.TrimSpace(s.Text) != "" {
		return true
	}
	if s.Location != nil {
		return true
	}
	for _, e := range s.Characters.Elements() {
		if e.Image != nil {
			return true
		}
	}
	for _, e := range s.Objects.Elements() {
		if e.Image != nil {
			return true
		}
	}
	return false
}

// ReadyForEdit reports whether an edit request may start: a base image and a
// non-blank instruction.
func (s *Scene) ReadyForEdit() bool {
	return s.Base != nil && strings.TrimSpace(s.EditText) != ""
}

// ReferenceImages returns the ordered reference set sent alongside the
// prompt: location image first, then character images, then object images.
func (s *Scene) ReferenceImages() []imagedata.Record {
	var refs []imagedata.Record
	if s.Location != nil {
		refs = append(refs, *s.Location)
	}
	for _, e := range s.Characters.Elements() {
		if e.Image != nil {
			refs = append(refs, *e.Image)
		}
	}
	for _, e := range s.Objects.Elements() {
		if e.Image != nil {
			refs = append(refs, *e.Image)
		}
	}
	return refs
}
