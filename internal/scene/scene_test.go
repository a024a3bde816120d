package scene

import (
	"testing"
)

func TestCloneIsIndependent(t *testing.T) {
	img := testImage(t)

	s := New()
	s.Text = "a ruined abbey"
	s.NumberOfImages = 3
	s.Location = img
	s.Characters.Add()
	if !s.Characters.AttachImage(s.Characters.Elements()[0].ID, img, "monk.png") {
		t.Fatal("attach failed")
	}

	c := s.Clone()

	// Mutations on the original must not show through the clone.
	s.Text = "midnight market"
	s.NumberOfImages = 1
	s.Location = nil
	s.Characters.Add()
	s.Characters.Elements()[0].Name = "renamed"

	if c.Text != "a ruined abbey" || c.NumberOfImages != 3 {
		t.Fatalf("clone scalar fields changed: %q %d", c.Text, c.NumberOfImages)
	}
	if c.Location == nil || c.Location.Data != img.Data {
		t.Fatal("clone lost its location image")
	}
	if c.Characters.Len() != 1 {
		t.Fatalf("clone characters = %d, want 1", c.Characters.Len())
	}
	if got := c.Characters.Elements()[0].Name; got != "monk" {
		t.Fatalf("clone character name = %q, want unaffected", got)
	}

	// And the other way around.
	c.Objects.Add()
	if s.Objects.Len() != 0 {
		t.Fatalf("original objects = %d after clone mutation, want 0", s.Objects.Len())
	}
}
