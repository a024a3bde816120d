package scene

import (
	"strings"
	"testing"

	"scenestudio/internal/imagedata"
)

func TestBuildPromptMinimal(t *testing.T) {
	s := New()
	s.AspectRatio = "16:9"
	s.Lighting = "L"
	s.Camera = "C"

	got := BuildPrompt(s)
	want := "Create an image in a 16:9 aspect ratio. Lighting: L. Camera perspective: C."
	if got != want {
		t.Fatalf("BuildPrompt = %q, want %q", got, want)
	}
	if strings.Contains(got, "Featuring") || strings.Contains(got, "consistent") {
		t.Fatalf("minimal prompt carries extra clauses: %q", got)
	}
}

func TestBuildPromptIncludesSceneText(t *testing.T) {
	s := New()
	s.Text = "a windswept cliff at dawn"
	s.Lighting = "Golden hour"
	s.Camera = "Wide shot"

	got := BuildPrompt(s)
	wantPrefix := "Create an image in a 16:9 aspect ratio of the following scene: a windswept cliff at dawn"
	if !strings.HasPrefix(got, wantPrefix) {
		t.Fatalf("BuildPrompt = %q, want prefix %q", got, wantPrefix)
	}
	if strings.TrimSpace(got) != got {
		t.Fatalf("prompt has surrounding whitespace: %q", got)
	}
}

func TestBuildPromptFeaturesOnlyNamedAndImagedCharacters(t *testing.T) {
	s := New()
	s.Lighting = "L"
	s.Camera = "C"

	hero := s.Characters.Add()
	hero.Name = "Hero"
	img := testImage(t)
	hero.Image = img

	// Named but no image: excluded.
	s.Characters.Add().Name = "Sidekick"

	// Imaged but blank name: excluded.
	blank := s.Characters.Add()
	blank.Name = "  "
	blank.Image = img

	got := BuildPrompt(s)
	if !strings.Contains(got, "Featuring characters: Hero.") {
		t.Fatalf("BuildPrompt = %q, want Hero featured", got)
	}
	if strings.Contains(got, "Sidekick") {
		t.Fatalf("BuildPrompt = %q, unimaged character leaked in", got)
	}
	if !strings.Contains(got, "keep characters, objects, location and style consistent") {
		t.Fatalf("BuildPrompt = %q, want consistency clause", got)
	}
}

func TestBuildPromptLocationAndObjects(t *testing.T) {
	s := New()
	s.Lighting = "Moody"
	s.Camera = "Low angle"
	img := testImage(t)
	s.Location = img

	sword := s.Objects.Add()
	sword.Name = "Sword"
	sword.Image = img
	lamp := s.Objects.Add()
	lamp.Name = "Lamp"
	lamp.Image = img

	got := BuildPrompt(s)
	if !strings.Contains(got, "Including objects: Sword, Lamp.") {
		t.Fatalf("BuildPrompt = %q, want objects clause in list order", got)
	}
	if !strings.Contains(got, "Use the provided location image as the background of the scene.") {
		t.Fatalf("BuildPrompt = %q, want location clause", got)
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	s := New()
	s.Text = "market square"
	img := testImage(t)
	s.Style = img
	c := s.Characters.Add()
	c.Name = "Vendor"
	c.Image = img

	first := BuildPrompt(s)
	for i := 0; i < 5; i++ {
		if got := BuildPrompt(s); got != first {
			t.Fatalf("BuildPrompt not deterministic: %q vs %q", got, first)
		}
	}
}

func TestBuildEditInstruction(t *testing.T) {
	s := New()
	s.EditText = "Make the sky stormy"
	img := testImage(t)
	c := s.Characters.Add()
	c.Name = "Hero"
	c.Image = img

	got := BuildEditInstruction(s)
	want := "Make the sky stormy Use the reference images of these characters: Hero."
	if got != want {
		t.Fatalf("BuildEditInstruction = %q, want %q", got, want)
	}

	s.Characters.Remove(c.ID)
	if got := BuildEditInstruction(s); got != "Make the sky stormy" {
		t.Fatalf("BuildEditInstruction = %q, want bare edit text", got)
	}
}

func TestNormalizeClampsAndDefaults(t *testing.T) {
	s := New()
	s.NumberOfImages = 9
	s.AspectRatio = "21:9"
	s.Lighting = " "
	s.Camera = ""
	s.Normalize()

	if s.NumberOfImages != MaxImages {
		t.Fatalf("NumberOfImages = %d, want %d", s.NumberOfImages, MaxImages)
	}
	if s.AspectRatio != DefaultAspectRatio {
		t.Fatalf("AspectRatio = %q, want %q", s.AspectRatio, DefaultAspectRatio)
	}
	if s.Lighting != DefaultLighting || s.Camera != DefaultCamera {
		t.Fatalf("Lighting/Camera = %q/%q, want defaults", s.Lighting, s.Camera)
	}
}

func TestReadyForGenerate(t *testing.T) {
	s := New()
	if s.ReadyForGenerate() {
		t.Fatal("empty scene reported ready")
	}
	s.Text = "castle"
	if !s.ReadyForGenerate() {
		t.Fatal("scene with text not ready")
	}

	s = New()
	e := s.Objects.Add()
	e.Image = testImage(t)
	if !s.ReadyForGenerate() {
		t.Fatal("scene with imaged object not ready")
	}

	s = New()
	s.Location = testImage(t)
	if !s.ReadyForGenerate() {
		t.Fatal("scene with location image not ready")
	}
}

func TestReferenceImageOrder(t *testing.T) {
	s := New()
	loc := imagedata.FromBytes([]byte("loc"), "image/png")
	ch := imagedata.FromBytes([]byte("ch"), "image/png")
	ob := imagedata.FromBytes([]byte("ob"), "image/png")
	s.Location = &loc
	c := s.Characters.Add()
	c.Image = &ch
	o := s.Objects.Add()
	o.Image = &ob

	refs := s.ReferenceImages()
	if len(refs) != 3 {
		t.Fatalf("len(refs) = %d, want 3", len(refs))
	}
	if refs[0] != loc || refs[1] != ch || refs[2] != ob {
		t.Fatalf("reference order wrong: %+v", refs)
	}
}
