package scene

import (
	"fmt"
	"strings"
)

// BuildPrompt converts the current form state into the natural-language
// instruction sent to the image model. Deterministic and side-effect free:
// identical scenes always yield an identical string.
func BuildPrompt(s *Scene) string {
	var clauses []string

	text := strings.TrimSpace(s.Text)
	if text != "" {
		clauses = append(clauses, fmt.Sprintf("Create an image in a %s aspect ratio of the following scene: %s", s.AspectRatio, text))
	} else {
		clauses = append(clauses, fmt.Sprintf("Create an image in a %s aspect ratio.", s.AspectRatio))
	}

	characters := featuredNames(s.Characters)
	if len(characters) > 0 {
		clauses = append(clauses, "Featuring characters: "+strings.Join(characters, ", ")+".")
	}

	objects := featuredNames(s.Objects)
	if len(objects) > 0 {
		clauses = append(clauses, "Including objects: "+strings.Join(objects, ", ")+".")
	}

	if s.Location != nil {
		clauses = append(clauses, "Use the provided location image as the background of the scene.")
	}

	clauses = append(clauses,
		fmt.Sprintf("Lighting: %s.", s.Lighting),
		fmt.Sprintf("Camera perspective: %s.", s.Camera),
	)

	if len(characters) > 0 || len(objects) > 0 || s.Style != nil || s.Location != nil {
		clauses = append(clauses, "Use the provided images as reference to keep characters, objects, location and style consistent.")
	}

	return strings.Join(clauses, " ")
}

// BuildEditInstruction assembles the instruction for edit mode: the user's
// edit text plus reference clauses naming the imaged characters and objects.
func BuildEditInstruction(s *Scene) string {
	clauses := []string{strings.TrimSpace(s.EditText)}

	if characters := featuredNames(s.Characters); len(characters) > 0 {
		clauses = append(clauses, "Use the reference images of these characters: "+strings.Join(characters, ", ")+".")
	}
	if objects := featuredNames(s.Objects); len(objects) > 0 {
		clauses = append(clauses, "Use the reference images of these objects: "+strings.Join(objects, ", ")+".")
	}

	return strings.Join(clauses, " ")
}

// featuredNames lists, in list order, the names of elements that carry both a
// non-blank name and an attached image.
func featuredNames(l *List) []string {
	var names []string
	for _, e := range l.Elements() {
		if e.Image == nil {
			continue
		}
		if strings.TrimSpace(e.Name) == "" {
			continue
		}
		names = append(names, e.Name)
	}
	return names
}
