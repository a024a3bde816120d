package infra

import (
	"strings"
	"testing"

	"scenestudio/internal/sqlinline"
)

func TestExtractMarker(t *testing.T) {
	marker, body, err := extractMarker(sqlinline.QListHistory)
	if err != nil {
		t.Fatalf("extractMarker returned error: %v", err)
	}
	if len(marker) != 36 {
		t.Fatalf("marker = %q, want a uuid", marker)
	}
	if strings.Contains(body, "--sql") {
		t.Fatalf("marker line leaked into the statement: %q", body)
	}
	if !strings.Contains(strings.ToLower(body), "select") {
		t.Fatalf("statement body = %q", body)
	}
}

func TestExtractMarkerRejectsUnmarkedSQL(t *testing.T) {
	for _, query := range []string{
		"",
		"SELECT 1",
		"--sql not-a-uuid\nSELECT 1",
	} {
		if _, _, err := extractMarker(query); err == nil {
			t.Fatalf("extractMarker accepted %q", query)
		}
	}
}
