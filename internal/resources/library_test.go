package resources

import (
	"strings"
	"testing"
)

func TestForTopic(t *testing.T) {
	lib := DefaultLibrary()
	crisis := ForTopic(lib, "crisis")
	if len(crisis) == 0 {
		t.Fatal("the default library must carry crisis resources")
	}
	for _, r := range crisis {
		if r.Topic != "crisis" {
			t.Errorf("unexpected topic %q for %s", r.Topic, r.Name)
		}
	}
	if got := ForTopic(lib, ""); len(got) != len(lib) {
		t.Errorf("empty topic must return everything, got %d of %d", len(got), len(lib))
	}
}

func TestLines_PhoneFirstEntries(t *testing.T) {
	lines := Lines(ForTopic(DefaultLibrary(), "crisis"))
	found := false
	for _, l := range lines {
		if strings.Contains(l, "024") {
			found = true
		}
	}
	if !found {
		t.Errorf("the 024 line must appear in crisis resources: %v", lines)
	}
}
