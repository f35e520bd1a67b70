package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Version
	Version = "v9.9.9"
	t.Cleanup(func() { Version = old })

	if !strings.Contains(String(), "version: v9.9.9") {
		t.Errorf("String() = %q", String())
	}
	if got := Get().Version; got != "v9.9.9" {
		t.Errorf("Get().Version = %q", got)
	}
	if !strings.HasPrefix(Template(), "{{.Name}} v9.9.9") {
		t.Errorf("Template() = %q", Template())
	}
}
