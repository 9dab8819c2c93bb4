package classify

import "testing"

func TestClassifyKinds(t *testing.T) {
	c := Default()

	tests := []struct {
		line string
		kind Kind
		text string
	}{
		{"", Blank, ""},
		{"   \t", Blank, ""},
		{"# Overview", Header, "Overview"},
		{"### Deep   ", Header, "Deep"},
		{"#hashtag", Plain, "#hashtag"},
		{"#   ", Plain, "#"},
		{"Features:", ListSection, "Features:"},
		{"- hooks::  ", ListSection, "hooks:"},
		{"Adventure Hooks:", ListSection, "Adventure Hooks:"},
		{"  Risk:", ListSection, "Risk:"},
		{"Type: NPC", Property, "Type: NPC"},
		{"  current events: a feast", Property, "current events: a feast"},
		{"type:: NPC", Plain, "type:: NPC"},
		{"Empty:", Plain, "Empty:"},
		{"- Busy harbor", Bullet, "Busy harbor"},
		{"* Starred", Bullet, "Starred"},
		{"-", Bullet, ""},
		{"**bold** words", Plain, "**bold** words"},
		{"---", Plain, "---"},
		{"Salem is a port city.", Plain, "Salem is a port city."},
	}

	for _, tt := range tests {
		got := c.Classify(tt.line)
		if got.Kind != tt.kind {
			t.Errorf("Classify(%q).Kind = %s, want %s", tt.line, got.Kind, tt.kind)
			continue
		}
		if got.Text != tt.text {
			t.Errorf("Classify(%q).Text = %q, want %q", tt.line, got.Text, tt.text)
		}
	}
}

func TestClassifyHeaderLevel(t *testing.T) {
	c := Default()
	for level, line := range map[int]string{1: "# A", 2: "## B", 5: "##### E"} {
		got := c.Classify(line)
		if got.Kind != Header || got.Level != level {
			t.Errorf("Classify(%q) = %s level %d, want header level %d", line, got.Kind, got.Level, level)
		}
	}
}

func TestClassifyBulletTabs(t *testing.T) {
	c := Default()

	got := c.Classify("\t\t- nested")
	if got.Kind != Bullet {
		t.Fatalf("expected bullet, got %s", got.Kind)
	}
	if got.Tabs != 2 {
		t.Errorf("Tabs = %d, want 2", got.Tabs)
	}
	if got.Marker != '-' {
		t.Errorf("Marker = %q, want '-'", got.Marker)
	}

	star := c.Classify("\t* star")
	if star.Marker != '*' || star.Tabs != 1 || star.Text != "star" {
		t.Errorf("unexpected star bullet: %+v", star)
	}

	spaced := c.Classify("  - spaced")
	if spaced.Tabs != 0 {
		t.Errorf("space indentation should not count as tabs, got %d", spaced.Tabs)
	}
}

func TestClassifyCarriageReturn(t *testing.T) {
	c := Default()
	got := c.Classify("# Title\r")
	if got.Kind != Header || got.Text != "Title" {
		t.Errorf("CRLF header not handled: %+v", got)
	}
}

func TestNewCustomLabels(t *testing.T) {
	c, err := New([]string{"Loot", "All(y|ies)"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if !c.IsListSection("Ally:") {
		t.Error("expected 'Ally:' to be a list section")
	}
	if !c.IsListSection("- LOOT:") {
		t.Error("labels should match case-insensitively")
	}
	if c.IsListSection("Features:") {
		t.Error("default labels should not apply to a custom classifier")
	}
	if len(c.Labels()) != 2 {
		t.Errorf("Labels() = %v", c.Labels())
	}
}

func TestNewInvalidLabel(t *testing.T) {
	if _, err := New([]string{"Broken("}); err == nil {
		t.Error("expected error for invalid label pattern")
	}
}

func TestNewNoLabels(t *testing.T) {
	c, err := New(nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Classify("Features:"); got.Kind != Plain {
		t.Errorf("without labels 'Features:' should be plain, got %s", got.Kind)
	}
}

func TestKindString(t *testing.T) {
	if ListSection.String() != "list-section" {
		t.Errorf("ListSection.String() = %q", ListSection.String())
	}
	if Kind(42).String() != "unknown" {
		t.Errorf("unknown kind should stringify as unknown")
	}
}
