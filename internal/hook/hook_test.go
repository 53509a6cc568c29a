package hook

import "testing"

func TestIsKnown(t *testing.T) {
	for _, typ := range Known() {
		if !IsKnown(string(typ)) {
			t.Errorf("IsKnown(%q) = false, want true", typ)
		}
	}

	unknown := []string{"", "pretooluse", "PRETOOLUSE", "ToolUse", "SessionStart "}
	for _, s := range unknown {
		if IsKnown(s) {
			t.Errorf("IsKnown(%q) = true, want false", s)
		}
	}
}

func TestKnownIsACopy(t *testing.T) {
	first := Known()
	first[0] = Type("mutated")
	if Known()[0] != SessionStart {
		t.Error("Known() exposed internal slice")
	}
}

func TestKnownCoversAllEvents(t *testing.T) {
	want := map[Type]bool{
		SessionStart:     true,
		SessionEnd:       true,
		PreToolUse:       true,
		PostToolUse:      true,
		Stop:             true,
		SubagentStop:     true,
		Notification:     true,
		PreCompact:       true,
		UserPromptSubmit: true,
	}

	got := Known()
	if len(got) != len(want) {
		t.Fatalf("Known() has %d types, want %d", len(got), len(want))
	}
	for _, typ := range got {
		if !want[typ] {
			t.Errorf("Known() contains unexpected type %q", typ)
		}
	}
}
