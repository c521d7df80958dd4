package irr

import (
	"io"
	"strings"
	"testing"
)

func collect(t *testing.T, s ElementStream) []Event {
	t.Helper()
	var out []Event
	for {
		ev, err := s.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, ev)
	}
}

func TestXMLStreamEvents(t *testing.T) {
	const doc = `<?xml version="1.0"?>
<!-- written by hand -->
<irr_scene>
	<node type='mesh' note="a &amp; b">
		<attributes>
			<string name="Name" value="room" />
		</attributes>
		text is ignored
	</node>
</irr_scene>`

	events := collect(t, NewXMLStream(strings.NewReader(doc)))

	want := []struct {
		kind EventKind
		name string
	}{
		{EventStart, "irr_scene"},
		{EventStart, "node"},
		{EventStart, "attributes"},
		{EventStart, "string"},
		{EventEnd, "string"},
		{EventEnd, "attributes"},
		{EventEnd, "node"},
		{EventEnd, "irr_scene"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events %v, want %d", len(events), events, len(want))
	}
	for i, w := range want {
		if events[i].Kind != w.kind || events[i].Name != w.name {
			t.Errorf("event %d = %s %q, want %s %q", i, events[i].Kind, events[i].Name, w.kind, w.name)
		}
	}

	node := events[1]
	if v, _ := node.Attr("type"); v != "mesh" {
		t.Errorf("type = %q, want mesh", v)
	}
	if v, _ := node.Attr("note"); v != "a & b" {
		t.Errorf("note = %q, want entity decoded", v)
	}
	if v, ok := events[3].Attr("value"); !ok || v != "room" {
		t.Errorf("value = %q, %v", v, ok)
	}
}

func TestEventAttr(t *testing.T) {
	ev := Event{Kind: EventStart, Name: "Node", Attrs: []Attr{
		{Name: "TYPE", Value: "upper"},
		{Name: "type", Value: "lower"},
	}}

	if !ev.Is("node") {
		t.Error("Is should ignore case")
	}
	if v, _ := ev.Attr("type"); v != "lower" {
		t.Errorf("exact match should win, got %q", v)
	}
	if v, _ := ev.Attr("Type"); v != "upper" {
		t.Errorf("case-insensitive match should return the first attribute, got %q", v)
	}
	if _, ok := ev.Attr("name"); ok {
		t.Error("missing attribute reported as present")
	}
}
