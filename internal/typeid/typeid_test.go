package typeid

import "testing"

func TestNewAndValidate(t *testing.T) {
	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"board", NewBoardID, PrefixBoard},
		{"node", NewNodeID, PrefixNode},
		{"edge", NewEdgeID, PrefixEdge},
		{"group", NewGroupID, PrefixGroup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := tt.gen()
			if err := Validate(id, tt.prefix); err != nil {
				t.Fatalf("Validate(%q) error = %v", id, err)
			}
		})
	}
}

func TestValidateWrongPrefix(t *testing.T) {
	id := NewNodeID()
	if err := Validate(id, PrefixBoard); err == nil {
		t.Errorf("Validate(%q, %q) should fail", id, PrefixBoard)
	}
	if err := Validate("not-an-id", PrefixNode); err == nil {
		t.Error("Validate should reject malformed ids")
	}
}

func TestNewIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewNodeID()
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}
