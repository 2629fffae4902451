package document

// Capabilities lists the interactions a node kind supports.
type Capabilities struct {
	Draggable    bool
	Resizable    bool
	Rotatable    bool
	Connectable  bool
	TextEditable bool
}

var capabilities = map[NodeKind]Capabilities{
	KindGeometry: {
		Draggable:   true,
		Resizable:   true,
		Rotatable:   true,
		Connectable: true,
	},
	KindText: {
		Draggable:    true,
		Resizable:    true,
		Rotatable:    true,
		Connectable:  true,
		TextEditable: true,
	},
	// Connectors follow their endpoints and are edited through them.
	KindConnector: {},
}

// CapabilitiesOf returns the capability set for a node kind. Unknown kinds
// support nothing.
func CapabilitiesOf(kind NodeKind) Capabilities {
	return capabilities[kind]
}

func (n Node) Capabilities() Capabilities {
	return CapabilitiesOf(n.Type)
}
