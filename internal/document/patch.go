package document

// PositionUpdate moves one node to an absolute position.
type PositionUpdate struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// TransformUpdate replaces any of a node's position, size and rotation.
// Nil fields are left unchanged.
type TransformUpdate struct {
	ID       string   `json:"id"`
	Position *Point   `json:"position,omitempty"`
	Size     *Size    `json:"size,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`
}

// NodePatch is a partial node update. Nil fields are left unchanged.
// Data keys are merged into the existing data.
type NodePatch struct {
	Position *Point         `json:"position,omitempty"`
	Size     *Size          `json:"size,omitempty"`
	Rotation *float64       `json:"rotation,omitempty"`
	Style    *Style         `json:"style,omitempty"`
	Shape    ShapeKind      `json:"kind,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Source   *Endpoint      `json:"source,omitempty"`
	Target   *Endpoint      `json:"target,omitempty"`
	Mode     ConnectorMode  `json:"mode,omitempty"`
}

// Apply returns a copy of n with the transform applied.
func (u TransformUpdate) Apply(n Node) Node {
	if u.Position != nil {
		n.Position = *u.Position
	}
	if u.Size != nil {
		n.Size = *u.Size
	}
	if u.Rotation != nil {
		n.Rotation = *u.Rotation
	}
	return n
}

// Apply returns a copy of n with the patch applied. Endpoint and mode fields
// only take effect on connectors, and shape only on geometry.
func (p NodePatch) Apply(n Node) Node {
	out := n.Clone()
	if p.Position != nil {
		out.Position = *p.Position
	}
	if p.Size != nil {
		out.Size = *p.Size
	}
	if p.Rotation != nil {
		out.Rotation = *p.Rotation
	}
	if p.Style != nil {
		out.Style = p.Style.clone()
	}
	if p.Shape != "" && out.Type == KindGeometry {
		out.Shape = p.Shape
	}
	if len(p.Data) > 0 {
		if out.Data == nil {
			out.Data = make(map[string]any, len(p.Data))
		}
		for k, v := range p.Data {
			out.Data[k] = v
		}
	}
	if out.Type == KindConnector {
		if p.Source != nil {
			e := p.Source.clone()
			out.Source = &e
		}
		if p.Target != nil {
			e := p.Target.clone()
			out.Target = &e
		}
		switch {
		case p.Mode != "":
			out.Mode = p.Mode
		case p.Source != nil || p.Target != nil:
			out.Mode = ModeOf(endpointOrZero(out.Source), endpointOrZero(out.Target))
		}
	}
	return out
}

func endpointOrZero(e *Endpoint) Endpoint {
	if e == nil {
		return Endpoint{}
	}
	return *e
}
