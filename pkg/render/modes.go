package render

import (
	"fmt"
	"strings"
)

// PipelineMode selects which pipeline renders a frame.
type PipelineMode int

const (
	Hardware PipelineMode = iota // External graphics device
	Software                     // CPU rasterizer
)

var pipelineNames = [...]string{"hardware", "software"}

func (m PipelineMode) String() string {
	if m < 0 || int(m) >= len(pipelineNames) {
		return fmt.Sprintf("PipelineMode(%d)", int(m))
	}
	return pipelineNames[m]
}

// Next returns the other pipeline.
func (m PipelineMode) Next() PipelineMode {
	return (m + 1) % PipelineMode(len(pipelineNames))
}

// MarshalText implements encoding.TextMarshaler.
func (m PipelineMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *PipelineMode) UnmarshalText(text []byte) error {
	v, err := parseEnum("pipeline mode", text, pipelineNames[:])
	if err != nil {
		return err
	}
	*m = PipelineMode(v)
	return nil
}

// CullMode selects which triangle facing the rasterizer rejects.
type CullMode int

const (
	CullBack  CullMode = iota // Reject triangles facing away
	CullFront                 // Reject triangles facing the camera
	CullNone                  // Draw both facings
)

var cullNames = [...]string{"back", "front", "none"}

func (c CullMode) String() string {
	if c < 0 || int(c) >= len(cullNames) {
		return fmt.Sprintf("CullMode(%d)", int(c))
	}
	return cullNames[c]
}

// Next cycles back -> front -> none -> back.
func (c CullMode) Next() CullMode {
	return (c + 1) % CullMode(len(cullNames))
}

// MarshalText implements encoding.TextMarshaler.
func (c CullMode) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CullMode) UnmarshalText(text []byte) error {
	v, err := parseEnum("cull mode", text, cullNames[:])
	if err != nil {
		return err
	}
	*c = CullMode(v)
	return nil
}

// FilterMode selects the texture filter of the hardware pipeline. The
// software sampler is always nearest-neighbour.
type FilterMode int

const (
	FilterPoint FilterMode = iota
	FilterLinear
	FilterAnisotropic
)

var filterNames = [...]string{"point", "linear", "anisotropic"}

func (f FilterMode) String() string {
	if f < 0 || int(f) >= len(filterNames) {
		return fmt.Sprintf("FilterMode(%d)", int(f))
	}
	return filterNames[f]
}

// Next cycles point -> linear -> anisotropic -> point.
func (f FilterMode) Next() FilterMode {
	return (f + 1) % FilterMode(len(filterNames))
}

// MarshalText implements encoding.TextMarshaler.
func (f FilterMode) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FilterMode) UnmarshalText(text []byte) error {
	v, err := parseEnum("filter mode", text, filterNames[:])
	if err != nil {
		return err
	}
	*f = FilterMode(v)
	return nil
}

func parseEnum(kind string, text []byte, names []string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, name := range names {
		if s == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q (want one of %s)", kind, s, strings.Join(names, ", "))
}
