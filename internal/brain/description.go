package brain

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/neurosim/internal/neural"
	"gopkg.in/yaml.v3"
)

// Description is a declarative robot brain: its neurons, the weighted edges
// between them, and how it attaches to a body.
type Description struct {
	XMLName     xml.Name         `yaml:"-" xml:"brain"`
	Name        string           `yaml:"name" xml:"name,attr"`
	Body        string           `yaml:"body,omitempty" xml:"body,attr,omitempty"`
	MaxWeight   float64          `yaml:"max_weight,omitempty" xml:"max_weight,attr,omitempty"`
	Capacity    *CapacitySpec    `yaml:"capacity,omitempty" xml:"capacity,omitempty"`
	Neurons     []NeuronSpec     `yaml:"neurons" xml:"neuron"`
	Connections []ConnectionSpec `yaml:"connections,omitempty" xml:"connection"`
	Sensors     []SensorSpec     `yaml:"sensors,omitempty" xml:"sensor"`
	Actuators   []ActuatorSpec   `yaml:"actuators,omitempty" xml:"actuator"`
}

// CapacitySpec reserves room for neurons added by later mutations.
type CapacitySpec struct {
	Inputs    int `yaml:"inputs" xml:"inputs,attr"`
	NonInputs int `yaml:"non_inputs" xml:"non_inputs,attr"`
}

// NeuronSpec describes one neuron. Attribute pointers stay nil when the
// attribute is absent so defaults and required checks can tell them apart.
type NeuronSpec struct {
	ID     string    `yaml:"id" xml:"id,attr"`
	Layer  string    `yaml:"layer" xml:"layer,attr"`
	Type   string    `yaml:"type,omitempty" xml:"type,attr,omitempty"`
	Bias   *float64  `yaml:"bias,omitempty" xml:"bias,attr,omitempty"`
	Gain   *float64  `yaml:"gain,omitempty" xml:"gain,attr,omitempty"`
	Period *float64  `yaml:"period,omitempty" xml:"period,attr,omitempty"`
	Phase  *float64  `yaml:"phase,omitempty" xml:"phase,attr,omitempty"`
	Params []float64 `yaml:"params,omitempty" xml:"-"`
}

type ConnectionSpec struct {
	Src    string   `yaml:"src" xml:"src,attr"`
	Dst    string   `yaml:"dst" xml:"dst,attr"`
	Weight *float64 `yaml:"weight" xml:"weight,attr"`
}

// SensorSpec feeds state[State]*Scale+Offset into input neuron Input.
type SensorSpec struct {
	Input  string   `yaml:"input" xml:"input,attr"`
	State  *int     `yaml:"state" xml:"state,attr"`
	Scale  *float64 `yaml:"scale,omitempty" xml:"scale,attr,omitempty"`
	Offset float64  `yaml:"offset,omitempty" xml:"offset,attr,omitempty"`
}

// ActuatorSpec adds output*Scale+Offset to control channel Control.
type ActuatorSpec struct {
	Output  string   `yaml:"output" xml:"output,attr"`
	Control *int     `yaml:"control" xml:"control,attr"`
	Scale   *float64 `yaml:"scale,omitempty" xml:"scale,attr,omitempty"`
	Offset  float64  `yaml:"offset,omitempty" xml:"offset,attr,omitempty"`
}

// ParseYAML decodes a description without validating it.
func ParseYAML(data []byte) (*Description, error) {
	var d Description
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, &neural.ConfigurationError{Source: "yaml", Err: fmt.Errorf("%w: %v", neural.ErrMalformed, err)}
	}
	return &d, nil
}

// ParseXML decodes the <brain> element tree form.
func ParseXML(data []byte) (*Description, error) {
	var d Description
	if err := xml.Unmarshal(data, &d); err != nil {
		return nil, &neural.ConfigurationError{Source: "xml", Err: fmt.Errorf("%w: %v", neural.ErrMalformed, err)}
	}
	return &d, nil
}

// LoadYAML reads and validates a YAML description.
func LoadYAML(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := ParseYAML(data)
	if err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Load reads a description, choosing the format from the file extension.
func Load(path string) (*Description, error) {
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		d, err := ParseXML(data)
		if err != nil {
			return nil, err
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		return d, nil
	}
	return LoadYAML(path)
}

// EncodeYAML renders d in the YAML form accepted by ParseYAML.
func (d *Description) EncodeYAML() ([]byte, error) {
	return yaml.Marshal(d)
}

// EncodeXML renders d as an indented <brain> document.
func (d *Description) EncodeXML() ([]byte, error) {
	out, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// Inputs returns the ids of input neurons in declaration order.
func (d *Description) Inputs() []string {
	var ids []string
	for _, n := range d.Neurons {
		if strings.EqualFold(n.Layer, "input") {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
