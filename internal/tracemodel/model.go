// Package tracemodel provides an in-memory trace: a topology of objects and a
// set of named windows over it, loaded from a YAML document.
package tracemodel

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sanspareilsmyn/tracelens/internal/histogram"
)

type modelFile struct {
	EndTime float64      `yaml:"endTime"`
	Levels  []Level      `yaml:"levels"`
	Windows []windowFile `yaml:"windows"`
}

type windowFile struct {
	Name  string       `yaml:"name"`
	Level string       `yaml:"level"`
	Rows  [][]Interval `yaml:"rows"`
	Comms []commFile   `yaml:"comms"`
}

type commFile struct {
	Row     int     `yaml:"row"`
	Time    float64 `yaml:"time"`
	Kind    string  `yaml:"kind"`
	Partner int     `yaml:"partner"`
	Size    int64   `yaml:"size"`
	Tag     int64   `yaml:"tag"`
}

var recordKinds = map[string]histogram.RecordKind{
	"send":            histogram.LogicalSend,
	"recv":            histogram.LogicalReceive,
	"receive":         histogram.LogicalReceive,
	"physicalsend":    histogram.PhysicalSend,
	"physicalrecv":    histogram.PhysicalReceive,
	"physicalreceive": histogram.PhysicalReceive,
}

// Model is a loaded trace.
type Model struct {
	topology *Topology
	windows  map[string]*Window
	names    []string
	endTime  float64
}

// Load reads and parses the YAML trace model at path.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadingModel, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Model, error) {
	var f modelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParsingModel, err)
	}

	t, err := NewTopology(f.Levels...)
	if err != nil {
		return nil, err
	}

	m := &Model{
		topology: t,
		windows:  make(map[string]*Window, len(f.Windows)),
	}
	for _, wf := range f.Windows {
		if wf.Name == "" {
			return nil, fmt.Errorf("%w: window without name", ErrInvalidModel)
		}
		if _, dup := m.windows[wf.Name]; dup {
			return nil, fmt.Errorf("%w: duplicated window %q", ErrInvalidModel, wf.Name)
		}
		level, err := t.LevelIndex(wf.Level)
		if err != nil {
			return nil, fmt.Errorf("window %q: %w", wf.Name, err)
		}
		comms, err := buildComms(wf, t.Objects(level))
		if err != nil {
			return nil, err
		}
		w, err := NewWindow(wf.Name, t, level, wf.Rows, comms)
		if err != nil {
			return nil, err
		}
		m.windows[wf.Name] = w
		m.names = append(m.names, wf.Name)
		m.endTime = math.Max(m.endTime, w.LastEnd())
	}
	if f.EndTime > 0 {
		m.endTime = f.EndTime
	}
	return m, nil
}

func buildComms(wf windowFile, objects int) ([][]histogram.CommRecord, error) {
	if len(wf.Comms) == 0 {
		return nil, nil
	}
	comms := make([][]histogram.CommRecord, objects)
	for _, c := range wf.Comms {
		if c.Row < 0 || c.Row >= objects {
			return nil, fmt.Errorf("%w: window %q communication on unknown row %d", ErrInvalidModel, wf.Name, c.Row)
		}
		kind, ok := recordKinds[strings.ToLower(c.Kind)]
		if !ok {
			return nil, fmt.Errorf("%w: window %q communication kind %q", ErrInvalidModel, wf.Name, c.Kind)
		}
		comms[c.Row] = append(comms[c.Row], histogram.CommRecord{
			Time:    c.Time,
			Kind:    kind,
			Partner: c.Partner,
			Size:    c.Size,
			Tag:     c.Tag,
		})
	}
	return comms, nil
}

func (m *Model) Topology() *Topology { return m.topology }

// EndTime is the declared trace end, or the end of the last interval when
// none is declared.
func (m *Model) EndTime() float64 { return m.endTime }

// WindowNames lists the windows in declaration order.
func (m *Model) WindowNames() []string { return m.names }

func (m *Model) Window(name string) (*Window, error) {
	w, ok := m.windows[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownWindow, name)
	}
	return w, nil
}
