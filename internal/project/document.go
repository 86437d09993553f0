package project

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/framecut/framecut-agent/internal/keyframe"
	"github.com/framecut/framecut-agent/internal/timeline"
	"gopkg.in/yaml.v3"
)

const DocumentVersion = 1

// Document is the portable YAML form of a project.
type Document struct {
	Version       int               `yaml:"version"`
	Name          string            `yaml:"name"`
	TimelineRange float64           `yaml:"timeline_range,omitempty"`
	Elements      []DocumentElement `yaml:"elements"`
}

type DocumentElement struct {
	timeline.Element `yaml:",inline"`
	Keyframes        map[string][][]keyframe.Point `yaml:"keyframes,omitempty"`
}

func NewDocument(name string, timelineRange float64, tl Timeline) *Document {
	doc := &Document{Version: DocumentVersion, Name: name, TimelineRange: timelineRange}
	byElement := make(map[string]map[string][][]keyframe.Point)
	for _, ch := range tl.Channels {
		if !ch.Active {
			continue
		}
		if byElement[ch.ElementID] == nil {
			byElement[ch.ElementID] = make(map[string][][]keyframe.Point)
		}
		byElement[ch.ElementID][ch.Channel] = ch.Tracks
	}
	for _, e := range tl.Elements {
		doc.Elements = append(doc.Elements, DocumentElement{Element: e, Keyframes: byElement[e.ID]})
	}
	return doc
}

// Timeline converts the document back into elements and channel states.
func (d *Document) Timeline() Timeline {
	var tl Timeline
	for _, de := range d.Elements {
		tl.Elements = append(tl.Elements, de.Element)

		names := make([]string, 0, len(de.Keyframes))
		for name := range de.Keyframes {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			tl.Channels = append(tl.Channels, ChannelState{
				ElementID: de.ID,
				Channel:   name,
				Active:    true,
				Tracks:    de.Keyframes[name],
			})
		}
	}
	return tl
}

// Build validates the document by loading it into a fresh store.
func (d *Document) Build(sampling keyframe.SampleOptions) (*timeline.Store, error) {
	return d.Timeline().Build(sampling)
}

func EncodeDocument(w io.Writer, d *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return err
	}
	return enc.Close()
}

func DecodeDocument(r io.Reader) (*Document, error) {
	var d Document
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty document")
		}
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if d.Version != DocumentVersion {
		return nil, fmt.Errorf("%w: %d", ErrBadVersion, d.Version)
	}
	return &d, nil
}

func LoadDocumentFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeDocument(bytes.NewReader(data))
}

func SaveDocumentFile(path string, d *Document) error {
	var buf bytes.Buffer
	if err := EncodeDocument(&buf, d); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
