// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	xglog "github.com/ManuGH/mapview/internal/log"
	"github.com/ManuGH/mapview/internal/validate"
	"gopkg.in/yaml.v3"
)

// The gazetteer wire shape is a mapping of group name to a list of
// single-key mappings:
//
//	Locations:
//	  - San Francisco, CA: {zoom: 18, center: {lng: -122.4193, lat: 37.7648}}
//
// Go maps lose order, so both codecs walk the document by hand.

// rawGazetteer is the decoded wire form before required fields are checked.
type rawGazetteer []rawGroup

type rawGroup struct {
	Name    string
	Line    int
	Entries []rawEntry
}

type rawEntry struct {
	Name string
	Line int
	View rawView
}

type rawView struct {
	Zoom   *float64   `yaml:"zoom" json:"zoom"`
	Center *rawCenter `yaml:"center" json:"center"`
}

type rawCenter struct {
	Lng *float64 `yaml:"lng" json:"lng"`
	Lat *float64 `yaml:"lat" json:"lat"`
}

var errMalformedGazetteer = errors.New("malformed gazetteer")

// build converts the raw form, reporting entries without zoom or center
// on v and leaving them out of the result.
func (r rawGazetteer) build(v *validate.Validator) Gazetteer {
	groups := make([]Group, 0, len(r))
	for _, rg := range r {
		g := Group{Name: rg.Name, Locations: make([]Location, 0, len(rg.Entries))}
		for _, e := range rg.Entries {
			field := locationField(rg.Name, e.Name)
			complete := true
			if e.View.Zoom == nil {
				v.AddError(field+".zoom", "is required", nil)
				complete = false
			}
			if e.View.Center == nil {
				v.AddError(field+".center", "is required", nil)
				complete = false
			} else {
				if e.View.Center.Lng == nil {
					v.AddError(field+".center.lng", "is required", nil)
					complete = false
				}
				if e.View.Center.Lat == nil {
					v.AddError(field+".center.lat", "is required", nil)
					complete = false
				}
			}
			if !complete {
				continue
			}
			g.Locations = append(g.Locations, Location{
				Name: e.Name,
				View: ViewState{
					Zoom:   *e.View.Zoom,
					Center: Center{Lng: *e.View.Center.Lng, Lat: *e.View.Center.Lat},
				},
			})
		}
		groups = append(groups, g)
	}
	return Gazetteer{groups: groups}
}

func locationField(group, place string) string {
	return fmt.Sprintf("gazetteer[%q][%q]", group, place)
}

// --- YAML ---

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// checkKeys rejects mapping keys outside allowed and returns the value nodes by key.
func checkKeys(n *yaml.Node, where string, allowed ...string) (map[string]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: line %d: %s must be a mapping", errMalformedGazetteer, n.Line, where)
	}
	values := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i].Value
		known := false
		for _, a := range allowed {
			if key == a {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("%w: line %d: field %q not allowed in %s", ErrUnknownConfigField, n.Content[i].Line, key, where)
		}
		values[key] = resolveAlias(n.Content[i+1])
	}
	return values, nil
}

// UnmarshalYAML decodes the gazetteer mapping, keeping document order.
func (r *rawGazetteer) UnmarshalYAML(node *yaml.Node) error {
	node = resolveAlias(node)
	if isNull(node) {
		*r = rawGazetteer{}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: line %d: gazetteer must be a mapping of group names", errMalformedGazetteer, node.Line)
	}

	out := make(rawGazetteer, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		if keyNode.Kind != yaml.ScalarNode {
			return fmt.Errorf("%w: line %d: group name must be a string", errMalformedGazetteer, keyNode.Line)
		}
		grp := rawGroup{Name: keyNode.Value, Line: keyNode.Line}

		items := resolveAlias(node.Content[i+1])
		if !isNull(items) {
			if items.Kind != yaml.SequenceNode {
				return fmt.Errorf("%w: line %d: group %q must be a list of places", errMalformedGazetteer, items.Line, grp.Name)
			}
			for _, item := range items.Content {
				entry, err := decodeYAMLEntry(resolveAlias(item), grp.Name)
				if err != nil {
					return err
				}
				grp.Entries = append(grp.Entries, entry)
			}
		}
		out = append(out, grp)
	}
	*r = out
	return nil
}

func decodeYAMLEntry(item *yaml.Node, group string) (rawEntry, error) {
	if item.Kind != yaml.MappingNode || len(item.Content) != 2 {
		return rawEntry{}, fmt.Errorf("%w: line %d: entries of group %q must map exactly one place name to a view", errMalformedGazetteer, item.Line, group)
	}
	keyNode := item.Content[0]
	if keyNode.Kind != yaml.ScalarNode {
		return rawEntry{}, fmt.Errorf("%w: line %d: place name must be a string", errMalformedGazetteer, keyNode.Line)
	}
	entry := rawEntry{Name: keyNode.Value, Line: keyNode.Line}

	view := resolveAlias(item.Content[1])
	if isNull(view) {
		return entry, nil
	}
	where := fmt.Sprintf("place %q", entry.Name)
	fields, err := checkKeys(view, where, "zoom", "center")
	if err != nil {
		return rawEntry{}, err
	}
	if center, ok := fields["center"]; ok && !isNull(center) {
		if _, err := checkKeys(center, where+" center", "lng", "lat"); err != nil {
			return rawEntry{}, err
		}
	}
	if err := view.Decode(&entry.View); err != nil {
		return rawEntry{}, fmt.Errorf("place %q: %w", entry.Name, err)
	}
	return entry, nil
}

// MarshalYAML encodes the gazetteer in declaration order.
func (g Gazetteer) MarshalYAML() (interface{}, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, grp := range g.groups {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, loc := range grp.Locations {
			val := &yaml.Node{}
			if err := val.Encode(loc.View); err != nil {
				return nil, fmt.Errorf("encode place %q: %w", loc.Name, err)
			}
			seq.Content = append(seq.Content, &yaml.Node{
				Kind: yaml.MappingNode,
				Tag:  "!!map",
				Content: []*yaml.Node{
					{Kind: yaml.ScalarNode, Tag: "!!str", Value: loc.Name},
					val,
				},
			})
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: grp.Name},
			seq,
		)
	}
	return root, nil
}

// UnmarshalYAML decodes a gazetteer and rejects entries without zoom or center.
func (g *Gazetteer) UnmarshalYAML(node *yaml.Node) error {
	var raw rawGazetteer
	if err := raw.UnmarshalYAML(node); err != nil {
		return err
	}
	v := validate.New()
	built := raw.build(v)
	if err := v.Err(); err != nil {
		return err
	}
	*g = built
	return nil
}

// --- JSON ---

// UnmarshalJSON decodes the gazetteer object, keeping document order.
func (r *rawGazetteer) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", errMalformedGazetteer, err)
	}
	if tok == nil {
		*r = rawGazetteer{}
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: gazetteer must be an object of group names", errMalformedGazetteer)
	}

	out := rawGazetteer{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", errMalformedGazetteer, err)
		}
		name, _ := keyTok.(string)
		grp := rawGroup{Name: name}

		var items []json.RawMessage
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("%w: group %q must be a list of places: %v", errMalformedGazetteer, name, err)
		}
		for _, item := range items {
			entry, err := decodeJSONEntry(item, name)
			if err != nil {
				return err
			}
			grp.Entries = append(grp.Entries, entry)
		}
		out = append(out, grp)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", errMalformedGazetteer, err)
	}
	*r = out
	return nil
}

// decodeJSONEntry walks the entry by token so a repeated place key is
// rejected instead of collapsing into one map slot.
func decodeJSONEntry(item json.RawMessage, group string) (rawEntry, error) {
	notSingle := func() error {
		return fmt.Errorf("%w: entries of group %q must map exactly one place name to a view", errMalformedGazetteer, group)
	}

	dec := json.NewDecoder(bytes.NewReader(item))
	tok, err := dec.Token()
	if err != nil {
		return rawEntry{}, fmt.Errorf("%w: group %q: %v", errMalformedGazetteer, group, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' || !dec.More() {
		return rawEntry{}, notSingle()
	}
	keyTok, err := dec.Token()
	if err != nil {
		return rawEntry{}, fmt.Errorf("%w: group %q: %v", errMalformedGazetteer, group, err)
	}
	entry := rawEntry{Name: keyTok.(string)}

	var view json.RawMessage
	if err := dec.Decode(&view); err != nil {
		return rawEntry{}, fmt.Errorf("%w: group %q: %v", errMalformedGazetteer, group, err)
	}
	if dec.More() {
		return rawEntry{}, notSingle()
	}

	vdec := json.NewDecoder(bytes.NewReader(view))
	vdec.DisallowUnknownFields()
	if err := vdec.Decode(&entry.View); err != nil {
		return rawEntry{}, fmt.Errorf("%w: place %q: %v", errMalformedGazetteer, entry.Name, err)
	}
	return entry, nil
}

// MarshalJSON encodes the gazetteer in declaration order.
func (g Gazetteer) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, grp := range g.groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(grp.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteString(":[")
		for j, loc := range grp.Locations {
			if j > 0 {
				buf.WriteByte(',')
			}
			entry, err := json.Marshal(map[string]ViewState{loc.Name: loc.View})
			if err != nil {
				return nil, fmt.Errorf("encode place %q: %w", loc.Name, err)
			}
			buf.Write(entry)
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a gazetteer and rejects entries without zoom or center.
func (g *Gazetteer) UnmarshalJSON(data []byte) error {
	var raw rawGazetteer
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	v := validate.New()
	built := raw.build(v)
	if err := v.Err(); err != nil {
		return err
	}
	*g = built
	return nil
}

// --- Config documents ---

// Document is the serialized view of a snapshot handed to the front-end.
type Document struct {
	AccessToken  string        `json:"accessToken"`
	Gazetteer    Gazetteer     `json:"gazetteer"`
	StylePresets []StylePreset `json:"stylePresets"`
}

// Document returns the serializable view of the snapshot.
func (c *Config) Document() Document {
	presets := c.StylePresets()
	if presets == nil {
		presets = []StylePreset{}
	}
	return Document{
		AccessToken:  c.accessToken,
		Gazetteer:    c.Gazetteer(),
		StylePresets: presets,
	}
}

// MarshalJSON encodes the snapshot as a Document.
func (c *Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Document())
}

type rawDocument struct {
	AccessToken  string        `json:"accessToken"`
	Gazetteer    rawGazetteer  `json:"gazetteer"`
	StylePresets []StylePreset `json:"stylePresets"`
}

// ParseJSON decodes and strictly validates a JSON snapshot.
// Unknown fields are rejected. The environment is not consulted.
func ParseJSON(data []byte) (*Config, error) {
	v := validate.New()
	cfg, err := decodeJSONDocument(data, v)
	if err != nil {
		return nil, err
	}
	validateInto(v, cfg)
	if !v.IsValid() {
		return nil, fmt.Errorf("config validation failed: %w", v.Err())
	}
	return cfg, nil
}

// ParseJSONWithEnv decodes a pushed JSON snapshot and applies the same
// MAPVIEW_* overlay and strict handling as Loader.Load.
func ParseJSONWithEnv(data []byte) (*Config, error) {
	v := validate.New()
	cfg, err := decodeJSONDocument(data, v)
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return finalize(cfg, v, xglog.WithComponent("config"))
}

func decodeJSONDocument(data []byte, v *validate.Validator) (*Config, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc rawDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode config document: %w", err)
	}
	return &Config{
		accessToken:  doc.AccessToken,
		gazetteer:    doc.Gazetteer.build(v),
		stylePresets: doc.StylePresets,
		logLevel:     DefaultLogLevel,
		strict:       true,
	}, nil
}
