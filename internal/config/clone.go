// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

// Accessors hand out alias-free copies so a snapshot can never be
// mutated through a returned slice. Location and StylePreset hold only
// value fields, so a slice copy is a deep copy for them.

func cloneGroups(in []Group) []Group {
	if in == nil {
		return nil
	}
	out := make([]Group, len(in))
	for i, g := range in {
		out[i] = cloneGroup(g)
	}
	return out
}

func cloneGroup(in Group) Group {
	out := Group{Name: in.Name}
	if in.Locations != nil {
		out.Locations = make([]Location, len(in.Locations))
		copy(out.Locations, in.Locations)
	}
	return out
}

func cloneStylePresets(in []StylePreset) []StylePreset {
	if in == nil {
		return nil
	}
	out := make([]StylePreset, len(in))
	copy(out, in)
	return out
}
