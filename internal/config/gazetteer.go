// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

// Gazetteer is an ordered collection of location groups.
// Group order and location order are significant: the UI renders them as given.
type Gazetteer struct {
	groups []Group
}

// NewGazetteer builds a gazetteer from groups, copying the input.
func NewGazetteer(groups ...Group) Gazetteer {
	return Gazetteer{groups: cloneGroups(groups)}
}

// Groups returns a copy of all groups in declaration order.
func (g Gazetteer) Groups() []Group {
	return cloneGroups(g.groups)
}

// Group returns a copy of the first group with the given name.
func (g Gazetteer) Group(name string) (Group, bool) {
	for _, grp := range g.groups {
		if grp.Name == name {
			return cloneGroup(grp), true
		}
	}
	return Group{}, false
}

// Lookup returns the view stored under group and place.
func (g Gazetteer) Lookup(group, place string) (ViewState, bool) {
	for _, grp := range g.groups {
		if grp.Name == group {
			return grp.Location(place)
		}
	}
	return ViewState{}, false
}

// Len returns the number of groups.
func (g Gazetteer) Len() int {
	return len(g.groups)
}

// NumLocations returns the number of locations across all groups.
func (g Gazetteer) NumLocations() int {
	n := 0
	for _, grp := range g.groups {
		n += len(grp.Locations)
	}
	return n
}

// Equal reports whether both gazetteers hold the same groups in the same order.
func (g Gazetteer) Equal(other Gazetteer) bool {
	if len(g.groups) != len(other.groups) {
		return false
	}
	for i, grp := range g.groups {
		og := other.groups[i]
		if grp.Name != og.Name || len(grp.Locations) != len(og.Locations) {
			return false
		}
		for j, loc := range grp.Locations {
			if loc != og.Locations[j] {
				return false
			}
		}
	}
	return true
}
