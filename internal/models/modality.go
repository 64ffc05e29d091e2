// Package models defines the data exchanged between the capture, analysis and
// storage layers
package models

import (
	"slices"
	"strings"
)

// Modality identifies one independent data-capture channel.
type Modality string

const (
	Audio    Modality = "audio"
	Video    Modality = "video"
	Wearable Modality = "wearable"
)

// Modalities lists every modality in engagement order. Audio is first because
// it is the mandatory baseline.
var Modalities = []Modality{Audio, Video, Wearable}

// Optional reports whether a session can proceed without the modality.
func (m Modality) Optional() bool {
	return m != Audio
}

// ModalitySet is an unordered set of modalities.
type ModalitySet map[Modality]struct{}

// NewModalitySet returns a set containing ms.
func NewModalitySet(ms ...Modality) ModalitySet {
	s := make(ModalitySet, len(ms))

	for _, m := range ms {
		s[m] = struct{}{}
	}

	return s
}

func (s ModalitySet) Has(m Modality) bool {
	_, ok := s[m]
	return ok
}

func (s ModalitySet) Add(m Modality) {
	s[m] = struct{}{}
}

func (s ModalitySet) Remove(m Modality) {
	delete(s, m)
}

// Clone returns an independent copy of the set.
func (s ModalitySet) Clone() ModalitySet {
	c := make(ModalitySet, len(s))
	for m := range s {
		c[m] = struct{}{}
	}

	return c
}

// List returns the members in engagement order.
func (s ModalitySet) List() []Modality {
	list := make([]Modality, 0, len(s))

	for _, m := range Modalities {
		if s.Has(m) {
			list = append(list, m)
		}
	}

	return list
}

// Equal reports whether both sets hold the same members.
func (s ModalitySet) Equal(o ModalitySet) bool {
	return slices.Equal(s.List(), o.List())
}

func (s ModalitySet) String() string {
	names := make([]string, 0, len(s))
	for _, m := range s.List() {
		names = append(names, string(m))
	}

	return "{" + strings.Join(names, ", ") + "}"
}
