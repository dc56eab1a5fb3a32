package model

import (
	"time"

	"github.com/tripfolio/tripfolio-api/internal/apperr"
)

// EntityKind enumerates the travel entity hierarchy levels
type EntityKind string

const (
	KindCountry    EntityKind = "country"
	KindState      EntityKind = "state"
	KindCity       EntityKind = "city"
	KindAttraction EntityKind = "attraction"
)

// ParseEntityKind validates a kind supplied by the caller
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case KindCountry, KindState, KindCity, KindAttraction:
		return EntityKind(s), nil
	}
	return "", apperr.InvalidArgument("unknown entity kind %q", s)
}

// TravelEntity represents a country, state, city or attraction.
// OwnVisited holds the date set directly on this entity; LastVisited is
// the derived aggregate, the max over OwnVisited and the children's
// LastVisited. Keeping them apart lets the aggregate drop again when a
// child is deleted.
type TravelEntity struct {
	ID          int64      `db:"id" json:"id"`
	Kind        EntityKind `db:"kind" json:"kind"`
	ParentID    *int64     `db:"parent_id" json:"parent_id,omitempty"`
	Name        string     `db:"name" json:"name"`
	Lat         float64    `db:"lat" json:"lat"`
	Lon         float64    `db:"lon" json:"lon"`
	OwnVisited  *time.Time `db:"own_visited" json:"-"`
	LastVisited *time.Time `db:"last_visited" json:"last_visited,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// PhotoEntityType is the tagged variant of entity kinds that can carry
// photos. It is resolved once at the API boundary; everything below works
// with the variant, never with the raw string.
type PhotoEntityType int

const (
	PhotoEntityCity PhotoEntityType = iota
	PhotoEntityAttraction
)

// ParsePhotoEntityType maps the wire path segment to the variant.
// Anything but "cities" or "attractions" is rejected before any
// storage access happens.
func ParsePhotoEntityType(s string) (PhotoEntityType, error) {
	switch s {
	case "cities":
		return PhotoEntityCity, nil
	case "attractions":
		return PhotoEntityAttraction, nil
	}
	return 0, apperr.InvalidArgument("unsupported entity type %q", s)
}

// StorageKey returns the discriminator value stored in photo_associations
func (t PhotoEntityType) StorageKey() string {
	if t == PhotoEntityCity {
		return "city"
	}
	return "attraction"
}

// Kind returns the matching travel entity kind
func (t PhotoEntityType) Kind() EntityKind {
	if t == PhotoEntityCity {
		return KindCity
	}
	return KindAttraction
}

func (t PhotoEntityType) String() string {
	if t == PhotoEntityCity {
		return "cities"
	}
	return "attractions"
}
