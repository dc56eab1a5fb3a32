package model

import "time"

// PhotoAssociation links an externally hosted photo to a travel entity.
// The photo bytes live with the media provider; this row holds only the
// back-reference plus local metadata.
type PhotoAssociation struct {
	ID         string    `db:"id" json:"id"`
	ExternalID string    `db:"external_id" json:"external_id"`
	URL        string    `db:"url" json:"url"`
	Caption    *string   `db:"caption" json:"caption,omitempty"`
	EntityType string    `db:"entity_type" json:"-"`
	EntityID   int64     `db:"entity_id" json:"entity_id"`
	OwnerID    int64     `db:"owner_id" json:"owner_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// PhotoRef identifies one photo in a bulk add or remove request
type PhotoRef struct {
	ExternalID string  `json:"external_id"`
	URL        string  `json:"url,omitempty"`
	Caption    *string `json:"caption,omitempty"`
}

// CheckIn records a geolocated visit to an entity
type CheckIn struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	EntityID  int64     `db:"entity_id" json:"entity_id"`
	Lat       float64   `db:"lat" json:"lat"`
	Lon       float64   `db:"lon" json:"lon"`
	Note      *string   `db:"note" json:"note,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
