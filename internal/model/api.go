package model

// BulkPhotosRequest is the payload for bulk add and reconcile
type BulkPhotosRequest struct {
	Photos []PhotoRef `json:"photos"`
}

// PhotosResponse lists the associations stored for one entity
type PhotosResponse struct {
	Photos []PhotoAssociation `json:"photos"`
}

// PhotoDescriptor is one result returned by the media provider
type PhotoDescriptor struct {
	ExternalID string `json:"external_id"`
	URL        string `json:"url"`
	Format     string `json:"format,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// SearchResponse is one page of media-provider results. An empty
// NextCursor means end of results.
type SearchResponse struct {
	Photos     []PhotoDescriptor `json:"photos"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// CreateEntityRequest creates a travel entity
type CreateEntityRequest struct {
	Kind     string  `json:"kind"`
	ParentID *int64  `json:"parent_id,omitempty"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// UpdateEntityRequest edits name and coordinates
type UpdateEntityRequest struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// VisitRequest sets an entity's last visited date (RFC 3339)
type VisitRequest struct {
	VisitedAt string `json:"visited_at"`
}

// CheckInRequest logs a geolocated visit
type CheckInRequest struct {
	EntityID int64   `json:"entity_id"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Note     *string `json:"note,omitempty"`
}

// RegisterRequest creates an account
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest exchanges credentials for a token
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries an issued token
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}
