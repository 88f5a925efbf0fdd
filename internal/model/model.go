package model

import "time"

// Roles accepted by the course API's registration endpoint. The upstream
// also knows an admin role but refuses to register one.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// Identity is the display identity decoded from the course API token's
// payload segment. Nothing in it is verified; it exists for rendering only.
type Identity struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role,omitempty"`
}

// IsZero reports whether the identity carries no display fields.
func (i Identity) IsZero() bool {
	return i.Username == "" && i.Email == ""
}

// Course mirrors the course API's JSON. Timestamps stay strings because the
// upstream formats them for display ("2006-01-02 15:04") and this service
// never does date arithmetic on them.
type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedBy   string `json:"created_by,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	Enrollments int    `json:"enrollments"`
	VideoURL    string `json:"video_url,omitempty"`
	VideoID     string `json:"video_id,omitempty"`
	YoutubeLink string `json:"youtube_link,omitempty"`
	EnrolledAt  string `json:"enrolled_at,omitempty"`
}

// StoredToken is the per-session record persisting the course API bearer
// token in DynamoDB. The token is encrypted at rest. ExpiresAt is a
// DynamoDB TTL attribute aligned with the session cookie's Max-Age.
type StoredToken struct {
	SessionID      string    `json:"session_id" dynamodbav:"session_id"`
	EncryptedToken string    `json:"encrypted_token" dynamodbav:"encrypted_token"`
	ExpiresAt      int64     `json:"expires_at" dynamodbav:"expires_at"`
	UpdatedAt      time.Time `json:"updated_at" dynamodbav:"updated_at"`
}
