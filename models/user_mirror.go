// models/user_mirror.go
package models

import "time"

// UserMirror is a local copy of the auth service's public profile,
// kept fresh by the sync worker. It exists so mission lists can join
// creator info and so stats lookups can 404 on unknown users without
// calling the auth service per request.
type UserMirror struct {
	ID        string    `json:"id" gorm:"primaryKey"` // external user id
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url"`
	SyncedAt  time.Time `json:"synced_at"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
