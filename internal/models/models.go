package models

import "time"

// User is the account record managed by the CRUD API.
//
// PasswordHash is only set for accounts created through registration;
// records created through the plain CRUD surface carry no credentials
// and cannot log in. It is never serialized.
type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Age          int       `gorm:"not null" json:"age"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Calculation is one stored calculator invocation, owned by the user
// that performed it. PublicID is the identifier exposed over the API.
type Calculation struct {
	ID         int64     `gorm:"primaryKey" json:"-"`
	PublicID   string    `gorm:"size:36;uniqueIndex;not null" json:"id"`
	UserID     int64     `gorm:"index;not null" json:"-"`
	Expression string    `gorm:"not null" json:"expression"`
	Result     string    `gorm:"not null" json:"result"`
	CreatedAt  time.Time `json:"created_at"`
}
