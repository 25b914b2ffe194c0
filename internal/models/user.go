package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ReservedAdminHandle is the only handle exempt from the minimum length
// rule. Registering it grants the admin role.
const ReservedAdminHandle = "admin"

// Brute-force lockout policy.
const (
	MaxLoginFailures = 3
	LockoutDuration  = 30 * time.Minute
	FailureStaleness = 30 * time.Minute
)

// User is an account record stored in PostgreSQL. The handle is immutable
// after registration; FailedLogins, LastFailedAt and LockedUntil carry the
// login lockout state and are only mutated inside a row-locked transaction.
type User struct {
	ID             uint       `json:"-" gorm:"primaryKey"`
	Handle         string     `json:"handle" gorm:"uniqueIndex"`
	PasswordDigest string     `json:"-"`
	DisplayName    string     `json:"display_name"`
	Avatar         string     `json:"avatar,omitempty"`
	IsAdmin        bool       `json:"is_admin"`
	FailedLogins   int        `json:"-"`
	LastFailedAt   *time.Time `json:"-"`
	LockedUntil    *time.Time `json:"-"`
	Gender         string     `json:"gender,omitempty"`
	LookingFor     string     `json:"looking_for,omitempty"`
	ContactQQ      string     `json:"contact_qq,omitempty"`
	ContactWX      string     `json:"contact_wx,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"-"`
}

// LockedAt reports whether the account is locked out at the given instant.
func (u *User) LockedAt(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// ClearExpiredLock resets the failure state once a lock has run out, so the
// next attempt is evaluated from a clean slate.
func (u *User) ClearExpiredLock(now time.Time) {
	if u.LockedUntil != nil && !now.Before(*u.LockedUntil) {
		u.ResetLoginFailures()
	}
}

// RecordLoginFailure counts a wrong password. A failure older than the
// staleness window does not accumulate with the new one. Returns true when
// this failure locks the account.
func (u *User) RecordLoginFailure(now time.Time) bool {
	if u.LastFailedAt != nil && now.Sub(*u.LastFailedAt) > FailureStaleness {
		u.FailedLogins = 0
	}
	u.FailedLogins++
	failedAt := now
	u.LastFailedAt = &failedAt
	if u.FailedLogins >= MaxLoginFailures {
		until := now.Add(LockoutDuration)
		u.LockedUntil = &until
		return true
	}
	return false
}

// ResetLoginFailures returns the account to the unlocked zero-failure state.
func (u *User) ResetLoginFailures() {
	u.FailedLogins = 0
	u.LastFailedAt = nil
	u.LockedUntil = nil
}

// RemainingAttempts is how many wrong passwords are left before lockout.
func (u *User) RemainingAttempts() int {
	left := MaxLoginFailures - u.FailedLogins
	if left < 0 {
		return 0
	}
	return left
}

// RegisterRequest defines the request body for creating an account
type RegisterRequest struct {
	Handle   string `json:"handle" validate:"required,alphanum,max=32"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Nickname string `json:"nickname" validate:"required,min=1,max=20"`
	Avatar   string `json:"avatar,omitempty"`
}

// LoginRequest defines the request body for authenticating
type LoginRequest struct {
	Handle   string `json:"handle" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest defines the request body for editing one's own profile
type UpdateProfileRequest struct {
	Nickname   string `json:"nickname,omitempty" validate:"omitempty,min=1,max=20"`
	Avatar     string `json:"avatar,omitempty"`
	Gender     string `json:"gender,omitempty" validate:"omitempty,max=16"`
	LookingFor string `json:"looking_for,omitempty" validate:"omitempty,max=64"`
	ContactQQ  string `json:"contact_qq,omitempty" validate:"omitempty,max=32"`
	ContactWX  string `json:"contact_wx,omitempty" validate:"omitempty,max=64"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	Handle string `json:"handle"`
	jwt.RegisteredClaims
}
