package models

import (
	"strings"
	"time"
)

// Principal roles. Reviewers upload and approve theses; submitters may only
// run verification and receive the aggregate report.
const (
	RoleReviewer  = "reviewer"
	RoleSubmitter = "submitter"
)

// User is the reviewer directory row. Account management lives outside this
// service; only the columns the approval quorum needs are mapped.
type User struct {
	UserID    int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname string     `gorm:"column:user_lname" json:"user_lname"`
	Email     string     `gorm:"column:email;unique" json:"email"`
	Role      string     `gorm:"column:role;size:16" json:"role"`
	IsActive  bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt  *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt  *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.UserFname + " " + u.UserLname)
}

// IsReviewer reports whether the role string names a reviewer.
func IsReviewer(role string) bool {
	return strings.EqualFold(strings.TrimSpace(role), RoleReviewer)
}
