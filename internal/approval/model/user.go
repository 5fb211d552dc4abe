package model

// Role determines which workflow transitions a user may perform.
type Role string

const (
	RoleHOD       Role = "HOD"       // Final authority: the only role that reaches approved/rejected
	RoleAdmin     Role = "ADMIN"     // Reviewer: records the optional intermediate review
	RoleSubmitter Role = "SUBMITTER" // Creates, resubmits and requests deletion of own containers
	RoleViewer    Role = "VIEWER"    // Read-only access
)

// User represents an actor in the approval workflow. User CRUD and credential
// handling live outside this service; the workflow only consults identity,
// role and the active flag.
type User struct {
	BaseModel
	Email       string  `gorm:"type:varchar(255);column:email;not null;unique" json:"email"`
	DisplayName string  `gorm:"type:varchar(255);column:display_name;not null" json:"displayName"`
	Role        Role    `gorm:"type:varchar(20);column:role;not null" json:"role"`
	Department  string  `gorm:"type:varchar(100);column:department" json:"department"`
	Active      bool    `gorm:"column:active;not null;default:true" json:"active"`
	APIToken    *string `gorm:"type:varchar(128);column:api_token;uniqueIndex" json:"-"`
}

func (u *User) TableName() string {
	return "users"
}
