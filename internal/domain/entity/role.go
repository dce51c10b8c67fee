package entity

// Role represents a user role in the system
type Role struct {
	ID          int    `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleName    string `gorm:"type:varchar(50);uniqueIndex;not null" json:"role_name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// Relationships
	Users []User `gorm:"foreignKey:RoleID" json:"users,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// Role ID constants
const (
	RoleIDAdmin  = 1
	RoleIDDoctor = 2
	RoleIDStaff  = 3
	RoleIDTester = 4
	RoleIDUser   = 5
)

// RoleNames constants
const (
	RoleAdmin  = "admin"
	RoleDoctor = "doctor"
	RoleStaff  = "staff"
	RoleTester = "tester"
	RoleUser   = "user"
)

var roleNamesByID = map[int]string{
	RoleIDAdmin:  RoleAdmin,
	RoleIDDoctor: RoleDoctor,
	RoleIDStaff:  RoleStaff,
	RoleIDTester: RoleTester,
	RoleIDUser:   RoleUser,
}

// RoleNameByID maps a role id to its name, "" when unknown.
func RoleNameByID(id int) string {
	return roleNamesByID[id]
}

// RoleIDByName maps a role name to its id, 0 when unknown.
func RoleIDByName(name string) int {
	for id, n := range roleNamesByID {
		if n == name {
			return id
		}
	}
	return 0
}
