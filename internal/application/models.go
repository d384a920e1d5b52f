package application

import "time"

// Role is the privilege level of a board user.
type Role string

const (
	// RoleUser is the default role for anyone without a permission record.
	RoleUser Role = "USER"
	// RoleManager may edit the schedule and broadcast notifications.
	RoleManager Role = "MANAGER"
	// RoleAdmin may additionally manage permissions and the header configuration.
	RoleAdmin Role = "ADMIN"
)

// Elevated reports whether the role grants access to editing views.
func (r Role) Elevated() bool {
	return r == RoleManager || r == RoleAdmin
}

// User is a board account created from an external identity assertion.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// PermissionRecord elevates a single email to MANAGER or ADMIN.
type PermissionRecord struct {
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	AddedAt string `json:"addedAt"`
}

// Category groups classes by discipline.
type Category string

const (
	CategoryYoga   Category = "YOGA"
	CategoryTaichi Category = "TAICHI"
	CategoryDance  Category = "DANCE"
	CategoryOther  Category = "OTHER"
)

// ClassStatus marks cancellations and substitute instructors.
type ClassStatus string

const (
	StatusNormal     ClassStatus = "NORMAL"
	StatusCancelled  ClassStatus = "CANCELLED"
	StatusSubstitute ClassStatus = "SUBSTITUTE"
)

// ClassSession is a weekly recurring class on the board. DayIndex 0 is Monday.
type ClassSession struct {
	ID            string      `json:"id"`
	DayIndex      int         `json:"dayIndex" validate:"min=0,max=6"`
	Time          string      `json:"time" validate:"required"`
	ClassName     string      `json:"className" validate:"required"`
	Instructor    string      `json:"instructor" validate:"required"`
	Category      Category    `json:"category" validate:"oneof=YOGA TAICHI DANCE OTHER"`
	Status        ClassStatus `json:"status" validate:"oneof=NORMAL CANCELLED SUBSTITUTE"`
	SubInstructor string      `json:"subInstructor,omitempty"`
}

// HeaderConfig is the singleton board header document.
type HeaderConfig struct {
	Logo          string `json:"logo" yaml:"logo"`
	Address       string `json:"address" yaml:"address"`
	Hotline       string `json:"hotline" yaml:"hotline"`
	Website       string `json:"website" yaml:"website"`
	ScheduleTitle string `json:"scheduleTitle" yaml:"schedule_title" validate:"required"`
	HolidayNotice string `json:"holidayNotice" yaml:"holiday_notice"`
}

// NotificationType distinguishes routine updates from urgent alerts.
type NotificationType string

const (
	NotificationInfo  NotificationType = "INFO"
	NotificationAlert NotificationType = "ALERT"
)

// AppNotification is a broadcast message shown to every board user.
type AppNotification struct {
	ID        string           `json:"id"`
	Message   string           `json:"message"`
	Timestamp string           `json:"timestamp"`
	Type      NotificationType `json:"type"`
	Sender    string           `json:"sender"`
}

// Rating is a user's feedback on a class. ClassID is not enforced.
type Rating struct {
	ID        string `json:"id"`
	ClassID   string `json:"classId"`
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
	Stars     int    `json:"stars" validate:"min=1,max=5"`
	Comment   string `json:"comment" validate:"required"`
	Timestamp string `json:"timestamp"`
}

// Assertion carries the verified identity fields supplied by the external login flow.
type Assertion struct {
	Email string
	Name  string
	Photo string
}

// Snapshot is a detached copy of the container state.
type Snapshot struct {
	Schedule      []ClassSession
	Header        HeaderConfig
	Permissions   []PermissionRecord
	Notifications []AppNotification
	Ratings       []Rating
	Registry      []User
	CurrentUser   *User
	Loading       bool
	AdminViewOpen bool
	LastSyncAt    time.Time
	LastSyncFrom  SyncSource
}

// SyncSource identifies where the most recent reconciliation took its data from.
type SyncSource string

const (
	SyncSourceNone   SyncSource = ""
	SyncSourceRemote SyncSource = "remote"
	SyncSourceCache  SyncSource = "cache"
)

// Principal returns the acting identity for role-gated operations.
func (s Snapshot) Principal() Principal {
	if s.CurrentUser == nil {
		return Principal{Role: RoleUser}
	}
	return Principal{Email: s.CurrentUser.Email, Name: s.CurrentUser.Name, Role: s.CurrentUser.Role, LoggedIn: true}
}

// Principal represents the session user invoking a board operation.
type Principal struct {
	Email    string
	Name     string
	Role     Role
	LoggedIn bool
}
