package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/club-schedule-board/internal/application"
)

var (
	classCounter        uint64
	ratingCounter       uint64
	notificationCounter uint64
	memberCounter       uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// Timestamp formats t the way the board stamps notifications and ratings.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// ----------------------------- Class fixtures -----------------------------

// ClassOption configures a generated class session.
type ClassOption func(*application.ClassSession)

// NewClass returns a valid Monday morning yoga class with optional overrides.
func NewClass(opts ...ClassOption) application.ClassSession {
	idx := atomic.AddUint64(&classCounter, 1)
	class := application.ClassSession{
		ID:         fmt.Sprintf("class-%03d", idx),
		DayIndex:   0,
		Time:       "08:00 - 09:00",
		ClassName:  fmt.Sprintf("YOGA %03d", idx),
		Instructor: "MS. LAN",
		Category:   application.CategoryYoga,
		Status:     application.StatusNormal,
	}
	for _, opt := range opts {
		opt(&class)
	}
	return class
}

// WithClassID overrides the generated id.
func WithClassID(id string) ClassOption {
	return func(c *application.ClassSession) { c.ID = id }
}

// WithDay moves the class to the given day index.
func WithDay(day int) ClassOption {
	return func(c *application.ClassSession) { c.DayIndex = day }
}

// WithTime overrides the "HH:MM - HH:MM" time range.
func WithTime(timeRange string) ClassOption {
	return func(c *application.ClassSession) { c.Time = timeRange }
}

// WithClassName overrides the class name.
func WithClassName(name string) ClassOption {
	return func(c *application.ClassSession) { c.ClassName = name }
}

// WithCategory overrides the category.
func WithCategory(category application.Category) ClassOption {
	return func(c *application.ClassSession) { c.Category = category }
}

// Cancelled marks the class as cancelled.
func Cancelled() ClassOption {
	return func(c *application.ClassSession) { c.Status = application.StatusCancelled }
}

// Substituted marks the class as taught by a substitute instructor.
func Substituted(instructor string) ClassOption {
	return func(c *application.ClassSession) {
		c.Status = application.StatusSubstitute
		c.SubInstructor = instructor
	}
}

// ----------------------------- Rating fixtures -----------------------------

// RatingOption configures a generated rating.
type RatingOption func(*application.Rating)

// NewRating returns a five star rating of classID.
func NewRating(classID string, opts ...RatingOption) application.Rating {
	idx := atomic.AddUint64(&ratingCounter, 1)
	rating := application.Rating{
		ID:        fmt.Sprintf("rating-%03d", idx),
		ClassID:   classID,
		UserEmail: fmt.Sprintf("member-%03d@club.vn", idx),
		UserName:  fmt.Sprintf("Member %03d", idx),
		Stars:     5,
		Comment:   "Rất tốt",
		Timestamp: Timestamp(referenceTime.Add(time.Duration(idx) * time.Minute)),
	}
	for _, opt := range opts {
		opt(&rating)
	}
	return rating
}

// WithStars overrides the star count.
func WithStars(stars int) RatingOption {
	return func(r *application.Rating) { r.Stars = stars }
}

// WithRater overrides the rating author.
func WithRater(email, name string) RatingOption {
	return func(r *application.Rating) {
		r.UserEmail = email
		r.UserName = name
	}
}

// ----------------------------- Notification fixtures -----------------------------

// NotificationOption configures a generated notification.
type NotificationOption func(*application.AppNotification)

// NewNotification returns an INFO notification stamped after every previously
// generated one.
func NewNotification(opts ...NotificationOption) application.AppNotification {
	idx := atomic.AddUint64(&notificationCounter, 1)
	notification := application.AppNotification{
		ID:        fmt.Sprintf("notification-%03d", idx),
		Message:   fmt.Sprintf("Thông báo %03d", idx),
		Timestamp: Timestamp(referenceTime.Add(time.Duration(idx) * time.Minute)),
		Type:      application.NotificationInfo,
		Sender:    application.SystemSender,
	}
	for _, opt := range opts {
		opt(&notification)
	}
	return notification
}

// WithMessage overrides the message.
func WithMessage(message string) NotificationOption {
	return func(n *application.AppNotification) { n.Message = message }
}

// WithTimestamp overrides the timestamp.
func WithTimestamp(t time.Time) NotificationOption {
	return func(n *application.AppNotification) { n.Timestamp = Timestamp(t) }
}

// Urgent marks the notification as an ALERT.
func Urgent() NotificationOption {
	return func(n *application.AppNotification) { n.Type = application.NotificationAlert }
}

// NewestFirst orders notifications the way the remote endpoint returns them.
func NewestFirst(notifications ...application.AppNotification) []application.AppNotification {
	out := make([]application.AppNotification, len(notifications))
	for i, n := range notifications {
		out[len(notifications)-1-i] = n
	}
	return out
}

// ----------------------------- Identity fixtures -----------------------------

// NewMember returns an identity assertion for a fresh club member.
func NewMember() application.Assertion {
	idx := atomic.AddUint64(&memberCounter, 1)
	return application.Assertion{
		Email: fmt.Sprintf("member-%03d@club.vn", idx),
		Name:  fmt.Sprintf("Member %03d", idx),
		Photo: fmt.Sprintf("https://avatars.example.com/member-%03d.png", idx),
	}
}

// Permission returns a permission record added at ReferenceTime.
func Permission(email string, role application.Role) application.PermissionRecord {
	return application.PermissionRecord{
		Email:   email,
		Role:    role,
		AddedAt: referenceTime.Format(time.RFC3339Nano),
	}
}

// ----------------------------- Remote payload -----------------------------

// PayloadOption configures a remote payload.
type PayloadOption func(*application.RemotePayload)

// NewPayload returns a remote document with every collection present and empty, and
// the given header.
func NewPayload(opts ...PayloadOption) application.RemotePayload {
	header := application.StandardHeaderDefaults().Header(referenceTime)
	payload := application.RemotePayload{
		Schedule:      []application.ClassSession{},
		Header:        &header,
		Users:         []application.User{},
		Notifications: []application.AppNotification{},
		Permissions:   []application.PermissionRecord{},
		Ratings:       []application.Rating{},
	}
	for _, opt := range opts {
		opt(&payload)
	}
	return payload
}

// WithSchedule sets the payload schedule.
func WithSchedule(classes ...application.ClassSession) PayloadOption {
	return func(p *application.RemotePayload) { p.Schedule = classes }
}

// WithPermissions sets the payload permissions.
func WithPermissions(records ...application.PermissionRecord) PayloadOption {
	return func(p *application.RemotePayload) { p.Permissions = records }
}

// WithNotifications sets the payload notifications, expected newest first.
func WithNotifications(notifications ...application.AppNotification) PayloadOption {
	return func(p *application.RemotePayload) { p.Notifications = notifications }
}

// WithRatings sets the payload ratings.
func WithRatings(ratings ...application.Rating) PayloadOption {
	return func(p *application.RemotePayload) { p.Ratings = ratings }
}

// WithHeader sets the payload header. A nil header removes it from the payload.
func WithHeader(header *application.HeaderConfig) PayloadOption {
	return func(p *application.RemotePayload) { p.Header = header }
}
