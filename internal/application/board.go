package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Board exposes the role-gated editing, rating and broadcast operations over a Store.
// The acting principal is always the store's current session.
type Board struct {
	store       *Store
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBoard constructs a board over store.
func NewBoard(store *Store, idGenerator func() string, now func() time.Time) *Board {
	return NewBoardWithLogger(store, idGenerator, now, nil)
}

// NewBoardWithLogger constructs a board with a specified logger.
func NewBoardWithLogger(store *Store, idGenerator func() string, now func() time.Time, logger *slog.Logger) *Board {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &Board{store: store, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

// Store returns the underlying state container.
func (b *Board) Store() *Store {
	return b.store
}

func (b *Board) loggerWith(ctx context.Context, operation string, principal Principal, attrs ...any) *slog.Logger {
	pairs := append([]any{"principal_email", principal.Email, "principal_role", principal.Role}, attrs...)
	return serviceLogger(ctx, b.logger, "Board", operation, pairs...)
}

// SaveClass updates the class with input.ID or appends input under a fresh id when no
// such class exists. Managers and administrators only; notify broadcasts the change.
func (b *Board) SaveClass(ctx context.Context, input ClassSession, notify bool) (ClassSession, error) {
	return b.storeClass(ctx, "SaveClass", input, notify, false)
}

// UpdateClass replaces the existing class with input.ID and returns ErrNotFound when
// the schedule no longer holds it.
func (b *Board) UpdateClass(ctx context.Context, input ClassSession, notify bool) (ClassSession, error) {
	return b.storeClass(ctx, "UpdateClass", input, notify, true)
}

func (b *Board) storeClass(ctx context.Context, operation string, input ClassSession, notify, mustExist bool) (class ClassSession, err error) {
	if b == nil || b.store == nil {
		err = fmt.Errorf("board is not configured")
		return
	}

	principal := b.store.Principal()
	logger := b.loggerWith(ctx, operation, principal, "class_id", input.ID)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "failed to save class", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("class_id", class.ID).InfoContext(ctx, "class saved", "notify", notify)
	}()

	if !principal.Role.Elevated() {
		err = ErrUnauthorized
		return
	}

	class = normalizeClassInput(input)
	if err = validateStruct(class); err != nil {
		return
	}

	_, err = b.store.modifySchedule(ctx, func(schedule []ClassSession) ([]ClassSession, error) {
		for i := range schedule {
			if class.ID != "" && schedule[i].ID == class.ID {
				schedule[i] = class
				return schedule, nil
			}
		}
		if mustExist {
			return nil, ErrNotFound
		}
		class.ID = b.idGenerator()
		return append(schedule, class), nil
	})
	if err != nil {
		class = ClassSession{}
		return
	}

	if notify {
		message, kind := ChangeNotice(class)
		b.store.AddNotification(ctx, message, kind)
	}
	return
}

// DeleteClass removes the class with id. Ratings that reference it are kept.
func (b *Board) DeleteClass(ctx context.Context, id string) (err error) {
	principal := b.store.Principal()
	logger := b.loggerWith(ctx, "DeleteClass", principal, "class_id", id)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "failed to delete class", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "class deleted")
	}()

	if !principal.Role.Elevated() {
		return ErrUnauthorized
	}

	_, err = b.store.modifySchedule(ctx, func(schedule []ClassSession) ([]ClassSession, error) {
		if _, ok := findClass(schedule, id); !ok {
			return nil, ErrNotFound
		}
		out := make([]ClassSession, 0, len(schedule)-1)
		for _, class := range schedule {
			if class.ID != id {
				out = append(out, class)
			}
		}
		return out, nil
	})
	return err
}

// UpdateHeader replaces the header document. Administrators only.
func (b *Board) UpdateHeader(ctx context.Context, input HeaderConfig) (header HeaderConfig, err error) {
	principal := b.store.Principal()
	logger := b.loggerWith(ctx, "UpdateHeader", principal)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "failed to update header", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "header updated")
	}()

	if principal.Role != RoleAdmin {
		err = ErrUnauthorized
		return
	}

	header = HeaderConfig{
		Logo:          strings.TrimSpace(input.Logo),
		Address:       strings.TrimSpace(input.Address),
		Hotline:       strings.TrimSpace(input.Hotline),
		Website:       strings.TrimSpace(input.Website),
		ScheduleTitle: strings.TrimSpace(input.ScheduleTitle),
		HolidayNotice: strings.TrimSpace(input.HolidayNotice),
	}
	if err = validateStruct(header); err != nil {
		return
	}
	header = NormalizeHeader(header)
	b.store.SetHeaderConfig(ctx, header)
	return
}

// GrantRole elevates email to role. Administrators only.
func (b *Board) GrantRole(ctx context.Context, email string, role Role) (records []PermissionRecord, err error) {
	principal := b.store.Principal()
	logger := b.loggerWith(ctx, "GrantRole", principal, "target_email", NormalizeEmail(email), "role", role)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "failed to grant role", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "role granted")
	}()

	if principal.Role != RoleAdmin {
		err = ErrUnauthorized
		return
	}

	rootEmail := b.store.RootEmail()
	now := b.now()
	records, err = b.store.modifyPermissions(ctx, func(current []PermissionRecord) ([]PermissionRecord, error) {
		return Grant(current, email, role, rootEmail, now)
	})
	return
}

// RevokeRole removes every elevated record for email. Administrators only.
func (b *Board) RevokeRole(ctx context.Context, email string) (records []PermissionRecord, err error) {
	principal := b.store.Principal()
	logger := b.loggerWith(ctx, "RevokeRole", principal, "target_email", NormalizeEmail(email))
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "failed to revoke role", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "role revoked")
	}()

	if principal.Role != RoleAdmin {
		err = ErrUnauthorized
		return
	}

	rootEmail := b.store.RootEmail()
	records, err = b.store.modifyPermissions(ctx, func(current []PermissionRecord) ([]PermissionRecord, error) {
		return Revoke(current, email, rootEmail)
	})
	return
}

// Broadcast publishes a notification to every member. Managers and administrators only.
func (b *Board) Broadcast(ctx context.Context, message string, kind NotificationType) (notification AppNotification, err error) {
	principal := b.store.Principal()
	logger := b.loggerWith(ctx, "Broadcast", principal, "type", kind)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "failed to broadcast notification", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("notification_id", notification.ID).InfoContext(ctx, "notification broadcast")
	}()

	if !principal.Role.Elevated() {
		err = ErrUnauthorized
		return
	}

	message = strings.TrimSpace(message)
	vErr := &ValidationError{}
	if message == "" {
		vErr.add("message", "message is required")
	}
	if kind != "" && kind != NotificationInfo && kind != NotificationAlert {
		vErr.add("type", "type must be one of INFO ALERT")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	notification = b.store.AddNotification(ctx, message, kind)
	return
}

// SubmitRating records feedback for a class on behalf of the logged-in member. The
// class is not required to exist.
func (b *Board) SubmitRating(ctx context.Context, classID string, stars int, comment string) (rating Rating, err error) {
	principal := b.store.Principal()
	logger := b.loggerWith(ctx, "SubmitRating", principal, "class_id", classID)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "failed to submit rating", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("rating_id", rating.ID).InfoContext(ctx, "rating submitted", "stars", stars)
	}()

	if !principal.LoggedIn {
		err = ErrUnauthorized
		return
	}

	rating = Rating{
		ClassID:   strings.TrimSpace(classID),
		UserEmail: principal.Email,
		UserName:  principal.Name,
		Stars:     stars,
		Comment:   strings.TrimSpace(comment),
		Timestamp: b.now().UTC().Format(timestampLayout),
	}
	if err = validateRating(rating); err != nil {
		rating = Rating{}
		return
	}

	rating.ID = b.idGenerator()
	b.store.AddRating(ctx, rating)
	return
}

// validateRating combines the struct rules with the class reference check. The class
// may be unknown but must be named.
func validateRating(rating Rating) error {
	vErr := &ValidationError{}
	if rating.ClassID == "" {
		vErr.add("classId", "classId is required")
	}
	if err := validateStruct(rating); err != nil {
		var fieldErrs *ValidationError
		if !errors.As(err, &fieldErrs) {
			return err
		}
		vErr.merge(fieldErrs)
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// DaySchedule returns the classes of day ordered by start time.
func (b *Board) DaySchedule(day int) ([]ClassView, error) {
	if day < 0 || day > 6 {
		vErr := &ValidationError{}
		vErr.add("day", "day must be between 0 and 6")
		return nil, vErr
	}
	snap := b.store.Snapshot()
	return DaySchedule(snap.Schedule, snap.Ratings, day), nil
}

// RatingFeed returns every rating with its class name resolved.
func (b *Board) RatingFeed() []RatingEntry {
	snap := b.store.Snapshot()
	return RatingFeed(snap.Schedule, snap.Ratings)
}

// Notifications returns the broadcast history, newest first.
func (b *Board) Notifications() []AppNotification {
	notifications := b.store.Snapshot().Notifications
	sortNotificationsNewestFirst(notifications)
	if notifications == nil {
		return []AppNotification{}
	}
	return notifications
}

func normalizeClassInput(input ClassSession) ClassSession {
	class := ClassSession{
		ID:            strings.TrimSpace(input.ID),
		DayIndex:      input.DayIndex,
		Time:          strings.TrimSpace(input.Time),
		ClassName:     strings.ToUpper(strings.TrimSpace(input.ClassName)),
		Instructor:    strings.ToUpper(strings.TrimSpace(input.Instructor)),
		Category:      Category(strings.ToUpper(strings.TrimSpace(string(input.Category)))),
		Status:        ClassStatus(strings.ToUpper(strings.TrimSpace(string(input.Status)))),
		SubInstructor: strings.ToUpper(strings.TrimSpace(input.SubInstructor)),
	}
	if class.Category == "" {
		class.Category = CategoryOther
	}
	if class.Status == "" {
		class.Status = StatusNormal
	}
	return class
}
