package application

import (
	"strings"
	"time"
)

// NormalizeEmail trims and lower-cases an email so it can be compared as a key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Resolve derives the effective role for email. The root identity always resolves to
// ADMIN, regardless of any permission record naming it.
func Resolve(email string, records []PermissionRecord, rootEmail string) Role {
	lower := NormalizeEmail(email)
	if lower == "" {
		return RoleUser
	}
	if root := NormalizeEmail(rootEmail); root != "" && lower == root {
		return RoleAdmin
	}
	for _, record := range records {
		if NormalizeEmail(record.Email) != lower {
			continue
		}
		if record.Role.Elevated() {
			return record.Role
		}
		return RoleUser
	}
	return RoleUser
}

// Grant returns a new permission collection in which email holds role. An existing
// record is updated in place; otherwise a record stamped with now is appended.
func Grant(records []PermissionRecord, email string, role Role, rootEmail string, now time.Time) ([]PermissionRecord, error) {
	lower := NormalizeEmail(email)
	if !role.Elevated() {
		return clonePermissions(records), ErrInvalidRole
	}
	if lower == "" {
		vErr := &ValidationError{}
		vErr.add("email", "email is required")
		return clonePermissions(records), vErr
	}
	if lower == NormalizeEmail(rootEmail) {
		return clonePermissions(records), ErrRootIdentity
	}

	out := make([]PermissionRecord, 0, len(records)+1)
	found := false
	for _, record := range records {
		if NormalizeEmail(record.Email) == lower {
			if found {
				continue
			}
			found = true
			record.Role = role
		}
		out = append(out, record)
	}
	if !found {
		out = append(out, PermissionRecord{
			Email:   lower,
			Role:    role,
			AddedAt: now.UTC().Format(time.RFC3339Nano),
		})
	}
	return out, nil
}

// Revoke returns a new permission collection without any record for email. Revoking
// an email that holds no record is a no-op, which makes the operation idempotent. The
// root identity is refused and its record, if any, is left untouched.
func Revoke(records []PermissionRecord, email, rootEmail string) ([]PermissionRecord, error) {
	lower := NormalizeEmail(email)
	if lower != "" && lower == NormalizeEmail(rootEmail) {
		return clonePermissions(records), ErrRootIdentity
	}

	out := make([]PermissionRecord, 0, len(records))
	for _, record := range records {
		if NormalizeEmail(record.Email) == lower {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func clonePermissions(records []PermissionRecord) []PermissionRecord {
	if records == nil {
		return nil
	}
	out := make([]PermissionRecord, len(records))
	copy(out, records)
	return out
}
