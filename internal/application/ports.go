package application

import "context"

// CacheKey names one collection snapshot in the local cache.
type CacheKey string

// Versioned cache keys, one per collection.
const (
	CacheKeyCurrentUser   CacheKey = "gx_user_v7"
	CacheKeySchedule      CacheKey = "gx_schedule_v7"
	CacheKeyHeader        CacheKey = "gx_header_v7"
	CacheKeyPermissions   CacheKey = "gx_permissions_v7"
	CacheKeyRatings       CacheKey = "gx_ratings_v7"
	CacheKeyNotifications CacheKey = "gx_notifications_v7"
	CacheKeyRegistry      CacheKey = "gx_users_v7"
)

// CacheStore mirrors collection snapshots to local persistent storage.
//
// Load decodes the value stored under key into dst and reports whether a usable value
// was found. Malformed values are reported as absent.
type CacheStore interface {
	Load(ctx context.Context, key CacheKey, dst any) (bool, error)
	Save(ctx context.Context, key CacheKey, value any) error
	Remove(ctx context.Context, key CacheKey) error
}

// Action tags a best-effort write to the remote endpoint.
type Action string

const (
	ActionUpdateSchedule    Action = "updateSchedule"
	ActionUpdateHeader      Action = "updateHeader"
	ActionAddRating         Action = "addRating"
	ActionAddNotification   Action = "addNotification"
	ActionUpdatePermissions Action = "updatePermissions"
	ActionLoginUser         Action = "loginUser"
)

// RemotePayload is the document returned by the remote endpoint. A nil field means the
// collection was absent from the response and must be left untouched.
type RemotePayload struct {
	Schedule      []ClassSession     `json:"schedule,omitempty"`
	Header        *HeaderConfig      `json:"header,omitempty"`
	Users         []User             `json:"users,omitempty"`
	Notifications []AppNotification  `json:"notifications,omitempty"`
	Permissions   []PermissionRecord `json:"permissions,omitempty"`
	Ratings       []Rating           `json:"ratings,omitempty"`
}

// RemoteSource reads the full remote document.
type RemoteSource interface {
	FetchAll(ctx context.Context) (RemotePayload, error)
}

// RemoteSink accepts fire-and-forget writes. Implementations never report failures to
// the caller.
type RemoteSink interface {
	Push(ctx context.Context, action Action, data any)
}

// Alerter raises a user-visible alert outside the board itself.
type Alerter interface {
	Notify(ctx context.Context, title, body string)
}

type noopSink struct{}

func (noopSink) Push(context.Context, Action, any) {}

type noopAlerter struct{}

func (noopAlerter) Notify(context.Context, string, string) {}

type noopCache struct{}

func (noopCache) Load(context.Context, CacheKey, any) (bool, error) { return false, nil }
func (noopCache) Save(context.Context, CacheKey, any) error          { return nil }
func (noopCache) Remove(context.Context, CacheKey) error             { return nil }
