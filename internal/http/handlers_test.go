package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/club-schedule-board/internal/application"
	"github.com/example/club-schedule-board/internal/testfixtures"
)

type testAPI struct {
	handler    http.Handler
	store      *application.Store
	reconciler *application.Reconciler
	sink       *testfixtures.RecordingSink
	alerter    *testfixtures.RecordingAlerter
}

func newTestAPI(t *testing.T, source application.RemoteSource) *testAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	factory := testfixtures.NewBoardFactory()
	sink := &testfixtures.RecordingSink{}
	alerter := &testfixtures.RecordingAlerter{}
	store := factory.NewStore(testfixtures.StoreDeps{Sink: sink, Alerter: alerter})
	board := factory.NewBoard(store)
	reconciler := factory.NewReconciler(store, source)
	t.Cleanup(reconciler.Close)

	handler := NewRouter(RouterConfig{
		Board:         NewBoardHandler(store, reconciler, logger),
		Sessions:      NewSessionHandler(store, logger),
		Schedule:      NewScheduleHandler(board, logger),
		Admin:         NewAdminHandler(board, logger),
		Notifications: NewNotificationHandler(board, logger),
		Ratings:       NewRatingHandler(board, logger),
		SyncLimit:     RateLimit(NewSyncLimiter(2), logger),
		Middleware:    []func(http.Handler) http.Handler{RequestLogger(logger)},
	})
	return &testAPI{handler: handler, store: store, reconciler: reconciler, sink: sink, alerter: alerter}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, email string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/session", map[string]string{"email": email, "name": "Tester"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestSessionHandlers(t *testing.T) {
	t.Parallel()

	t.Run("explicit identity logs in and resolves root", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t, nil)

		rec := api.do(t, http.MethodPost, "/session", map[string]string{"email": "Root@Club.vn", "name": "Chủ"})
		require.Equal(t, http.StatusCreated, rec.Code)
		resp := decode[sessionResponse](t, rec)
		assert.Equal(t, "root@club.vn", resp.User.Email)
		assert.Equal(t, application.RoleAdmin, resp.User.Role)
		assert.Equal(t, []application.Action{application.ActionLoginUser}, api.sink.Actions())
	})

	t.Run("provider credential logs in", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t, nil)

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"email":   "lan@club.vn",
			"name":    "Lan",
			"picture": "https://avatars.example.com/lan.png",
		}).SignedString([]byte("secret"))
		require.NoError(t, err)

		rec := api.do(t, http.MethodPost, "/session", map[string]string{"credential": token})
		require.Equal(t, http.StatusCreated, rec.Code)
		resp := decode[sessionResponse](t, rec)
		assert.Equal(t, "https://avatars.example.com/lan.png", resp.User.Avatar)
		assert.Equal(t, application.RoleUser, resp.User.Role)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t, nil)

		assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/session", "{").Code)
		assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/session", map[string]string{"credential": "garbage"}).Code)

		rec := api.do(t, http.MethodPost, "/session", map[string]string{"name": "Nobody"})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		resp := decode[errorResponse](t, rec)
		assert.Equal(t, "Email là bắt buộc.", resp.Errors["email"])
	})

	t.Run("logout clears the session and admin view", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t, nil)
		api.login(t, testfixtures.RootEmail)

		require.Equal(t, http.StatusNoContent, api.do(t, http.MethodPost, "/admin-view", nil).Code)
		require.True(t, api.store.Snapshot().AdminViewOpen)

		require.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, "/session", nil).Code)
		snap := api.store.Snapshot()
		assert.Nil(t, snap.CurrentUser)
		assert.False(t, snap.AdminViewOpen)
		assert.Len(t, snap.Registry, 1)
	})

	t.Run("admin view requires elevated role", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t, nil)
		api.login(t, "member@club.vn")

		rec := api.do(t, http.MethodPost, "/admin-view", nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "FORBIDDEN", decode[errorResponse](t, rec).ErrorCode)
		assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, "/admin-view", nil).Code)
	})
}

func TestScheduleHandlers(t *testing.T) {
	t.Parallel()

	t.Run("members cannot edit", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t, nil)
		api.login(t, "member@club.vn")

		rec := api.do(t, http.MethodPost, "/schedule", testfixtures.NewClass())
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "Bạn không có quyền")
	})

	t.Run("create update and delete", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t, nil)
		api.login(t, testfixtures.RootEmail)

		rec := api.do(t, http.MethodPost, "/schedule", map[string]any{
			"id": "ignored", "dayIndex": 2, "time": "18:00 - 19:00", "className": "zumba", "instructor": "hoa", "category": "DANCE",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		created := decode[classResponse](t, rec).Class
		assert.NotEqual(t, "ignored", created.ID)
		assert.Equal(t, "ZUMBA", created.ClassName)

		created.Status = application.StatusCancelled
		rec = api.do(t, http.MethodPut, "/schedule/"+created.ID, classRequest{ClassSession: created, Notify: true})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, application.StatusCancelled, decode[classResponse](t, rec).Class.Status)

		alerts := api.alerter.Alerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, application.AlertTitleUrgent, alerts[0].Title)

		assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodPut, "/schedule/missing", created).Code)
		assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, "/schedule/"+created.ID, nil).Code)
		assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodDelete, "/schedule/"+created.ID, nil).Code)
	})

	t.Run("validation errors are localized", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t, nil)
		api.login(t, testfixtures.RootEmail)

		rec := api.do(t, http.MethodPost, "/schedule", map[string]any{"dayIndex": 8, "category": "SWIM"})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		resp := decode[errorResponse](t, rec)
		assert.Equal(t, "Tên lớp là bắt buộc.", resp.Errors["className"])
		assert.Equal(t, "Ngày trong tuần không hợp lệ.", resp.Errors["dayIndex"])
		assert.Equal(t, "Loại lớp không hợp lệ.", resp.Errors["category"])
	})

	t.Run("day and week views", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t, nil)
		api.store.SetSchedule(context.Background(), []application.ClassSession{
			testfixtures.NewClass(testfixtures.WithClassID("late"), testfixtures.WithTime("19:00 - 20:00")),
			testfixtures.NewClass(testfixtures.WithClassID("early"), testfixtures.WithTime("06:30 - 07:30")),
			testfixtures.NewClass(testfixtures.WithClassID("sunday"), testfixtures.WithDay(6)),
		})
		api.store.AddRating(context.Background(), testfixtures.NewRating("early", testfixtures.WithStars(4)))

		rec := api.do(t, http.MethodGet, "/schedule?day=0", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		day := decode[dayDTO](t, rec)
		assert.Equal(t, "Thứ 2", day.DayName)
		require.Len(t, day.Classes, 2)
		assert.Equal(t, "early", day.Classes[0].ID)
		require.NotNil(t, day.Classes[0].Rating)
		assert.Equal(t, 4.0, day.Classes[0].Rating.Average)

		week := decode[weekResponse](t, api.do(t, http.MethodGet, "/schedule", nil))
		require.Len(t, week.Days, 7)
		assert.Len(t, week.Days[6].Classes, 1)
		assert.NotNil(t, week.Days[3].Classes)

		assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/schedule?day=monday", nil).Code)
		assert.Equal(t, http.StatusUnprocessableEntity, api.do(t, http.MethodGet, "/schedule?day=7", nil).Code)
	})
}

func TestAdminHandlers(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, nil)
	api.login(t, testfixtures.RootEmail)

	rec := api.do(t, http.MethodPut, "/permissions/Coach@club.vn", grantRequest{Role: "manager"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	records := decode[permissionsResponse](t, rec).Permissions
	require.Len(t, records, 1)
	assert.Equal(t, "coach@club.vn", records[0].Email)

	rec = api.do(t, http.MethodPut, "/permissions/"+testfixtures.RootEmail, grantRequest{Role: "MANAGER"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ROOT_IDENTITY", decode[errorResponse](t, rec).ErrorCode)

	rec = api.do(t, http.MethodPut, "/permissions/x@club.vn", grantRequest{Role: "USER"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INVALID_ROLE", decode[errorResponse](t, rec).ErrorCode)

	rec = api.do(t, http.MethodDelete, "/permissions/coach@club.vn", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[permissionsResponse](t, rec).Permissions)
	assert.Contains(t, rec.Body.String(), `"permissions":[]`)

	rec = api.do(t, http.MethodPut, "/header", application.HeaderConfig{ScheduleTitle: "Lịch tháng 5", Logo: "https://x/placeholder.png"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, application.DefaultBrandLogo, decode[headerResponse](t, rec).Header.Logo)

	rec = api.do(t, http.MethodPut, "/header", application.HeaderConfig{})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Tiêu đề lịch là bắt buộc.", decode[errorResponse](t, rec).Errors["scheduleTitle"])

	assert.Equal(t, http.StatusMethodNotAllowed, api.do(t, http.MethodGet, "/header", nil).Code)
}

func TestNotificationAndRatingHandlers(t *testing.T) {
	t.Parallel()

	api := newTestAPI(t, nil)
	api.login(t, testfixtures.RootEmail)

	rec := api.do(t, http.MethodPost, "/notifications", notificationRequest{Message: "Nghỉ lễ 30/4", Type: "alert"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, application.NotificationAlert, decode[notificationResponse](t, rec).Notification.Type)

	rec = api.do(t, http.MethodPost, "/notifications", notificationRequest{Message: " "})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Nội dung thông báo là bắt buộc.", decode[errorResponse](t, rec).Errors["message"])

	list := decode[notificationsResponse](t, api.do(t, http.MethodGet, "/notifications", nil))
	require.Len(t, list.Notifications, 1)

	rec = api.do(t, http.MethodPost, "/ratings", ratingRequest{ClassID: "gone", Stars: 5, Comment: "Tuyệt"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do(t, http.MethodPost, "/ratings", ratingRequest{ClassID: "gone", Stars: 0})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errs := decode[errorResponse](t, rec).Errors
	assert.Equal(t, "Số sao không hợp lệ.", errs["stars"])
	assert.Equal(t, "Nhận xét là bắt buộc.", errs["comment"])

	rec = api.do(t, http.MethodPost, "/ratings", ratingRequest{Stars: 4, Comment: "Ổn"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Lớp học là bắt buộc.", decode[errorResponse](t, rec).Errors["classId"])

	feed := decode[ratingFeedResponse](t, api.do(t, http.MethodGet, "/ratings", nil))
	require.Len(t, feed.Ratings, 1)
	assert.Equal(t, application.DeletedClassLabel, feed.Ratings[0].ClassName)
	assert.True(t, feed.Ratings[0].ClassDeleted)
}

func TestBoardHandlers(t *testing.T) {
	t.Parallel()

	t.Run("snapshot hides registry from non-admins", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t, nil)
		api.login(t, "member@club.vn")

		rec := api.do(t, http.MethodGet, "/board", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.NotContains(t, body, `"users"`)
		assert.Contains(t, body, `"schedule":[]`)
		assert.Contains(t, body, `"loading":true`)

		api.login(t, testfixtures.RootEmail)
		resp := decode[boardResponse](t, api.do(t, http.MethodGet, "/board", nil))
		assert.Len(t, resp.Users, 2)
	})

	t.Run("manual sync reports remote source and is rate limited", func(t *testing.T) {
		t.Parallel()
		class := testfixtures.NewClass()
		api := newTestAPI(t, testfixtures.StaticSource{Payload: testfixtures.NewPayload(testfixtures.WithSchedule(class))})

		rec := api.do(t, http.MethodPost, "/sync", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[syncResponse](t, rec)
		assert.Equal(t, "remote", resp.Source)
		assert.False(t, resp.Board.Loading)
		require.Len(t, resp.Board.Schedule, 1)
		assert.Equal(t, class.ID, resp.Board.Schedule[0].ID)
		assert.NotNil(t, resp.Board.LastSyncAt)

		require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/sync", nil).Code)
		assert.Equal(t, http.StatusTooManyRequests, api.do(t, http.MethodPost, "/sync", nil).Code)
		assert.Equal(t, http.StatusMethodNotAllowed, api.do(t, http.MethodGet, "/sync", nil).Code)
	})

	t.Run("manual sync falls back to cache", func(t *testing.T) {
		t.Parallel()
		api := newTestAPI(t, testfixtures.StaticSource{Err: errors.New("dial tcp: connection refused")})

		resp := decode[syncResponse](t, api.do(t, http.MethodPost, "/sync", nil))
		assert.Equal(t, "cache", resp.Source)
		assert.Equal(t, "cache", resp.Board.LastSyncFrom)
	})
}

func TestResponderMapsUnknownErrors(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newResponder(nil).handleServiceError(context.Background(), rec, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Đã xảy ra lỗi máy chủ.")
}
