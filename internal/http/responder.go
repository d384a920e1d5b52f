package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/club-schedule-board/internal/application"
	"github.com/example/club-schedule-board/internal/logging"
)

const maxRequestBytes = 1 << 20

var (
	errBadRequestBody    = errors.New("Dữ liệu gửi lên không đúng định dạng.")
	errInvalidClassID    = errors.New("Mã lớp không hợp lệ.")
	errInvalidEmail      = errors.New("Email không hợp lệ.")
	errInvalidDay        = errors.New("Ngày phải là số từ 0 (Thứ 2) đến 6 (Chủ Nhật).")
	errInvalidCredential = errors.New("Thông tin đăng nhập không hợp lệ.")
	errTooManySyncs      = errors.New("Bạn đồng bộ quá nhanh, vui lòng thử lại sau.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "FORBIDDEN",
			Message:   "Bạn không có quyền thực hiện thao tác này.",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Không tìm thấy dữ liệu yêu cầu."})
	case errors.Is(err, application.ErrRootIdentity):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ROOT_IDENTITY",
			Message:   "Không thể thay đổi quyền của quản trị viên gốc.",
		})
	case errors.Is(err, application.ErrInvalidRole):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "INVALID_ROLE",
			Message:   "Vai trò phải là MANAGER hoặc ADMIN.",
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Dữ liệu nhập chưa hợp lệ.",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Đã xảy ra lỗi máy chủ."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

// decodeJSON reads a size-limited JSON request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Yêu cầu không hợp lệ."
	case http.StatusForbidden:
		return "Bạn không có quyền thực hiện thao tác này."
	case http.StatusNotFound:
		return "Không tìm thấy dữ liệu yêu cầu."
	case http.StatusConflict:
		return "Yêu cầu xung đột với trạng thái hiện tại."
	case http.StatusUnprocessableEntity:
		return "Dữ liệu nhập chưa hợp lệ."
	case http.StatusTooManyRequests:
		return "Quá nhiều yêu cầu, vui lòng thử lại sau."
	default:
		return "Đã xảy ra lỗi máy chủ."
	}
}

var fieldLabels = map[string]string{
	"className":     "Tên lớp",
	"instructor":    "Giáo viên",
	"time":          "Thời gian",
	"dayIndex":      "Ngày trong tuần",
	"day":           "Ngày trong tuần",
	"category":      "Loại lớp",
	"status":        "Trạng thái",
	"scheduleTitle": "Tiêu đề lịch",
	"stars":         "Số sao",
	"comment":       "Nhận xét",
	"classId":       "Lớp học",
	"message":       "Nội dung thông báo",
	"type":          "Loại thông báo",
	"email":         "Email",
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(field, msg)
	}
	return translated
}

func translateValidationMessage(field, message string) string {
	label, ok := fieldLabels[field]
	if !ok {
		return message
	}
	if strings.HasSuffix(message, " is required") {
		return label + " là bắt buộc."
	}
	return label + " không hợp lệ."
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
