package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/classroom-scheduler/internal/application"
	"github.com/example/classroom-scheduler/internal/timetable"
)

var (
	errBadRequestBody       = errors.New("無効なリクエスト形式です。")
	errInvalidSessionID     = errors.New("無効なセッション ID です。")
	errInvalidSubjectID     = errors.New("無効な科目 ID です。")
	errInvalidInstructorID  = errors.New("無効な講師 ID です。")
	errMissingSessionToken  = errors.New("認証トークンを指定してください")
	errInvalidWeekParameter = errors.New("week パラメータは YYYY-MM-DD 形式の月曜日で指定してください。")
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
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
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
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "この操作を実行する権限がありません。",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "指定されたリソースが見つかりません。"})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "同じ内容のリソースが既に存在します。"})
	default:
		var cErr *application.ConflictError
		if errors.As(err, &cErr) {
			r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
				ErrorCode: "SCHEDULE_CONFLICT",
				Message:   "指定された時間帯は既存のセッションと重複しています。",
				Conflicts: toConflictDTOs(cErr.Conflicts),
			})
			return
		}

		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			details := localizeValidationErrors(vErr)
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "入力内容に誤りがあります。",
				Errors:  details,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "サーバー内部でエラーが発生しました。"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "リクエスト内容が正しくありません。"
	case http.StatusUnauthorized:
		return "認証が必要です。"
	case http.StatusForbidden:
		return "この操作を実行する権限がありません。"
	case http.StatusNotFound:
		return "指定されたリソースが見つかりません。"
	case http.StatusConflict:
		return "要求はリソースの現在の状態と競合しています。"
	case http.StatusUnprocessableEntity:
		return "入力内容に誤りがあります。"
	default:
		return "サーバー内部でエラーが発生しました。"
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "email is required":
		return "メールアドレスは必須です。"
	case "email is invalid":
		return "メールアドレスの形式が不正です。"
	case "display name is required":
		return "表示名は必須です。"
	case "password is required":
		return "パスワードは必須です。"
	case "password must be at least 8 characters":
		return "パスワードは 8 文字以上で指定してください。"
	case "name is required":
		return "科目名は必須です。"
	case "department is required":
		return "学科は必須です。"
	case "subject is required":
		return "科目は必須です。"
	case "subject does not exist":
		return "指定された科目は存在しません。"
	case "subject belongs to a different department":
		return "科目の学科は変更できません。"
	case "subject is still referenced by sessions":
		return "セッションが登録されている科目は削除できません。"
	case "instructor is required":
		return "講師は必須です。"
	case "instructor does not exist":
		return "指定された講師は存在しません。"
	case "instructor is still referenced by sessions":
		return "セッションが登録されている講師は削除できません。"
	case "room is required":
		return "教室は必須です。"
	case "at least one weekday is required":
		return "少なくとも 1 つの曜日を指定してください。"
	case "weekdays must be lowercase English day names":
		return "曜日は英語の小文字で指定してください。"
	case "start and end times are required":
		return "開始時刻と終了時刻は必須です。"
	case "times must be HH:MM with start before end":
		return "時刻は HH:MM 形式で、開始は終了より前にしてください。"
	case "week must start on Monday at midnight":
		return "週の起点は月曜日の 0 時で指定してください。"
	case "related records are missing":
		return "関連するレコードが存在しません。"
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Conflicts []conflictDTO     `json:"conflicts,omitempty"`
}

type conflictDTO struct {
	WithSessionID string   `json:"with_session_id"`
	Resource      string   `json:"resource"`
	Days          []string `json:"days"`
}

func toConflictDTOs(conflicts []timetable.Conflict) []conflictDTO {
	if len(conflicts) == 0 {
		return nil
	}
	out := make([]conflictDTO, 0, len(conflicts))
	for _, conflict := range conflicts {
		days := make([]string, 0, len(conflict.Days))
		for _, day := range conflict.Days {
			days = append(days, strings.ToLower(day.String()))
		}
		out = append(out, conflictDTO{
			WithSessionID: conflict.WithSessionID,
			Resource:      string(conflict.Resource),
			Days:          days,
		})
	}
	return out
}

func formatTimestamp(ts time.Time) string {
	return ts.UTC().Format(time.RFC3339Nano)
}
