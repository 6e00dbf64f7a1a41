package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field names shared by every package.
const (
	KeyRunID      = "run_id"
	KeyUsername   = "username"
	KeyProject    = "project"
	KeyStage      = "stage"
	KeyStatusCode = "status_code"
	KeyDurationMS = "duration_ms"
	KeyPath       = "path"
	KeyModel      = "model"
	KeyError      = "error"
)

func RunID(id string) slog.Attr     { return slog.String(KeyRunID, id) }
func Username(u string) slog.Attr   { return slog.String(KeyUsername, u) }
func Project(p string) slog.Attr    { return slog.String(KeyProject, p) }
func Stage(name string) slog.Attr   { return slog.String(KeyStage, name) }
func StatusCode(c int) slog.Attr    { return slog.Int(KeyStatusCode, c) }
func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func Model(m string) slog.Attr      { return slog.String(KeyModel, m) }
func Since(start time.Time) slog.Attr {
	return slog.Int64(KeyDurationMS, time.Since(start).Milliseconds())
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
