package logger

import "strings"

const (
	// LevelDebug represents the debug severity level name.
	LevelDebug = "DEBUG"
	// LevelInfo represents the info severity level name.
	LevelInfo = "INFO"
	// LevelWarn represents the warning severity level name.
	LevelWarn = "WARN"
	// LevelError represents the error severity level name.
	LevelError = "ERROR"
)

var allowedLevels = map[string]string{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var allowedStatus = map[string]string{
	"ok":   "ok",
	"fail": "fail",
	"skip": "skip",
}

var allowedOutcome = map[string]string{
	"handled":   "handled",
	"unhandled": "unhandled",
	"ambiguous": "ambiguous",
	"failed":    "failed",
	"ok":        "ok",
	"fail":      "fail",
}

func normalizeLevel(level string) string {
	if level == "" {
		return LevelInfo
	}
	if mapped, ok := allowedLevels[strings.ToLower(level)]; ok {
		return mapped
	}
	return strings.ToUpper(level)
}

func normalizeStatus(status string) (string, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return "", false
	}
	if mapped, ok := allowedStatus[status]; ok {
		return mapped, true
	}
	return status, false
}

func normalizeOutcome(outcome string) (string, bool) {
	outcome = strings.ToLower(strings.TrimSpace(outcome))
	if outcome == "" {
		return "", false
	}
	val, ok := allowedOutcome[outcome]
	return val, ok
}

var defaultKeyOrder = []string{
	"ts",
	"level",
	"component",
	"event",
	"status",
	"rid",
	"ts_unix_nano",
	"bot",
	"platform_id",
	"update_id",
	"chat_id",
	"handler",
	"command",
	"variant",
	"priority",
	"mode",
	"token",
	"state",
	"outcome",
	"duration_ms",
	"sessions",
	"tokens",
	"count",
	"payload",
	"locale",
	"username",
	"listen",
	"public_url",
	"db",
	"host",
	"port",
	"err",
	"cause",
	"attempts",
	"backoff_ms",
}
