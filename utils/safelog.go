// utils/safelog.go
// ============================================================================
// SAFE LOGGING - masks personal data in production
// ============================================================================
// Every log line goes through a zap SugaredLogger. In production e-mail
// addresses are hidden and UUIDs are shortened before they are written.
// ============================================================================

package utils

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ============================================================================
// CONFIGURATION
// ============================================================================

var (
	// IsProduction is true when sensitive values must be masked. main
	// overrides it through SetProduction once the config is loaded.
	IsProduction = os.Getenv("GIN_MODE") == "release" ||
		strings.EqualFold(os.Getenv("ENVIRONMENT"), "production")

	logLevel = os.Getenv("LOG_LEVEL")
	loggerMu sync.RWMutex
	logger   = newLogger(IsProduction, logLevel)
)

// SetProduction switches masking and the logger encoding to match the
// deployment environment. Call it before serving requests.
func SetProduction(production bool) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	IsProduction = production
	logger = newLogger(production, logLevel)
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newLogger(production bool, level string) *zap.SugaredLogger {
	var cfg zap.Config
	if production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}

// Logger returns the process-wide logger.
func Logger() *zap.SugaredLogger {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return logger
}

// SetLogger replaces the process-wide logger and returns the previous one.
func SetLogger(l *zap.SugaredLogger) *zap.SugaredLogger {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	prev := logger
	logger = l
	return prev
}

// SyncLogger flushes buffered entries.
func SyncLogger() {
	_ = Logger().Sync()
}

// ============================================================================
// MASKING PATTERNS
// ============================================================================

var (
	emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	uuidRegex  = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	tokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)
)

func shortenUUID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return "***"
}

// maskString hides e-mails and tokens and shortens UUIDs when production is set.
func maskString(input string, production bool) string {
	if !production {
		return input
	}
	result := emailRegex.ReplaceAllString(input, "***@***.***")
	result = tokenRegex.ReplaceAllString(result, "***token***")
	return uuidRegex.ReplaceAllStringFunc(result, shortenUUID)
}

// MaskString masks sensitive data in input.
func MaskString(input string) string {
	return maskString(input, IsProduction)
}

// MaskID keeps the first 8 characters of an id in production.
func MaskID(id string) string {
	if !IsProduction {
		return id
	}
	if len(id) <= 8 {
		return "***"
	}
	return id[:8] + "..."
}

// MaskEmail hides an e-mail address in production.
func MaskEmail(email string) string {
	if !IsProduction {
		return email
	}
	return "***@***.***"
}

// ============================================================================
// SAFE LOGGING FUNCTIONS
// ============================================================================

func SafeDebug(format string, args ...interface{}) {
	Logger().Debug(MaskString(fmt.Sprintf(format, args...)))
}

func SafeInfo(format string, args ...interface{}) {
	Logger().Info(MaskString(fmt.Sprintf(format, args...)))
}

func SafeWarn(format string, args ...interface{}) {
	Logger().Warn(MaskString(fmt.Sprintf(format, args...)))
}

func SafeError(format string, args ...interface{}) {
	Logger().Error(MaskString(fmt.Sprintf(format, args...)))
}

// ============================================================================
// DOMAIN LOGGING
// ============================================================================

// LogRecipeAction logs an action on a recipe.
func LogRecipeAction(action string, recipeID string, userID string) {
	Logger().Infow("[Recipe] "+action,
		"recipe_id", MaskID(recipeID),
		"user_id", MaskID(userID))
}

// LogCartAction logs a shopping cart change or report. owner is a user id or a session id.
func LogCartAction(action string, owner string, items int) {
	Logger().Infow("[Cart] "+action,
		"owner", MaskID(owner),
		"items", items)
}

// LogAuthAction logs an authentication attempt.
func LogAuthAction(action string, email string, success bool) {
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	Logger().Infow("[Auth] "+action,
		"email", MaskEmail(email),
		"status", status)
}

// LogAPIRequest logs a served request without its body.
func LogAPIRequest(method string, path string, userID string, statusCode int, duration string) {
	fields := []interface{}{
		"method", method,
		"path", MaskString(path),
		"user_id", MaskID(userID),
		"status", statusCode,
		"duration", duration,
	}
	switch {
	case statusCode >= 500:
		Logger().Errorw("[API]", fields...)
	case statusCode >= 400:
		Logger().Warnw("[API]", fields...)
	default:
		Logger().Infow("[API]", fields...)
	}
}

// LogWebSocket logs a websocket lifecycle event.
func LogWebSocket(action string, userID string) {
	Logger().Infow("[WS] "+action, "user_id", MaskID(userID))
}

// GetEnvMode returns "production" or "development".
func GetEnvMode() string {
	if IsProduction {
		return "production"
	}
	return "development"
}

// LogStartup logs process start information.
func LogStartup(appName string, version string, port string) {
	Logger().Infow(appName+" starting",
		"version", version,
		"mode", GetEnvMode(),
		"port", port)
	if IsProduction {
		Logger().Info("Production mode: sensitive data will be masked in logs")
	}
}
