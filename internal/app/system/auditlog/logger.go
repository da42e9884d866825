// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/voicedesk/internal/app/store/audit"
	"github.com/dalemusser/voicedesk/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Auth controls logging for sign-in events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Auth string
	// Admin controls logging for operator actions on clients and admins.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Admin string
}

// Logger provides convenience methods for logging audit events.
// It logs to both MongoDB (via audit.Store) and structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.UserType != "" {
		fields = append(fields, zap.String("user_type", event.UserType))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.ClientID != nil {
		fields = append(fields, zap.String("client_id", event.ClientID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryAuth:
		setting = l.config.Auth
	case audit.CategoryAdmin:
		setting = l.config.Admin
	default:
		setting = "all"
	}
	if setting == "off" {
		return
	}

	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if setting == "all" || setting == "db" {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func requestEvent(r *http.Request, category, eventType string) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// --- Authentication Events ---

// LoginSuccess logs a successful sign-in. clientID is the tenant for client
// and human-agent accounts and nil for operators.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userType string, userID primitive.ObjectID, clientID *primitive.ObjectID, method string) {
	if l == nil {
		return
	}
	e := requestEvent(r, audit.CategoryAuth, audit.EventLoginSuccess)
	e.UserID = &userID
	e.UserType = userType
	e.ClientID = clientID
	e.Success = true
	e.Details = map[string]string{"auth_method": method}
	l.Log(ctx, e)
}

// LoginFailed logs a rejected sign-in. eventType is one of the
// audit.EventLoginFailed* constants; userID is nil when no account matched.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, eventType, userType string, userID *primitive.ObjectID, attemptedEmail, reason string) {
	if l == nil {
		return
	}
	e := requestEvent(r, audit.CategoryAuth, eventType)
	e.UserID = userID
	e.UserType = userType
	e.FailureReason = reason
	e.Details = map[string]string{"attempted_email": attemptedEmail}
	l.Log(ctx, e)
}

// --- Admin Events ---

func (l *Logger) adminAction(ctx context.Context, r *http.Request, eventType string, actorID primitive.ObjectID, clientID, userID *primitive.ObjectID, details map[string]string) {
	if l == nil {
		return
	}
	e := requestEvent(r, audit.CategoryAdmin, eventType)
	e.ActorID = &actorID
	e.ClientID = clientID
	e.UserID = userID
	e.Success = true
	e.Details = details
	l.Log(ctx, e)
}

// ClientApproved logs an operator approving a client account.
func (l *Logger) ClientApproved(ctx context.Context, r *http.Request, actorID, clientID primitive.ObjectID) {
	l.adminAction(ctx, r, audit.EventClientApproved, actorID, &clientID, nil, nil)
}

// ClientDeleted logs an operator deleting a client and its profile.
func (l *Logger) ClientDeleted(ctx context.Context, r *http.Request, actorID, clientID primitive.ObjectID) {
	l.adminAction(ctx, r, audit.EventClientDeleted, actorID, &clientID, nil, nil)
}

// ClientTokenIssued logs an operator obtaining a token to act as a client.
func (l *Logger) ClientTokenIssued(ctx context.Context, r *http.Request, actorID, clientID primitive.ObjectID) {
	l.adminAction(ctx, r, audit.EventClientTokenIssued, actorID, &clientID, nil, nil)
}

// AdminCreated logs a new operator account.
func (l *Logger) AdminCreated(ctx context.Context, r *http.Request, actorID, adminID primitive.ObjectID, role string) {
	l.adminAction(ctx, r, audit.EventAdminCreated, actorID, nil, &adminID, map[string]string{"role": role})
}

// AdminDeleted logs removal of an operator account.
func (l *Logger) AdminDeleted(ctx context.Context, r *http.Request, actorID, adminID primitive.ObjectID) {
	l.adminAction(ctx, r, audit.EventAdminDeleted, actorID, nil, &adminID, nil)
}
