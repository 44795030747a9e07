package service

import (
	"context"
	"log/slog"
	"time"

	"go-music-catalog/internal/model"
)

const (
	AuditActionSignup           = "auth.signup"
	AuditActionLogin            = "auth.login"
	AuditActionTwoFactorEnable  = "auth.2fa.enable"
	AuditActionTwoFactorVerify  = "auth.2fa.validate"
	AuditActionTwoFactorDisable = "auth.2fa.disable"
	AuditActionAPIKeyGenerate   = "auth.apikey.generate"
	AuditActionAPIKeyDelete     = "auth.apikey.delete"

	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
	AuditStatusPending = "pending"
)

type auditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
}

type clientIPKey struct{}

// WithClientIP records the caller's address for audit entries written under ctx.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}

type AuditService struct {
	store  auditStore
	logger *slog.Logger
	now    func() time.Time
}

func NewAuditService(store auditStore, logger *slog.Logger) *AuditService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditService{store: store, logger: logger, now: time.Now}
}

// Log appends an entry. A failed write is logged and otherwise ignored.
func (s *AuditService) Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string, cause error) {
	if s == nil || s.store == nil {
		return
	}

	if actor.IP == "" {
		actor.IP = clientIPFromContext(ctx)
	}

	entry := model.AuditEntry{
		Action:     action,
		OccurredAt: s.now().UTC(),
		Actor:      actor,
		Status:     status,
		Resource:   resource,
	}
	if cause != nil {
		entry.Error = cause.Error()
	}

	// The request may already be cancelled; the entry is still worth keeping.
	if err := s.store.Log(context.WithoutCancel(ctx), entry); err != nil {
		s.logger.Warn("audit write failed", "action", action, "status", status, "error", err)
	}
}
