package postgres

import (
	"context"
	"encoding/json"

	"github.com/samber/oops"

	"github.com/oksasatya/user-account-service/internal/domain/repository"
)

// AuditRepository appends to auth_audit_log.
type AuditRepository struct {
	pool poolIface
}

func NewAuditRepository(pool poolIface) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Insert(ctx context.Context, e repository.AuditEntry) error {
	md := []byte("{}")
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return oops.In("postgres").With("op", "insert audit").Wrap(err)
		}
		md = b
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auth_audit_log (user_id, action, ip, user_agent, metadata)
		VALUES (NULLIF($1, '')::uuid, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
	`, e.UserID, e.Action, e.IP, e.UserAgent, md)
	if err != nil {
		return oops.In("postgres").With("op", "insert audit", "action", e.Action).Wrap(err)
	}
	return nil
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
