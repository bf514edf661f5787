package repositories

import (
	"strings"
	"testing"

	"github.com/lakshya/placement-portal/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyUpdateFilter(t *testing.T) {
	sql, args, err := companyUpdateFilter(models.CompanyUpdateFilter{
		CoordinatorID: 3,
		Statuses:      []models.UpdateStatus{models.UpdatePublished},
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "(cu.coordinator_id = ? AND cu.status IN (?))", sql)
	assert.Equal(t, []interface{}{int64(3), "published"}, args)
}

func TestCompanyUpdateFilter_Empty(t *testing.T) {
	sql, args, err := companyUpdateFilter(models.CompanyUpdateFilter{}).ToSql()
	require.NoError(t, err)

	assert.Equal(t, "(1=1)", sql)
	assert.Empty(t, args)
}

func TestCompanyUpdateWrites_GuardStatus(t *testing.T) {
	r := NewCompanyUpdateRepository(nil)

	sql, args, err := r.deleteQuery(7, models.OwnerMutableStatuses).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM company_updates WHERE id = $1 AND status IN ($2,$3)", sql)
	assert.Equal(t, []interface{}{int64(7), "draft", "rejected"}, args)

	sql, args, err = r.updateStatusQuery(7, models.UpdatePendingApproval, models.UpdateApproved, nil).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE company_updates SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3", sql)
	assert.Equal(t, []interface{}{"approved", int64(7), "pending_approval"}, args)

	notes := "ok"
	sql, args, err = r.updateStatusQuery(7, models.UpdatePendingApproval, models.UpdateRejected, &notes).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE company_updates SET status = $1, updated_at = NOW(), admin_notes = $2 WHERE id = $3 AND status = $4", sql)
	assert.Equal(t, []interface{}{"rejected", "ok", int64(7), "pending_approval"}, args)

	sql, _, err = r.updateContentQuery(&models.CompanyUpdate{ID: 7, CompanyName: "Acme"}, models.OwnerMutableStatuses).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE id = $")
	assert.Contains(t, sql, "AND status IN ($")
	assert.True(t, strings.HasSuffix(sql, "RETURNING updated_at"))
}
