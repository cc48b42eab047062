package workflow

import (
	"context"
	"testing"

	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to connect to in-memory db")

	require.NoError(t, db.AutoMigrate(
		&model.Account{},
		&model.Supplier{},
		&model.RFQ{},
		&model.RFQItem{},
		&model.Quotation{},
		&model.QuotationItem{},
		&model.Approval{},
		&model.FinalDecision{},
		&model.FinalDecisionItem{},
		&model.AuditLog{},
	))

	return db
}

type engineFixture struct {
	db         *gorm.DB
	engine     *Engine
	rfqs       repository.RFQRepository
	quotations repository.QuotationRepository
	suppliers  repository.SupplierRepository
	approvals  repository.ApprovalRepository
	decisions  repository.FinalDecisionRepository

	requester  *model.Account
	approver   *model.Account
	admin      *model.Account
	superAdmin *model.Account
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	db := newTestDB(t)
	f := &engineFixture{
		db:         db,
		rfqs:       repository.NewRFQRepository(db),
		quotations: repository.NewQuotationRepository(db),
		suppliers:  repository.NewSupplierRepository(db),
		approvals:  repository.NewApprovalRepository(db),
		decisions:  repository.NewFinalDecisionRepository(db),
	}
	f.engine = NewEngine(
		repository.NewTransactionManager(db),
		f.rfqs,
		f.quotations,
		f.suppliers,
		f.approvals,
		f.decisions,
		repository.NewAuditRepository(db),
	)

	f.requester = f.createAccount(t, "alice", model.RoleRequester)
	f.approver = f.createAccount(t, "bob", model.RoleApprover)
	f.admin = f.createAccount(t, "carol", model.RoleAdmin)
	f.superAdmin = f.createAccount(t, "dave", model.RoleSuperAdmin)

	return f
}

func (f *engineFixture) createAccount(t *testing.T, username, role string) *model.Account {
	t.Helper()
	account := &model.Account{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, f.db.Create(account).Error)
	return account
}

func (f *engineFixture) createDraftRFQ(t *testing.T, owner *model.Account) *model.RFQ {
	t.Helper()
	rfq := &model.RFQ{
		RFQCode:     "RFQ-TEST-" + uuid.NewString()[:8],
		Title:       "office chairs",
		Status:      model.RFQStatusDraft,
		RequesterID: owner.ID,
		Items: []model.RFQItem{
			{ItemName: "chair", Quantity: 10, Unit: "pcs"},
			{ItemName: "desk", Quantity: 5, Unit: "pcs"},
		},
	}
	require.NoError(t, f.db.Create(rfq).Error)
	return rfq
}

func (f *engineFixture) pendingApproval(t *testing.T, kind string, targetID uuid.UUID) *model.Approval {
	t.Helper()
	var approval model.Approval
	err := f.db.
		Where("kind = ? AND target_id = ? AND status = ?", kind, targetID, model.ApprovalPending).
		First(&approval).Error
	require.NoError(t, err, "expected a pending approval for %s %s", kind, targetID)
	return &approval
}

func (f *engineFixture) rfqStatus(t *testing.T, id uuid.UUID) string {
	t.Helper()
	var rfq model.RFQ
	require.NoError(t, f.db.First(&rfq, "id = ?", id).Error)
	return rfq.Status
}

// createApprovedQuotation walks a quotation through entry, submission and
// admin approval so it can be selected in a final decision.
func (f *engineFixture) createApprovedQuotation(t *testing.T, rfq *model.RFQ) *model.Quotation {
	t.Helper()
	ctx := context.Background()

	supplier := &model.Supplier{Name: "ACME " + uuid.NewString()[:8], Status: model.SupplierStatusApproved}
	require.NoError(t, f.db.Create(supplier).Error)

	items, err := f.rfqs.GetItems(ctx, rfq.ID.String())
	require.NoError(t, err)

	quotation := &model.Quotation{
		RFQID:      rfq.ID,
		SupplierID: supplier.ID,
		Status:     model.QuotationStatusDraft,
		EnteredBy:  f.approver.ID,
	}
	for _, it := range items {
		quotation.Items = append(quotation.Items, model.QuotationItem{
			RFQItemID: it.ID,
			UnitPrice: decimal.NewFromInt(100),
		})
	}
	require.NoError(t, f.db.Create(quotation).Error)

	_, err = f.engine.SubmitQuotation(ctx, quotation.ID.String(), f.approver)
	require.NoError(t, err)

	approval := f.pendingApproval(t, model.ApprovalKindQuotation, quotation.ID)
	_, err = f.engine.Decide(ctx, approval.ID.String(), model.ApprovalApproved, "", f.admin)
	require.NoError(t, err)

	return quotation
}

func TestSubmitRFQ_CreatesAdminTierApproval(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	rfq := f.createDraftRFQ(t, f.requester)

	out, err := f.engine.SubmitRFQ(ctx, rfq.ID.String(), f.requester)
	require.NoError(t, err)
	assert.Equal(t, model.RFQStatusSubmitted, out.Status)

	approval := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)
	assert.Equal(t, model.RoleAdmin, approval.RequiredRole)
}

func TestSubmitRFQ_OnlyOwningRequester(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	rfq := f.createDraftRFQ(t, f.requester)

	other := f.createAccount(t, "eve", model.RoleRequester)

	tests := []struct {
		name  string
		actor *model.Account
	}{
		{name: "different requester", actor: other},
		{name: "admin is not a requester", actor: f.admin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.SubmitRFQ(ctx, rfq.ID.String(), tt.actor)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
		})
	}

	assert.Equal(t, model.RFQStatusDraft, f.rfqStatus(t, rfq.ID))
}

func TestSubmitRFQ_WrongState(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	rfq := f.createDraftRFQ(t, f.requester)

	_, err := f.engine.SubmitRFQ(ctx, rfq.ID.String(), f.requester)
	require.NoError(t, err)

	_, err = f.engine.SubmitRFQ(ctx, rfq.ID.String(), f.requester)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrBusinessRule)
	reason, ok := apperr.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ReasonWrongState, reason)
}

func TestSubmitRFQ_EmptyItems(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	rfq := &model.RFQ{
		RFQCode:     "RFQ-EMPTY",
		Title:       "nothing",
		Status:      model.RFQStatusDraft,
		RequesterID: f.requester.ID,
	}
	require.NoError(t, f.db.Create(rfq).Error)

	_, err := f.engine.SubmitRFQ(ctx, rfq.ID.String(), f.requester)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDecide_FullApprovalChain(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	rfq := f.createDraftRFQ(t, f.requester)

	_, err := f.engine.SubmitRFQ(ctx, rfq.ID.String(), f.requester)
	require.NoError(t, err)

	// Admin tier
	first := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)
	decided, err := f.engine.Decide(ctx, first.ID.String(), model.ApprovalApproved, "looks good", f.admin)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, decided.Status)
	require.NotNil(t, decided.ApproverID)
	assert.Equal(t, f.admin.ID, *decided.ApproverID)
	assert.Equal(t, model.RFQStatusAdminApproved, f.rfqStatus(t, rfq.ID))

	// Second stage opened at super-admin tier
	second := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, model.RoleSuperAdmin, second.RequiredRole)

	_, err = f.engine.Decide(ctx, second.ID.String(), model.ApprovalApproved, "", f.superAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RFQStatusSuperAdminApproved, f.rfqStatus(t, rfq.ID))

	// Chain is exhausted
	var pending int64
	require.NoError(t, f.db.Model(&model.Approval{}).
		Where("kind = ? AND target_id = ? AND status = ?", model.ApprovalKindRFQ, rfq.ID, model.ApprovalPending).
		Count(&pending).Error)
	assert.Zero(t, pending)
}

func TestDecide_RejectTerminatesChain(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	rfq := f.createDraftRFQ(t, f.requester)

	_, err := f.engine.SubmitRFQ(ctx, rfq.ID.String(), f.requester)
	require.NoError(t, err)

	first := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)
	_, err = f.engine.Decide(ctx, first.ID.String(), model.ApprovalApproved, "", f.admin)
	require.NoError(t, err)

	second := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)
	decided, err := f.engine.Decide(ctx, second.ID.String(), model.ApprovalRejected, "over budget", f.superAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalRejected, decided.Status)
	assert.Equal(t, model.RFQStatusRejected, f.rfqStatus(t, rfq.ID))

	// No further approval is created after a rejection
	var pending int64
	require.NoError(t, f.db.Model(&model.Approval{}).
		Where("kind = ? AND target_id = ? AND status = ?", model.ApprovalKindRFQ, rfq.ID, model.ApprovalPending).
		Count(&pending).Error)
	assert.Zero(t, pending)

	// A rejected RFQ can never be finalized
	_, err = f.engine.FinalizeRFQ(ctx, rfq.ID.String(), nil, "", f.superAdmin)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrBusinessRule)
}

func TestDecide_TwiceFailsWithAlreadyDecided(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	rfq := f.createDraftRFQ(t, f.requester)

	_, err := f.engine.SubmitRFQ(ctx, rfq.ID.String(), f.requester)
	require.NoError(t, err)

	approval := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)
	_, err = f.engine.Decide(ctx, approval.ID.String(), model.ApprovalApproved, "", f.admin)
	require.NoError(t, err)
	statusAfterFirst := f.rfqStatus(t, rfq.ID)

	_, err = f.engine.Decide(ctx, approval.ID.String(), model.ApprovalApproved, "", f.admin)
	require.Error(t, err)
	reason, ok := apperr.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ReasonAlreadyDecided, reason)

	// Status is unchanged by the failed second call
	assert.Equal(t, statusAfterFirst, f.rfqStatus(t, rfq.ID))
}

func TestDecide_LostRaceSurfacesAsAlreadyDecided(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	rfq := f.createDraftRFQ(t, f.requester)

	_, err := f.engine.SubmitRFQ(ctx, rfq.ID.String(), f.requester)
	require.NoError(t, err)

	// Simulate a concurrent decider winning the compare-and-set between this
	// caller's read and write.
	approval := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)
	affected, err := f.approvals.Decide(ctx, approval.ID.String(), model.ApprovalApproved, f.admin.ID, "", approval.CreatedAt)
	require.NoError(t, err)
	require.EqualValues(t, 1, affected)

	affected, err = f.approvals.Decide(ctx, approval.ID.String(), model.ApprovalApproved, f.superAdmin.ID, "", approval.CreatedAt)
	require.NoError(t, err)
	assert.Zero(t, affected, "second compare-and-set must touch no rows")
}

func TestDecide_RankGating(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// Admin-tier stage: requester and approver rank too low
	rfq := f.createDraftRFQ(t, f.requester)
	_, err := f.engine.SubmitRFQ(ctx, rfq.ID.String(), f.requester)
	require.NoError(t, err)
	approval := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)

	for _, actor := range []*model.Account{f.requester, f.approver} {
		_, err := f.engine.Decide(ctx, approval.ID.String(), model.ApprovalApproved, "", actor)
		require.Error(t, err)
		reason, ok := apperr.ReasonOf(err)
		require.True(t, ok)
		assert.Equal(t, apperr.ReasonWrongRank, reason)
	}
	assert.Equal(t, model.RFQStatusSubmitted, f.rfqStatus(t, rfq.ID))

	// Super-admin tier: admin rank too low, super-admin clears it
	_, err = f.engine.Decide(ctx, approval.ID.String(), model.ApprovalApproved, "", f.admin)
	require.NoError(t, err)
	second := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)

	_, err = f.engine.Decide(ctx, second.ID.String(), model.ApprovalApproved, "", f.admin)
	require.Error(t, err)
	reason, ok := apperr.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ReasonWrongRank, reason)

	_, err = f.engine.Decide(ctx, second.ID.String(), model.ApprovalApproved, "", f.superAdmin)
	require.NoError(t, err)
}

func TestDecide_UnknownTargetStatusFailsClosed(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	rfq := f.createDraftRFQ(t, f.requester)

	_, err := f.engine.SubmitRFQ(ctx, rfq.ID.String(), f.requester)
	require.NoError(t, err)
	approval := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)

	// A newer deployment moved the RFQ to a status this build does not know.
	require.NoError(t, f.db.Model(&model.RFQ{}).
		Where("id = ?", rfq.ID).
		Update("status", "ESCALATED_REVIEW").Error)

	_, err = f.engine.Decide(ctx, approval.ID.String(), model.ApprovalApproved, "", f.admin)
	require.Error(t, err)
	reason, ok := apperr.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ReasonWrongState, reason)
}

func TestOpenSupplierApproval_DuplicatePending(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	supplier := &model.Supplier{Name: "ACME", Status: model.SupplierStatusPending}
	require.NoError(t, f.db.Create(supplier).Error)

	require.NoError(t, f.engine.OpenSupplierApproval(ctx, supplier.ID.String(), f.approver))

	err := f.engine.OpenSupplierApproval(ctx, supplier.ID.String(), f.approver)
	require.Error(t, err)
	reason, ok := apperr.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, apperr.ReasonDuplicatePending, reason)
}

func TestFinalizeRFQ_HappyPath(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	rfq := f.createDraftRFQ(t, f.requester)

	_, err := f.engine.SubmitRFQ(ctx, rfq.ID.String(), f.requester)
	require.NoError(t, err)
	first := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)
	_, err = f.engine.Decide(ctx, first.ID.String(), model.ApprovalApproved, "", f.admin)
	require.NoError(t, err)
	second := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)
	_, err = f.engine.Decide(ctx, second.ID.String(), model.ApprovalApproved, "", f.superAdmin)
	require.NoError(t, err)

	quotation := f.createApprovedQuotation(t, rfq)
	items, err := f.rfqs.GetItems(ctx, rfq.ID.String())
	require.NoError(t, err)

	inputs := []FinalDecisionItemInput{
		{RFQItemID: items[0].ID.String(), QuotationID: quotation.ID.String(), AgreedPrice: decimal.NewFromInt(95)},
		{RFQItemID: items[1].ID.String(), QuotationID: quotation.ID.String(), AgreedPrice: decimal.NewFromInt(200)},
	}

	decision, err := f.engine.FinalizeRFQ(ctx, rfq.ID.String(), inputs, "negotiated", f.superAdmin)
	require.NoError(t, err)
	require.Len(t, decision.Items, 2)
	assert.Equal(t, model.RFQStatusClosed, f.rfqStatus(t, rfq.ID))

	// Total reconciles with the sum of line totals: 95*10 + 200*5
	assert.True(t, decision.TotalApprovedAmount.Equal(decimal.NewFromInt(1950)),
		"got total %s", decision.TotalApprovedAmount)

	var sum decimal.Decimal
	for _, it := range decision.Items {
		sum = sum.Add(it.LineTotal)
	}
	assert.True(t, decision.TotalApprovedAmount.Equal(sum))

	// Finalizing again fails — decision exists and status is CLOSED
	_, err = f.engine.FinalizeRFQ(ctx, rfq.ID.String(), inputs, "", f.superAdmin)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrBusinessRule)
}

func TestFinalizeRFQ_ForeignRFQItemFailsValidation(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	approveRFQ := func(rfq *model.RFQ) {
		_, err := f.engine.SubmitRFQ(ctx, rfq.ID.String(), f.requester)
		require.NoError(t, err)
		first := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)
		_, err = f.engine.Decide(ctx, first.ID.String(), model.ApprovalApproved, "", f.admin)
		require.NoError(t, err)
		second := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)
		_, err = f.engine.Decide(ctx, second.ID.String(), model.ApprovalApproved, "", f.superAdmin)
		require.NoError(t, err)
	}

	rfq := f.createDraftRFQ(t, f.requester)
	other := f.createDraftRFQ(t, f.requester)
	approveRFQ(rfq)

	quotation := f.createApprovedQuotation(t, rfq)
	items, err := f.rfqs.GetItems(ctx, rfq.ID.String())
	require.NoError(t, err)
	foreignItems, err := f.rfqs.GetItems(ctx, other.ID.String())
	require.NoError(t, err)

	inputs := []FinalDecisionItemInput{
		{RFQItemID: items[0].ID.String(), QuotationID: quotation.ID.String(), AgreedPrice: decimal.NewFromInt(95)},
		{RFQItemID: foreignItems[0].ID.String(), QuotationID: quotation.ID.String(), AgreedPrice: decimal.NewFromInt(200)},
	}

	_, err = f.engine.FinalizeRFQ(ctx, rfq.ID.String(), inputs, "", f.superAdmin)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	// Nothing was persisted by the failed transition
	assert.Equal(t, model.RFQStatusSuperAdminApproved, f.rfqStatus(t, rfq.ID))
	exists, err := f.decisions.ExistsForRFQ(ctx, rfq.ID.String())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFinalizeRFQ_RequiresSuperAdminRank(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	rfq := f.createDraftRFQ(t, f.requester)

	_, err := f.engine.FinalizeRFQ(ctx, rfq.ID.String(), nil, "", f.admin)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
}

func TestWorkflowScenario_SubmitApproveRejectFinalize(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	rfq := f.createDraftRFQ(t, f.requester)

	// draft -> submitted, one pending admin-tier approval
	_, err := f.engine.SubmitRFQ(ctx, rfq.ID.String(), f.requester)
	require.NoError(t, err)
	assert.Equal(t, model.RFQStatusSubmitted, f.rfqStatus(t, rfq.ID))
	first := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)
	assert.Equal(t, model.RoleAdmin, first.RequiredRole)

	// admin approves -> admin_approved, new super-admin-tier pending approval
	_, err = f.engine.Decide(ctx, first.ID.String(), model.ApprovalApproved, "", f.admin)
	require.NoError(t, err)
	assert.Equal(t, model.RFQStatusAdminApproved, f.rfqStatus(t, rfq.ID))
	second := f.pendingApproval(t, model.ApprovalKindRFQ, rfq.ID)
	assert.Equal(t, model.RoleSuperAdmin, second.RequiredRole)

	// super-admin rejects -> rejected, no further approvals
	_, err = f.engine.Decide(ctx, second.ID.String(), model.ApprovalRejected, "", f.superAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RFQStatusRejected, f.rfqStatus(t, rfq.ID))

	var count int64
	require.NoError(t, f.db.Model(&model.Approval{}).
		Where("kind = ? AND target_id = ?", model.ApprovalKindRFQ, rfq.ID).
		Count(&count).Error)
	assert.EqualValues(t, 2, count)

	// finalize on a rejected RFQ fails with a business-rule violation
	_, err = f.engine.FinalizeRFQ(ctx, rfq.ID.String(), nil, "", f.superAdmin)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrBusinessRule)
}
