// Package workflow implements the approval state machine gating RFQs,
// quotations and suppliers through sequential organizational sign-offs.
//
// Every transition is one transaction: read current state, validate, write
// the new status plus approval record, append the audit row. Status and
// approval writes are compare-and-set (update only rows still in the expected
// state) so two racing callers cannot both succeed; the loser surfaces a
// business-rule violation and re-fetches.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"procurement/internal/auth"
	"procurement/internal/model"
	"procurement/internal/repository"
	"procurement/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// stage describes one tier of an approval chain: the status the target holds
// while the stage is pending, the status an approval advances it to, and the
// tier of the next stage ("" terminates the chain).
type stage struct {
	from     string
	to       string
	nextTier string
}

// Stage chains per target kind, keyed by the tier (RequiredRole) of the
// pending approval. RFQs need admin then super-admin sign-off; quotations and
// suppliers clear a single admin-tier stage. A target whose persisted status
// is not the stage's expected one — including statuses unknown to this build —
// cannot advance.
var stages = map[string]map[string]stage{
	model.ApprovalKindRFQ: {
		model.RoleAdmin:      {from: model.RFQStatusSubmitted, to: model.RFQStatusAdminApproved, nextTier: model.RoleSuperAdmin},
		model.RoleSuperAdmin: {from: model.RFQStatusAdminApproved, to: model.RFQStatusSuperAdminApproved},
	},
	model.ApprovalKindQuotation: {
		model.RoleAdmin: {from: model.QuotationStatusSubmitted, to: model.QuotationStatusApproved},
	},
	model.ApprovalKindSupplier: {
		model.RoleAdmin: {from: model.SupplierStatusPending, to: model.SupplierStatusApproved},
	},
}

// rejectedStatus is the terminal status a rejection moves each kind to.
var rejectedStatus = map[string]string{
	model.ApprovalKindRFQ:       model.RFQStatusRejected,
	model.ApprovalKindQuotation: model.QuotationStatusRejected,
	model.ApprovalKindSupplier:  model.SupplierStatusRejected,
}

// FinalDecisionItemInput selects the winning quotation and agreed price for
// one RFQ line item.
type FinalDecisionItemInput struct {
	RFQItemID   string          `json:"rfq_item_id" binding:"required"`
	QuotationID string          `json:"quotation_id" binding:"required"`
	AgreedPrice decimal.Decimal `json:"agreed_unit_price" binding:"required"`
}

// Engine executes workflow transitions. It is the only writer of approval and
// status fields.
type Engine struct {
	txm        repository.TransactionManager
	rfqs       repository.RFQRepository
	quotations repository.QuotationRepository
	suppliers  repository.SupplierRepository
	approvals  repository.ApprovalRepository
	decisions  repository.FinalDecisionRepository
	audits     repository.AuditRepository
}

// NewEngine returns a new workflow Engine.
func NewEngine(
	txm repository.TransactionManager,
	rfqs repository.RFQRepository,
	quotations repository.QuotationRepository,
	suppliers repository.SupplierRepository,
	approvals repository.ApprovalRepository,
	decisions repository.FinalDecisionRepository,
	audits repository.AuditRepository,
) *Engine {
	return &Engine{
		txm:        txm,
		rfqs:       rfqs,
		quotations: quotations,
		suppliers:  suppliers,
		approvals:  approvals,
		decisions:  decisions,
		audits:     audits,
	}
}

// SubmitRFQ moves a draft RFQ into the approval chain. Only the owning
// requester may submit, and only while the RFQ is DRAFT.
func (e *Engine) SubmitRFQ(ctx context.Context, rfqID string, actor *model.Account) (*model.RFQ, error) {
	if _, err := uuid.Parse(rfqID); err != nil {
		return nil, apperr.Validationf("invalid rfq id %q", rfqID)
	}

	var out *model.RFQ
	err := e.txm.RunInTx(ctx, func(txCtx context.Context) error {
		rfq, err := e.rfqs.GetByID(txCtx, rfqID)
		if err != nil {
			return notFoundOr(err, "rfq %s", rfqID)
		}

		if err := auth.RequireExactRole(actor, model.RoleRequester); err != nil {
			return err
		}
		if rfq.RequesterID != actor.ID {
			return apperr.PermissionDeniedf("only the owning requester may submit rfq %s", rfq.RFQCode)
		}
		if rfq.Status != model.RFQStatusDraft {
			return apperr.Rule(apperr.ReasonWrongState, "rfq %s is %s, only DRAFT can be submitted", rfq.RFQCode, rfq.Status)
		}

		items, err := e.rfqs.GetItems(txCtx, rfqID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return apperr.Validationf("rfq %s has no line items", rfq.RFQCode)
		}

		if err := e.openStage(txCtx, model.ApprovalKindRFQ, rfq.ID, model.RoleAdmin); err != nil {
			return err
		}

		affected, err := e.rfqs.UpdateStatus(txCtx, rfqID, model.RFQStatusDraft, model.RFQStatusSubmitted)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.Rule(apperr.ReasonWrongState, "rfq %s was modified concurrently", rfq.RFQCode)
		}

		if err := e.audit(txCtx, actor.ID, model.ActionSubmitForApproval, rfq.ID.String(), rfq.RFQCode, map[string]interface{}{
			"kind": model.ApprovalKindRFQ,
			"tier": model.RoleAdmin,
		}); err != nil {
			return err
		}

		out, err = e.rfqs.GetWithRelations(txCtx, rfqID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SubmitQuotation moves a draft quotation into its approval stage. Allowed
// for the account that entered it, or admin rank and above.
func (e *Engine) SubmitQuotation(ctx context.Context, quotationID string, actor *model.Account) (*model.Quotation, error) {
	if _, err := uuid.Parse(quotationID); err != nil {
		return nil, apperr.Validationf("invalid quotation id %q", quotationID)
	}

	var out *model.Quotation
	err := e.txm.RunInTx(ctx, func(txCtx context.Context) error {
		quotation, err := e.quotations.GetByID(txCtx, quotationID)
		if err != nil {
			return notFoundOr(err, "quotation %s", quotationID)
		}

		if err := auth.RequireOwnerOrRank(actor, quotation.EnteredBy, model.RoleAdmin); err != nil {
			return err
		}
		if quotation.Status != model.QuotationStatusDraft {
			return apperr.Rule(apperr.ReasonWrongState, "quotation %s is %s, only DRAFT can be submitted", quotationID, quotation.Status)
		}

		if err := e.openStage(txCtx, model.ApprovalKindQuotation, quotation.ID, model.RoleAdmin); err != nil {
			return err
		}

		affected, err := e.quotations.UpdateStatus(txCtx, quotationID, model.QuotationStatusDraft, model.QuotationStatusSubmitted)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.Rule(apperr.ReasonWrongState, "quotation %s was modified concurrently", quotationID)
		}

		if err := e.audit(txCtx, actor.ID, model.ActionSubmitForApproval, quotationID, "", map[string]interface{}{
			"kind": model.ApprovalKindQuotation,
			"tier": model.RoleAdmin,
		}); err != nil {
			return err
		}

		out, err = e.quotations.GetByID(txCtx, quotationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// OpenSupplierApproval creates the pending admin-tier approval for a newly
// registered supplier. The supplier stays PENDING until decided.
func (e *Engine) OpenSupplierApproval(ctx context.Context, supplierID string, actor *model.Account) error {
	if _, err := uuid.Parse(supplierID); err != nil {
		return apperr.Validationf("invalid supplier id %q", supplierID)
	}

	return e.txm.RunInTx(ctx, func(txCtx context.Context) error {
		supplier, err := e.suppliers.GetByID(txCtx, supplierID)
		if err != nil {
			return notFoundOr(err, "supplier %s", supplierID)
		}
		if supplier.Status != model.SupplierStatusPending {
			return apperr.Rule(apperr.ReasonWrongState, "supplier %s is %s", supplier.Name, supplier.Status)
		}

		if err := e.openStage(txCtx, model.ApprovalKindSupplier, supplier.ID, model.RoleAdmin); err != nil {
			return err
		}

		return e.audit(txCtx, actor.ID, model.ActionSubmitForApproval, supplierID, supplier.Name, map[string]interface{}{
			"kind": model.ApprovalKindSupplier,
			"tier": model.RoleAdmin,
		})
	})
}

// Decide applies one approval decision. The approval must still be pending
// and the actor must rank at or above the stage's tier. Approving advances
// the target and opens the next stage, if any; rejecting terminates the
// chain. Repeating a decision fails: the compare-and-set touches zero rows
// once the approval left PENDING.
func (e *Engine) Decide(ctx context.Context, approvalID string, outcome string, comments string, actor *model.Account) (*model.Approval, error) {
	if _, err := uuid.Parse(approvalID); err != nil {
		return nil, apperr.Validationf("invalid approval id %q", approvalID)
	}
	if outcome != model.ApprovalApproved && outcome != model.ApprovalRejected {
		return nil, apperr.Validationf("outcome must be %s or %s", model.ApprovalApproved, model.ApprovalRejected)
	}

	var out *model.Approval
	err := e.txm.RunInTx(ctx, func(txCtx context.Context) error {
		approval, err := e.approvals.GetByID(txCtx, approvalID)
		if err != nil {
			return notFoundOr(err, "approval %s", approvalID)
		}
		if approval.Status != model.ApprovalPending {
			return apperr.Rule(apperr.ReasonAlreadyDecided, "approval %s is already %s", approvalID, approval.Status)
		}

		if err := auth.RequireRank(actor, approval.RequiredRole); err != nil {
			return apperr.Rule(apperr.ReasonWrongRank, "approval %s requires %s rank or above", approvalID, approval.RequiredRole)
		}

		st, ok := stages[approval.Kind][approval.RequiredRole]
		if !ok {
			return apperr.Rule(apperr.ReasonWrongState, "no stage for kind %s tier %s", approval.Kind, approval.RequiredRole)
		}

		affected, err := e.approvals.Decide(txCtx, approvalID, outcome, actor.ID, comments, time.Now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.Rule(apperr.ReasonAlreadyDecided, "approval %s is already decided", approvalID)
		}

		targetStatus := st.to
		action := model.ActionApproveStage
		if outcome == model.ApprovalRejected {
			targetStatus = rejectedStatus[approval.Kind]
			action = model.ActionRejectStage
		}

		if err := e.advanceTarget(txCtx, approval.Kind, approval.TargetID, st.from, targetStatus); err != nil {
			return err
		}

		if outcome == model.ApprovalApproved && st.nextTier != "" {
			if err := e.openStage(txCtx, approval.Kind, approval.TargetID, st.nextTier); err != nil {
				return err
			}
		}

		if err := e.audit(txCtx, actor.ID, action, approval.TargetID.String(), "", map[string]interface{}{
			"approval_id": approvalID,
			"kind":        approval.Kind,
			"tier":        approval.RequiredRole,
			"outcome":     outcome,
			"comments":    comments,
		}); err != nil {
			return err
		}

		out, err = e.approvals.GetByID(txCtx, approvalID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FinalizeRFQ creates the itemized final decision and closes the RFQ.
// Requires super-admin rank, an RFQ that cleared both approval tiers, no
// prior final decision, and exactly one item input per RFQ line item.
func (e *Engine) FinalizeRFQ(ctx context.Context, rfqID string, inputs []FinalDecisionItemInput, note string, actor *model.Account) (*model.FinalDecision, error) {
	if _, err := uuid.Parse(rfqID); err != nil {
		return nil, apperr.Validationf("invalid rfq id %q", rfqID)
	}
	if err := auth.RequireRank(actor, model.RoleSuperAdmin); err != nil {
		return nil, err
	}

	var out *model.FinalDecision
	err := e.txm.RunInTx(ctx, func(txCtx context.Context) error {
		rfq, err := e.rfqs.GetByID(txCtx, rfqID)
		if err != nil {
			return notFoundOr(err, "rfq %s", rfqID)
		}
		if rfq.Status != model.RFQStatusSuperAdminApproved {
			return apperr.Rule(apperr.ReasonWrongState, "rfq %s is %s, only SUPER_ADMIN_APPROVED can be finalized", rfq.RFQCode, rfq.Status)
		}

		exists, err := e.decisions.ExistsForRFQ(txCtx, rfqID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Rule(apperr.ReasonWrongState, "rfq %s already has a final decision", rfq.RFQCode)
		}

		items, err := e.rfqs.GetItems(txCtx, rfqID)
		if err != nil {
			return err
		}
		quotations, err := e.quotations.ListByRFQ(txCtx, rfqID)
		if err != nil {
			return err
		}

		decisionItems, total, err := buildDecisionItems(rfq, items, quotations, inputs)
		if err != nil {
			return err
		}

		decision := &model.FinalDecision{
			RFQID:               rfq.ID,
			DecidedBy:           actor.ID,
			TotalApprovedAmount: total,
			Note:                note,
			Items:               decisionItems,
		}
		if err := e.decisions.Create(txCtx, decision); err != nil {
			return err
		}

		affected, err := e.rfqs.UpdateStatus(txCtx, rfqID, model.RFQStatusSuperAdminApproved, model.RFQStatusClosed)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.Rule(apperr.ReasonWrongState, "rfq %s was modified concurrently", rfq.RFQCode)
		}

		if err := e.audit(txCtx, actor.ID, model.ActionFinalizeRFQ, rfq.ID.String(), rfq.RFQCode, map[string]interface{}{
			"total_approved_amount": total.StringFixed(4),
			"item_count":            len(decisionItems),
		}); err != nil {
			return err
		}

		out, err = e.decisions.GetByRFQ(txCtx, rfqID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// buildDecisionItems validates the item inputs against the RFQ's own line
// items and quotations, and computes line totals with the grand total.
func buildDecisionItems(rfq *model.RFQ, items []model.RFQItem, quotations []model.Quotation, inputs []FinalDecisionItemInput) ([]model.FinalDecisionItem, decimal.Decimal, error) {
	rfqItems := make(map[uuid.UUID]model.RFQItem, len(items))
	for _, it := range items {
		rfqItems[it.ID] = it
	}
	quotationsByID := make(map[uuid.UUID]model.Quotation, len(quotations))
	for _, q := range quotations {
		quotationsByID[q.ID] = q
	}

	if len(inputs) != len(items) {
		return nil, decimal.Zero, apperr.Validationf("final decision must cover all %d rfq items, got %d", len(items), len(inputs))
	}

	seen := make(map[uuid.UUID]bool, len(inputs))
	decisionItems := make([]model.FinalDecisionItem, 0, len(inputs))
	total := decimal.Zero

	for _, in := range inputs {
		itemID, err := uuid.Parse(in.RFQItemID)
		if err != nil {
			return nil, decimal.Zero, apperr.Validationf("invalid rfq item id %q", in.RFQItemID)
		}
		quotationID, err := uuid.Parse(in.QuotationID)
		if err != nil {
			return nil, decimal.Zero, apperr.Validationf("invalid quotation id %q", in.QuotationID)
		}

		item, ok := rfqItems[itemID]
		if !ok {
			return nil, decimal.Zero, apperr.Validationf("rfq item %s does not belong to rfq %s", itemID, rfq.RFQCode)
		}
		if seen[itemID] {
			return nil, decimal.Zero, apperr.Validationf("rfq item %s selected twice", itemID)
		}
		seen[itemID] = true

		quotation, ok := quotationsByID[quotationID]
		if !ok {
			return nil, decimal.Zero, apperr.Validationf("quotation %s does not belong to rfq %s", quotationID, rfq.RFQCode)
		}
		if quotation.Status != model.QuotationStatusApproved {
			return nil, decimal.Zero, apperr.Validationf("quotation %s is %s, only APPROVED quotations may be selected", quotationID, quotation.Status)
		}
		if in.AgreedPrice.IsNegative() {
			return nil, decimal.Zero, apperr.Validationf("agreed price for rfq item %s must not be negative", itemID)
		}

		lineTotal := in.AgreedPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(lineTotal)

		decisionItems = append(decisionItems, model.FinalDecisionItem{
			RFQItemID:       itemID,
			SupplierID:      quotation.SupplierID,
			QuotationID:     quotationID,
			AgreedUnitPrice: in.AgreedPrice,
			Quantity:        item.Quantity,
			LineTotal:       lineTotal,
		})
	}

	return decisionItems, total, nil
}

// openStage creates the pending approval for one tier, enforcing the
// one-pending-per-target invariant.
func (e *Engine) openStage(ctx context.Context, kind string, targetID uuid.UUID, tier string) error {
	pending, err := e.approvals.CountPendingForTarget(ctx, kind, targetID.String())
	if err != nil {
		return err
	}
	if pending > 0 {
		return apperr.Rule(apperr.ReasonDuplicatePending, "%s %s already has a pending approval", kind, targetID)
	}

	return e.approvals.Create(ctx, &model.Approval{
		Kind:         kind,
		TargetID:     targetID,
		RequiredRole: tier,
		Status:       model.ApprovalPending,
	})
}

// advanceTarget compare-and-sets the target's status. Zero affected rows
// means the target is no longer where this stage expects it — the transition
// fails closed.
func (e *Engine) advanceTarget(ctx context.Context, kind string, targetID uuid.UUID, from, to string) error {
	var affected int64
	var err error
	switch kind {
	case model.ApprovalKindRFQ:
		affected, err = e.rfqs.UpdateStatus(ctx, targetID.String(), from, to)
	case model.ApprovalKindQuotation:
		affected, err = e.quotations.UpdateStatus(ctx, targetID.String(), from, to)
	case model.ApprovalKindSupplier:
		affected, err = e.suppliers.UpdateStatus(ctx, targetID.String(), from, to)
	default:
		return apperr.Validationf("unknown approval kind %q", kind)
	}
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.Rule(apperr.ReasonWrongState, "%s %s is not in status %s", kind, targetID, from)
	}
	return nil
}

func (e *Engine) audit(ctx context.Context, actorID uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	payload, _ := json.Marshal(details)
	return e.audits.Create(ctx, &model.AuditLog{
		AccountID:  &actorID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(payload),
	})
}

func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf(format, args...)
	}
	return err
}
