// Package billing applies verified payment outcomes to orders, projects
// and referral earnings. The same success can arrive twice, concurrently,
// via the webhook and the browser-callback verification; every side effect
// here is gated so it lands at most once.
package billing

import (
	"fmt"
	"strconv"
	"time"

	"agency-platform/internal/apperr"
	"agency-platform/internal/audit"
	domainbilling "agency-platform/internal/domain/billing"
	"agency-platform/internal/domain/orders"
	"agency-platform/internal/domain/projects"
	"agency-platform/internal/domain/services"
	"agency-platform/internal/domain/users"

	"go.uber.org/zap"
)

// Store is the persistence surface the reconciler needs. The conditional
// semantics of MarkPaymentSucceeded and CreateProjectIfAbsent are what
// make application idempotent under concurrent delivery.
type Store interface {
	// MarkPaymentSucceeded flips the payment for reference to succeeded
	// if and only if it is not already succeeded, reporting whether this
	// call won the transition. The check must be a conditional update,
	// not read-then-write.
	MarkPaymentSucceeded(reference string, paidAt time.Time) (applied bool, p *domainbilling.Payment, err error)
	// MarkOrderPaid flips the order to paid only while it is pending,
	// reporting whether the transition happened. The current row is
	// returned either way so the caller can see a cancelled order.
	MarkOrderPaid(orderID uint) (order *orders.Order, transitioned bool, err error)
	FindService(id uint) (*services.Service, error)
	FindUser(id uint) (*users.User, error)
	// CreateProjectIfAbsent inserts the project unless one already exists
	// for its order, reporting whether a row was created.
	CreateProjectIfAbsent(p *projects.Project) (created bool, err error)
	// CreditReferral records the referral row for the order and credits
	// the referrer's earnings, unless the order was already credited.
	CreditReferral(referrerID, referredUserID, orderID uint, amount float64) (credited bool, err error)
}

type SuccessPayload struct {
	Reference string
	OrderID   string // from provider metadata; absence is a permanent malformation
	PaidAt    time.Time
}

type Outcome struct {
	Applied        bool
	Replayed       bool
	OrderID        uint
	ProjectCreated bool

	// OrderCancelled means money was collected for an order the user had
	// already cancelled; the payment row is succeeded but no project or
	// referral state moved. An admin refunds or reinstates.
	OrderCancelled bool
}

type Reconciler struct {
	store             Store
	commissionPercent float64
	now               func() time.Time
}

func NewReconciler(store Store, commissionPercent float64) *Reconciler {
	return &Reconciler{
		store:             store,
		commissionPercent: commissionPercent,
		now:               time.Now,
	}
}

// ApplySuccessfulPayment transitions payment, order, project and referral
// state for one verified provider success. Replays short-circuit after the
// payment-status gate.
func (r *Reconciler) ApplySuccessfulPayment(payload SuccessPayload) (*Outcome, error) {
	if payload.OrderID == "" {
		return nil, apperr.Reconciliation("payload missing order id", true)
	}
	orderID64, err := strconv.ParseUint(payload.OrderID, 10, 64)
	if err != nil {
		return nil, apperr.Reconciliation(fmt.Sprintf("invalid order id %q", payload.OrderID), true)
	}
	orderID := uint(orderID64)

	paidAt := payload.PaidAt
	if paidAt.IsZero() {
		paidAt = r.now()
	}

	applied, payment, err := r.store.MarkPaymentSucceeded(payload.Reference, paidAt)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		// A reference we never initialized will not become known later.
		return nil, apperr.Reconciliation(fmt.Sprintf("unknown payment reference %q", payload.Reference), true)
	}
	if !applied {
		audit.Record(audit.ActionPaymentReplayed, audit.Anonymous,
			zap.String("reference", payload.Reference),
			zap.Uint("order_id", orderID),
		)
		return &Outcome{Replayed: true, OrderID: orderID}, nil
	}

	order, transitioned, err := r.store.MarkOrderPaid(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperr.Reconciliation(fmt.Sprintf("payment %q references missing order %d", payload.Reference, orderID), true)
	}
	if !transitioned && order.Status == orders.StatusCancelled {
		audit.Record(audit.ActionPaymentOnCancelled, audit.Anonymous,
			zap.String("reference", payload.Reference),
			zap.Uint("order_id", order.ID),
		)
		return &Outcome{Applied: true, OrderID: order.ID, OrderCancelled: true}, nil
	}

	created, err := r.EnsureProjectForOrder(order)
	if err != nil {
		return nil, err
	}

	if err := r.creditReferrerIfAny(order); err != nil {
		return nil, err
	}

	audit.Record(audit.ActionPaymentApplied, audit.Anonymous,
		zap.String("reference", payload.Reference),
		zap.Uint("order_id", order.ID),
		zap.Bool("project_created", created),
	)
	return &Outcome{Applied: true, OrderID: order.ID, ProjectCreated: created}, nil
}

// EnsureProjectForOrder creates the active project for a paid order if
// none exists yet. Shared by payment application and the project-list
// backfill so both derive identical timelines.
func (r *Reconciler) EnsureProjectForOrder(order *orders.Order) (bool, error) {
	weeks, name := r.deriveProjectParams(order)
	start := r.now()
	project := &projects.Project{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Name:          name,
		Stage:         projects.StageDiscovery,
		StartDate:     start,
		DueDate:       start.AddDate(0, 0, weeks*7),
		Status:        projects.StatusActive,
		TimelineWeeks: weeks,
	}
	return r.store.CreateProjectIfAbsent(project)
}

// deriveProjectParams picks the timeline and project name. The structured
// column wins; the duration-text parser only covers legacy rows.
func (r *Reconciler) deriveProjectParams(order *orders.Order) (weeks int, name string) {
	weeks = projects.DefaultTimelineWeeks
	name = "Custom Project"

	if order.ServiceID != nil {
		if svc, err := r.store.FindService(*order.ServiceID); err == nil && svc != nil {
			name = svc.Name
			weeks = projects.ParseTimelineWeeks(svc.Duration)
		}
	} else if order.CustomRequest != "" {
		weeks = projects.ParseTimelineWeeks(order.CustomRequest)
	}

	if order.TimelineWeeks != nil && *order.TimelineWeeks > 0 {
		weeks = *order.TimelineWeeks
	}
	return weeks, name
}

func (r *Reconciler) creditReferrerIfAny(order *orders.Order) error {
	payer, err := r.store.FindUser(order.UserID)
	if err != nil {
		return err
	}
	if payer == nil || payer.ReferredByID == nil {
		return nil
	}

	commission := order.TotalAmount * r.commissionPercent / 100
	credited, err := r.store.CreditReferral(*payer.ReferredByID, payer.ID, order.ID, commission)
	if err != nil {
		return err
	}
	if credited {
		audit.Record("referral.credited", audit.Anonymous,
			zap.Uint("referrer_id", *payer.ReferredByID),
			zap.Uint("order_id", order.ID),
			zap.Float64("commission", commission),
		)
	}
	return nil
}
