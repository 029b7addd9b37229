package billing

import (
	"testing"
	"time"

	"agency-platform/internal/apperr"
	domainbilling "agency-platform/internal/domain/billing"
	"agency-platform/internal/domain/orders"
	"agency-platform/internal/domain/projects"
	"agency-platform/internal/domain/services"
	"agency-platform/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) MarkPaymentSucceeded(reference string, paidAt time.Time) (bool, *domainbilling.Payment, error) {
	args := m.Called(reference, paidAt)
	var p *domainbilling.Payment
	if args.Get(1) != nil {
		p = args.Get(1).(*domainbilling.Payment)
	}
	return args.Bool(0), p, args.Error(2)
}

func (m *MockStore) MarkOrderPaid(orderID uint) (*orders.Order, bool, error) {
	args := m.Called(orderID)
	var o *orders.Order
	if args.Get(0) != nil {
		o = args.Get(0).(*orders.Order)
	}
	return o, args.Bool(1), args.Error(2)
}

func (m *MockStore) FindService(id uint) (*services.Service, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Service), args.Error(1)
}

func (m *MockStore) FindUser(id uint) (*users.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*users.User), args.Error(1)
}

func (m *MockStore) CreateProjectIfAbsent(p *projects.Project) (bool, error) {
	args := m.Called(p)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreditReferral(referrerID, referredUserID, orderID uint, amount float64) (bool, error) {
	args := m.Called(referrerID, referredUserID, orderID, amount)
	return args.Bool(0), args.Error(1)
}

func pendingPayment(reference string) *domainbilling.Payment {
	return &domainbilling.Payment{ID: 9, OrderID: 42, UserID: 7, Reference: reference, Status: domainbilling.StatusPending}
}

func TestApplySuccessfulPayment_HappyPath(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, 10)

	serviceID := uint(3)
	order := &orders.Order{ID: 42, UserID: 7, ServiceID: &serviceID, TotalAmount: 5000, Status: orders.StatusPaid}

	store.On("MarkPaymentSucceeded", "ref-1", mock.Anything).Return(true, pendingPayment("ref-1"), nil)
	store.On("MarkOrderPaid", uint(42)).Return(order, true, nil)
	store.On("FindService", uint(3)).Return(&services.Service{ID: 3, Name: "Web Design", Duration: "2-4 weeks"}, nil)
	store.On("CreateProjectIfAbsent", mock.MatchedBy(func(p *projects.Project) bool {
		return p.OrderID == 42 &&
			p.Status == projects.StatusActive &&
			p.Stage == projects.StageDiscovery &&
			p.Name == "Web Design" &&
			p.TimelineWeeks == 3 &&
			p.DueDate.Equal(p.StartDate.AddDate(0, 0, 21))
	})).Return(true, nil)
	store.On("FindUser", uint(7)).Return(&users.User{ID: 7}, nil)

	outcome, err := r.ApplySuccessfulPayment(SuccessPayload{Reference: "ref-1", OrderID: "42"})
	require.NoError(t, err)
	assert.True(t, outcome.Applied)
	assert.False(t, outcome.Replayed)
	assert.True(t, outcome.ProjectCreated)
	store.AssertExpectations(t)
}

func TestApplySuccessfulPayment_ReplayShortCircuits(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, 10)

	already := pendingPayment("ref-1")
	already.Status = domainbilling.StatusSucceeded
	store.On("MarkPaymentSucceeded", "ref-1", mock.Anything).Return(false, already, nil)

	outcome, err := r.ApplySuccessfulPayment(SuccessPayload{Reference: "ref-1", OrderID: "42"})
	require.NoError(t, err)
	assert.True(t, outcome.Replayed)
	assert.False(t, outcome.Applied)

	// Replays must not touch orders, projects or referrals.
	store.AssertNotCalled(t, "MarkOrderPaid", mock.Anything)
	store.AssertNotCalled(t, "CreateProjectIfAbsent", mock.Anything)
	store.AssertNotCalled(t, "CreditReferral", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApplySuccessfulPayment_MissingOrderIDIsPermanent(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, 10)

	_, err := r.ApplySuccessfulPayment(SuccessPayload{Reference: "ref-1", OrderID: ""})
	require.Error(t, err)

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindReconciliation, ae.Kind)
	assert.True(t, ae.Permanent)
	store.AssertNotCalled(t, "MarkPaymentSucceeded", mock.Anything, mock.Anything)
}

func TestApplySuccessfulPayment_InvalidOrderIDIsPermanent(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, 10)

	_, err := r.ApplySuccessfulPayment(SuccessPayload{Reference: "ref-1", OrderID: "not-a-number"})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.True(t, ae.Permanent)
}

func TestApplySuccessfulPayment_UnknownReferenceIsPermanent(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, 10)

	store.On("MarkPaymentSucceeded", "ghost", mock.Anything).Return(false, nil, nil)

	_, err := r.ApplySuccessfulPayment(SuccessPayload{Reference: "ghost", OrderID: "42"})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.True(t, ae.Permanent)
}

func TestApplySuccessfulPayment_ReferralCredited(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, 10)

	referrerID := uint(99)
	order := &orders.Order{ID: 42, UserID: 7, TotalAmount: 5000, CustomRequest: `{"note":"around 6 weeks"}`}

	store.On("MarkPaymentSucceeded", "ref-1", mock.Anything).Return(true, pendingPayment("ref-1"), nil)
	store.On("MarkOrderPaid", uint(42)).Return(order, true, nil)
	store.On("CreateProjectIfAbsent", mock.Anything).Return(true, nil)
	store.On("FindUser", uint(7)).Return(&users.User{ID: 7, ReferredByID: &referrerID}, nil)
	store.On("CreditReferral", uint(99), uint(7), uint(42), 500.0).Return(true, nil)

	_, err := r.ApplySuccessfulPayment(SuccessPayload{Reference: "ref-1", OrderID: "42"})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestApplySuccessfulPayment_NoReferrerNoCredit(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, 10)

	order := &orders.Order{ID: 42, UserID: 7, TotalAmount: 5000}

	store.On("MarkPaymentSucceeded", "ref-1", mock.Anything).Return(true, pendingPayment("ref-1"), nil)
	store.On("MarkOrderPaid", uint(42)).Return(order, true, nil)
	store.On("CreateProjectIfAbsent", mock.Anything).Return(true, nil)
	store.On("FindUser", uint(7)).Return(&users.User{ID: 7}, nil)

	_, err := r.ApplySuccessfulPayment(SuccessPayload{Reference: "ref-1", OrderID: "42"})
	require.NoError(t, err)
	store.AssertNotCalled(t, "CreditReferral", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestApplySuccessfulPayment_StructuredTimelineWins(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, 10)

	serviceID := uint(3)
	weeks := 8
	order := &orders.Order{ID: 42, UserID: 7, ServiceID: &serviceID, TotalAmount: 5000, TimelineWeeks: &weeks}

	store.On("MarkPaymentSucceeded", "ref-1", mock.Anything).Return(true, pendingPayment("ref-1"), nil)
	store.On("MarkOrderPaid", uint(42)).Return(order, true, nil)
	store.On("FindService", uint(3)).Return(&services.Service{ID: 3, Name: "Branding", Duration: "2-4 weeks"}, nil)
	store.On("CreateProjectIfAbsent", mock.MatchedBy(func(p *projects.Project) bool {
		return p.TimelineWeeks == 8
	})).Return(true, nil)
	store.On("FindUser", uint(7)).Return(&users.User{ID: 7}, nil)

	_, err := r.ApplySuccessfulPayment(SuccessPayload{Reference: "ref-1", OrderID: "42"})
	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestApplySuccessfulPayment_CancelledOrderNotResurrected(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, 10)

	// Cancel won the race: the conditional order update reports no
	// transition and the row is still cancelled.
	cancelled := &orders.Order{ID: 42, UserID: 7, TotalAmount: 5000, Status: orders.StatusCancelled}
	store.On("MarkPaymentSucceeded", "ref-1", mock.Anything).Return(true, pendingPayment("ref-1"), nil)
	store.On("MarkOrderPaid", uint(42)).Return(cancelled, false, nil)

	outcome, err := r.ApplySuccessfulPayment(SuccessPayload{Reference: "ref-1", OrderID: "42"})
	require.NoError(t, err)
	assert.True(t, outcome.OrderCancelled)
	assert.False(t, outcome.ProjectCreated)

	store.AssertNotCalled(t, "CreateProjectIfAbsent", mock.Anything)
	store.AssertNotCalled(t, "FindUser", mock.Anything)
	store.AssertNotCalled(t, "CreditReferral", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureProjectForOrder_ExistingProjectNotDuplicated(t *testing.T) {
	store := new(MockStore)
	r := NewReconciler(store, 10)

	order := &orders.Order{ID: 42, UserID: 7, TotalAmount: 5000}
	store.On("CreateProjectIfAbsent", mock.Anything).Return(false, nil)

	created, err := r.EnsureProjectForOrder(order)
	require.NoError(t, err)
	assert.False(t, created)
}
