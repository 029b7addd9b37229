package billing

import (
	"errors"
	"time"

	domainbilling "agency-platform/internal/domain/billing"
	"agency-platform/internal/domain/orders"
	"agency-platform/internal/domain/projects"
	"agency-platform/internal/domain/referrals"
	"agency-platform/internal/domain/services"
	"agency-platform/internal/domain/users"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) MarkPaymentSucceeded(reference string, paidAt time.Time) (bool, *domainbilling.Payment, error) {
	// Conditional update: under concurrent webhook and callback delivery
	// exactly one caller sees a non-zero row count.
	res := s.DB.Model(&domainbilling.Payment{}).
		Where("reference = ? AND status <> ?", reference, domainbilling.StatusSucceeded).
		Updates(map[string]interface{}{
			"status":  domainbilling.StatusSucceeded,
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return false, nil, res.Error
	}

	var payment domainbilling.Payment
	err := s.DB.Where("reference = ?", reference).First(&payment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	return res.RowsAffected > 0, &payment, nil
}

func (s *GormStore) MarkOrderPaid(orderID uint) (*orders.Order, bool, error) {
	// Same conditional-update discipline as the payment row: only pending
	// orders transition, so a success landing after a user cancellation
	// cannot resurrect the order.
	res := s.DB.Model(&orders.Order{}).
		Where("id = ? AND status = ?", orderID, orders.StatusPending).
		Updates(map[string]interface{}{
			"status":         orders.StatusPaid,
			"payment_status": orders.PaymentPaid,
		})
	if res.Error != nil {
		return nil, false, res.Error
	}

	var order orders.Order
	err := s.DB.Where("id = ?", orderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &order, res.RowsAffected > 0, nil
}

func (s *GormStore) FindService(id uint) (*services.Service, error) {
	var svc services.Service
	err := s.DB.Where("id = ?", id).First(&svc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *GormStore) FindUser(id uint) (*users.User, error) {
	var u users.User
	err := s.DB.Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *GormStore) CreateProjectIfAbsent(p *projects.Project) (bool, error) {
	// The unique index on order_id turns the existence check into a
	// constraint; DoNothing keeps concurrent creates from erroring.
	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoNothing: true,
	}).Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) CreditReferral(referrerID, referredUserID, orderID uint, amount float64) (bool, error) {
	ref := referrals.Referral{
		ReferrerID:       referrerID,
		ReferredUserID:   referredUserID,
		OrderID:          orderID,
		CommissionAmount: amount,
		Status:           referrals.StatusConfirmed,
	}
	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}},
		DoNothing: true,
	}).Create(&ref)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	// Earnings move only together with a fresh referral row, so a replay
	// can never double-credit.
	err := s.DB.Model(&users.User{}).
		Where("id = ?", referrerID).
		Update("referral_earnings", gorm.Expr("referral_earnings + ?", amount)).Error
	if err != nil {
		return false, err
	}
	return true, nil
}
