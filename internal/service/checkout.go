package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/buyme/internal/checkout"
)

type CheckoutService struct {
	Sessions   *checkout.Sessions
	Storefront *StorefrontService
	Gateway    checkout.Gateway
}

type ModalState struct {
	ID          string
	State       checkout.State
	ProductID   string
	ProductName string
	Price       decimal.Decimal
	Size        checkout.Size
	Quantity    int
}

func stateOf(id string, m *checkout.Modal) ModalState {
	p := m.Product()
	return ModalState{
		ID:          id,
		State:       m.State(),
		ProductID:   p.ID,
		ProductName: p.Name,
		Price:       p.Price,
		Size:        m.Size(),
		Quantity:    m.Quantity(),
	}
}

func (s *CheckoutService) Open(ctx context.Context, productID string) (ModalState, error) {
	detail, err := s.Storefront.Product(ctx, productID)
	if err != nil {
		return ModalState{}, err
	}
	id := s.Sessions.Open(detail.Product)
	return s.State(id)
}

func (s *CheckoutService) State(id string) (ModalState, error) {
	var st ModalState
	err := s.Sessions.Do(id, func(m *checkout.Modal) error {
		st = stateOf(id, m)
		return nil
	})
	return st, err
}

func (s *CheckoutService) SelectSize(id, size string) (ModalState, error) {
	sz, err := checkout.ParseSize(size)
	if err != nil {
		return ModalState{}, err
	}
	var st ModalState
	err = s.Sessions.Do(id, func(m *checkout.Modal) error {
		err := m.SelectSize(sz)
		st = stateOf(id, m)
		return err
	})
	return st, err
}

func (s *CheckoutService) SetQuantity(id string, n int) (ModalState, error) {
	var st ModalState
	err := s.Sessions.Do(id, func(m *checkout.Modal) error {
		err := m.SetQuantity(n)
		st = stateOf(id, m)
		return err
	})
	return st, err
}

// Submit returns the modal state after the attempt: Closed on success, still
// Open when the size is missing or the gateway failed. userID is empty for
// guests.
func (s *CheckoutService) Submit(ctx context.Context, id, userID string) (checkout.Receipt, ModalState, error) {
	var (
		rc checkout.Receipt
		st ModalState
	)
	gw := checkout.GatewayFunc(func(ctx context.Context, in checkout.Intent) error {
		in.UserID = userID
		return s.Gateway.Process(ctx, in)
	})
	err := s.Sessions.Do(id, func(m *checkout.Modal) error {
		var err error
		rc, err = m.Submit(ctx, gw)
		if err == nil {
			rc.Intent.UserID = userID
		}
		st = stateOf(id, m)
		return err
	})
	return rc, st, err
}

func (s *CheckoutService) Cancel(id string) error {
	return s.Sessions.Cancel(id)
}
