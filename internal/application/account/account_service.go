// Package account serves the signed-in shopper's dashboard from the account
// fixtures.
package account

import (
	"context"

	"github.com/xgrltd/storefront/internal/domain/account"
	"github.com/xgrltd/storefront/internal/domain/identity"
	"github.com/xgrltd/storefront/internal/domain/shared/valueobject"
)

// RecentOrdersLimit is how many orders the dashboard lists
const RecentOrdersLimit = 3

// AccountService handles account and team queries
type AccountService struct {
	repo account.Repository
}

// NewAccountService creates a new AccountService
func NewAccountService(repo account.Repository) *AccountService {
	return &AccountService{repo: repo}
}

// Dashboard assembles the account overview for user
func (s *AccountService) Dashboard(ctx context.Context, user *identity.Identity) (DashboardResponse, error) {
	profile, err := s.repo.Profile(ctx)
	if err != nil {
		return DashboardResponse{}, err
	}
	orders, err := s.repo.Orders(ctx)
	if err != nil {
		return DashboardResponse{}, err
	}
	wishlist, err := s.repo.Wishlist(ctx)
	if err != nil {
		return DashboardResponse{}, err
	}
	addresses, err := s.repo.Addresses(ctx)
	if err != nil {
		return DashboardResponse{}, err
	}
	methods, err := s.repo.PaymentMethods(ctx)
	if err != nil {
		return DashboardResponse{}, err
	}

	if len(orders) > RecentOrdersLimit {
		orders = orders[:RecentOrdersLimit]
	}
	resp := DashboardResponse{
		User:                user,
		Profile:             *profile,
		FormattedTotalSpent: valueobject.FormatNaira(profile.TotalSpent),
		RecentOrders:        ToOrderSummaryResponses(orders),
		WishlistCount:       len(wishlist),
	}
	if a, ok := account.DefaultAddress(addresses); ok {
		resp.DefaultAddress = &a
	}
	if m, ok := account.DefaultPaymentMethod(methods); ok {
		resp.DefaultPaymentMethod = &m
	}
	return resp, nil
}

// Orders returns the order history, newest first
func (s *AccountService) Orders(ctx context.Context) ([]OrderSummaryResponse, error) {
	orders, err := s.repo.Orders(ctx)
	if err != nil {
		return nil, err
	}
	return ToOrderSummaryResponses(orders), nil
}

// Order returns one order with its breakdown
func (s *AccountService) Order(ctx context.Context, id string) (OrderDetailResponse, error) {
	order, err := s.repo.OrderByID(ctx, id)
	if err != nil {
		return OrderDetailResponse{}, err
	}
	return ToOrderDetailResponse(*order), nil
}

// Wishlist returns the saved products
func (s *AccountService) Wishlist(ctx context.Context) ([]account.WishlistItem, error) {
	return s.repo.Wishlist(ctx)
}

// Addresses returns the saved addresses
func (s *AccountService) Addresses(ctx context.Context) ([]account.Address, error) {
	return s.repo.Addresses(ctx)
}

// PaymentMethods returns the saved payment methods
func (s *AccountService) PaymentMethods(ctx context.Context) ([]account.PaymentMethod, error) {
	return s.repo.PaymentMethods(ctx)
}

// Profile returns the profile
func (s *AccountService) Profile(ctx context.Context) (*account.Profile, error) {
	return s.repo.Profile(ctx)
}

// Team returns the people on the about page
func (s *AccountService) Team(ctx context.Context) ([]account.TeamMember, error) {
	return s.repo.TeamMembers(ctx)
}
