package account

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xgrltd/storefront/internal/domain/account"
	"github.com/xgrltd/storefront/internal/domain/identity"
	"github.com/xgrltd/storefront/internal/domain/shared"
	"github.com/xgrltd/storefront/internal/infrastructure/fixtures"
)

// MockRepository is a mock implementation of account.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Orders(ctx context.Context) ([]account.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.Order), args.Error(1)
}

func (m *MockRepository) OrderByID(ctx context.Context, id string) (*account.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Order), args.Error(1)
}

func (m *MockRepository) Wishlist(ctx context.Context) ([]account.WishlistItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.WishlistItem), args.Error(1)
}

func (m *MockRepository) Addresses(ctx context.Context) ([]account.Address, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.Address), args.Error(1)
}

func (m *MockRepository) PaymentMethods(ctx context.Context) ([]account.PaymentMethod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.PaymentMethod), args.Error(1)
}

func (m *MockRepository) Profile(ctx context.Context) (*account.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Profile), args.Error(1)
}

func (m *MockRepository) TeamMembers(ctx context.Context) ([]account.TeamMember, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.TeamMember), args.Error(1)
}

func newFixtureService(t *testing.T) *AccountService {
	t.Helper()
	store, err := fixtures.Load()
	require.NoError(t, err)
	return NewAccountService(store)
}

func TestAccountService_Dashboard(t *testing.T) {
	svc := newFixtureService(t)
	user := &identity.Identity{ID: "user-1", Name: "jane", Email: "jane@example.com"}

	dash, err := svc.Dashboard(context.Background(), user)
	require.NoError(t, err)

	assert.Equal(t, user, dash.User)
	assert.Equal(t, "Oluwaseun Ajayi", dash.Profile.Name)
	assert.Equal(t, "₦2,450,000", dash.FormattedTotalSpent)
	assert.Equal(t, 4, dash.WishlistCount)

	gotIDs := make([]string, len(dash.RecentOrders))
	for i, o := range dash.RecentOrders {
		gotIDs[i] = o.ID
	}
	if diff := cmp.Diff([]string{"ORD-39472", "ORD-28561", "ORD-19384"}, gotIDs); diff != "" {
		t.Errorf("recent orders mismatch (-want +got):\n%s", diff)
	}

	require.NotNil(t, dash.DefaultAddress)
	assert.Equal(t, "Home", dash.DefaultAddress.Type)
	require.NotNil(t, dash.DefaultPaymentMethod)
	assert.Equal(t, "4242", dash.DefaultPaymentMethod.Last4)
}

func TestAccountService_DashboardWithoutDefaults(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Profile", mock.Anything).Return(&account.Profile{Name: "A"}, nil)
	repo.On("Orders", mock.Anything).Return([]account.Order{}, nil)
	repo.On("Wishlist", mock.Anything).Return([]account.WishlistItem{}, nil)
	repo.On("Addresses", mock.Anything).Return([]account.Address{}, nil)
	repo.On("PaymentMethods", mock.Anything).Return([]account.PaymentMethod{}, nil)

	dash, err := NewAccountService(repo).Dashboard(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, dash.RecentOrders)
	assert.Nil(t, dash.DefaultAddress)
	assert.Nil(t, dash.DefaultPaymentMethod)
	repo.AssertExpectations(t)
}

func TestAccountService_DashboardError(t *testing.T) {
	repo := new(MockRepository)
	repo.On("Profile", mock.Anything).Return(nil, errors.New("unavailable"))

	_, err := NewAccountService(repo).Dashboard(context.Background(), nil)
	assert.EqualError(t, err, "unavailable")
}

func TestAccountService_Orders(t *testing.T) {
	orders, err := newFixtureService(t).Orders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 4)

	assert.Equal(t, OrderSummaryResponse{
		ID:             "ORD-39472",
		Date:           "2023-06-15",
		Status:         account.OrderStatusDelivered,
		Total:          129500,
		FormattedTotal: "₦129,500",
		ItemCount:      2,
	}, orders[0])
}

func TestAccountService_Order(t *testing.T) {
	svc := newFixtureService(t)

	order, err := svc.Order(context.Background(), "ORD-39472")
	require.NoError(t, err)
	assert.Equal(t, "NGP8374628937", order.TrackingNumber)
	assert.Equal(t, account.Breakdown{Subtotal: 116550, Shipping: 0, Tax: 12950, Total: 129500}, order.Breakdown)

	_, err = svc.Order(context.Background(), "ORD-00000")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAccountService_Lists(t *testing.T) {
	svc := newFixtureService(t)
	ctx := context.Background()

	wishlist, err := svc.Wishlist(ctx)
	require.NoError(t, err)
	assert.Len(t, wishlist, 4)

	addresses, err := svc.Addresses(ctx)
	require.NoError(t, err)
	assert.Len(t, addresses, 2)

	methods, err := svc.PaymentMethods(ctx)
	require.NoError(t, err)
	assert.Len(t, methods, 4)

	team, err := svc.Team(ctx)
	require.NoError(t, err)
	assert.Len(t, team, 6)

	profile, err := svc.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, profile.TotalOrders)
}
