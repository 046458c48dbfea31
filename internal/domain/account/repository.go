package account

import "context"

// Repository reads the account fixtures behind the dashboard
type Repository interface {
	Orders(ctx context.Context) ([]Order, error)
	OrderByID(ctx context.Context, id string) (*Order, error)
	Wishlist(ctx context.Context) ([]WishlistItem, error)
	Addresses(ctx context.Context) ([]Address, error)
	PaymentMethods(ctx context.Context) ([]PaymentMethod, error)
	Profile(ctx context.Context) (*Profile, error)
	TeamMembers(ctx context.Context) ([]TeamMember, error)
}
