// Package memory is a mutex-guarded in-process store implementing every
// repository interface. It backs local development and the lifecycle tests.
package memory

import (
	"sync"

	"foodshare/internal/application"
	"foodshare/internal/listing"
	"foodshare/internal/payment"
	"foodshare/internal/subscription"
	"foodshare/internal/token"
	"foodshare/internal/user"
)

type Store struct {
	mu sync.RWMutex

	// txMu serialises payment transactions the way a row lock would.
	txMu sync.Mutex

	seq int64

	users         map[int64]*user.User
	listings      map[int64]*listing.Listing
	applications  map[int64]*application.Application
	transactions  map[int64]*payment.Transaction
	plans         map[int64]*subscription.Plan
	subscriptions map[int64]*subscription.Subscription
	tokens        map[string]*token.Token
}

func New() *Store {
	return &Store{
		users:         make(map[int64]*user.User),
		listings:      make(map[int64]*listing.Listing),
		applications:  make(map[int64]*application.Application),
		transactions:  make(map[int64]*payment.Transaction),
		plans:         make(map[int64]*subscription.Plan),
		subscriptions: make(map[int64]*subscription.Subscription),
		tokens:        make(map[string]*token.Token),
	}
}

// nextID must be called with mu held.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// AddPlan seeds the plan catalogue.
func (s *Store) AddPlan(p subscription.Plan) *subscription.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextID()
	}
	s.plans[p.ID] = &p
	out := p
	return &out
}

func (s *Store) Users() *UserRepository                 { return &UserRepository{s: s} }
func (s *Store) Listings() *ListingRepository           { return &ListingRepository{s: s} }
func (s *Store) Applications() *ApplicationRepository   { return &ApplicationRepository{s: s} }
func (s *Store) Payments() *PaymentRepository           { return &PaymentRepository{s: s} }
func (s *Store) Subscriptions() *SubscriptionRepository { return &SubscriptionRepository{s: s} }
func (s *Store) Tokens() *TokenRepository               { return &TokenRepository{s: s} }
