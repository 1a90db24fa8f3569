package repository

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/jmoiron/sqlx"

	"github.com/unclebandit/xeno-crm/internal/db"
	"github.com/unclebandit/xeno-crm/internal/repository/firestore"
	"github.com/unclebandit/xeno-crm/internal/repository/memory"
)

// Store bundles the repositories for one backend.
type Store struct {
	Customers CustomerRepositoryInterface
	Orders    OrderRepositoryInterface
	Outcomes  OutcomeRepositoryInterface
	Segments  SegmentRepositoryInterface

	closeFn func() error
}

// Close releases the backend connection, if any.
func (s *Store) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// NewMemoryStore returns a process-local store.
func NewMemoryStore() *Store {
	return &Store{
		Customers: memory.NewCustomers(),
		Orders:    memory.NewOrders(),
		Outcomes:  memory.NewOutcomes(),
		Segments:  memory.NewSegments(),
	}
}

// NewSQLStore wraps an open, migrated database.
func NewSQLStore(conn *sqlx.DB) (*Store, error) {
	q, err := db.LoadQueries(conn)
	if err != nil {
		return nil, err
	}
	return &Store{
		Customers: &CustomerRepository{Q: q},
		Orders:    &OrderRepository{Q: q},
		Outcomes:  &OutcomeRepository{Q: q},
		Segments:  &SegmentRepository{Q: q},
		closeFn:   conn.Close,
	}, nil
}

// Open selects a backend from the URL scheme: memory://, sqlite://, postgres://
// or firestore://<project>. SQL backends are migrated before use.
func Open(ctx context.Context, dbURL string) (*Store, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	switch u.Scheme {
	case "", "memory":
		log.Println("⚠️ Using in-memory store; data is lost on restart")
		return NewMemoryStore(), nil
	case "firestore":
		if u.Host == "" {
			return nil, fmt.Errorf("firestore URL needs a project: firestore://<project>")
		}
		client, err := firestore.NewClient(ctx, u.Host)
		if err != nil {
			return nil, err
		}
		log.Printf("✅ Connected to Firestore project %s", u.Host)
		return &Store{
			Customers: client.Customers(),
			Orders:    client.Orders(),
			Outcomes:  client.Outcomes(),
			Segments:  client.Segments(),
			closeFn:   client.Close,
		}, nil
	default:
		conn, err := db.Open(dbURL)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, conn); err != nil {
			conn.Close()
			return nil, err
		}
		store, err := NewSQLStore(conn)
		if err != nil {
			conn.Close()
			return nil, err
		}
		return store, nil
	}
}

var (
	_ CustomerRepositoryInterface = (*CustomerRepository)(nil)
	_ OrderRepositoryInterface    = (*OrderRepository)(nil)
	_ OutcomeRepositoryInterface  = (*OutcomeRepository)(nil)
	_ SegmentRepositoryInterface  = (*SegmentRepository)(nil)

	_ CustomerRepositoryInterface = (*memory.Customers)(nil)
	_ OrderRepositoryInterface    = (*memory.Orders)(nil)
	_ OutcomeRepositoryInterface  = (*memory.Outcomes)(nil)
	_ SegmentRepositoryInterface  = (*memory.Segments)(nil)

	_ CustomerRepositoryInterface = (*firestore.Customers)(nil)
	_ OrderRepositoryInterface    = (*firestore.Orders)(nil)
	_ OutcomeRepositoryInterface  = (*firestore.Outcomes)(nil)
	_ SegmentRepositoryInterface  = (*firestore.Segments)(nil)
)
