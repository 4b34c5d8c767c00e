//go:build integration

package postgres

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fitstack/reepay-payments/internal/core/domain"
)

type PaymentRepositoryTestSuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
	sut       *PaymentRepository
	ctx       context.Context
}

func (s *PaymentRepositoryTestSuite) SetupSuite() {
	time.Local = time.UTC
	s.ctx = context.Background()

	container, err := tcpostgres.Run(s.ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("payments"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		log.Fatal(err)
	}
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	if err != nil {
		log.Fatal(err)
	}
	if err := RunMigrations(connStr, ""); err != nil {
		log.Fatal(err)
	}

	pool, err := GetPool(s.ctx, connStr)
	if err != nil {
		log.Fatal(err)
	}
	s.pool = pool
	s.sut = NewPaymentRepository(pool)
}

func (s *PaymentRepositoryTestSuite) TearDownSuite() {
	s.pool.Close()
	if err := s.container.Terminate(s.ctx); err != nil {
		log.Fatalf("error terminating postgres container: %s", err)
	}
}

func (s *PaymentRepositoryTestSuite) SetupTest() {
	if _, err := s.pool.Exec(s.ctx, "DELETE FROM payment"); err != nil {
		log.Fatalf("error truncating payment table: %s", err)
	}
}

func newPayment(orderID, remoteID string) *domain.Payment {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Payment{
		ID:          uuid.New(),
		OrderID:     orderID,
		RemoteID:    remoteID,
		RemoteState: "authorized",
		Amount:      domain.MoneyFromMinorUnits(2599, "DKK"),
		PaymentType: "visa",
		State:       domain.PaymentNew,
		Test:        true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *PaymentRepositoryTestSuite) TestCreateAndFind() {
	t := s.T()
	p := newPayment("42", "tx_1")
	require.NoError(t, s.sut.Create(s.ctx, p))

	found, err := s.sut.FindByRemoteID(s.ctx, "tx_1", "42")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, p.ID, found[0].ID)
	assert.True(t, p.Amount.Equal(found[0].Amount))
	assert.Equal(t, "visa", found[0].PaymentType)
	assert.Equal(t, domain.PaymentNew, found[0].State)
	assert.True(t, found[0].Test)
	assert.True(t, p.CreatedAt.Equal(found[0].CreatedAt))

	none, err := s.sut.FindByRemoteID(s.ctx, "tx_1", "43")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func (s *PaymentRepositoryTestSuite) TestCreateDuplicate() {
	t := s.T()
	require.NoError(t, s.sut.Create(s.ctx, newPayment("42", "tx_1")))

	err := s.sut.Create(s.ctx, newPayment("42", "tx_1"))
	assert.ErrorIs(t, err, domain.ErrDuplicatePayment)

	require.NoError(t, s.sut.Create(s.ctx, newPayment("43", "tx_1")))
}

func (s *PaymentRepositoryTestSuite) TestSaveExpectedState() {
	t := s.T()
	p := newPayment("42", "tx_1")
	require.NoError(t, s.sut.Create(s.ctx, p))

	require.NoError(t, p.ApplyTransition(domain.TransitionAuthorize))
	require.NoError(t, s.sut.Save(s.ctx, p, domain.PaymentNew))

	// A second writer still believing the payment is new loses.
	assert.ErrorIs(t, s.sut.Save(s.ctx, p, domain.PaymentNew), domain.ErrPaymentNotFound)

	list, err := s.sut.ListByOrder(s.ctx, "42")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.PaymentAuthorization, list[0].State)
}

func TestPaymentRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentRepositoryTestSuite))
}
