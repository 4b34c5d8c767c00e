// Package boltstore is an embedded BoltDB payment store for single-instance
// deployments and local development.
//
// Payments are kept as JSON under their id in the "payments" bucket. The
// "payment_keys" bucket maps remote_id|order_id to the payment id and
// enforces uniqueness of that pair.
package boltstore

import (
	"context"
	"encoding/json"
	"time"

	bolt "github.com/boltdb/bolt"
	"github.com/pkg/errors"

	"github.com/fitstack/reepay-payments/internal/core/domain"
)

var (
	paymentsBucket = []byte("payments")
	keysBucket     = []byte("payment_keys")
)

// PaymentStore implements ports.PaymentRepository on BoltDB.
type PaymentStore struct {
	db *bolt.DB
}

// Open opens (or creates) a BoltDB file at path and ensures the buckets exist.
func Open(path string) (*PaymentStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt database %s", path)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{paymentsBucket, keysBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create buckets")
	}

	return &PaymentStore{db: db}, nil
}

// Close releases the database file lock.
func (s *PaymentStore) Close() error {
	return s.db.Close()
}

func pairKey(remoteID, orderID string) []byte {
	return []byte(remoteID + "|" + orderID)
}

func (s *PaymentStore) FindByRemoteID(_ context.Context, remoteID, orderID string) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(keysBucket).Get(pairKey(remoteID, orderID))
		if id == nil {
			return nil
		}
		p, err := get(tx, id)
		if err != nil {
			return err
		}
		payments = append(payments, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *PaymentStore) ListByOrder(_ context.Context, orderID string) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(paymentsBucket).ForEach(func(_, v []byte) error {
			var p domain.Payment
			if err := json.Unmarshal(v, &p); err != nil {
				return errors.Wrap(err, "decode payment")
			}
			if p.OrderID == orderID {
				payments = append(payments, &p)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// Create inserts a payment in one transaction with its pair key, so a
// second payment for the same pair is rejected.
func (s *PaymentStore) Create(_ context.Context, payment *domain.Payment) error {
	data, err := json.Marshal(payment)
	if err != nil {
		return errors.Wrap(err, "encode payment")
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		keys := tx.Bucket(keysBucket)
		key := pairKey(payment.RemoteID, payment.OrderID)
		if keys.Get(key) != nil {
			return domain.ErrDuplicatePayment
		}

		id := []byte(payment.ID.String())
		if err := tx.Bucket(paymentsBucket).Put(id, data); err != nil {
			return err
		}
		return keys.Put(key, id)
	})
}

func (s *PaymentStore) Save(_ context.Context, payment *domain.Payment, expected domain.PaymentState) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		id := []byte(payment.ID.String())
		stored, err := get(tx, id)
		if err != nil {
			return err
		}
		if stored.State != expected {
			return domain.ErrPaymentNotFound
		}

		stored.State = payment.State
		stored.RemoteState = payment.RemoteState
		stored.UpdatedAt = payment.UpdatedAt
		data, err := json.Marshal(stored)
		if err != nil {
			return errors.Wrap(err, "encode payment")
		}
		return tx.Bucket(paymentsBucket).Put(id, data)
	})
}

func get(tx *bolt.Tx, id []byte) (*domain.Payment, error) {
	v := tx.Bucket(paymentsBucket).Get(id)
	if v == nil {
		return nil, domain.ErrPaymentNotFound
	}
	var p domain.Payment
	if err := json.Unmarshal(v, &p); err != nil {
		return nil, errors.Wrap(err, "decode payment")
	}
	return &p, nil
}
