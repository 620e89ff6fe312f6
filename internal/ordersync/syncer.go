// Package ordersync binds the order store, the REST backend and the live
// channel together: optimistic local mutations reconciled against server
// truth, and incremental event application.
package ordersync

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/BrayanMorningstar237/waiter-sync/internal/live"
	"github.com/BrayanMorningstar237/waiter-sync/internal/orders"
)

// justPaidTTL is how long the transient just-paid highlight survives.
const justPaidTTL = 3 * time.Second

// API is the slice of the REST client the syncer depends on.
type API interface {
	FetchOrders(ctx context.Context) ([]orders.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (orders.Order, error)
	MarkPaid(ctx context.Context, id string) (orders.Order, error)
	MarkUnpaid(ctx context.Context, id string) (orders.Order, error)
}

// Notifier surfaces a human-readable message toward the UI layer.
type Notifier func(msg string)

// Syncer applies every order mutation through the same optimistic
// protocol: snapshot, apply locally, call the backend, reconcile with the
// server copy on success or restore the literal snapshot on failure.
type Syncer struct {
	store  *orders.Store
	api    API
	notify Notifier

	nowFunc   func() time.Time
	afterFunc func(time.Duration, func()) *time.Timer
}

// NewSyncer creates a syncer over the given store and backend client.
// notify may be nil when no UI surface is attached.
func NewSyncer(store *orders.Store, api API, notify Notifier) *Syncer {
	if notify == nil {
		notify = func(string) {}
	}
	return &Syncer{
		store:     store,
		api:       api,
		notify:    notify,
		nowFunc:   time.Now,
		afterFunc: time.AfterFunc,
	}
}

// Bootstrap replaces the store with a fresh bulk snapshot.
func (s *Syncer) Bootstrap(ctx context.Context) error {
	list, err := s.api.FetchOrders(ctx)
	if err != nil {
		s.notify("failed to load orders: " + err.Error())
		return fmt.Errorf("bootstrap orders: %w", err)
	}
	s.store.Load(list)
	return nil
}

// HandleEvent merges one live event into the store. Suitable as the
// channel's Handler.
func (s *Syncer) HandleEvent(ev live.Event) {
	switch ev.Type {
	case live.EventNewOrder, live.EventOrderUpdated, live.EventOrderPaid:
		if ev.Order == nil {
			return
		}
		s.store.Apply(*ev.Order)
	case live.EventConnected:
		log.Printf("[sync] live channel established")
	}
}

// withOptimistic runs one mutation through the shared protocol:
//
//  1. snapshot the current order (rollback point),
//  2. apply the local change and the optional afterApply hook,
//  3. issue the network call,
//  4. on success replace with the server's authoritative copy,
//  5. on failure restore the literal snapshot and notify.
//
// Unknown ids are a no-op. The snapshot is taken at call time, so when
// two mutations race on one order the later rollback restores the earlier
// mutation's optimistic state rather than anything older.
func (s *Syncer) withOptimistic(
	ctx context.Context,
	id string,
	apply func(*orders.Order),
	afterApply func(),
	call func(context.Context) (orders.Order, error),
) error {
	snapshot, ok := s.store.Get(id)
	if !ok {
		return nil
	}

	mutated := snapshot.Clone()
	apply(&mutated)
	if err := s.store.Replace(id, mutated); err != nil {
		return nil
	}
	if afterApply != nil {
		afterApply()
	}

	server, err := call(ctx)
	if err != nil {
		// The order may have been reloaded away while the call was in
		// flight; only a still-present entry is rolled back.
		if _, still := s.store.Get(id); still {
			_ = s.store.Replace(id, snapshot)
		}
		s.notify(err.Error())
		return err
	}

	if _, still := s.store.Get(id); !still {
		// View torn down or snapshot replaced mid-flight: discard.
		return nil
	}
	_ = s.store.Replace(id, server)
	return nil
}

// UpdateStatus optimistically moves an order to a new status. Invalid
// transitions are rejected before any local or network mutation.
func (s *Syncer) UpdateStatus(ctx context.Context, id, status string) error {
	current, ok := s.store.Get(id)
	if !ok {
		return nil
	}
	if !orders.ValidStatus(status) {
		msg := fmt.Sprintf("unknown order status %q", status)
		s.notify(msg)
		return fmt.Errorf("%s", msg)
	}
	if !orders.CanTransition(current.Status, status) {
		msg := fmt.Sprintf("cannot move order %s from %s to %s", current.OrderNumber, current.Status, status)
		s.notify(msg)
		return fmt.Errorf("%s", msg)
	}

	return s.withOptimistic(ctx, id,
		func(o *orders.Order) {
			o.Status = status
			o.UpdatedAt = s.nowFunc()
		},
		nil,
		func(ctx context.Context) (orders.Order, error) {
			return s.api.UpdateStatus(ctx, id, status)
		},
	)
}

// MarkAsPaid optimistically marks an order paid, moves it to the front of
// the paid partition and raises the transient just-paid highlight. The
// server-assigned paidAt wins on reconciliation.
func (s *Syncer) MarkAsPaid(ctx context.Context, id string) error {
	err := s.withOptimistic(ctx, id,
		func(o *orders.Order) {
			o.PaymentStatus = orders.PaymentPaid
			now := s.nowFunc()
			o.PaidAt = &now
			o.UpdatedAt = now
		},
		func() { s.store.MoveToFront(id) },
		func(ctx context.Context) (orders.Order, error) {
			return s.api.MarkPaid(ctx, id)
		},
	)
	if err != nil {
		return err
	}
	s.flagJustPaid(id)
	return nil
}

// MarkAsUnpaid optimistically reverts an order's payment to pending.
func (s *Syncer) MarkAsUnpaid(ctx context.Context, id string) error {
	return s.withOptimistic(ctx, id,
		func(o *orders.Order) {
			o.PaymentStatus = orders.PaymentPending
			o.PaidAt = nil
			o.UpdatedAt = s.nowFunc()
		},
		nil,
		func(ctx context.Context) (orders.Order, error) {
			return s.api.MarkUnpaid(ctx, id)
		},
	)
}

// flagJustPaid raises the cosmetic highlight and schedules its clear. The
// timer must never block later mutations, so the clear re-reads the
// current entry instead of holding any earlier copy.
func (s *Syncer) flagJustPaid(id string) {
	if o, ok := s.store.Get(id); ok {
		o.JustPaid = true
		_ = s.store.Replace(id, o)
	}
	s.afterFunc(justPaidTTL, func() {
		if o, ok := s.store.Get(id); ok && o.JustPaid {
			o.JustPaid = false
			_ = s.store.Replace(id, o)
		}
	})
}
