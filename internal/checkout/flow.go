package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"carrental-backend/internal/domain"
	"carrental-backend/internal/logger"
)

var ErrVehicleNotFound = errors.New("vehicle not found")

// VehicleCatalog resolves the vehicle a checkout is opened for.
type VehicleCatalog interface {
	Vehicle(id int32) (domain.Vehicle, bool)
}

// Flow runs checkout sessions: it loads the session, applies one transition
// and saves the result. Failed transitions leave the step unchanged and
// record the user-facing message on the session.
type Flow struct {
	store     Store
	catalog   VehicleCatalog
	intents   IntentProvider
	confirmer PaymentConfirmer
	submitter Submitter
	policy    Policy
	now       func() time.Time
}

func NewFlow(store Store, catalog VehicleCatalog, intents IntentProvider, confirmer PaymentConfirmer, submitter Submitter, policy Policy) *Flow {
	return &Flow{
		store:     store,
		catalog:   catalog,
		intents:   intents,
		confirmer: confirmer,
		submitter: submitter,
		policy:    policy,
		now:       time.Now,
	}
}

func (f *Flow) Policy() Policy {
	return f.policy
}

// Open starts a fresh draft on step 1, optionally pre-seeded with the range
// and delivery choice made on the vehicle page.
func (f *Flow) Open(ctx context.Context, payer domain.Profile, vehicleID int32, seed *Seed) (*Session, error) {
	logger.EnterMethod("checkout.Open", "userID", payer.UID, "vehicleID", vehicleID)

	if !payer.IsComplete() {
		logger.ExitMethodWithError("checkout.Open", ErrProfileIncomplete)
		return nil, ErrProfileIncomplete
	}
	vehicle, ok := f.catalog.Vehicle(vehicleID)
	if !ok {
		logger.ExitMethodWithError("checkout.Open", ErrVehicleNotFound, "vehicleID", vehicleID)
		return nil, ErrVehicleNotFound
	}

	start := Start(NewDraft(vehicle, seed))
	if seed != nil {
		var err error
		if start, err = start.WithDates(seed.StartDate, seed.EndDate); err != nil {
			// a stale seed is dropped rather than blocking the checkout
			start = Start(NewDraft(vehicle, nil))
		}
	}

	now := f.now().UTC()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    payer.UID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	sess.apply(start)
	if err := f.store.Save(ctx, sess); err != nil {
		logger.ExitMethodWithError("checkout.Open", err)
		return nil, fmt.Errorf("failed to save checkout session: %w", err)
	}

	logger.ExitMethod("checkout.Open", "sessionID", sess.ID)
	return sess, nil
}

func (f *Flow) Get(ctx context.Context, userID, id string) (*Session, error) {
	return f.load(ctx, userID, id)
}

func (f *Flow) SetDates(ctx context.Context, userID, id, startDate, endDate string) (*Session, error) {
	return f.edit(ctx, userID, id, func(st State) (State, error) {
		s, ok := st.(DatesAndOptions)
		if !ok {
			return st, ErrWrongStep
		}
		return s.WithDates(startDate, endDate)
	})
}

func (f *Flow) SetDelivery(ctx context.Context, userID, id string, enabled bool, address string) (*Session, error) {
	return f.edit(ctx, userID, id, func(st State) (State, error) {
		s, ok := st.(DatesAndOptions)
		if !ok {
			return st, ErrWrongStep
		}
		return s.WithDelivery(enabled, address), nil
	})
}

// SetPaymentOption changes full vs down payment. On the payment step the
// intent is re-acquired for the new amount.
func (f *Flow) SetPaymentOption(ctx context.Context, payer domain.Profile, id string, option domain.PaymentOption) (*Session, error) {
	sess, err := f.load(ctx, payer.UID, id)
	if err != nil {
		return nil, err
	}
	if sess.Step == StepPayment {
		return f.async(ctx, payer.UID, id, ActionReprice, func(st State) (State, error) {
			s, ok := st.(Payment)
			if !ok {
				return st, ErrWrongStep
			}
			return s.Reprice(ctx, option, f.intents, payer, f.policy)
		})
	}
	return f.edit(ctx, payer.UID, id, func(st State) (State, error) {
		switch s := st.(type) {
		case DatesAndOptions:
			return s.WithPaymentOption(option)
		case Documents:
			return s.WithPaymentOption(option)
		}
		return st, ErrWrongStep
	})
}

func (f *Flow) AttachDocument(ctx context.Context, userID, id string, docType domain.DocumentType, doc Document) (*Session, error) {
	return f.edit(ctx, userID, id, func(st State) (State, error) {
		s, ok := st.(Documents)
		if !ok {
			return st, ErrWrongStep
		}
		return s.Attach(docType, doc)
	})
}

// Next advances 1→2, or 2→3 once a payment intent is obtained.
func (f *Flow) Next(ctx context.Context, payer domain.Profile, id string) (*Session, error) {
	sess, err := f.load(ctx, payer.UID, id)
	if err != nil {
		return nil, err
	}
	if sess.Step == StepDocuments {
		return f.async(ctx, payer.UID, id, ActionAdvance, func(st State) (State, error) {
			s, ok := st.(Documents)
			if !ok {
				return st, ErrWrongStep
			}
			return s.Next(ctx, f.intents, payer, f.policy)
		})
	}
	return f.edit(ctx, payer.UID, id, func(st State) (State, error) {
		s, ok := st.(DatesAndOptions)
		if !ok {
			return st, ErrWrongStep
		}
		return s.Next(f.policy)
	})
}

// Previous steps back 2→1 or 3→2. There is no way back from step 4.
func (f *Flow) Previous(ctx context.Context, userID, id string) (*Session, error) {
	return f.edit(ctx, userID, id, func(st State) (State, error) {
		switch s := st.(type) {
		case Documents:
			return s.Previous(), nil
		case Payment:
			return s.Previous()
		}
		return st, ErrWrongStep
	})
}

// Pay confirms the payment and submits the booking, moving to step 4.
func (f *Flow) Pay(ctx context.Context, payer domain.Profile, id, paymentMethod string) (*Session, error) {
	logger.EnterMethod("checkout.Pay", "sessionID", id)
	sess, err := f.async(ctx, payer.UID, id, ActionPay, func(st State) (State, error) {
		s, ok := st.(Payment)
		if !ok {
			return st, ErrWrongStep
		}
		return s.Confirm(ctx, id, paymentMethod, payer, f.policy, f.confirmer, f.submitter)
	})
	if err != nil {
		logger.ExitMethodWithError("checkout.Pay", err, "sessionID", id)
		return sess, err
	}
	logger.ExitMethod("checkout.Pay", "sessionID", id, "bookingID", sess.BookingID)
	return sess, nil
}

// Cancel discards the draft. Nothing is persisted for a cancelled checkout.
func (f *Flow) Cancel(ctx context.Context, userID, id string) error {
	if _, err := f.load(ctx, userID, id); err != nil {
		return err
	}
	busy, err := f.store.InFlight(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check busy flags: %w", err)
	}
	if busy {
		return ErrBusy
	}
	return f.store.Delete(ctx, id)
}

func (f *Flow) load(ctx context.Context, userID, id string) (*Session, error) {
	sess, err := f.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// someone else's session is reported as missing
	if sess.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// edit applies a synchronous transition. Edits are refused while an
// asynchronous action on the same session is outstanding.
func (f *Flow) edit(ctx context.Context, userID, id string, fn func(State) (State, error)) (*Session, error) {
	sess, err := f.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	busy, err := f.store.InFlight(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check busy flags: %w", err)
	}
	if busy {
		return nil, ErrBusy
	}
	next, err := fn(sess.State())
	return f.commit(ctx, sess, next, err)
}

// async applies a transition that calls out to a collaborator, holding the
// busy flag for action until it returns.
func (f *Flow) async(ctx context.Context, userID, id string, action Action, fn func(State) (State, error)) (*Session, error) {
	acquired, err := f.store.AcquireBusy(ctx, id, action)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire busy flag: %w", err)
	}
	if !acquired {
		return nil, ErrBusy
	}
	defer func() {
		if err := f.store.ReleaseBusy(context.WithoutCancel(ctx), id, action); err != nil {
			logger.Warn("Failed to release checkout busy flag", "sessionID", id, "action", action, "error", err)
		}
	}()

	sess, err := f.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	next, err := fn(sess.State())
	return f.commit(ctx, sess, next, err)
}

func (f *Flow) commit(ctx context.Context, sess *Session, next State, transitionErr error) (*Session, error) {
	var ve *ValidationError
	var ce *CollaboratorError
	recordable := errors.As(transitionErr, &ve) || errors.As(transitionErr, &ce) || errors.Is(transitionErr, ErrAlreadyPaid)
	if transitionErr != nil && !recordable {
		return nil, transitionErr
	}

	if transitionErr != nil {
		sess.LastError = Message(transitionErr)
		if ce != nil {
			logger.Warn("Checkout collaborator failure", "sessionID", sess.ID, "step", sess.Step.String(), "op", ce.Op, "error", ce.Err)
		}
	} else {
		sess.LastError = ""
	}
	if transitionErr == nil {
		sess.apply(next)
	} else if p, ok := next.(Payment); ok && p.Paid() {
		// the charge went through even though submission failed
		sess.apply(p)
	}
	sess.UpdatedAt = f.now().UTC()

	// a confirmed checkout is final; nothing may replace it
	stored, err := f.store.Get(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	if stored.Step == StepConfirmation {
		logger.Warn("Refusing to overwrite confirmed checkout", "sessionID", sess.ID, "bookingID", stored.BookingID, "step", sess.Step.String())
		return stored, ErrWrongStep
	}

	if err := f.store.Save(ctx, sess); err != nil {
		if sess.PaidTransactionID != "" || sess.BookingID != "" {
			logger.Error("Checkout paid but session not saved, reconcile manually",
				"sessionID", sess.ID,
				"userID", sess.UserID,
				"bookingID", sess.BookingID,
				"transactionID", sess.PaidTransactionID,
				"error", err)
		}
		return nil, fmt.Errorf("failed to save checkout session: %w", err)
	}
	return sess, transitionErr
}
