package checkout

import (
	"time"

	"carrental-backend/internal/domain"
)

// Action names an asynchronous operation guarded by the session busy flag.
type Action string

const (
	ActionAdvance Action = "advance"
	ActionReprice Action = "reprice"
	ActionPay     Action = "pay"
)

// Session is the persisted snapshot of one checkout. State rebuilds the typed
// step from it.
type Session struct {
	ID                string                `json:"id"`
	UserID            string                `json:"user_id"`
	Step              Step                  `json:"step"`
	Draft             Draft                 `json:"draft"`
	Intent            *domain.PaymentIntent `json:"intent,omitempty"`
	PaidTransactionID string                `json:"paid_transaction_id,omitempty"`
	BookingID         string                `json:"booking_id,omitempty"`
	LastError         string                `json:"last_error,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

func (s *Session) State() State {
	switch s.Step {
	case StepDocuments:
		return Documents{draft: s.Draft.clone()}
	case StepPayment:
		var intent domain.PaymentIntent
		if s.Intent != nil {
			intent = *s.Intent
		}
		return Payment{draft: s.Draft.clone(), intent: intent, paidTx: s.PaidTransactionID}
	case StepConfirmation:
		return Confirmation{draft: s.Draft.clone(), bookingID: s.BookingID, paidTx: s.PaidTransactionID}
	default:
		return DatesAndOptions{draft: s.Draft.clone()}
	}
}

func (s *Session) apply(st State) {
	s.Step = st.Step()
	s.Draft = st.Draft()
	s.Intent = nil
	s.PaidTransactionID = ""
	switch v := st.(type) {
	case Payment:
		intent := v.intent
		s.Intent = &intent
		s.PaidTransactionID = v.paidTx
	case Confirmation:
		// the uploaded copies live in blob storage now
		s.Draft.Documents = DocumentSet{}
		s.BookingID = v.bookingID
		s.PaidTransactionID = v.paidTx
	}
}

func (s *Session) clone() *Session {
	out := *s
	out.Draft = s.Draft.clone()
	if s.Intent != nil {
		intent := *s.Intent
		out.Intent = &intent
	}
	return &out
}
