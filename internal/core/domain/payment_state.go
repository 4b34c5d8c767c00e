package domain

import "time"

// PaymentState is a state of the merchant payment workflow.
type PaymentState string

const (
	PaymentNew                 PaymentState = "new"
	PaymentAuthorization       PaymentState = "authorization"
	PaymentAuthorizationVoided PaymentState = "authorization_voided"
	PaymentCompleted           PaymentState = "completed"
)

// TransitionID names a workflow transition.
type TransitionID string

const (
	TransitionAuthorize TransitionID = "authorize"
	TransitionCapture   TransitionID = "capture"
	TransitionVoid      TransitionID = "void"
)

// Transition moves a payment from one of From to To.
type Transition struct {
	ID   TransitionID
	From []PaymentState
	To   PaymentState
}

var paymentWorkflow = map[TransitionID]Transition{
	TransitionAuthorize: {
		ID:   TransitionAuthorize,
		From: []PaymentState{PaymentNew},
		To:   PaymentAuthorization,
	},
	TransitionCapture: {
		ID:   TransitionCapture,
		From: []PaymentState{PaymentNew, PaymentAuthorization},
		To:   PaymentCompleted,
	},
	TransitionVoid: {
		ID:   TransitionVoid,
		From: []PaymentState{PaymentNew, PaymentAuthorization},
		To:   PaymentAuthorizationVoided,
	},
}

// TransitionForCharge maps a charge state to the payment transition it implies.
func TransitionForCharge(state ChargeState) (TransitionID, bool) {
	switch state {
	case ChargeAuthorized:
		return TransitionAuthorize, true
	case ChargeSettled:
		return TransitionCapture, true
	case ChargeFailed, ChargeCancelled:
		return TransitionVoid, true
	default:
		return "", false
	}
}

// ApplyTransition moves the payment along the workflow. On failure the
// payment is left untouched and a *TransitionError is returned.
func (p *Payment) ApplyTransition(id TransitionID) error {
	t, ok := paymentWorkflow[id]
	if !ok {
		return &TransitionError{Transition: id, From: p.State, PaymentID: p.ID.String()}
	}
	for _, from := range t.From {
		if from == p.State {
			p.State = t.To
			p.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return &TransitionError{
		Transition:     id,
		From:           p.State,
		PaymentID:      p.ID.String(),
		AlreadyApplied: p.State == t.To,
	}
}
