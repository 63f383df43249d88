package valueobject

import "github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"

type CargoStatus string

const (
	CargoStatusActive     CargoStatus = "active"
	CargoStatusInProgress CargoStatus = "in_progress"
	CargoStatusCompleted  CargoStatus = "completed"
	CargoStatusCancelled  CargoStatus = "cancelled"
)

func (s CargoStatus) IsValid() bool {
	switch s {
	case CargoStatusActive, CargoStatusInProgress, CargoStatusCompleted, CargoStatusCancelled:
		return true
	}
	return false
}

func (s CargoStatus) CanTransitionTo(newStatus CargoStatus) bool {
	transitions := map[CargoStatus][]CargoStatus{
		CargoStatusActive:     {CargoStatusInProgress, CargoStatusCancelled},
		CargoStatusInProgress: {CargoStatusCompleted},
		CargoStatusCompleted:  {},
		CargoStatusCancelled:  {},
	}

	for _, status := range transitions[s] {
		if status == newStatus {
			return true
		}
	}
	return false
}

func NewCargoStatus(status string) (CargoStatus, error) {
	s := CargoStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус груза")
	}
	return s, nil
}

type BidStatus string

const (
	BidStatusPending  BidStatus = "pending"
	BidStatusAccepted BidStatus = "accepted"
	BidStatusRejected BidStatus = "rejected"
)

func (s BidStatus) IsValid() bool {
	switch s {
	case BidStatusPending, BidStatusAccepted, BidStatusRejected:
		return true
	}
	return false
}

// NewBidDecision принимает только итоговые статусы ставки.
func NewBidDecision(status string) (BidStatus, error) {
	s := BidStatus(status)
	if s != BidStatusAccepted && s != BidStatusRejected {
		return "", apperror.Validation("некорректный статус ставки", map[string]string{
			"status": "допустимые значения: accepted, rejected",
		})
	}
	return s, nil
}

type TransactionStatus string

const (
	TransactionStatusCreated   TransactionStatus = "created"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusInTransit TransactionStatus = "in_transit"
	TransactionStatusDelivered TransactionStatus = "delivered"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusDisputed  TransactionStatus = "disputed"
)

type transactionEdge struct {
	to     TransactionStatus
	actors []PartyRole
}

var bothParties = []PartyRole{PartyShipper, PartyCarrier}

// transactionTransitions - единственный источник допустимых переходов сделки.
var transactionTransitions = map[TransactionStatus][]transactionEdge{
	TransactionStatusCreated: {
		{to: TransactionStatusConfirmed, actors: []PartyRole{PartyShipper}},
		{to: TransactionStatusDisputed, actors: bothParties},
	},
	TransactionStatusConfirmed: {
		{to: TransactionStatusInTransit, actors: []PartyRole{PartyCarrier}},
		{to: TransactionStatusDisputed, actors: bothParties},
	},
	TransactionStatusInTransit: {
		{to: TransactionStatusDelivered, actors: []PartyRole{PartyCarrier}},
		{to: TransactionStatusDisputed, actors: bothParties},
	},
	TransactionStatusDelivered: {
		{to: TransactionStatusCompleted, actors: []PartyRole{PartyShipper}},
		{to: TransactionStatusDisputed, actors: bothParties},
	},
	TransactionStatusCompleted: {},
	TransactionStatusDisputed:  {},
}

func (s TransactionStatus) IsValid() bool {
	_, ok := transactionTransitions[s]
	return ok
}

func (s TransactionStatus) IsTerminal() bool {
	return len(transactionTransitions[s]) == 0
}

func (s TransactionStatus) edge(newStatus TransactionStatus) (transactionEdge, bool) {
	for _, e := range transactionTransitions[s] {
		if e.to == newStatus {
			return e, true
		}
	}
	return transactionEdge{}, false
}

func (s TransactionStatus) CanTransitionTo(newStatus TransactionStatus) bool {
	_, ok := s.edge(newStatus)
	return ok
}

// CanBePerformedBy сообщает, может ли участник сделки выполнить переход.
// Администратор и сам сервис выполняют любой допустимый переход.
func (s TransactionStatus) CanBePerformedBy(newStatus TransactionStatus, actor PartyRole) bool {
	e, ok := s.edge(newStatus)
	if !ok {
		return false
	}
	if actor == PartyAdmin || actor == PartySystem {
		return true
	}
	for _, a := range e.actors {
		if a == actor {
			return true
		}
	}
	return false
}

func NewTransactionStatus(status string) (TransactionStatus, error) {
	s := TransactionStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("некорректный статус сделки", map[string]string{
			"status": "допустимые значения: created, confirmed, in_transit, delivered, completed, disputed",
		})
	}
	return s, nil
}

type ETTNStatus string

const (
	ETTNStatusDraft            ETTNStatus = "draft"
	ETTNStatusPendingSignature ETTNStatus = "pending_signature"
	ETTNStatusPartiallySigned  ETTNStatus = "partially_signed"
	ETTNStatusFullySigned      ETTNStatus = "fully_signed"
	ETTNStatusCompleted        ETTNStatus = "completed"
)

func (s ETTNStatus) IsValid() bool {
	switch s {
	case ETTNStatusDraft, ETTNStatusPendingSignature, ETTNStatusPartiallySigned, ETTNStatusFullySigned, ETTNStatusCompleted:
		return true
	}
	return false
}

// ETTNStatusForSlots выводит статус документа из заполненности слотов подписей.
func ETTNStatusForSlots(shipperSigned, carrierSigned bool) ETTNStatus {
	switch {
	case shipperSigned && carrierSigned:
		return ETTNStatusFullySigned
	case shipperSigned || carrierSigned:
		return ETTNStatusPartiallySigned
	default:
		return ETTNStatusPendingSignature
	}
}

type NotificationType string

const (
	NotificationNewBid        NotificationType = "new_bid"
	NotificationBidAccepted   NotificationType = "bid_accepted"
	NotificationBidRejected   NotificationType = "bid_rejected"
	NotificationStatusUpdate  NotificationType = "status_update"
	NotificationNewMessage    NotificationType = "new_message"
	NotificationAuctionEnding NotificationType = "auction_ending"
)
