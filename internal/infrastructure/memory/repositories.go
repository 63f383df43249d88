package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
)

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return apperror.New(apperror.ErrCodeConflict, "пользователь с таким email уже существует")
		}
	}
	put(ctx, r.s.users, user.ID, *user)
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, apperror.ErrUserNotFound
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[user.ID]
	if !ok {
		return apperror.ErrUserNotFound
	}
	u.FirstName = user.FirstName
	u.LastName = user.LastName
	u.CompanyName = user.CompanyName
	u.Phone = user.Phone
	u.IIN = user.IIN
	u.BIN = user.BIN
	u.UpdatedAt = user.UpdatedAt
	put(ctx, r.s.users, user.ID, u)
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID uuid.UUID, role valueobject.UserRole, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return apperror.ErrUserNotFound
	}
	u.Role = role
	u.UpdatedAt = at
	put(ctx, r.s.users, userID, u)
	return nil
}

func (r *UserRepository) UpdateReputation(ctx context.Context, userID uuid.UUID, rep entity.Reputation, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return apperror.ErrUserNotFound
	}
	u.Reputation = rep
	u.UpdatedAt = at
	put(ctx, r.s.users, userID, u)
	return nil
}

func (r *UserRepository) AssignCertificate(ctx context.Context, userID uuid.UUID, certID string, expiry time.Time, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return false, apperror.ErrUserNotFound
	}
	if u.HasValidCertificate(now) {
		return false, nil
	}
	u.EDSCertID = &certID
	u.EDSCertExpiry = &expiry
	u.UpdatedAt = now
	put(ctx, r.s.users, userID, u)
	return true, nil
}

type CargoRepository struct{ s *Store }

func (r *CargoRepository) Create(ctx context.Context, cargo *entity.Cargo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	put(ctx, r.s.cargo, cargo.ID, *cargo)
	return nil
}

func (r *CargoRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Cargo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.cargo[id]
	if !ok {
		return nil, apperror.ErrCargoNotFound
	}
	return &c, nil
}

// FindByIDForUpdate: транзакции хранилища уже сериализованы.
func (r *CargoRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Cargo, error) {
	return r.FindByID(ctx, id)
}

func (r *CargoRepository) List(_ context.Context, filter repository.CargoFilter) ([]*entity.Cargo, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]*entity.Cargo, 0)
	for _, c := range r.s.cargo {
		if filter.Status != "" && string(c.Status) != filter.Status {
			continue
		}
		if filter.OwnerID != nil && c.OwnerID != *filter.OwnerID {
			continue
		}
		c := c
		result = append(result, &c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r *CargoRepository) Update(ctx context.Context, cargo *entity.Cargo) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.cargo[cargo.ID]
	if !ok {
		return apperror.ErrCargoNotFound
	}
	if current.Status != valueobject.CargoStatusActive {
		return apperror.ErrStatusChanged
	}
	updated := *cargo
	updated.OwnerID = current.OwnerID
	updated.Status = current.Status
	updated.CreatedAt = current.CreatedAt
	put(ctx, r.s.cargo, cargo.ID, updated)
	return nil
}

func (r *CargoRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to valueobject.CargoStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.cargo[id]
	if !ok {
		return apperror.ErrCargoNotFound
	}
	if c.Status != from {
		return apperror.ErrStatusChanged
	}
	c.Status = to
	c.UpdatedAt = time.Now()
	put(ctx, r.s.cargo, id, c)
	return nil
}

type BidRepository struct{ s *Store }

func (r *BidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	put(ctx, r.s.bids, bid.ID, *bid)
	return nil
}

func (r *BidRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Bid, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.bids[id]
	if !ok {
		return nil, apperror.ErrBidNotFound
	}
	return &b, nil
}

func (r *BidRepository) filter(match func(entity.Bid) bool) []*entity.Bid {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]*entity.Bid, 0)
	for _, b := range r.s.bids {
		if match(b) {
			b := b
			result = append(result, &b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result
}

func (r *BidRepository) FindByCargoID(_ context.Context, cargoID uuid.UUID) ([]*entity.Bid, error) {
	return r.filter(func(b entity.Bid) bool { return b.CargoID == cargoID }), nil
}

func (r *BidRepository) FindByCarrierID(_ context.Context, carrierID uuid.UUID) ([]*entity.Bid, error) {
	return r.filter(func(b entity.Bid) bool { return b.CarrierID == carrierID }), nil
}

func (r *BidRepository) HasAccepted(_ context.Context, cargoID uuid.UUID) (bool, error) {
	accepted := r.filter(func(b entity.Bid) bool {
		return b.CargoID == cargoID && b.Status == valueobject.BidStatusAccepted
	})
	return len(accepted) > 0, nil
}

func (r *BidRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to valueobject.BidStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bids[id]
	if !ok {
		return apperror.ErrBidNotFound
	}
	if b.Status != from {
		return apperror.ErrBidNotPending
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	put(ctx, r.s.bids, id, b)
	return nil
}

func (r *BidRepository) StatsByCarrier(_ context.Context, carrierID uuid.UUID) (repository.BidStats, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var stats repository.BidStats
	for _, b := range r.s.bids {
		if b.CarrierID != carrierID {
			continue
		}
		stats.Total++
		if b.Status == valueobject.BidStatusAccepted {
			stats.Accepted++
		}
	}
	return stats, nil
}

type TransactionRepository struct{ s *Store }

func (r *TransactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.transactions {
		if t.BidID == tx.BidID {
			return apperror.ErrBidAlreadyAccepted
		}
	}
	put(ctx, r.s.transactions, tx.ID, *tx)
	return nil
}

func (r *TransactionRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.transactions[id]
	if !ok {
		return nil, apperror.ErrTransactionNotFound
	}
	return &t, nil
}

func (r *TransactionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Transaction, error) {
	return r.FindByID(ctx, id)
}

func (r *TransactionRepository) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entity.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]*entity.Transaction, 0)
	for _, t := range r.s.transactions {
		if t.IsParty(userID) {
			t := t
			result = append(result, &t)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *TransactionRepository) UpdateStatus(ctx context.Context, tx *entity.Transaction, from valueobject.TransactionStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.transactions[tx.ID]
	if !ok {
		return apperror.ErrTransactionNotFound
	}
	if current.Status != from {
		return apperror.ErrStatusChanged
	}
	put(ctx, r.s.transactions, tx.ID, *tx)
	return nil
}

func (r *TransactionRepository) FindCompletedDeliveries(_ context.Context, userID uuid.UUID) ([]repository.CompletedDelivery, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]repository.CompletedDelivery, 0)
	for _, t := range r.s.transactions {
		if t.Status != valueobject.TransactionStatusCompleted || !t.IsParty(userID) {
			continue
		}
		d := repository.CompletedDelivery{TransactionID: t.ID, CompletedAt: t.CompletedAt}
		if c, ok := r.s.cargo[t.CargoID]; ok {
			d.DeliveryDate = c.DeliveryDate
		}
		result = append(result, d)
	}
	return result, nil
}

type RatingRepository struct{ s *Store }

func (r *RatingRepository) Create(ctx context.Context, rating *entity.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.ratings {
		if existing.RaterID == rating.RaterID && existing.TransactionID == rating.TransactionID {
			return apperror.ErrRatingExists
		}
	}
	put(ctx, r.s.ratings, rating.ID, *rating)
	return nil
}

func (r *RatingRepository) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entity.Rating, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]*entity.Rating, 0)
	for _, rt := range r.s.ratings {
		if rt.UserID == userID {
			rt := rt
			result = append(result, &rt)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *RatingRepository) ExistsForRater(_ context.Context, raterID, transactionID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rt := range r.s.ratings {
		if rt.RaterID == raterID && rt.TransactionID == transactionID {
			return true, nil
		}
	}
	return false, nil
}

type ETTNRepository struct{ s *Store }

func (r *ETTNRepository) Create(ctx context.Context, ettn *entity.ETTN) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.ettns {
		if e.TransactionID == ettn.TransactionID {
			return apperror.ErrETTNAlreadyExists
		}
	}
	put(ctx, r.s.ettns, ettn.ID, *ettn)
	return nil
}

func (r *ETTNRepository) FindByID(_ context.Context, id uuid.UUID) (*entity.ETTN, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.ettns[id]
	if !ok {
		return nil, apperror.ErrETTNNotFound
	}
	return &e, nil
}

func (r *ETTNRepository) FindByTransactionID(_ context.Context, transactionID uuid.UUID) (*entity.ETTN, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.ettns {
		if e.TransactionID == transactionID {
			return &e, nil
		}
	}
	return nil, apperror.ErrETTNNotFound
}

func (r *ETTNRepository) ExistsForTransaction(ctx context.Context, transactionID uuid.UUID) (bool, error) {
	_, err := r.FindByTransactionID(ctx, transactionID)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (r *ETTNRepository) SaveSignature(ctx context.Context, ettn *entity.ETTN, role valueobject.PartyRole) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.ettns[ettn.ID]
	if !ok {
		return apperror.ErrETTNNotFound
	}
	if current.IsSignedBy(role) {
		return apperror.ErrAlreadySigned
	}
	switch role {
	case valueobject.PartyShipper:
		current.ShipperSignature = ettn.ShipperSignature
		current.ShipperSignedAt = ettn.ShipperSignedAt
	case valueobject.PartyCarrier:
		current.CarrierSignature = ettn.CarrierSignature
		current.CarrierSignedAt = ettn.CarrierSignedAt
	}
	current.Status = valueobject.ETTNStatusForSlots(current.ShipperSignature != nil, current.CarrierSignature != nil)
	current.UpdatedAt = ettn.UpdatedAt
	put(ctx, r.s.ettns, ettn.ID, current)
	*ettn = current
	return nil
}

type SignatureRepository struct{ s *Store }

func (r *SignatureRepository) Create(ctx context.Context, signature *entity.DigitalSignature) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	put(ctx, r.s.signatures, signature.ID, *signature)
	return nil
}

func (r *SignatureRepository) FindByETTNID(_ context.Context, ettnID uuid.UUID) ([]*entity.DigitalSignature, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]*entity.DigitalSignature, 0)
	for _, sig := range r.s.signatures {
		if sig.ETTNID == ettnID {
			sig := sig
			result = append(result, &sig)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SignedAt.Before(result[j].SignedAt) })
	return result, nil
}

func (r *SignatureRepository) MarkInvalid(ctx context.Context, ids []uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		if sig, ok := r.s.signatures[id]; ok {
			sig.IsValid = false
			put(ctx, r.s.signatures, id, sig)
		}
	}
	return nil
}

type MessageRepository struct{ s *Store }

func (r *MessageRepository) Create(ctx context.Context, message *entity.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	put(ctx, r.s.messages, message.ID, *message)
	return nil
}

func (r *MessageRepository) FindByTransactionID(_ context.Context, transactionID uuid.UUID) ([]*entity.Message, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]*entity.Message, 0)
	for _, m := range r.s.messages {
		if m.TransactionID == transactionID {
			m := m
			result = append(result, &m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

type NotificationRepository struct{ s *Store }

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	put(ctx, r.s.notifications, n.ID, *n)
	return nil
}

func (r *NotificationRepository) List(_ context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]*entity.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]*entity.Notification, 0)
	for _, n := range r.s.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		n := n
		result = append(result, &n)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return paginate(result, limit, offset), nil
}

func (r *NotificationRepository) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	count := 0
	for _, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return apperror.ErrNotificationNotFound
	}
	n.IsRead = true
	put(ctx, r.s.notifications, id, n)
	return nil
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, n := range r.s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			put(ctx, r.s.notifications, id, n)
		}
	}
	return nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.UserID != userID {
		return apperror.ErrNotificationNotFound
	}
	remove(ctx, r.s.notifications, id)
	return nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return items[:0]
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
