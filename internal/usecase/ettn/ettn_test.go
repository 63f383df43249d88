package ettn_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/cargolink-backend/internal/domain/entity"
	"github.com/ignatzorin/cargolink-backend/internal/domain/repository"
	"github.com/ignatzorin/cargolink-backend/internal/domain/valueobject"
	"github.com/ignatzorin/cargolink-backend/internal/infrastructure/memory"
	"github.com/ignatzorin/cargolink-backend/internal/infrastructure/signature"
	"github.com/ignatzorin/cargolink-backend/internal/pkg/apperror"
	"github.com/ignatzorin/cargolink-backend/internal/usecase/ettn"
)

type recordingNotifier struct {
	mu    sync.Mutex
	users []uuid.UUID
	sent  []repository.NotificationPayload
}

func (n *recordingNotifier) Deliver(_ context.Context, userID uuid.UUID, payload repository.NotificationPayload) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.users = append(n.users, userID)
	n.sent = append(n.sent, payload)
}

type countingSigner struct {
	*signature.MockSigner
	mu        sync.Mutex
	validated int
}

func (s *countingSigner) ValidateCertificate(cert *entity.Certificate, now time.Time) bool {
	s.mu.Lock()
	s.validated++
	s.mu.Unlock()
	return s.MockSigner.ValidateCertificate(cert, now)
}

type env struct {
	store    *memory.Store
	notifier *recordingNotifier
	signer   *signature.MockSigner
	shipper  *entity.User
	carrier  *entity.User
	outsider *entity.User
	deal     *entity.Transaction
}

func newEnv(t *testing.T, status valueobject.TransactionStatus) *env {
	t.Helper()
	ctx := context.Background()
	iin := "900101300456"
	e := &env{
		store:    memory.NewStore(),
		notifier: &recordingNotifier{},
		signer:   signature.NewMockSigner(signature.WithLatency(0, 0), signature.WithRandom(func() float64 { return 0 })),
		shipper:  &entity.User{ID: uuid.New(), Email: "shipper@example.kz", FirstName: "Данияр", LastName: "Омаров", IIN: &iin, Role: valueobject.RoleShipper},
		carrier:  &entity.User{ID: uuid.New(), Email: "carrier@example.kz", FirstName: "Асель", LastName: "Жумабаева", Role: valueobject.RoleCarrier},
		outsider: &entity.User{ID: uuid.New(), Email: "other@example.kz", Role: valueobject.RoleCarrier},
	}
	for _, u := range []*entity.User{e.shipper, e.carrier, e.outsider} {
		require.NoError(t, e.store.Users().Create(ctx, u))
	}

	cargo, err := entity.NewCargo(e.shipper.ID, entity.CargoParams{
		Title: "Цемент М500", Category: "construction", Origin: "Шымкент", Destination: "Астана",
		Weight: 20, Price: 700000, PickupDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	cargo.Status = valueobject.CargoStatusInProgress
	require.NoError(t, e.store.Cargo().Create(ctx, cargo))

	b, err := entity.NewBid(cargo.ID, e.carrier.ID, 650000, "3 дня", "фура", nil)
	require.NoError(t, err)
	b.Status = valueobject.BidStatusAccepted
	require.NoError(t, e.store.Bids().Create(ctx, b))

	e.deal = entity.NewTransactionFromBid(cargo, b)
	e.deal.Status = status
	require.NoError(t, e.store.Transactions().Create(ctx, e.deal))
	return e
}

func (e *env) create() *ettn.CreateETTNUseCase {
	return ettn.NewCreateETTNUseCase(e.store.Transactions(), e.store.Cargo(), e.store.ETTNs(), e.notifier)
}

func (e *env) sign() *ettn.SignETTNUseCase {
	certs := ettn.NewEnsureCertificateUseCase(e.store.Users(), e.signer)
	return ettn.NewSignETTNUseCase(e.store, e.store.ETTNs(), e.store.Signatures(), e.store.Transactions(), certs, e.signer, e.notifier)
}

func (e *env) get() *ettn.GetETTNUseCase {
	return ettn.NewGetETTNUseCase(e.store.Transactions(), e.store.ETTNs(), e.store.Signatures())
}

func (e *env) newDocument(t *testing.T) *entity.ETTN {
	t.Helper()
	doc, err := e.create().Execute(context.Background(), e.shipper.ID, e.deal.ID)
	require.NoError(t, err)
	return doc
}

func TestCreateETTN(t *testing.T) {
	e := newEnv(t, valueobject.TransactionStatusCreated)
	ctx := context.Background()

	doc, err := e.create().Execute(ctx, e.carrier.ID, e.deal.ID)
	require.NoError(t, err)

	assert.Regexp(t, `^ETTN-\d+-[0-9A-Z]{9}$`, doc.Number)
	assert.Equal(t, "Цемент М500", doc.CargoDescription)
	assert.Equal(t, "Шымкент", doc.Origin)
	assert.Equal(t, "Астана", doc.Destination)
	assert.Equal(t, valueobject.Weight(20), doc.Weight)
	assert.Equal(t, valueobject.ETTNStatusPendingSignature, doc.Status)
	assert.Equal(t, e.shipper.ID, doc.ShipperID)
	assert.Equal(t, e.carrier.ID, doc.CarrierID)

	require.Len(t, e.notifier.users, 1)
	assert.Equal(t, e.shipper.ID, e.notifier.users[0])
	assert.Equal(t, "Создана е-ТТН", e.notifier.sent[0].Title)

	_, err = e.create().Execute(ctx, e.shipper.ID, e.deal.ID)
	assert.ErrorIs(t, err, apperror.ErrETTNAlreadyExists)
}

func TestCreateETTN_Errors(t *testing.T) {
	e := newEnv(t, valueobject.TransactionStatusCreated)
	ctx := context.Background()

	_, err := e.create().Execute(ctx, e.shipper.ID, uuid.Nil)
	assert.True(t, apperror.IsValidation(err))

	_, err = e.create().Execute(ctx, e.shipper.ID, uuid.New())
	assert.True(t, apperror.IsNotFound(err))

	_, err = e.create().Execute(ctx, e.outsider.ID, e.deal.ID)
	assert.ErrorIs(t, err, apperror.ErrNotParty)
}

func TestSign_CommutativeAndMovesDealToTransit(t *testing.T) {
	orders := map[string]func(e *env) []uuid.UUID{
		"shipper first": func(e *env) []uuid.UUID { return []uuid.UUID{e.shipper.ID, e.carrier.ID} },
		"carrier first": func(e *env) []uuid.UUID { return []uuid.UUID{e.carrier.ID, e.shipper.ID} },
	}
	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t, valueobject.TransactionStatusConfirmed)
			ctx := context.Background()
			doc := e.newDocument(t)
			signers := order(e)

			first, err := e.sign().Execute(ctx, signers[0], doc.ID)
			require.NoError(t, err)
			assert.Equal(t, valueobject.ETTNStatusPartiallySigned, first.Status)

			deal, err := e.store.Transactions().FindByID(ctx, e.deal.ID)
			require.NoError(t, err)
			assert.Equal(t, valueobject.TransactionStatusConfirmed, deal.Status)

			second, err := e.sign().Execute(ctx, signers[1], doc.ID)
			require.NoError(t, err)
			assert.Equal(t, valueobject.ETTNStatusFullySigned, second.Status)
			assert.NotNil(t, second.ShipperSignature)
			assert.NotNil(t, second.CarrierSignature)
			assert.NotNil(t, second.ShipperSignedAt)
			assert.NotNil(t, second.CarrierSignedAt)

			deal, err = e.store.Transactions().FindByID(ctx, e.deal.ID)
			require.NoError(t, err)
			assert.Equal(t, valueobject.TransactionStatusInTransit, deal.Status)
			assert.True(t, deal.PickupConfirmed)

			records, err := e.store.Signatures().FindByETTNID(ctx, doc.ID)
			require.NoError(t, err)
			require.Len(t, records, 2)
			assert.Equal(t, signers[0], records[0].UserID)
			assert.Equal(t, signers[1], records[1].UserID)

			last := e.notifier.sent[len(e.notifier.sent)-1]
			assert.Equal(t, "е-ТТН полностью подписана", last.Title)
			assert.Equal(t, signers[0], e.notifier.users[len(e.notifier.users)-1])
		})
	}
}

func TestSign_DoubleSignIsConflict(t *testing.T) {
	e := newEnv(t, valueobject.TransactionStatusConfirmed)
	ctx := context.Background()
	doc := e.newDocument(t)

	_, err := e.sign().Execute(ctx, e.shipper.ID, doc.ID)
	require.NoError(t, err)

	_, err = e.sign().Execute(ctx, e.shipper.ID, doc.ID)
	assert.ErrorIs(t, err, apperror.ErrAlreadySigned)

	stored, err := e.store.ETTNs().FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ETTNStatusPartiallySigned, stored.Status)
	records, err := e.store.Signatures().FindByETTNID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestSign_AccessErrors(t *testing.T) {
	e := newEnv(t, valueobject.TransactionStatusConfirmed)
	ctx := context.Background()
	doc := e.newDocument(t)

	_, err := e.sign().Execute(ctx, e.outsider.ID, doc.ID)
	assert.ErrorIs(t, err, apperror.ErrNotParty)

	_, err = e.sign().Execute(ctx, e.shipper.ID, uuid.New())
	assert.True(t, apperror.IsNotFound(err))
}

func TestSign_LeavesDealOutsideConfirmed(t *testing.T) {
	e := newEnv(t, valueobject.TransactionStatusCreated)
	ctx := context.Background()
	doc := e.newDocument(t)

	_, err := e.sign().Execute(ctx, e.shipper.ID, doc.ID)
	require.NoError(t, err)
	signed, err := e.sign().Execute(ctx, e.carrier.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.ETTNStatusFullySigned, signed.Status)

	deal, err := e.store.Transactions().FindByID(ctx, e.deal.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.TransactionStatusCreated, deal.Status)
}

func TestEnsureCertificate_IssuedOnce(t *testing.T) {
	e := newEnv(t, valueobject.TransactionStatusCreated)
	ctx := context.Background()
	uc := ettn.NewEnsureCertificateUseCase(e.store.Users(), e.signer)

	first, err := uc.Execute(ctx, e.shipper.ID)
	require.NoError(t, err)
	second, err := uc.Execute(ctx, e.shipper.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "900101300456", second.OwnerIIN)

	user, err := e.store.Users().FindByID(ctx, e.shipper.ID)
	require.NoError(t, err)
	require.NotNil(t, user.EDSCertID)
	assert.Equal(t, first.ID, *user.EDSCertID)
}

func TestEnsureCertificate_ChecksStoredCertificateWithSigner(t *testing.T) {
	e := newEnv(t, valueobject.TransactionStatusCreated)
	ctx := context.Background()
	signer := &countingSigner{MockSigner: e.signer}
	uc := ettn.NewEnsureCertificateUseCase(e.store.Users(), signer)

	first, err := uc.Execute(ctx, e.carrier.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, signer.validated)

	second, err := uc.Execute(ctx, e.carrier.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, signer.validated)
}

func TestEnsureCertificate_ReissuesExpired(t *testing.T) {
	e := newEnv(t, valueobject.TransactionStatusCreated)
	ctx := context.Background()
	expired := time.Now().Add(-time.Hour)
	_, err := e.store.Users().AssignCertificate(ctx, e.carrier.ID, "CERT-0000000000000000", expired, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	cert, err := ettn.NewEnsureCertificateUseCase(e.store.Users(), e.signer).Execute(ctx, e.carrier.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "CERT-0000000000000000", cert.ID)
	assert.True(t, cert.ValidUntil.After(time.Now()))
}

func TestGet_PartiesOnly(t *testing.T) {
	e := newEnv(t, valueobject.TransactionStatusConfirmed)
	ctx := context.Background()
	doc := e.newDocument(t)

	got, err := e.get().ByID(ctx, e.carrier.ID, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Number, got.Number)

	_, err = e.get().ByID(ctx, e.outsider.ID, doc.ID)
	assert.True(t, apperror.IsForbidden(err))

	byDeal, err := e.get().ByTransaction(ctx, e.shipper.ID, e.deal.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, byDeal.ID)

	_, err = e.get().ByTransaction(ctx, e.outsider.ID, e.deal.ID)
	assert.ErrorIs(t, err, apperror.ErrNotParty)
}

func TestGetByTransaction_NoDocument(t *testing.T) {
	e := newEnv(t, valueobject.TransactionStatusCreated)

	_, err := e.get().ByTransaction(context.Background(), e.shipper.ID, e.deal.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSignatures_MarksExpiredInvalid(t *testing.T) {
	e := newEnv(t, valueobject.TransactionStatusConfirmed)
	ctx := context.Background()
	doc := e.newDocument(t)

	_, err := e.sign().Execute(ctx, e.shipper.ID, doc.ID)
	require.NoError(t, err)

	stale := entity.NewDigitalSignature(doc.ID, e.carrier.ID, valueobject.PartyCarrier, "c3RhbGU=", &entity.Certificate{
		ID:         "CERT-AAAAAAAAAAAAAAAA",
		ValidUntil: time.Now().Add(-time.Minute),
	}, time.Now().Add(-time.Hour))
	require.NoError(t, e.store.Signatures().Create(ctx, stale))

	records, err := e.get().Signatures(ctx, e.shipper.ID, doc.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, r.ID != stale.ID, r.IsValid)
	}

	stored, err := e.store.Signatures().FindByETTNID(ctx, doc.ID)
	require.NoError(t, err)
	for _, r := range stored {
		if r.ID == stale.ID {
			assert.False(t, r.IsValid)
		}
	}
}

func TestVerify(t *testing.T) {
	e := newEnv(t, valueobject.TransactionStatusConfirmed)
	ctx := context.Background()
	doc := e.newDocument(t)

	_, err := e.sign().Execute(ctx, e.carrier.ID, doc.ID)
	require.NoError(t, err)

	report, err := ettn.NewVerifyETTNUseCase(e.get(), e.store.Signatures(), e.signer).Execute(ctx, e.shipper.ID, doc.ID)
	require.NoError(t, err)
	assert.True(t, report.Demo)
	require.Len(t, report.Slots, 2)
	assert.Equal(t, ettn.SlotVerification{Role: valueobject.PartyShipper}, report.Slots[0])
	assert.Equal(t, ettn.SlotVerification{Role: valueobject.PartyCarrier, Signed: true, Valid: true}, report.Slots[1])
}
