package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/societyhub/backoffice-api/internal/core/domain"
	"github.com/societyhub/backoffice-api/internal/core/ports"
)

const paymentCollection = "payment_transactions"

// PaymentRepository implements ports.PaymentRepository using MongoDB. The
// reference field carries a unique index.
type PaymentRepository struct {
	coll *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{coll: db.Collection(paymentCollection)}
}

type mongoTransaction struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	TenantID         string             `bson:"tenant_id"`
	Reference        string             `bson:"reference"`
	BillReference    string             `bson:"bill_reference,omitempty"`
	Provider         string             `bson:"provider"`
	GatewayOrderID   string             `bson:"gateway_order_id,omitempty"`
	GatewayPaymentID string             `bson:"gateway_payment_id,omitempty"`
	Amount           int64              `bson:"amount"`
	Currency         string             `bson:"currency"`
	PaymentMode      string             `bson:"payment_mode,omitempty"`
	Status           string             `bson:"status"`
	RawPayload       string             `bson:"raw_payload,omitempty"`
	FailureReason    string             `bson:"failure_reason,omitempty"`
	InitiatedBy      string             `bson:"initiated_by,omitempty"`
	VerifiedBy       string             `bson:"verified_by,omitempty"`
	VerifiedAt       time.Time          `bson:"verified_at,omitempty"`
	CreatedAt        time.Time          `bson:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at"`
}

func (r *PaymentRepository) Create(ctx context.Context, tx *domain.PaymentTransaction) error {
	doc := mongoTransaction{
		TenantID:         tx.TenantID,
		Reference:        tx.Reference,
		BillReference:    tx.BillReference,
		Provider:         tx.Provider,
		GatewayOrderID:   tx.GatewayOrderID,
		GatewayPaymentID: tx.GatewayPaymentID,
		Amount:           tx.Amount,
		Currency:         tx.Currency,
		PaymentMode:      tx.PaymentMode,
		Status:           string(tx.Status),
		InitiatedBy:      tx.InitiatedBy,
		CreatedAt:        tx.CreatedAt.UTC(),
		UpdatedAt:        tx.CreatedAt.UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *PaymentRepository) FindByReference(ctx context.Context, ref string) (*domain.PaymentTransaction, error) {
	var mt mongoTransaction
	if err := r.coll.FindOne(ctx, bson.M{"reference": ref}).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return mt.toDomain(), nil
}

// MarkTerminal applies the terminal transition as a single atomic update
// guarded by the INITIATED status. When two webhook deliveries race, exactly
// one matches; the other returns false with no error.
func (r *PaymentRepository) MarkTerminal(ctx context.Context, ref string, update ports.TerminalUpdate) (bool, error) {
	filter := bson.M{
		"reference": ref,
		"status":    string(domain.TxInitiated),
	}
	set := bson.M{
		"status":      string(update.Status),
		"raw_payload": update.RawPayload,
		"verified_by": update.VerifiedBy,
		"verified_at": update.VerifiedAt.UTC(),
		"updated_at":  time.Now().UTC(),
	}
	if update.FailureReason != "" {
		set["failure_reason"] = update.FailureReason
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("mark terminal: %w", err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	// Nothing matched: either the transaction is already terminal (benign
	// replay) or the reference is unknown.
	if err := r.coll.FindOne(ctx, bson.M{"reference": ref}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, domain.ErrTransactionNotFound
		}
		return false, fmt.Errorf("mark terminal: %w", err)
	}
	return false, nil
}

func (mt *mongoTransaction) toDomain() *domain.PaymentTransaction {
	return &domain.PaymentTransaction{
		ID:               mt.ID.Hex(),
		TenantID:         mt.TenantID,
		Reference:        mt.Reference,
		BillReference:    mt.BillReference,
		Provider:         mt.Provider,
		GatewayOrderID:   mt.GatewayOrderID,
		GatewayPaymentID: mt.GatewayPaymentID,
		Amount:           mt.Amount,
		Currency:         mt.Currency,
		PaymentMode:      mt.PaymentMode,
		Status:           domain.TransactionStatus(mt.Status),
		RawPayload:       mt.RawPayload,
		FailureReason:    mt.FailureReason,
		InitiatedBy:      mt.InitiatedBy,
		VerifiedBy:       mt.VerifiedBy,
		VerifiedAt:       mt.VerifiedAt,
		CreatedAt:        mt.CreatedAt,
		UpdatedAt:        mt.UpdatedAt,
	}
}
