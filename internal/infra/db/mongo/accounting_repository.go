package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainaccounting "staybook/internal/domain/accounting"
	domainbooking "staybook/internal/domain/booking"
	"staybook/internal/domain/shared/money"
	domainuser "staybook/internal/domain/user"
)

type AccountingRepository struct {
	col *mongo.Collection
}

func NewAccountingRepository(db *mongo.Database) *AccountingRepository {
	col := db.Collection("accounting")
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "booking_id", Value: 1}},
	})
	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "payee", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return &AccountingRepository{col: col}
}

func (r *AccountingRepository) Save(ctx context.Context, rec *domainaccounting.Record) error {
	doc := newAccountingDocument(rec)
	_, err := r.col.UpdateByID(ctx, doc.ID, bson.M{"$set": doc}, options.Update().SetUpsert(true))
	return err
}

func (r *AccountingRepository) ByBooking(ctx context.Context, bookingID domainbooking.ID) ([]*domainaccounting.Record, error) {
	return r.list(ctx, bson.M{"booking_id": string(bookingID)})
}

func (r *AccountingRepository) DeleteByBooking(ctx context.Context, bookingID domainbooking.ID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"booking_id": string(bookingID)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *AccountingRepository) ListByPayee(ctx context.Context, payee domainuser.ID) ([]*domainaccounting.Record, error) {
	return r.list(ctx, bson.M{"payee": string(payee)})
}

func (r *AccountingRepository) list(ctx context.Context, filter bson.M) ([]*domainaccounting.Record, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := make([]*domainaccounting.Record, 0)
	for cur.Next(ctx) {
		var doc accountingDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.toRecord())
	}
	return out, cur.Err()
}

type accountingDocument struct {
	ID        string `bson:"_id"`
	BookingID string `bson:"booking_id"`
	Payee     string `bson:"payee"`
	Base      int64  `bson:"base"`
	Tax       int64  `bson:"tax"`
	Platform  int64  `bson:"platform"`
	Total     int64  `bson:"total"`
	Currency  string `bson:"currency"`
	CreatedAt int64  `bson:"created_at"`
}

func newAccountingDocument(rec *domainaccounting.Record) accountingDocument {
	return accountingDocument{
		ID:        string(rec.ID),
		BookingID: string(rec.BookingID),
		Payee:     string(rec.Payee),
		Base:      rec.Base.Amount,
		Tax:       rec.Tax.Amount,
		Platform:  rec.Platform.Amount,
		Total:     rec.Total.Amount,
		Currency:  rec.Base.Currency,
		CreatedAt: rec.CreatedAt.UnixMilli(),
	}
}

func (d accountingDocument) toRecord() *domainaccounting.Record {
	return &domainaccounting.Record{
		ID:        domainaccounting.ID(d.ID),
		BookingID: domainbooking.ID(d.BookingID),
		Payee:     domainuser.ID(d.Payee),
		Base:      money.Money{Amount: d.Base, Currency: d.Currency},
		Tax:       money.Money{Amount: d.Tax, Currency: d.Currency},
		Platform:  money.Money{Amount: d.Platform, Currency: d.Currency},
		Total:     money.Money{Amount: d.Total, Currency: d.Currency},
		CreatedAt: timestampToTime(d.CreatedAt),
	}
}

var _ domainaccounting.Repository = (*AccountingRepository)(nil)
