package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/shopcapital/internal/domain/models"
)

const (
	salesCollection        = "sales"
	expensesCollection     = "expenses"
	inventoryCollection    = "inventory"
	settingsCollection     = "settings"
	dailyReportsCollection = "daily_reports"

	initialCapitalKey = "initial_capital"
)

// ReportArchive stores end-of-day summaries.
type ReportArchive interface {
	SaveDailyReport(ctx context.Context, report models.DailyReport) error
}

// MongoDBRepository persists the ledger and the daily report archive.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// Load reads the whole ledger. Each sequence is returned newest first. A
// missing capital document yields the default capital.
func (r *MongoDBRepository) Load(ctx context.Context) (models.Snapshot, error) {
	var snap models.Snapshot

	var sales []saleDocument
	if err := r.findAll(ctx, salesCollection, &sales); err != nil {
		return snap, err
	}
	for _, doc := range sales {
		sale, err := doc.toModel()
		if err != nil {
			return snap, err
		}
		snap.Sales = append(snap.Sales, sale)
	}

	var expenses []expenseDocument
	if err := r.findAll(ctx, expensesCollection, &expenses); err != nil {
		return snap, err
	}
	for _, doc := range expenses {
		expense, err := doc.toModel()
		if err != nil {
			return snap, err
		}
		snap.Expenses = append(snap.Expenses, expense)
	}

	var items []inventoryDocument
	if err := r.findAll(ctx, inventoryCollection, &items); err != nil {
		return snap, err
	}
	for _, doc := range items {
		item, err := doc.toModel()
		if err != nil {
			return snap, err
		}
		snap.Inventory = append(snap.Inventory, item)
	}

	capital, err := r.loadInitialCapital(ctx)
	if err != nil {
		return snap, err
	}
	snap.InitialCapital = capital

	return snap, nil
}

func (r *MongoDBRepository) findAll(ctx context.Context, collection string, out any) error {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", collection, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return nil
}

func (r *MongoDBRepository) loadInitialCapital(ctx context.Context) (models.InitialCapital, error) {
	var doc capitalDocument
	err := r.db.Collection(settingsCollection).FindOne(ctx, bson.M{"_id": initialCapitalKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.DefaultInitialCapital(), nil
	}
	if err != nil {
		return models.InitialCapital{}, fmt.Errorf("failed to read initial capital: %w", err)
	}
	return doc.toModel()
}

// upsert replaces the document by id while keeping its original creation time,
// which drives the newest-first ordering on load.
func (r *MongoDBRepository) upsert(ctx context.Context, collection, id string, doc any) error {
	fields, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s document: %w", collection, err)
	}
	var set bson.M
	if err := bson.Unmarshal(fields, &set); err != nil {
		return fmt.Errorf("failed to encode %s document: %w", collection, err)
	}
	delete(set, "_id")

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
	}
	_, err = r.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert %s %s: %w", collection, id, err)
	}
	return nil
}

func (r *MongoDBRepository) deleteByID(ctx context.Context, collection, id string) error {
	if _, err := r.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", collection, id, err)
	}
	return nil
}

// SaveSale inserts or replaces a sale.
func (r *MongoDBRepository) SaveSale(ctx context.Context, sale models.Sale) error {
	doc, err := newSaleDocument(sale)
	if err != nil {
		return err
	}
	return r.upsert(ctx, salesCollection, sale.ID, doc)
}

// DeleteSale removes a sale.
func (r *MongoDBRepository) DeleteSale(ctx context.Context, id string) error {
	return r.deleteByID(ctx, salesCollection, id)
}

// SaveExpense inserts or replaces an expense.
func (r *MongoDBRepository) SaveExpense(ctx context.Context, expense models.Expense) error {
	doc, err := newExpenseDocument(expense)
	if err != nil {
		return err
	}
	return r.upsert(ctx, expensesCollection, expense.ID, doc)
}

// DeleteExpense removes an expense.
func (r *MongoDBRepository) DeleteExpense(ctx context.Context, id string) error {
	return r.deleteByID(ctx, expensesCollection, id)
}

// SaveInventoryItem inserts or replaces an inventory item.
func (r *MongoDBRepository) SaveInventoryItem(ctx context.Context, item models.InventoryItem) error {
	doc, err := newInventoryDocument(item)
	if err != nil {
		return err
	}
	return r.upsert(ctx, inventoryCollection, item.ID, doc)
}

// DeleteInventoryItem removes an inventory item.
func (r *MongoDBRepository) DeleteInventoryItem(ctx context.Context, id string) error {
	return r.deleteByID(ctx, inventoryCollection, id)
}

// SaveInitialCapital replaces the stored starting capital.
func (r *MongoDBRepository) SaveInitialCapital(ctx context.Context, capital models.InitialCapital) error {
	doc, err := newCapitalDocument(capital)
	if err != nil {
		return err
	}
	return r.upsert(ctx, settingsCollection, initialCapitalKey, doc)
}

// SaveDailyReport saves a daily report to the database.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, report models.DailyReport) error {
	doc, err := newDailyReportDocument(report)
	if err != nil {
		return err
	}
	if _, err := r.db.Collection(dailyReportsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert daily report: %w", err)
	}
	r.logger.Debug("daily report archived", zap.Time("date", report.Date))
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
