package repo

import (
	"context"
	"errors"

	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type LogbookRepo interface {
	Create(ctx context.Context, e *model.LogbookEntry) error
	GetByID(ctx context.Context, testID string, entryID string) (*model.LogbookEntry, error)
	ListByTest(ctx context.Context, testID string) ([]*model.LogbookEntry, error)
	Update(ctx context.Context, testID string, entryID string, fields bson.M) (*model.LogbookEntry, error)
	Delete(ctx context.Context, testID string, entryID string) error
	DeleteByTest(ctx context.Context, testID string) (int64, error)
}

type logbookRepo struct{ coll *mongo.Collection }

func NewLogbookRepo(db *mongo.Database) LogbookRepo {
	return &logbookRepo{coll: db.Collection(model.LogbookEntry{}.CollectionName())}
}

func entryFilter(testID, entryID string) bson.D {
	return bson.D{{Key: "_id", Value: entryID}, {Key: "test_id", Value: testID}}
}

func (r *logbookRepo) Create(ctx context.Context, e *model.LogbookEntry) error {
	if e.SensorIDs == nil {
		e.SensorIDs = []string{}
	}
	_, err := r.coll.InsertOne(ctx, e)
	return err
}

func (r *logbookRepo) GetByID(ctx context.Context, testID string, entryID string) (*model.LogbookEntry, error) {
	var e model.LogbookEntry
	err := r.coll.FindOne(ctx, entryFilter(testID, entryID)).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *logbookRepo) ListByTest(ctx context.Context, testID string) ([]*model.LogbookEntry, error) {
	cur, err := r.coll.Find(ctx, bson.D{{Key: "test_id", Value: testID}})
	if err != nil {
		return nil, err
	}
	entries := []*model.LogbookEntry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *logbookRepo) Update(ctx context.Context, testID string, entryID string, fields bson.M) (*model.LogbookEntry, error) {
	var e model.LogbookEntry
	err := r.coll.FindOneAndUpdate(ctx,
		entryFilter(testID, entryID),
		bson.D{{Key: "$set", Value: fields}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *logbookRepo) Delete(ctx context.Context, testID string, entryID string) error {
	res, err := r.coll.DeleteOne(ctx, entryFilter(testID, entryID))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *logbookRepo) DeleteByTest(ctx context.Context, testID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{{Key: "test_id", Value: testID}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
