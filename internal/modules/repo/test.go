package repo

import (
	"context"
	"errors"

	"github.com/quixio/test-rig-demo-test-rig-simulator/internal/modules/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

// TestFilter selects Tests by exact field match. Empty fields are ignored;
// Q runs a full-text search over the text index.
type TestFilter struct {
	TestID        string
	CampaignID    string
	SampleID      string
	EnvironmentID string
	Operator      string
	Status        model.TestStatus
	Q             string
}

func (f TestFilter) toBSON() bson.D {
	q := bson.D{}
	add := func(key, val string) {
		if val != "" {
			q = append(q, bson.E{Key: key, Value: val})
		}
	}
	add("_id", f.TestID)
	add("campaign_id", f.CampaignID)
	add("sample_id", f.SampleID)
	add("environment_id", f.EnvironmentID)
	add("operator", f.Operator)
	add("status", string(f.Status))
	if f.Q != "" {
		q = append(q, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: f.Q}}})
	}
	return q
}

type TestRepo interface {
	Create(ctx context.Context, t *model.Test) error
	Exists(ctx context.Context, testID string) (bool, error)
	GetByID(ctx context.Context, testID string) (*model.Test, error)
	List(ctx context.Context, f TestFilter) ([]*model.Test, error)
	Update(ctx context.Context, testID string, fields bson.M) (*model.Test, error)
	Delete(ctx context.Context, testID string) error
	SetFile(ctx context.Context, testID string, f model.File) error
	UnsetFile(ctx context.Context, testID string, fileID string) (bool, error)
	PushLink(ctx context.Context, testID string, l model.Link) error
	PullLink(ctx context.Context, testID string, linkID string) (bool, error)
}

type testRepo struct{ coll *mongo.Collection }

func NewTestRepo(db *mongo.Database) TestRepo {
	return &testRepo{coll: db.Collection(model.Test{}.CollectionName())}
}

func (r *testRepo) Create(ctx context.Context, t *model.Test) error {
	if t.Files == nil {
		t.Files = map[string]model.File{}
	}
	if t.Links == nil {
		t.Links = []model.Link{}
	}
	_, err := r.coll.InsertOne(ctx, t)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *testRepo) Exists(ctx context.Context, testID string) (bool, error) {
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: testID}},
		options.FindOne().SetProjection(bson.D{{Key: "_id", Value: 1}})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *testRepo) GetByID(ctx context.Context, testID string) (*model.Test, error) {
	var t model.Test
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: testID}}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *testRepo) List(ctx context.Context, f TestFilter) ([]*model.Test, error) {
	cur, err := r.coll.Find(ctx, f.toBSON())
	if err != nil {
		return nil, err
	}
	tests := []*model.Test{}
	if err := cur.All(ctx, &tests); err != nil {
		return nil, err
	}
	return tests, nil
}

func (r *testRepo) Update(ctx context.Context, testID string, fields bson.M) (*model.Test, error) {
	var t model.Test
	err := r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: testID}},
		bson.D{{Key: "$set", Value: fields}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *testRepo) Delete(ctx context.Context, testID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: testID}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *testRepo) SetFile(ctx context.Context, testID string, f model.File) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: testID}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "files." + f.ID, Value: f}}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UnsetFile reports whether a file entry was actually removed.
func (r *testRepo) UnsetFile(ctx context.Context, testID string, fileID string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: testID}},
		bson.D{{Key: "$unset", Value: bson.D{{Key: "files." + fileID, Value: ""}}}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *testRepo) PushLink(ctx context.Context, testID string, l model.Link) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: testID}},
		bson.D{{Key: "$push", Value: bson.D{{Key: "links", Value: l}}}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PullLink reports whether a link was actually removed.
func (r *testRepo) PullLink(ctx context.Context, testID string, linkID string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: testID}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "links", Value: bson.D{{Key: "id", Value: linkID}}}}}},
	)
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, ErrNotFound
	}
	return res.ModifiedCount > 0, nil
}
