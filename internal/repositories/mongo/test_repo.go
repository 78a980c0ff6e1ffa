package mongo

import (
	"context"
	"errors"

	"testadmin/internal/models"
	"testadmin/internal/repositories"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TestRepo stores tests in a MongoDB collection keyed by hex ObjectID strings.
type TestRepo struct{ col *mongo.Collection }

var _ repositories.TestRepository = (*TestRepo)(nil)

// NewTestRepo binds the collection and ensures an index on assignedCandidates.
func NewTestRepo(ctx context.Context, c *Client, collection string) (*TestRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	if collection == "" {
		collection = "tests"
	}
	r := NewTestRepoFromCollection(db.Collection(collection))

	_, _ = r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "assignedCandidates", Value: 1}},
	})
	return r, nil
}

func NewTestRepoFromCollection(col *mongo.Collection) *TestRepo {
	return &TestRepo{col: col}
}

func (r *TestRepo) Save(ctx context.Context, test *models.Test) (*models.Test, error) {
	doc := test.Clone()
	if doc.AssignedCandidates == nil {
		doc.AssignedCandidates = []string{}
	}
	if doc.ID == "" {
		doc.ID = primitive.NewObjectID().Hex()
		if _, err := r.col.InsertOne(ctx, doc); err != nil {
			return nil, err
		}
		return doc, nil
	}

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, repositories.ErrTestNotFound
	}
	return doc, nil
}

func (r *TestRepo) FindByID(ctx context.Context, id string) (*models.Test, error) {
	var out models.Test
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrTestNotFound
	}
	if err != nil {
		return nil, err
	}
	return out.Clone(), nil
}

func (r *TestRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *TestRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *TestRepo) FindAll(ctx context.Context) ([]*models.Test, error) {
	return r.find(ctx, bson.M{})
}

func (r *TestRepo) FindByAssignedCandidate(ctx context.Context, candidateID string) ([]*models.Test, error) {
	return r.find(ctx, bson.M{"assignedCandidates": candidateID})
}

func (r *TestRepo) find(ctx context.Context, filter bson.M) ([]*models.Test, error) {
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []models.Test
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*models.Test, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].Clone())
	}
	return out, nil
}
