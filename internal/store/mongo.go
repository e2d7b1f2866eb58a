package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	candidateCollection = "candidate"
	jobCollection       = "job"
	matchingCollection  = "matching"

	defaultDatabase = "cv_matcher"
)

// Mongo is a Store backed by a MongoDB database.
type Mongo struct {
	client     *mongo.Client
	candidates *mongo.Collection
	jobs       *mongo.Collection
	matchings  *mongo.Collection
	logger     *zap.Logger
}

var _ Store = (*Mongo)(nil)

// NewMongo connects to uri, verifies the connection and ensures the indexes exist.
func NewMongo(ctx context.Context, uri, database string, logger *zap.Logger) (*Mongo, error) {
	if strings.TrimSpace(uri) == "" {
		return nil, errors.New("mongo url is required")
	}
	if database == "" {
		database = defaultDatabase
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	m := &Mongo{
		client:     client,
		candidates: db.Collection(candidateCollection),
		jobs:       db.Collection(jobCollection),
		matchings:  db.Collection(matchingCollection),
		logger:     logger,
	}

	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	logger.Info("connected to mongo", zap.String("database", database))

	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{m.candidates, mongo.IndexModel{Keys: bson.D{{Key: "filehash", Value: 1}}}},
		{m.candidates, mongo.IndexModel{Keys: bson.D{{Key: "phone_key", Value: 1}}}},
		{m.jobs, mongo.IndexModel{Keys: bson.D{{Key: "job_name", Value: 1}}}},
		{m.matchings, mongo.IndexModel{
			Keys:    bson.D{{Key: "candidate_id", Value: 1}, {Key: "job_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
	}

	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *Mongo) InsertCandidate(ctx context.Context, c *Candidate) error {
	prepareCandidate(c)

	if _, err := m.candidates.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("insert candidate: %w", err)
	}
	return nil
}

func (m *Mongo) InsertCandidates(ctx context.Context, cs []*Candidate) error {
	if len(cs) == 0 {
		return nil
	}

	docs := make([]any, 0, len(cs))
	for _, c := range cs {
		prepareCandidate(c)
		docs = append(docs, c)
	}

	if _, err := m.candidates.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert candidates: %w", err)
	}
	return nil
}

func prepareCandidate(c *Candidate) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	c.UpdatedAt = c.CreatedAt
}

func (m *Mongo) GetCandidate(ctx context.Context, id primitive.ObjectID) (*Candidate, error) {
	return findOne[Candidate](ctx, m.candidates, bson.M{"_id": id}, "candidate "+id.Hex())
}

func (m *Mongo) FindCandidateByFileHash(ctx context.Context, hash string) (*Candidate, error) {
	return findOne[Candidate](ctx, m.candidates, bson.M{"filehash": hash}, "candidate with filehash "+hash)
}

func (m *Mongo) FindCandidateByPhone(ctx context.Context, phoneKey string) (*Candidate, error) {
	return findOne[Candidate](ctx, m.candidates, bson.M{"phone_key": phoneKey}, "candidate with phone "+phoneKey)
}

func (m *Mongo) ListCandidates(ctx context.Context, page Page) ([]*Candidate, int64, error) {
	total, err := m.candidates.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count candidates: %w", err)
	}

	items, err := findMany[Candidate](ctx, m.candidates, bson.M{}, pageOptions(page))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (m *Mongo) AllCandidates(ctx context.Context) ([]*Candidate, error) {
	return findMany[Candidate](ctx, m.candidates, bson.M{}, insertionOrder())
}

func (m *Mongo) UpdateCandidate(ctx context.Context, c *Candidate) error {
	c.UpdatedAt = time.Now()

	res, err := m.candidates.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		return fmt.Errorf("update candidate %s: %w", c.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: candidate %s", ErrNotFound, c.ID.Hex())
	}
	return nil
}

func (m *Mongo) SetHasResume(ctx context.Context, id primitive.ObjectID, hasResume bool) error {
	res, err := m.candidates.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"has_resume": hasResume, "updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("update candidate %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: candidate %s", ErrNotFound, id.Hex())
	}
	return nil
}

func (m *Mongo) DeleteCandidate(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.candidates.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete candidate %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: candidate %s", ErrNotFound, id.Hex())
	}

	cleaned, err := m.matchings.DeleteMany(ctx, bson.M{"candidate_id": id})
	if err != nil {
		return fmt.Errorf("delete matchings of candidate %s: %w", id.Hex(), err)
	}

	m.logger.Debug("deleted candidate", zap.String("candidate_id", id.Hex()), zap.Int64("matchings", cleaned.DeletedCount))
	return nil
}

func (m *Mongo) InsertJob(ctx context.Context, j *Job) error {
	if j.ID.IsZero() {
		j.ID = primitive.NewObjectID()
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Now()
	}

	if _, err := m.jobs.InsertOne(ctx, j); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (m *Mongo) GetJob(ctx context.Context, id primitive.ObjectID) (*Job, error) {
	return findOne[Job](ctx, m.jobs, bson.M{"_id": id}, "job "+id.Hex())
}

func (m *Mongo) GetJobByName(ctx context.Context, name string) (*Job, error) {
	return findOne[Job](ctx, m.jobs, bson.M{"job_name": name}, "job "+name)
}

func (m *Mongo) ListJobs(ctx context.Context) ([]*Job, error) {
	return findMany[Job](ctx, m.jobs, bson.M{}, insertionOrder())
}

func (m *Mongo) DeleteJob(ctx context.Context, id primitive.ObjectID) error {
	res, err := m.jobs.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete job %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: job %s", ErrNotFound, id.Hex())
	}

	if _, err := m.matchings.DeleteMany(ctx, bson.M{"job_id": id}); err != nil {
		return fmt.Errorf("delete matchings of job %s: %w", id.Hex(), err)
	}
	return nil
}

func (m *Mongo) UpsertMatching(ctx context.Context, match *Matching) error {
	now := time.Now()
	match.UpdatedAt = now

	existing, err := m.GetMatching(ctx, match.CandidateID, match.JobID)
	switch {
	case err == nil:
		match.ID = existing.ID
		match.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrNotFound):
		if match.ID.IsZero() {
			match.ID = primitive.NewObjectID()
		}
		match.CreatedAt = now
	default:
		return err
	}

	filter := bson.M{"candidate_id": match.CandidateID, "job_id": match.JobID}
	if _, err := m.matchings.ReplaceOne(ctx, filter, match, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert matching: %w", err)
	}
	return nil
}

func (m *Mongo) GetMatching(ctx context.Context, candidateID, jobID primitive.ObjectID) (*Matching, error) {
	return findOne[Matching](ctx, m.matchings,
		bson.M{"candidate_id": candidateID, "job_id": jobID},
		"matching "+candidateID.Hex()+"/"+jobID.Hex(),
	)
}

func (m *Mongo) AllMatchings(ctx context.Context) ([]*Matching, error) {
	return findMany[Matching](ctx, m.matchings, bson.M{}, insertionOrder())
}

func (m *Mongo) ListMatchings(ctx context.Context, filter MatchingFilter) ([]*Matching, int64, error) {
	query := bson.M{}
	if !filter.JobID.IsZero() {
		query["job_id"] = filter.JobID
	}

	total, err := m.matchings.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count matchings: %w", err)
	}

	items, err := findMany[Matching](ctx, m.matchings, query, pageOptions(filter.Page))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (m *Mongo) MatchingsByJob(ctx context.Context, jobID primitive.ObjectID) ([]*Matching, error) {
	return findMany[Matching](ctx, m.matchings, bson.M{"job_id": jobID}, insertionOrder())
}

func (m *Mongo) MarkShortlistNotified(ctx context.Context, candidateID, jobID primitive.ObjectID) error {
	res, err := m.matchings.UpdateOne(ctx,
		bson.M{"candidate_id": candidateID, "job_id": jobID},
		bson.M{"$set": bson.M{"shortlist_notified": true, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("mark shortlist notified: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: matching %s/%s", ErrNotFound, candidateID.Hex(), jobID.Hex())
	}
	return nil
}

// Object ids grow with creation time, so sorting on _id keeps insertion order.
func insertionOrder() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
}

func pageOptions(page Page) *options.FindOptions {
	return insertionOrder().SetSkip(int64(page.skip())).SetLimit(int64(page.Size))
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any, what string) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, what)
		}
		return nil, fmt.Errorf("find %s: %w", what, err)
	}
	return &out, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOptions) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", coll.Name(), err)
	}

	out := []*T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}
