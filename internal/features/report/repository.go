package report

import (
	"context"
	"errors"
	"time"

	"go-fleet/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportRepository interface {
	Create(ctx context.Context, report *SavedReport) error
	Get(ctx context.Context, organisationID, id string) (*SavedReport, error)
	ListVisible(ctx context.Context, organisationID, userID string) ([]SavedReport, error)
	Update(ctx context.Context, report *SavedReport) error
	Delete(ctx context.Context, organisationID, ownerID, id string) error
	RecordRun(ctx context.Context, id string, at time.Time) error
	EnsureIndexes(ctx context.Context) error
}

type ReportRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewReportRepository(db *database.MongodbDB) ReportRepository {
	return &ReportRepositoryImpl{
		Collection: db.DB.Collection("custom_reports"),
	}
}

func (r *ReportRepositoryImpl) Create(ctx context.Context, report *SavedReport) error {
	if report.ID.IsZero() {
		report.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, report)
	return err
}

func (r *ReportRepositoryImpl) Get(ctx context.Context, organisationID, id string) (*SavedReport, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var report SavedReport
	err = r.Collection.FindOne(ctx, bson.M{"_id": oid, "organisation_id": organisationID}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ListVisible returns reports owned by the user or shared within the organisation, newest first
func (r *ReportRepositoryImpl) ListVisible(ctx context.Context, organisationID, userID string) ([]SavedReport, error) {
	filter := bson.M{
		"organisation_id": organisationID,
		"$or": bson.A{
			bson.M{"owner_id": userID},
			bson.M{"is_shared": true},
		},
	}
	cursor, err := r.Collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reports := []SavedReport{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

// Update rewrites the mutable fields; only the owner's copy matches
func (r *ReportRepositoryImpl) Update(ctx context.Context, report *SavedReport) error {
	filter := bson.M{
		"_id":             report.ID,
		"organisation_id": report.OrganisationID,
		"owner_id":        report.OwnerID,
	}
	update := bson.M{
		"$set": bson.M{
			"name":        report.Name,
			"description": report.Description,
			"definition":  report.Definition,
			"is_shared":   report.IsShared,
			"updated_at":  report.UpdatedAt,
		},
	}
	res, err := r.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ReportRepositoryImpl) Delete(ctx context.Context, organisationID, ownerID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": oid, "organisation_id": organisationID, "owner_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordRun stamps last_run_at. The caller has already checked access.
func (r *ReportRepositoryImpl) RecordRun(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.Collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"last_run_at": at}})
	return err
}

func (r *ReportRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "organisation_id", Value: 1},
				{Key: "owner_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_org_owner_created"),
		},
		{
			Keys: bson.D{
				{Key: "organisation_id", Value: 1},
				{Key: "is_shared", Value: 1},
			},
			Options: options.Index().SetName("idx_org_shared"),
		},
	}
	_, err := r.Collection.Indexes().CreateMany(ctx, indexes)
	return err
}
