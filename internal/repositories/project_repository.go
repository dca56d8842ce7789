package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/collabhub/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProjectRepository defines the interface for project data operations.
// The counter mutations apply $inc deltas so the aggregate totals move
// atomically with the engagement or comment write that triggered them.
type ProjectRepository interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProjectByID(ctx context.Context, id string) (*models.Project, error)
	GetProjectsByOwnerID(ctx context.Context, ownerID uint, skip, limit int64) ([]models.Project, error)
	GetAllProjects(ctx context.Context, skip, limit int64) ([]models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	IncrementLikes(ctx context.Context, projectID string, delta int) error
	IncrementShares(ctx context.Context, projectID string, delta int) error
	IncrementViews(ctx context.Context, projectID string, delta int) error
	IncrementComments(ctx context.Context, projectID string, delta int) error
}

// MongoProjectRepository implements ProjectRepository for MongoDB
type MongoProjectRepository struct {
	collection *mongo.Collection
}

// NewMongoProjectRepository creates a new MongoProjectRepository
func NewMongoProjectRepository(db *mongo.Database) *MongoProjectRepository {
	return &MongoProjectRepository{collection: db.Collection("projects")}
}

// CreateProject creates a new project in MongoDB
func (r *MongoProjectRepository) CreateProject(ctx context.Context, project *models.Project) error {
	project.ID = primitive.NewObjectID()
	project.CreatedAt = time.Now()
	project.UpdatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, project)
	return err
}

// GetProjectByID retrieves a project by ID from MongoDB
func (r *MongoProjectRepository) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid project ID format: %w", err)
	}

	var project models.Project
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&project)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// GetProjectsByOwnerID retrieves projects owned by a specific user from MongoDB
func (r *MongoProjectRepository) GetProjectsByOwnerID(ctx context.Context, ownerID uint, skip, limit int64) ([]models.Project, error) {
	var projects []models.Project
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetAllProjects retrieves all projects from MongoDB with pagination
func (r *MongoProjectRepository) GetAllProjects(ctx context.Context, skip, limit int64) ([]models.Project, error) {
	var projects []models.Project
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// DeleteProject deletes a project by ID from MongoDB
func (r *MongoProjectRepository) DeleteProject(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid project ID format: %w", err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementLikes applies a like-counter delta to a project
func (r *MongoProjectRepository) IncrementLikes(ctx context.Context, projectID string, delta int) error {
	return r.incrementCounter(ctx, projectID, "total_likes", delta)
}

// IncrementShares applies a share-counter delta to a project
func (r *MongoProjectRepository) IncrementShares(ctx context.Context, projectID string, delta int) error {
	return r.incrementCounter(ctx, projectID, "total_shares", delta)
}

// IncrementViews applies a view-counter delta to a project
func (r *MongoProjectRepository) IncrementViews(ctx context.Context, projectID string, delta int) error {
	return r.incrementCounter(ctx, projectID, "total_views", delta)
}

// IncrementComments applies a comment-counter delta to a project
func (r *MongoProjectRepository) IncrementComments(ctx context.Context, projectID string, delta int) error {
	return r.incrementCounter(ctx, projectID, "total_comments", delta)
}

func (r *MongoProjectRepository) incrementCounter(ctx context.Context, projectID, field string, delta int) error {
	objID, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return fmt.Errorf("invalid project ID format: %w", err)
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{field: delta}})
	return err
}
