package mongoarchive

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"debate-arena/internal/domain"
)

const resultsCollection = "debate_results"

// ResultDocument is the archived shape of a finished debate.
type ResultDocument struct {
	ID              primitive.ObjectID        `bson:"_id,omitempty"`
	RoomID          string                    `bson:"room_id"`
	Winner          string                    `bson:"winner"`
	MarginOfVictory float64                   `bson:"margin_of_victory"`
	TotalArguments  int                       `bson:"total_arguments"`
	Standings       domain.Standings          `bson:"standings"`
	Leaderboard     []domain.LeaderboardEntry `bson:"leaderboard"`
	Awards          domain.Awards             `bson:"awards"`
	Evaluations     []EvaluationDocument      `bson:"evaluations"`
	EndedBy         string                    `bson:"ended_by"`
	CalculatedAt    time.Time                 `bson:"calculated_at"`
	ArchivedAt      time.Time                 `bson:"archived_at"`
}

// EvaluationDocument is one scored argument inside a ResultDocument.
type EvaluationDocument struct {
	UserID       string          `bson:"user_id"`
	Username     string          `bson:"username"`
	Team         string          `bson:"team"`
	Argument     string          `bson:"argument"`
	Criteria     domain.Criteria `bson:"criteria"`
	TotalScore   int             `bson:"total_score"`
	Feedback     string          `bson:"feedback"`
	AIConfidence float64         `bson:"ai_confidence"`
	EvaluatedAt  time.Time       `bson:"evaluated_at"`
}

// MongoResultArchive upserts finished debates into a Mongo collection.
type MongoResultArchive struct {
	collection *mongo.Collection
}

func NewMongoResultArchive(db *mongo.Database) *MongoResultArchive {
	if db == nil {
		panic("mongo database cannot be nil for MongoResultArchive")
	}
	return &MongoResultArchive{collection: db.Collection(resultsCollection)}
}

// EnsureIndexes creates the unique room index and the winner index.
func (a *MongoResultArchive) EnsureIndexes(ctx context.Context) error {
	_, err := a.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "room_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "winner", Value: 1}, {Key: "calculated_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo: create indexes on %s: %w", resultsCollection, err)
	}
	return nil
}

// Archive replaces the room's document, retrying transient failures.
func (a *MongoResultArchive) Archive(ctx context.Context, result domain.DebateResult, evals []domain.Evaluation) error {
	doc := ResultDocument{
		RoomID:          result.RoomID,
		Winner:          string(result.WinningTeam),
		MarginOfVictory: result.MarginOfVictory,
		TotalArguments:  result.TotalArguments,
		Standings:       result.Standings,
		Leaderboard:     result.Leaderboard,
		Awards:          result.Awards,
		EndedBy:         result.EndedBy,
		CalculatedAt:    result.CalculatedAt,
		ArchivedAt:      time.Now().UTC(),
	}
	for _, e := range evals {
		doc.Evaluations = append(doc.Evaluations, EvaluationDocument{
			UserID:       e.UserID,
			Username:     e.Username,
			Team:         string(e.Team),
			Argument:     e.Argument,
			Criteria:     e.Criteria,
			TotalScore:   e.TotalScore,
			Feedback:     e.Feedback,
			AIConfidence: e.AIConfidence,
			EvaluatedAt:  e.EvaluatedAt,
		})
	}

	filter := bson.M{"room_id": result.RoomID}
	opts := options.Replace().SetUpsert(true)
	var lastErr error
	for i := 0; i < 3; i++ {
		_, err := a.collection.ReplaceOne(ctx, filter, doc, opts)
		if err == nil {
			return nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return fmt.Errorf("mongo: archive result of room %s: %w", result.RoomID, ctx.Err())
		case <-time.After(time.Duration(i+1) * 100 * time.Millisecond):
		}
	}
	return fmt.Errorf("mongo: archive result of room %s: %w", result.RoomID, lastErr)
}

