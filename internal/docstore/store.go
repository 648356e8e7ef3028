// Package docstore reads the health streams from a MongoDB database laid out
// as one collection per stream, each document carrying a userId field.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/terraincognita07/bloom/internal/models"
	"github.com/terraincognita07/bloom/internal/services"
)

const (
	userField           = "userId"
	chatField           = "chatId"
	telegramChatsSource = "telegramChats"
	connectTimeout      = 10 * time.Second
)

var ErrURIRequired = errors.New("mongo uri is required")

// collection describes where a stream lives and which field orders it.
type collection struct {
	name      string
	timeField string
}

var (
	cyclesCollection    = collection{name: string(services.StreamCycles), timeField: "startDate"}
	symptomsCollection  = collection{name: string(services.StreamSymptoms), timeField: "timestamp"}
	nutritionCollection = collection{name: string(services.StreamNutrition), timeField: "loggedAt"}
	fitnessCollection   = collection{name: string(services.StreamFitness), timeField: "completedAt"}
	checkInsCollection  = collection{name: string(services.StreamCheckIns), timeField: "date"}
	labsCollection      = collection{name: string(services.StreamLabs), timeField: "testDate"}
)

type Store struct {
	client   *mongo.Client
	database *mongo.Database
}

func Open(ctx context.Context, uri string, database string) (*Store, error) {
	if uri == "" {
		return nil, ErrURIRequired
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, database: client.Database(database)}, nil
}

func (store *Store) Close(ctx context.Context) error {
	return store.client.Disconnect(ctx)
}

func (store *Store) ListCycles(ctx context.Context, userID string, limit int) ([]models.Cycle, error) {
	docs, err := store.find(ctx, cyclesCollection, userID, time.Time{}, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]models.Cycle, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, services.CycleFromDocument(services.Document(doc)))
	}
	return rows, nil
}

func (store *Store) ListSymptoms(ctx context.Context, userID string, since time.Time, limit int) ([]models.SymptomLog, error) {
	docs, err := store.find(ctx, symptomsCollection, userID, since, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]models.SymptomLog, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, services.SymptomFromDocument(services.Document(doc)))
	}
	return rows, nil
}

func (store *Store) ListMeals(ctx context.Context, userID string, since time.Time, limit int) ([]models.NutritionLog, error) {
	docs, err := store.find(ctx, nutritionCollection, userID, since, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]models.NutritionLog, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, services.MealFromDocument(services.Document(doc)))
	}
	return rows, nil
}

func (store *Store) ListWorkouts(ctx context.Context, userID string, since time.Time, limit int) ([]models.FitnessActivity, error) {
	docs, err := store.find(ctx, fitnessCollection, userID, since, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]models.FitnessActivity, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, services.WorkoutFromDocument(services.Document(doc)))
	}
	return rows, nil
}

func (store *Store) ListCheckIns(ctx context.Context, userID string, since time.Time, limit int) ([]models.DailyCheckIn, error) {
	docs, err := store.find(ctx, checkInsCollection, userID, since, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]models.DailyCheckIn, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, services.CheckInFromDocument(services.Document(doc)))
	}
	return rows, nil
}

func (store *Store) ListLabResults(ctx context.Context, userID string, since time.Time, limit int) ([]models.LabResult, error) {
	docs, err := store.find(ctx, labsCollection, userID, since, limit)
	if err != nil {
		return nil, err
	}
	rows := make([]models.LabResult, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, services.LabResultFromDocument(services.Document(doc)))
	}
	return rows, nil
}

// ListUserIDs returns the distinct owners of cycles and daily check-ins.
func (store *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	for _, source := range []collection{cyclesCollection, checkInsCollection} {
		values, err := store.database.Collection(source.name).Distinct(ctx, userField, bson.D{})
		if err != nil {
			return nil, fmt.Errorf("distinct %s owners: %w", source.name, err)
		}
		for _, value := range values {
			if id := services.CoerceString(value); id != "" {
				seen[id] = true
			}
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// TelegramChatID reads the chat linked in the telegramChats collection.
func (store *Store) TelegramChatID(ctx context.Context, userID string) (string, bool, error) {
	doc := bson.M{}
	err := store.database.Collection(telegramChatsSource).FindOne(ctx, bson.D{{Key: userField, Value: userID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("find %s: %w", telegramChatsSource, err)
	}
	chatID, linked := chatFromDocument(doc)
	return chatID, linked, nil
}

// chatFromDocument accepts chat ids stored as strings or numbers.
func chatFromDocument(doc bson.M) (string, bool) {
	var chatID string
	switch value := doc[chatField].(type) {
	case int32:
		chatID = strconv.FormatInt(int64(value), 10)
	case int64:
		chatID = strconv.FormatInt(value, 10)
	case float64:
		chatID = strconv.FormatFloat(value, 'f', 0, 64)
	default:
		chatID = services.CoerceString(value)
	}
	return chatID, chatID != ""
}

func (store *Store) find(ctx context.Context, source collection, userID string, since time.Time, limit int) ([]bson.M, error) {
	cursor, err := store.database.Collection(source.name).Find(ctx, streamFilter(source, userID, since), streamOptions(source, limit))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", source.name, err)
	}
	defer cursor.Close(ctx)

	docs := make([]bson.M, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", source.name, err)
	}
	return docs, nil
}

// streamFilter scopes a query to one user and, when since is set, to
// documents at or after it.
func streamFilter(source collection, userID string, since time.Time) bson.D {
	filter := bson.D{{Key: userField, Value: userID}}
	if !since.IsZero() {
		filter = append(filter, bson.E{Key: source.timeField, Value: bson.M{"$gte": since.UTC()}})
	}
	return filter
}

func streamOptions(source collection, limit int) *options.FindOptions {
	findOptions := options.Find().SetSort(bson.D{{Key: source.timeField, Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}
	return findOptions
}
