package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/LordEaster/Say4Me/internal/board"
	"github.com/LordEaster/Say4Me/internal/ierr"
	"github.com/LordEaster/Say4Me/internal/persistence"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const defaultListLimit = 50

type message struct {
	Id          bson.ObjectID `bson:"_id,omitempty"`
	Recipient   string        `bson:"recipient"`
	Body        string        `bson:"message"`
	SessionId   string        `bson:"sessionId,omitempty"`
	ViewerCount int64         `bson:"viewerCount"`
	CreatedAt   time.Time     `bson:"createdAt"`
}

func (m message) toBoard() board.Message {
	return board.Message{
		Id:          m.Id.Hex(),
		Recipient:   m.Recipient,
		Body:        m.Body,
		SessionId:   m.SessionId,
		ViewerCount: m.ViewerCount,
		CreatedAt:   m.CreatedAt,
	}
}

type Store struct {
	collection *mongo.Collection
}

func NewStore(client *mongo.Client) *Store {
	database := client.Database("say4me")
	collection := database.Collection("messages")

	return &Store{
		collection,
	}
}

func (s *Store) Setup(ctx context.Context) error {
	recentIndexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	}

	sessionIndexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "sessionId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
	}

	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{recentIndexModel, sessionIndexModel})

	return err
}

func (s *Store) Insert(ctx context.Context, request persistence.InsertRequest) (board.Message, error) {
	createdAt := time.Now()

	result, err := s.collection.InsertOne(ctx, bson.D{
		{Key: "recipient", Value: request.Recipient},
		{Key: "message", Value: request.Body},
		{Key: "sessionId", Value: request.SessionId},
		{Key: "viewerCount", Value: int64(0)},
		{Key: "createdAt", Value: createdAt},
	})
	if err != nil {
		return board.Message{}, ierr.New(ierr.ErrorCodeStorageUnavailable, err)
	}

	return board.Message{
		Id:          result.InsertedID.(bson.ObjectID).Hex(),
		Recipient:   request.Recipient,
		Body:        request.Body,
		SessionId:   request.SessionId,
		ViewerCount: 0,
		CreatedAt:   createdAt,
	}, nil
}

func (s *Store) ListRecent(ctx context.Context, filter persistence.ListFilter) ([]board.Message, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := bson.M{}
	if filter.SessionId != "" {
		query["sessionId"] = filter.SessionId
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, ierr.New(ierr.ErrorCodeStorageUnavailable, err)
	}

	var stored []message
	err = cursor.All(ctx, &stored)
	if err != nil {
		return nil, ierr.New(ierr.ErrorCodeStorageUnavailable, err)
	}

	messages := make([]board.Message, len(stored))
	for i, m := range stored {
		messages[i] = m.toBoard()
	}

	return messages, nil
}

func (s *Store) IncrementViewerCount(ctx context.Context, id string) (int64, error) {
	objectId, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return 0, ierr.New(ierr.ErrorCodeNotFound, errors.New("unknown message id: "+id))
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated message
	err = s.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectId},
		bson.M{"$inc": bson.M{"viewerCount": 1}},
		opts,
	).Decode(&updated)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ierr.New(ierr.ErrorCodeNotFound, errors.New("unknown message id: "+id))
	}
	if err != nil {
		return 0, ierr.New(ierr.ErrorCodeStorageUnavailable, err)
	}

	return updated.ViewerCount, nil
}
