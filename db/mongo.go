package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/NoEmotionGuy/genshin-teammate-bot/models"
)

// MongoStore хранит анкеты и лайки в MongoDB.
// Реализует ProfileStore и LikeStore.
type MongoStore struct {
	profiles *mongo.Collection
	likes    *mongo.Collection
}

// ConnectMongo подключается к MongoDB, проверяет соединение и готовит индексы.
func ConnectMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: подключение: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	d := client.Database(database)
	s := &MongoStore{
		profiles: d.Collection("profiles"),
		likes:    d.Collection("likes"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.profiles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "tg_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo: индекс profiles.tg_id: %w", err)
	}
	// Уникальный составной индекс разрешает гонку одновременных лайков:
	// вторая вставка пары получает duplicate key, а не второй документ.
	_, err = s.likes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "viewer_id", Value: 1}, {Key: "owner_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo: индекс likes(viewer_id, owner_id): %w", err)
	}
	return nil
}

// SaveProfile — upsert по tg_id; created_at выставляется только при вставке.
func (s *MongoStore) SaveProfile(ctx context.Context, p models.Profile) error {
	filter := bson.M{"tg_id": p.TgID}
	update := bson.M{
		"$set": bson.M{
			"server":         p.Server,
			"nickname":       p.Nickname,
			"uid":            p.UID,
			"adventure_rank": p.AdventureRank,
			"languages":      p.Languages,
			"playtime":       p.Playtime,
			"bio":            p.Bio,
			"platforms":      p.Platforms,
			"playstyle":      p.Playstyle,
		},
		"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
	}
	_, err := s.profiles.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo: сохранение анкеты %d: %w", p.TgID, err)
	}
	return nil
}

func (s *MongoStore) ProfileByTg(ctx context.Context, tgID int64) (*models.Profile, error) {
	var p models.Profile
	err := s.profiles.FindOne(ctx, bson.M{"tg_id": tgID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo: чтение анкеты %d: %w", tgID, err)
	}
	return &p, nil
}

// DeleteProfile удаляет анкету и все лайки, где она была целью.
func (s *MongoStore) DeleteProfile(ctx context.Context, tgID int64) error {
	if _, err := s.profiles.DeleteOne(ctx, bson.M{"tg_id": tgID}); err != nil {
		return fmt.Errorf("mongo: удаление анкеты %d: %w", tgID, err)
	}
	if _, err := s.likes.DeleteMany(ctx, bson.M{"owner_id": tgID}); err != nil {
		return fmt.Errorf("mongo: удаление лайков анкеты %d: %w", tgID, err)
	}
	return nil
}

func (s *MongoStore) CountProfiles(ctx context.Context, server string) (int64, error) {
	n, err := s.profiles.CountDocuments(ctx, bson.M{"server": server})
	if err != nil {
		return 0, fmt.Errorf("mongo: подсчёт анкет сервера %s: %w", server, err)
	}
	return n, nil
}

func (s *MongoStore) ListProfiles(ctx context.Context, server string, limit, offset int64) ([]models.Profile, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(offset).
		SetLimit(limit)
	cursor, err := s.profiles.Find(ctx, bson.M{"server": server}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: выборка анкет сервера %s: %w", server, err)
	}
	defer cursor.Close(ctx)
	var out []models.Profile
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo: чтение выборки анкет: %w", err)
	}
	return out, nil
}

// AddLike вставляет лайк; повтор пары распознаётся по duplicate key от индекса.
func (s *MongoStore) AddLike(ctx context.Context, viewerID, ownerID int64) (bool, error) {
	_, err := s.likes.InsertOne(ctx, models.Like{
		ViewerID:  viewerID,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("mongo: вставка лайка %d->%d: %w", viewerID, ownerID, err)
	}
	return true, nil
}

func (s *MongoStore) HasLiked(ctx context.Context, viewerID, ownerID int64) (bool, error) {
	err := s.likes.FindOne(ctx, bson.M{"viewer_id": viewerID, "owner_id": ownerID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("mongo: проверка лайка %d->%d: %w", viewerID, ownerID, err)
	}
	return true, nil
}

func (s *MongoStore) CountLikes(ctx context.Context, ownerID int64) (int64, error) {
	n, err := s.likes.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("mongo: подсчёт лайков %d: %w", ownerID, err)
	}
	return n, nil
}

// ProfileDisplayID — идентификатор анкеты для callback-токенов:
// hex ObjectID, а для документов без него — tg_id владельца.
func ProfileDisplayID(p *models.Profile) string {
	if !p.ID.IsZero() {
		return p.ID.Hex()
	}
	return strconv.FormatInt(p.TgID, 10)
}
