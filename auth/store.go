package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MemoryUsers is a fixed in-memory account set for the local demo store.
type MemoryUsers struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryUsers(users ...User) *MemoryUsers {
	s := &MemoryUsers{users: make(map[string]User, len(users))}
	for _, u := range users {
		s.users[u.UID] = u
	}
	return s
}

func (s *MemoryUsers) GetUser(_ context.Context, uid string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[uid]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// MongoUsers reads account records from the "users" collection, keyed by
// uid.
type MongoUsers struct {
	users *mongo.Collection
}

func NewMongoUsers(db *mongo.Database) *MongoUsers {
	return &MongoUsers{users: db.Collection("users")}
}

func (s *MongoUsers) GetUser(ctx context.Context, uid string) (*User, error) {
	var u User
	err := s.users.FindOne(ctx, bson.M{"uid": uid}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", uid, err)
	}
	return &u, nil
}
