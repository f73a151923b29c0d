package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	redisSchemaKey = tableName + ":schema"
	redisIndexKey  = tableName + ":index"
)

// RedisDatabase stores each picture as a hash and tracks record keys in a set.
type RedisDatabase struct {
	client *redis.Client
}

func NewRedisDatabase(connectionString string) (DatabaseService, error) {
	if connectionString == "" {
		return nil, errors.New("redis connection string is empty")
	}
	options, err := redis.ParseURL(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return &RedisDatabase{client: redis.NewClient(options)}, nil
}

func (r *RedisDatabase) Connect(ctx context.Context) (Session, error) {
	conn := r.client.Conn()
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to acquire redis connection: %w", err)
	}
	return &redisSession{conn: conn}, nil
}

func (r *RedisDatabase) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisDatabase) Close() error {
	return r.client.Close()
}

type redisSession struct {
	conn *redis.Conn
}

// CreateTable records the schema once; HSetNX leaves an existing schema untouched.
func (s *redisSession) CreateTable(ctx context.Context) error {
	if err := s.conn.HSetNX(ctx, redisSchemaKey, "name", "string").Err(); err != nil {
		return err
	}
	return s.conn.HSetNX(ctx, redisSchemaKey, "data", "binary").Err()
}

func (s *redisSession) InsertPicture(ctx context.Context, picture *Picture) error {
	key, err := generateRecordKey()
	if err != nil {
		return err
	}
	_, err = s.conn.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "name", picture.Name, "data", picture.Data)
		pipe.SAdd(ctx, redisIndexKey, key)
		return nil
	})
	return err
}

func (s *redisSession) ListPictures(ctx context.Context) ([]*Picture, error) {
	keys, err := s.conn.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, err
	}

	var pictures []*Picture
	for _, key := range keys {
		values, err := s.conn.HMGet(ctx, key, "name", "data").Result()
		if err != nil {
			return nil, err
		}
		// the index may outlive a removed hash
		if values[0] == nil || values[1] == nil {
			continue
		}
		name, _ := values[0].(string)
		data, _ := values[1].(string)
		pictures = append(pictures, &Picture{Name: name, Data: []byte(data)})
	}
	return pictures, nil
}

func (s *redisSession) Close() error {
	return s.conn.Close()
}
