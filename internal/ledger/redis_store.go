package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/mroshb/quizbot/internal/models"
	apperrors "github.com/mroshb/quizbot/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the ledger in Redis:
//
//	<prefix>:ledger:period          active period
//	<prefix>:ledger:rooms           set of room ids
//	<prefix>:ledger:room:<id>:points hash user -> points
//	<prefix>:ledger:room:<id>:names  hash user -> display name
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Load(ctx context.Context) (*models.Ledger, error) {
	period, err := s.client.Get(ctx, s.periodKey()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rooms, err := s.client.SMembers(ctx, s.roomsKey()).Result()
	if err != nil {
		return nil, err
	}

	doc := models.NewLedger(period)
	for _, raw := range rooms {
		roomID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, corrupt(err, fmt.Sprintf("room id %q", raw))
		}

		points, err := s.client.HGetAll(ctx, s.pointsKey(roomID)).Result()
		if err != nil {
			return nil, err
		}
		names, err := s.client.HGetAll(ctx, s.namesKey(roomID)).Result()
		if err != nil {
			return nil, err
		}

		g := doc.Group(roomID)
		for uid, pts := range points {
			userID, err := strconv.ParseInt(uid, 10, 64)
			if err != nil {
				return nil, corrupt(err, fmt.Sprintf("user id %q", uid))
			}
			n, err := strconv.ParseInt(pts, 10, 64)
			if err != nil {
				return nil, corrupt(err, fmt.Sprintf("points for %d", userID))
			}
			g.Points[userID] = n
		}
		for uid, name := range names {
			userID, err := strconv.ParseInt(uid, 10, 64)
			if err != nil {
				return nil, corrupt(err, fmt.Sprintf("user id %q", uid))
			}
			g.Names[userID] = name
		}
	}
	return doc, nil
}

func corrupt(err error, what string) error {
	return apperrors.Wrap(err, apperrors.ErrCodeCorruptLedger, what)
}

func (s *RedisStore) PutScore(ctx context.Context, _ string, entry models.ScoreEntry) error {
	uid := strconv.FormatInt(entry.UserID, 10)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, s.roomsKey(), strconv.FormatInt(entry.RoomID, 10))
		pipe.HSet(ctx, s.pointsKey(entry.RoomID), uid, entry.Points)
		pipe.HSet(ctx, s.namesKey(entry.RoomID), uid, entry.DisplayName)
		return nil
	})
	return err
}

func (s *RedisStore) Reset(ctx context.Context, period string) error {
	rooms, err := s.client.SMembers(ctx, s.roomsKey()).Result()
	if err != nil {
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, raw := range rooms {
			roomID, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				continue
			}
			pipe.Del(ctx, s.pointsKey(roomID), s.namesKey(roomID))
		}
		pipe.Del(ctx, s.roomsKey())
		pipe.Set(ctx, s.periodKey(), period, 0)
		return nil
	})
	return err
}

func (s *RedisStore) periodKey() string {
	return s.prefix + ":ledger:period"
}

func (s *RedisStore) roomsKey() string {
	return s.prefix + ":ledger:rooms"
}

func (s *RedisStore) pointsKey(roomID int64) string {
	return fmt.Sprintf("%s:ledger:room:%d:points", s.prefix, roomID)
}

func (s *RedisStore) namesKey(roomID int64) string {
	return fmt.Sprintf("%s:ledger:room:%d:names", s.prefix, roomID)
}
