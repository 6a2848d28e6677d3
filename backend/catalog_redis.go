// Copyright (c) 2026 TTBT Enterprises LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix is the key prefix used by RedisCatalog.
const DefaultRedisPrefix = "radar"

// RedisCatalog reads the catalog from Redis. The ordered player ids are
// kept in the list <prefix>:players and each player is a JSON string at
// <prefix>:player:<id>.
type RedisCatalog struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisCatalog creates a new RedisCatalog.
func NewRedisCatalog(client redis.UniversalClient, prefix string) *RedisCatalog {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisCatalog{client: client, prefix: prefix}
}

// OpenRedisCatalog connects to the Redis server at url.
func OpenRedisCatalog(ctx context.Context, url, prefix string) (*RedisCatalog, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisCatalog(client, prefix), nil
}

// Close closes the client.
func (rc *RedisCatalog) Close() error {
	return rc.client.Close()
}

func (rc *RedisCatalog) listKey() string {
	return rc.prefix + ":players"
}

func (rc *RedisCatalog) playerKey(id string) string {
	return fmt.Sprintf("%s:player:%s", rc.prefix, id)
}

// LoadPlayers reads the id list and then every player in one pipeline.
func (rc *RedisCatalog) LoadPlayers(ctx context.Context) ([]Player, error) {
	ids, err := rc.client.LRange(ctx, rc.listKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("LRANGE %s: %w", rc.listKey(), err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	pipe := rc.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, rc.playerKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	players := make([]Player, 0, len(ids))
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil, fmt.Errorf("player %q listed but missing", ids[i])
			}
			return nil, fmt.Errorf("GET %s: %w", rc.playerKey(ids[i]), err)
		}
		p, err := decodeRedisPlayer(ids[i], data)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

func decodeRedisPlayer(id string, data []byte) (Player, error) {
	var p Player
	if err := json.Unmarshal(data, &p); err != nil {
		return Player{}, fmt.Errorf("decode player %q: %w", id, err)
	}
	if p.ID == "" {
		p.ID = id
	}
	if p.ID != id {
		return Player{}, fmt.Errorf("player key %q holds id %q", id, p.ID)
	}
	return p, nil
}

// ReplacePlayers deletes the stored catalog and writes players in one
// transaction.
func (rc *RedisCatalog) ReplacePlayers(ctx context.Context, players []Player) error {
	old, err := rc.client.LRange(ctx, rc.listKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("LRANGE %s: %w", rc.listKey(), err)
	}
	pipe := rc.client.TxPipeline()
	keys := []string{rc.listKey()}
	for _, id := range old {
		keys = append(keys, rc.playerKey(id))
	}
	pipe.Del(ctx, keys...)
	if err := rc.queuePlayers(ctx, pipe, players); err != nil {
		return err
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replace pipeline: %w", err)
	}
	return nil
}

func (rc *RedisCatalog) queuePlayers(ctx context.Context, pipe redis.Pipeliner, players []Player) error {
	ids := make([]interface{}, len(players))
	for i, p := range players {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshaling player %q: %w", p.ID, err)
		}
		pipe.Set(ctx, rc.playerKey(p.ID), data, 0)
		ids[i] = p.ID
	}
	if len(ids) > 0 {
		pipe.RPush(ctx, rc.listKey(), ids...)
	}
	return nil
}

// SeedPlayers writes players if the id list does not exist.
func (rc *RedisCatalog) SeedPlayers(ctx context.Context, players []Player) (bool, error) {
	n, err := rc.client.Exists(ctx, rc.listKey()).Result()
	if err != nil {
		return false, fmt.Errorf("EXISTS %s: %w", rc.listKey(), err)
	}
	if n > 0 {
		return false, nil
	}

	pipe := rc.client.TxPipeline()
	if err := rc.queuePlayers(ctx, pipe, players); err != nil {
		return false, err
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("seed pipeline: %w", err)
	}
	return true, nil
}
