// Package redisstats publishes training progress snapshots to redis
package redisstats

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeu5/batch-rl-train/types"
)

// HashSetter is the subset of the redis client used by the Publisher
type HashSetter interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

var _ HashSetter = &redis.Client{}

// Publisher writes the agent statistics to the hash <prefix>:<run id> every Frequency steps
type Publisher struct {
	client    HashSetter
	key       string
	Frequency int
	Timeout   time.Duration
}

var _ types.StepHook = &Publisher{}

func NewPublisher(client HashSetter, prefix, runID string, frequency int) *Publisher {
	if frequency < 1 {
		frequency = 1
	}
	return &Publisher{
		client:    client,
		key:       Key(prefix, runID),
		Frequency: frequency,
		Timeout:   time.Second,
	}
}

// NewClient connects to the redis server at addr
func NewClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

func Key(prefix, runID string) string {
	return prefix + ":" + runID
}

func (p *Publisher) Key() string {
	return p.key
}

// Fields flattened as name, value pairs for HSET
func Fields(step int, stats []types.Statistic) []interface{} {
	fields := make([]interface{}, 0, 2+2*len(stats))
	fields = append(fields, "step", strconv.Itoa(step))
	for _, s := range stats {
		fields = append(fields, s.Name, strconv.FormatFloat(s.Value, 'g', -1, 64))
	}
	return fields
}

func (p *Publisher) OnStep(_ types.VectorEnv, agent types.BatchAgent, step int) error {
	if step%p.Frequency != 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.Timeout)
	defer cancel()
	return p.client.HSet(ctx, p.key, Fields(step, agent.Statistics())...).Err()
}
