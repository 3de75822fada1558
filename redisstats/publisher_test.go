package redisstats

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/zeu5/batch-rl-train/types"
)

type recordingClient struct {
	keys   []string
	values [][]interface{}
	err    error
}

func (c *recordingClient) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	c.keys = append(c.keys, key)
	c.values = append(c.values, values)
	cmd := redis.NewIntCmd(ctx)
	if c.err != nil {
		cmd.SetErr(c.err)
	} else {
		cmd.SetVal(int64(len(values) / 2))
	}
	return cmd
}

func TestFields(t *testing.T) {
	fields := Fields(12, []types.Statistic{{Name: "loss", Value: 0.5}, {Name: "episodes", Value: 3}})
	expected := []interface{}{"step", "12", "loss", "0.5", "episodes", "3"}
	if !reflect.DeepEqual(fields, expected) {
		t.Errorf("expected %v, got %v", expected, fields)
	}
}

func TestPublisherFrequency(t *testing.T) {
	client := &recordingClient{}
	p := NewPublisher(client, "batchrl", "abc", 4)
	if p.Key() != "batchrl:abc" {
		t.Errorf("incorrect key %s", p.Key())
	}
	agent := types.NewRandomAgentWithSeed(1)
	for step := 1; step <= 8; step++ {
		if err := p.OnStep(nil, agent, step); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
	}
	if len(client.values) != 2 {
		t.Fatalf("expected 2 publishes, got %d", len(client.values))
	}
	if client.values[1][1] != "8" {
		t.Errorf("expected step 8, got %v", client.values[1][1])
	}
}

func TestPublisherError(t *testing.T) {
	client := &recordingClient{err: errors.New("connection refused")}
	p := NewPublisher(client, "batchrl", "abc", 1)
	if err := p.OnStep(nil, types.NewRandomAgentWithSeed(1), 1); err == nil {
		t.Errorf("expected the redis error")
	}
}
