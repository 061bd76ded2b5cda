package record

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSink appends episode summaries to a redis stream
type RedisSink struct {
	client  *redis.Client
	stream  string
	timeout time.Duration
}

var _ Sink = &RedisSink{}

func NewRedisSink(addr, stream string) *RedisSink {
	return &RedisSink{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
		stream:  stream,
		timeout: 2 * time.Second,
	}
}

func (r *RedisSink) WriteEpisode(ctx context.Context, rec EpisodeRecord, _ []StepRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.client.XAdd(ctx, r.xAddArgs(rec)).Err()
}

func (r *RedisSink) xAddArgs(rec EpisodeRecord) *redis.XAddArgs {
	return &redis.XAddArgs{
		Stream: r.stream,
		Values: episodeValues(rec),
	}
}

func episodeValues(rec EpisodeRecord) map[string]interface{} {
	return map[string]interface{}{
		"run_id":      rec.RunID,
		"experiment":  rec.Experiment,
		"run":         strconv.Itoa(rec.Run),
		"episode":     strconv.Itoa(rec.Episode),
		"steps":       strconv.Itoa(rec.Steps),
		"return":      strconv.FormatFloat(rec.Return, 'f', -1, 64),
		"deliveries":  strconv.Itoa(rec.Deliveries),
		"terminal":    strconv.FormatBool(rec.Terminal),
		"recorded_at": rec.RecordedAt.UTC().Format(time.RFC3339Nano),
	}
}

func (r *RedisSink) Close() error {
	return r.client.Close()
}
