// Package valkeycache shares forecasts between API and worker instances
// through a Valkey (Redis-compatible) server. Entries are zstd-compressed JSON.
package valkeycache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/valkey-io/valkey-go"

	"github.com/skywindow/skywindow/internal/weather"
)

const defaultPrefix = "forecast"

// Cache implements weather.Cache on a Valkey client.
type Cache struct {
	client valkey.Client
	prefix string
	codec  *codec
}

// New creates a cache storing keys under prefix.
func New(client valkey.Client, prefix string) (*Cache, error) {
	if prefix == "" {
		prefix = defaultPrefix
	}
	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	return &Cache{client: client, prefix: prefix, codec: c}, nil
}

// Get returns the cached forecast or weather.ErrCacheMiss.
func (c *Cache) Get(ctx context.Context, key string) (*weather.Forecast, error) {
	payload, err := c.client.Do(ctx, c.client.B().Get().Key(c.key(key)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, weather.ErrCacheMiss
		}
		return nil, err
	}
	return c.codec.decode(payload)
}

// Set stores a forecast for ttl.
func (c *Cache) Set(ctx context.Context, key string, forecast *weather.Forecast, ttl time.Duration) error {
	payload, err := c.codec.encode(forecast)
	if err != nil {
		return err
	}
	cmd := c.client.B().Set().Key(c.key(key)).Value(valkey.BinaryString(payload)).PxMilliseconds(ttl.Milliseconds()).Build()
	return c.client.Do(ctx, cmd).Error()
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Do(ctx, c.client.B().Ping().Build()).Error()
}

func (c *Cache) key(k string) string {
	return c.prefix + ":" + k
}

// codec compresses forecast documents. Encoder and decoder are safe for
// concurrent EncodeAll/DecodeAll calls.
type codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newCodec() (*codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &codec{encoder: enc, decoder: dec}, nil
}

func (c *codec) encode(f *weather.Forecast) ([]byte, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode forecast: %w", err)
	}
	return c.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/4)), nil
}

func (c *codec) decode(payload []byte) (*weather.Forecast, error) {
	raw, err := c.decoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}
	var f weather.Forecast
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}
	return &f, nil
}

// Ensure Cache implements weather.Cache.
var _ weather.Cache = (*Cache)(nil)
