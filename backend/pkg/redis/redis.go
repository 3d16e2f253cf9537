package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"depot-records/backend/config"
)

// ErrOverflow INCR 超出 64 位有符号整数范围
var ErrOverflow = errors.New("redis counter overflow")

// Client 封装 go-redis，用于编号序列与请求限流
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 连接并 Ping 服务器
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	logger.Info("redis connected", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 序列 ──

const sequencePrefix = "seq:"

// Increment 原子地将序列加一并返回新值
func (c *Client) Increment(ctx context.Context, name string) (int64, error) {
	n, err := c.rdb.Incr(ctx, sequencePrefix+name).Result()
	if err != nil {
		if strings.Contains(err.Error(), "overflow") {
			return 0, ErrOverflow
		}
		return 0, err
	}
	return n, nil
}

// ── 限流 ──

const rateLimitPrefix = "rate_limit:"

// CheckRateLimit 固定窗口计数，返回是否仍在限额内
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	k := rateLimitPrefix + key
	pipe := c.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}
	return incr.Val() <= int64(limit), nil
}

// Ping 检查服务器是否可达
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close 关闭连接池
func (c *Client) Close() error {
	return c.rdb.Close()
}
