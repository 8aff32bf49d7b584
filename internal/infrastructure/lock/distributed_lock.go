package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ============================================================================
// 分布式锁
// ============================================================================
//
// 场景：同一个客户的两笔收款几乎同时提交（前端重复点击、网络抖动重试）。
// 没有互斥时，两个请求都会读到同一份发票欠款，各自核销一遍，发票
// received_amount 被推高到超过 net_total。
//
// 加锁粒度按客户/账户维度，不同客户之间的收款可以并发。
//
// 加锁：SET key value NX EX timeout
//   - NX 保证互斥，EX 防止持锁进程崩溃后死锁
//   - value 记录持有者，释放时校验，避免误删别人的锁
// 释放：Lua 脚本保证"校验+删除"原子执行
//
// ============================================================================

var (
	ErrLockFailed  = errors.New("获取分布式锁失败")
	ErrLockExpired = errors.New("锁已过期")
)

// DistributedLock 分布式锁
type DistributedLock struct {
	client     *redis.Client
	key        string
	value      string
	expiration time.Duration
}

// NewDistributedLock 创建分布式锁
func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock 尝试获取锁（非阻塞）
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	success, err := l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
	if err != nil {
		return false, err
	}
	return success, nil
}

// Lock 阻塞式获取锁（带重试）
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
			// 继续重试
		}
	}
	return ErrLockFailed
}

// Unlock 释放锁，只删除自己持有的 key
func (l *DistributedLock) Unlock(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	return err
}

// ============================================================================
// 便捷函数：按业务维度加锁
// ============================================================================

// NewClientLock 客户维度的收款锁：同一客户的收款串行，不同客户并发
func NewClientLock(client *redis.Client, agencyID, clientID int64, token string) *DistributedLock {
	key := fmt.Sprintf("receipt:lock:agency:%d:client:%d", agencyID, clientID)
	return NewDistributedLock(client, key, token, 30*time.Second)
}

// NewAccountLock 账户维度的付款锁：同一资金账户的出账串行
func NewAccountLock(client *redis.Client, agencyID, accountID int64, token string) *DistributedLock {
	key := fmt.Sprintf("payment:lock:agency:%d:account:%d", agencyID, accountID)
	return NewDistributedLock(client, key, token, 30*time.Second)
}
