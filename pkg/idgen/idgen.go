// Package idgen 提供基于 Sonyflake 的分布式 ID 生成
package idgen

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

var (
	once sync.Once
	sf   *sonyflake.Sonyflake
)

func instance() *sonyflake.Sonyflake {
	once.Do(func() {
		sf = sonyflake.NewSonyflake(sonyflake.Settings{
			StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			// 无私网 IP 的环境（容器、CI）退化为进程号
			MachineID: func() (uint16, error) {
				return uint16(os.Getpid()), nil
			},
		})
	})
	return sf
}

// NextID 生成下一个全局唯一 ID
func NextID() (uint64, error) {
	g := instance()
	if g == nil {
		return 0, fmt.Errorf("sonyflake not initialized")
	}
	return g.NextID()
}

// NextStringID 生成带业务前缀的字符串 ID，例如 "ORD-68f1a2b3c4d5"
func NextStringID(prefix string) (string, error) {
	id, err := NextID()
	if err != nil {
		return "", err
	}
	if prefix == "" {
		return fmt.Sprintf("%x", id), nil
	}
	return fmt.Sprintf("%s-%x", prefix, id), nil
}
