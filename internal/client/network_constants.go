package client

import "time"

// ===== 机器人客户端网络配置 =====
const (
	// 建立连接的超时
	DialTimeout = 5 * time.Second

	// 等待加入响应的超时
	JoinTimeout = 10 * time.Second

	// 单次写入超时
	WriteTimeout = time.Second

	// 发送队列大小：每个 tick 只发一个动作，队列很少堆积
	SendQueueSize = 64
)
