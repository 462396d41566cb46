package entity

import "time"

// TokenRecord 本地记录的已创建代币
// 账本是事实来源; 本地记录只是 /tokens 列表页的缓存,
// 与链上 tokenStorage 注册表互为补充。
type TokenRecord struct {
	TokenID       string
	Name          string
	Symbol        string
	Decimals      uint32
	InitialSupply uint64
	MaxSupply     int64 // 0 = 无限供应
	TransactionID string
	MirrorTxHash  string // 注册表镜像写入的交易哈希, 失败时为空
	CreatedAt     time.Time
}
