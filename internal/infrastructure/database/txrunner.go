package database

import (
	"context"
	"log"

	"travelbill/pkg/errs"

	"gorm.io/gorm"
)

// ============================================================================
// 单位工作（unit of work）抽象
// ============================================================================
//
// 一次收款/开票/付款会同时改动客户余额、发票状态、账户余额、核销明细和台账，
// 这些改动必须落在同一个原子边界内。业务代码只写一份，通过 TxRunner 决定
// 这个边界是真事务还是顺序写：
//
//   - 事务模式：db.Transaction，任一步失败整体回滚
//   - 降级模式：底层存储不支持多文档事务（如单机部署）时，同一个闭包
//     直接在裸连接上顺序执行。中途失败会残留部分状态，这是明确接受的
//     弱一致性妥协：启动时告警一次，出错时用独立的 partial_failure
//     错误分类暴露出去，由对账任务和人工兜底，绝不静默吞掉
//
// ============================================================================

type TxRunner struct {
	db      *gorm.DB
	enabled bool
}

func NewTxRunner(db *gorm.DB, transactionsEnabled bool) *TxRunner {
	if !transactionsEnabled {
		log.Println("[TxRunner] 警告：事务关闭，财务操作将以顺序写降级模式执行，中途失败会残留部分状态")
	}
	return &TxRunner{db: db, enabled: transactionsEnabled}
}

// Transactional 当前是否运行在真事务模式
func (r *TxRunner) Transactional() bool {
	return r.enabled
}

// Run 在一个单位工作内执行 fn。
// 约定：参数校验、业务规则检查都在调用 Run 之前完成，闭包内只做写入
// 和写入所需的读取，保证校验类失败不会被误报成部分写入。
func (r *TxRunner) Run(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if r.enabled {
		return r.db.WithContext(ctx).Transaction(fn)
	}

	if err := fn(r.db.WithContext(ctx)); err != nil {
		log.Printf("[TxRunner] 非事务模式下操作中断，可能残留部分状态，需要人工对账: %v", err)
		return errs.PartialFailure(err, "非事务模式下操作中断")
	}
	return nil
}
