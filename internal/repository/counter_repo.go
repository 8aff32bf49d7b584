package repository

import (
	"context"

	"travelbill/internal/model"
	"travelbill/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ============================================================================
// 凭证号发号器
// ============================================================================
//
// 【关键点】自增必须是存储层的单条原子语句，不允许应用层读-改-写：
// 两笔并发收款绝不能拿到同一个凭证号。
//
// 实现：UPDATE counter SET seq = seq + 1 是单条原子更新；在外层事务内
// 执行时行锁一直持有到提交，随后的回读稳定。发号失败时整个收付款
// 操作必须中止 —— 绝不允许发出凭证号却没有对应的已提交单据。
//
// 序号只增不减：凭证被删除后序号也不复用，审计时断号即删除痕迹。
//
// ============================================================================

type CounterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// Next 发出下一个凭证号，如 MR-0001 / VP-0012
func (r *CounterRepository) Next(ctx context.Context, tx *gorm.DB, agencyID int64, class string, padWidth int) (string, error) {
	if tx == nil {
		tx = r.db
	}

	key := model.CounterKeyFor(class, agencyID)

	// 计数器行不存在时先建一行（幂等，冲突即跳过）
	err := tx.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Counter{CounterKey: key}).Error
	if err != nil {
		return "", errs.Infrastructure(err, "初始化凭证计数器失败")
	}

	// 单条原子自增
	result := tx.WithContext(ctx).
		Model(&model.Counter{}).
		Where("counter_key = ?", key).
		UpdateColumn("seq", gorm.Expr("seq + 1"))
	if result.Error != nil {
		return "", errs.Infrastructure(result.Error, "凭证号自增失败")
	}
	if result.RowsAffected == 0 {
		return "", errs.Infrastructure(nil, "凭证计数器丢失: %s", key)
	}

	var counter model.Counter
	if err := tx.WithContext(ctx).
		Where("counter_key = ?", key).
		First(&counter).Error; err != nil {
		return "", errs.Infrastructure(err, "回读凭证计数器失败")
	}

	return model.FormatVoucher(class, counter.Seq, padWidth), nil
}
