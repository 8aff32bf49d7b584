package service

import (
	"context"

	"travelbill/internal/model"
	"travelbill/internal/repository"

	"gorm.io/gorm"
)

// AccountService 资金账户的只读查询面；余额变动全部发生在
// 收款/付款服务的单位工作内，这里不提供直接改余额的入口
type AccountService struct {
	accountRepo *repository.AccountRepository
	ledgerRepo  *repository.LedgerRepository
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{
		accountRepo: repository.NewAccountRepository(db),
		ledgerRepo:  repository.NewLedgerRepository(db),
	}
}

func (s *AccountService) ListAccounts(ctx context.Context, agencyID int64) ([]*model.Account, error) {
	return s.accountRepo.List(ctx, agencyID)
}

func (s *AccountService) GetAccount(ctx context.Context, agencyID, id int64) (*model.Account, error) {
	return s.accountRepo.GetByID(ctx, agencyID, id)
}

// ListClientLedger 客户台账分页查询
func (s *AccountService) ListClientLedger(ctx context.Context, agencyID, clientID int64, page, pageSize int) ([]*model.ClientTransaction, int64, error) {
	return s.ledgerRepo.ListByClient(ctx, agencyID, clientID, page, pageSize)
}
