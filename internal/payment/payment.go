package payment

import (
	"context"
	"log/slog"
)

// 決済プロバイダ連携が入るまでのスタブ。常に成功する
type StubService struct {
	log *slog.Logger
}

func NewStubService(log *slog.Logger) *StubService {
	return &StubService{log: log}
}

func (s *StubService) Pay(ctx context.Context, orderID string) error {
	if s.log != nil {
		s.log.InfoContext(ctx, "simulated payment", "order_id", orderID)
	}
	return nil
}
