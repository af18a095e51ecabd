package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

// PushJob имя задания в Pushgateway для пакетного генератора
const PushJob = "lingua_voice_generate"

// Push отправляет текущие значения реестра в Pushgateway
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("ошибка отправки метрик в %s: %w", url, err)
	}
	m.logger.Info("📤 метрики отправлены", zap.String("url", url), zap.String("job", job))
	return nil
}
