package components

import (
	"context"

	"flashsale/internal/infra/coord"
	"flashsale/internal/pkg/config"
	"flashsale/internal/usecase/commands"
	"flashsale/internal/usecase/consumer"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewOrderQueue,
		NewConsumerWorker,
	),
	fx.Invoke(registerConsumer),
)

func NewOrderQueue(client *coord.Client, cfg config.Config) *coord.OrderQueue {
	return coord.NewOrderQueue(client, cfg.Seckill.Stream, cfg.Seckill.Group, cfg.Seckill.Consumer)
}

func NewConsumerWorker(queue *coord.OrderQueue, seckill commands.SeckillCommands, cfg config.Config) *consumer.Worker {
	return consumer.NewWorker(queue, seckill, cfg.Seckill.BlockTimeout, cfg.Seckill.PoisonRetries)
}

func registerConsumer(lc fx.Lifecycle, worker *consumer.Worker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return worker.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			worker.Stop()
			return nil
		},
	})
}
