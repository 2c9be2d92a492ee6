package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

type mongoTxnRunner struct {
	client *mongo.Client
}

// NewTxnRunner создает TxnRunner поверх клиентской сессии MongoDB.
// Требует replica set (standalone Mongo транзакции не поддерживает).
func NewTxnRunner(client *mongo.Client) TxnRunner {
	return &mongoTxnRunner{client: client}
}

// WithTransaction выполняет fn внутри сессионной транзакции: все
// репозиторные вызовы с sessCtx применяются атомарно или откатываются.
// Драйвер сам повторяет транзакцию при TransientTransactionError.
func (r *mongoTxnRunner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})

	return err
}
