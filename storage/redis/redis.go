package redis

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/interactive-solutions/go-invoice"
)

const historyKeyPrefix = "invoice:history:"

func NewTemplateRepository(client goredis.UniversalClient) invoice.TemplateRepository {
	return &templateRepository{
		client: client,
		key:    "invoice:" + invoice.TemplateKey,
	}
}

type templateRepository struct {
	client goredis.UniversalClient
	key    string
}

func (repo *templateRepository) Get(ctx context.Context) (string, error) {
	body, err := repo.client.Get(ctx, repo.key).Result()
	if err == goredis.Nil {
		return "", invoice.TemplateNotFoundErr
	}

	return body, err
}

func (repo *templateRepository) Save(ctx context.Context, body string) error {
	return repo.client.Set(ctx, repo.key, body, 0).Err()
}

func (repo *templateRepository) Delete(ctx context.Context) error {
	return repo.client.Del(ctx, repo.key).Err()
}

func NewHistoryRepository(client goredis.UniversalClient) invoice.HistoryRepository {
	return &historyRepository{
		client: client,
	}
}

// historyRepository keeps one list per order, RPUSH keeps append order.
type historyRepository struct {
	client goredis.UniversalClient
}

func (repo *historyRepository) Append(ctx context.Context, record *invoice.SendRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "failed to encode send record")
	}

	return repo.client.RPush(ctx, historyKeyPrefix+record.OrderId, data).Err()
}

func (repo *historyRepository) List(ctx context.Context, orderId string) ([]invoice.SendRecord, error) {
	records := make([]invoice.SendRecord, 0)

	entries, err := repo.client.LRange(ctx, historyKeyPrefix+orderId, 0, -1).Result()
	if err != nil {
		return records, err
	}

	for _, entry := range entries {
		var record invoice.SendRecord
		if err := json.Unmarshal([]byte(entry), &record); err != nil {
			return records, errors.Wrapf(err, "failed to decode send record for order %s", orderId)
		}

		records = append(records, record)
	}

	return records, nil
}
