package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"rental-market-sol/internal/pkg/logger"
	"rental-market-sol/internal/pkg/mq"
	"rental-market-sol/internal/pkg/utils"
)

const deliveryWait = 2 * time.Second

// KafkaNotifier 把通知异步投递到 Kafka。投递失败只记日志，不影响主流程。
type KafkaNotifier struct {
	producer   *kafka.Producer
	topic      string
	partitions int32
}

func NewKafkaNotifier(opt mq.KafkaProducerOption, topic string, partitions int) (*KafkaNotifier, error) {
	producer, err := mq.NewKafkaProducer(opt)
	if err != nil {
		return nil, err
	}
	return &KafkaNotifier{producer: producer, topic: topic, partitions: int32(partitions)}, nil
}

// partitionFor 同一笔交易的通知落在同一分区，保持消费侧顺序；
// 无 TxID 的通知（批次汇总等）由 broker 任意分配。
func (k *KafkaNotifier) partitionFor(n Notification) int32 {
	if n.TxID == "" || k.partitions <= 0 {
		return kafka.PartitionAny
	}
	return int32(utils.PartitionHashBytes([]byte(n.TxID), uint32(k.partitions)))
}

// Notify 序列化后异步投递，立即返回
func (k *KafkaNotifier) Notify(ctx context.Context, n Notification) {
	value, err := json.Marshal(n)
	if err != nil {
		logger.Errorf("[notify] marshal notification failed: %v", err)
		return
	}

	deliveryChan := make(chan kafka.Event, 1)
	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &k.topic,
			Partition: k.partitionFor(n),
		},
		Key:   []byte(n.TxID),
		Value: value,
	}, deliveryChan)
	if err != nil {
		logger.Warnf("[notify] produce failed: topic=%s err=%v", k.topic, err)
		return
	}

	// 投递结果在后台等待，超时放弃
	go func() {
		select {
		case e := <-deliveryChan:
			if msg, ok := e.(*kafka.Message); ok && msg.TopicPartition.Error != nil {
				logger.Warnf("[notify] delivery failed: topic=%s err=%v", k.topic, msg.TopicPartition.Error)
			}
		case <-time.After(deliveryWait):
			logger.Warnf("[notify] delivery timeout (>%v): topic=%s", deliveryWait, k.topic)
		}
	}()
}

// Close 冲刷未送达的消息并关闭生产者
func (k *KafkaNotifier) Close() {
	k.producer.Flush(int(deliveryWait / time.Millisecond))
	k.producer.Close()
}
