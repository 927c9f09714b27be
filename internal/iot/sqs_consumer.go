package iot

import (
	"context"
	"encoding/json"
	"time"

	"smart_toll/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	log "github.com/sirupsen/logrus"
)

type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type TriggerHandler interface {
	HandleTrigger(ctx context.Context, source string, trigger domain.CaptureTrigger) (*domain.AuthorizationOutcome, error)
}

// SQSTriggerConsumer feeds capture triggers published by remote motion sensors into the booth.
type SQSTriggerConsumer struct {
	sqsClient  SQSAPI
	queueURL   string
	handler    TriggerHandler
	retryDelay time.Duration
}

func NewSQSTriggerConsumer(client SQSAPI, queueURL string, handler TriggerHandler) *SQSTriggerConsumer {
	return &SQSTriggerConsumer{
		sqsClient:  client,
		queueURL:   queueURL,
		handler:    handler,
		retryDelay: 5 * time.Second,
	}
}

func (c *SQSTriggerConsumer) Start(ctx context.Context) {
	log.Printf("SQS Consumer: listening on queue %s", c.queueURL)
	for {
		select {
		case <-ctx.Done():
			log.Println("SQS Consumer: context cancelled, stopping.")
			return
		default:
		}

		result, err := c.sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 1,
			WaitTimeSeconds:     20,
			VisibilityTimeout:   60,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("SQS Consumer: receive failed: %v", err)
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				log.Println("SQS Consumer: context cancelled while waiting for retry.")
				return
			}
			continue
		}

		for _, message := range result.Messages {
			c.process(ctx, message.MessageId, message.Body, message.ReceiptHandle)
		}
	}
}

// process handles one message. Triggers are handled one at a time because the booth owns a single camera.
func (c *SQSTriggerConsumer) process(ctx context.Context, id, body, receipt *string) {
	entry := log.WithField("message_id", aws.ToString(id))
	if body == nil {
		entry.Println("SQS Consumer: empty message body, deleting")
		c.deleteMessage(ctx, receipt)
		return
	}

	var trigger domain.CaptureTrigger
	if err := json.Unmarshal([]byte(*body), &trigger); err != nil {
		entry.Printf("SQS Consumer: malformed trigger, deleting: %v", err)
		c.deleteMessage(ctx, receipt)
		return
	}

	if ctx.Err() != nil {
		entry.Println("SQS Consumer: stopping before trigger was handled, leaving message on the queue")
		return
	}

	// handled triggers are never redelivered
	outcome, err := c.handler.HandleTrigger(ctx, "sqs", trigger)
	if err != nil {
		entry.Printf("SQS Consumer: trigger ended with %v", err)
	} else {
		entry.Printf("SQS Consumer: trigger decided %s for %s", outcome.Decision, outcome.PlateKey)
	}
	c.deleteMessage(context.WithoutCancel(ctx), receipt)
}

func (c *SQSTriggerConsumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	if receiptHandle == nil {
		log.Println("SQS Consumer: missing receipt handle, cannot delete message.")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := c.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		log.Printf("SQS Consumer: delete failed: %v", err)
	}
}
