// Package auth persists the course API bearer token for each browser
// session. The token is the only state this service owns: it is created at
// login, read by every authenticated request, and destroyed at logout or
// expiry.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/coursedeck/backend/internal/crypto"
	"github.com/coursedeck/backend/internal/model"
	"github.com/coursedeck/backend/internal/session"
)

// ErrNoToken is returned when a session has no stored token. Callers must
// treat it as "unauthenticated", never as a fault: requests without a
// token still go out, just without a bearer credential.
var ErrNoToken = errors.New("no token for session")

// TokenStore saves, loads and clears the per-session course API token.
// With a DynamoDB client it persists to the session tokens table, the
// token encrypted at rest; with a nil client it falls back to an in-memory
// map for tests and local development.
type TokenStore struct {
	dynamoClient *dynamodb.Client
	tableName    string
	encryptor    crypto.Encryptor
	ttl          time.Duration

	// In-memory fallback
	mu     sync.RWMutex
	tokens map[string]model.StoredToken
}

// NewTokenStore creates a TokenStore. client may be nil for the in-memory
// fallback.
func NewTokenStore(client *dynamodb.Client, tableName string, encryptor crypto.Encryptor) *TokenStore {
	return &TokenStore{
		dynamoClient: client,
		tableName:    tableName,
		encryptor:    encryptor,
		ttl:          session.TTL,
		tokens:       make(map[string]model.StoredToken),
	}
}

// Save encrypts the bearer token and stores it under the session ID. The
// record expires with the session cookie; DynamoDB's TTL sweeps it.
func (s *TokenStore) Save(ctx context.Context, sessionID, token string) error {
	if sessionID == "" {
		return errors.New("session id is required")
	}

	encrypted, err := s.encryptor.Encrypt(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	record := model.StoredToken{
		SessionID:      sessionID,
		EncryptedToken: encrypted,
		ExpiresAt:      time.Now().Add(s.ttl).Unix(),
		UpdatedAt:      time.Now(),
	}

	if s.dynamoClient == nil {
		s.mu.Lock()
		s.tokens[sessionID] = record
		s.mu.Unlock()
		return nil
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal stored token: %w", err)
	}

	_, err = s.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save token to DynamoDB: %w", err)
	}

	return nil
}

// Get returns the decrypted bearer token for a session. A missing or
// expired record yields ErrNoToken; DynamoDB TTL deletion lags, so the
// expiry is checked here as well.
func (s *TokenStore) Get(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrNoToken
	}

	var record model.StoredToken

	if s.dynamoClient == nil {
		s.mu.RLock()
		r, ok := s.tokens[sessionID]
		s.mu.RUnlock()
		if !ok {
			return "", ErrNoToken
		}
		record = r
	} else {
		out, err := s.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(s.tableName),
			Key: map[string]types.AttributeValue{
				"session_id": &types.AttributeValueMemberS{Value: sessionID},
			},
		})
		if err != nil {
			return "", fmt.Errorf("failed to get item from DynamoDB: %w", err)
		}
		if out.Item == nil {
			return "", ErrNoToken
		}
		if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
			return "", fmt.Errorf("failed to unmarshal stored token: %w", err)
		}
	}

	if record.ExpiresAt < time.Now().Unix() {
		return "", ErrNoToken
	}

	token, err := s.encryptor.Decrypt(ctx, record.EncryptedToken)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt token: %w", err)
	}
	return token, nil
}

// Clear removes the session's token. Clearing an unknown session is not an
// error.
func (s *TokenStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if s.dynamoClient == nil {
		s.mu.Lock()
		delete(s.tokens, sessionID)
		s.mu.Unlock()
		return nil
	}

	_, err := s.dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"session_id": &types.AttributeValueMemberS{Value: sessionID},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}
