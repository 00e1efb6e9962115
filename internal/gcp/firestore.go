package gcp

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/Lllllllleong/chinesepdfparser/internal/models"
)

// NewFirestoreClient creates and returns a new Firestore client for the given project ID.
// It centralizes client creation for all services.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}

	return client, nil
}

// DocumentStore keeps parse-job Documents in a Firestore collection.
type DocumentStore struct {
	client     *firestore.Client
	collection string
}

// NewDocumentStore returns a store writing to the named collection.
func NewDocumentStore(client *firestore.Client, collection string) *DocumentStore {
	return &DocumentStore{client: client, collection: collection}
}

// FindByHash returns the ID of an existing document for fileHash, if any.
func (s *DocumentStore) FindByHash(ctx context.Context, fileHash string) (string, bool, error) {
	docs, err := s.client.Collection(s.collection).Where("fileHash", "==", fileHash).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return "", false, fmt.Errorf("failed to query for duplicates: %w", err)
	}
	if len(docs) > 0 {
		return docs[0].Ref.ID, true, nil
	}
	return "", false, nil
}

// Create adds a new document and returns its generated ID.
func (s *DocumentStore) Create(ctx context.Context, doc models.Document) (string, error) {
	docRef, _, err := s.client.Collection(s.collection).Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create master document: %w", err)
	}
	return docRef.ID, nil
}

// Update sets the given field paths on an existing document.
func (s *DocumentStore) Update(ctx context.Context, id string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}
	if _, err := s.client.Collection(s.collection).Doc(id).Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to update document %s: %w", id, err)
	}
	return nil
}
