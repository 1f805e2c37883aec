package export

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"

	"github.com/letterwriter/letterwriter/internal/googleauth"
)

// googleDocsClient implements DocsClient over the Google Docs v1 API.
type googleDocsClient struct {
	svc *docs.Service
}

// NewDocsClientFactory builds DocsClients authorized with the user's access
// token via the shared OAuth provider.
func NewDocsClientFactory(p *googleauth.Provider) DocsClientFactory {
	return func(ctx context.Context, accessToken string) (DocsClient, error) {
		svc, err := docs.NewService(ctx, option.WithHTTPClient(p.Client(ctx, accessToken)))
		if err != nil {
			return nil, fmt.Errorf("failed to create Docs service: %w", err)
		}
		return &googleDocsClient{svc: svc}, nil
	}
}

func (c *googleDocsClient) CreateDocument(ctx context.Context, title string) (string, error) {
	doc, err := c.svc.Documents.Create(&docs.Document{Title: title}).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	if doc.DocumentId == "" {
		return "", errors.New("failed to create document: no document id returned")
	}
	return doc.DocumentId, nil
}

func (c *googleDocsClient) InsertText(ctx context.Context, docID, text string) error {
	req := &docs.BatchUpdateDocumentRequest{
		Requests: []*docs.Request{
			{
				InsertText: &docs.InsertTextRequest{
					Location: &docs.Location{Index: 1},
					Text:     text,
				},
			},
		},
	}
	_, err := c.svc.Documents.BatchUpdate(docID, req).Context(ctx).Do()
	return err
}
