package export

import (
	"context"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/letterwriter/letterwriter/internal/apperr"
	"github.com/letterwriter/letterwriter/internal/letters"
	"github.com/letterwriter/letterwriter/internal/models"
	"github.com/letterwriter/letterwriter/pkg/logger"
	"github.com/letterwriter/letterwriter/pkg/metrics"
)

// UserStore is the slice of the user service the exporter needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiry time.Time) error
}

// LetterStore records the exported document id on the letter.
type LetterStore interface {
	SetGoogleDocID(ctx context.Context, id, ownerID, docID string) error
}

// Refresher performs a single refresh-grant round trip.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// DocsClient performs the two remote calls of an export.
type DocsClient interface {
	CreateDocument(ctx context.Context, title string) (string, error)
	InsertText(ctx context.Context, docID, text string) error
}

// DocsClientFactory builds a DocsClient bound to an access token.
type DocsClientFactory func(ctx context.Context, accessToken string) (DocsClient, error)

// Archiver optionally stores a copy of the exported letter body.
type Archiver interface {
	Archive(ctx context.Context, key, contentType string, body []byte) error
}

// Exporter drives the Drive/Docs export flow: check the stored credential,
// refresh it at most once when expired, create the remote document, write the
// letter content, persist the document id. No internal retries; every failure
// is classified and surfaced to the caller.
type Exporter struct {
	users     UserStore
	letters   LetterStore
	refresher Refresher
	newDocs   DocsClientFactory
	archiver  Archiver // may be nil
	reauthURL string
	now       func() time.Time
}

func NewExporter(users UserStore, ls LetterStore, r Refresher, f DocsClientFactory, reauthURL string) *Exporter {
	return &Exporter{
		users:     users,
		letters:   ls,
		refresher: r,
		newDocs:   f,
		reauthURL: reauthURL,
		now:       time.Now,
	}
}

// WithArchiver enables best-effort object-storage archiving of exported
// letters.
func (e *Exporter) WithArchiver(a Archiver) *Exporter {
	e.archiver = a
	return e
}

// Export runs the flow for a letter already authorized for ownerID. On
// success the Google document id is persisted on the letter and returned.
func (e *Exporter) Export(ctx context.Context, l *letters.Letter) (string, error) {
	u, err := e.users.GetByID(ctx, l.UserID)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", apperr.ErrUserNotFound
	}
	if u.AccessToken == "" {
		metrics.ExportAttempts.WithLabelValues("missing_token").Inc()
		return "", apperr.MissingCredential(e.reauthURL)
	}

	accessToken := u.AccessToken
	if !u.TokenExpiry.IsZero() && u.TokenExpiry.Before(e.now()) {
		logger.Infof("access token for user %s expired, refreshing", u.ID)
		tok, err := e.refresher.Refresh(ctx, u.RefreshToken)
		if err != nil {
			logger.Warnf("token refresh failed for user %s: %v", u.ID, err)
			metrics.TokenRefreshes.WithLabelValues("failure").Inc()
			metrics.ExportAttempts.WithLabelValues("expired_token").Inc()
			return "", apperr.ExpiredCredential(e.reauthURL)
		}
		metrics.TokenRefreshes.WithLabelValues("success").Inc()
		// the new credential must be durable before any remote call uses it
		if err := e.users.UpdateTokens(ctx, u.ID, tok.AccessToken, tok.RefreshToken, tok.Expiry); err != nil {
			return "", err
		}
		accessToken = tok.AccessToken
	}

	docs, err := e.newDocs(ctx, accessToken)
	if err != nil {
		return "", err
	}

	docID, err := docs.CreateDocument(ctx, l.Title)
	if err != nil {
		metrics.ExportAttempts.WithLabelValues("remote_error").Inc()
		return "", classifyRemote(err)
	}
	if err := docs.InsertText(ctx, docID, l.Content); err != nil {
		metrics.ExportAttempts.WithLabelValues("remote_error").Inc()
		return "", classifyRemote(err)
	}

	if err := e.letters.SetGoogleDocID(ctx, l.ID, l.UserID, docID); err != nil {
		return "", err
	}
	metrics.ExportAttempts.WithLabelValues("success").Inc()

	if e.archiver != nil {
		// best effort, never fails the export
		key := "letters/" + l.ID + ".html"
		if err := e.archiver.Archive(ctx, key, "text/html", []byte(l.Content)); err != nil {
			logger.Warnf("failed to archive letter %s: %v", l.ID, err)
		}
	}

	return docID, nil
}

// classifyRemote maps a Google API failure onto the error taxonomy: disabled
// API, rejected grant, or generic remote failure.
func classifyRemote(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "API has not been used") || strings.Contains(msg, "it is disabled") {
		return apperr.ServiceUnavailable(msg)
	}
	if strings.Contains(msg, "invalid_grant") {
		return apperr.ExpiredCredential("")
	}
	return err
}
