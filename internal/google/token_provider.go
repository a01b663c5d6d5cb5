package google

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/travelcal/internal/instrumentation"
	"github.com/teemow/travelcal/internal/logging"
)

// TokenProvider is an interface for providing OAuth tokens for Google APIs.
type TokenProvider interface {
	// GetTokenForAccount retrieves an OAuth token for the specified account
	GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool

	// SaveTokenForAccount stores a token for the specified account
	SaveTokenForAccount(ctx context.Context, account string, token *oauth2.Token) error
}

// FileTokenProvider serves tokens from a FileTokenStore.
type FileTokenProvider struct {
	store *FileTokenStore
}

// NewFileTokenProvider creates a provider backed by store.
func NewFileTokenProvider(store *FileTokenStore) *FileTokenProvider {
	return &FileTokenProvider{store: store}
}

// GetTokenForAccount retrieves the stored token for account.
func (p *FileTokenProvider) GetTokenForAccount(ctx context.Context, account string) (*oauth2.Token, error) {
	return p.store.Load(account)
}

// HasTokenForAccount checks if a token file exists for the specified account.
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return p.store.Has(account)
}

// SaveTokenForAccount writes the token for account.
func (p *FileTokenProvider) SaveTokenForAccount(ctx context.Context, account string, token *oauth2.Token) error {
	return p.store.Save(account, token)
}

// TokenSource returns a token source for account that refreshes through conf
// and writes every refreshed token back to provider.
func TokenSource(ctx context.Context, conf *oauth2.Config, provider TokenProvider, account string, metrics *instrumentation.Metrics, logger *slog.Logger) (oauth2.TokenSource, error) {
	tok, err := provider.GetTokenForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	base := conf.TokenSource(ctx, tok)
	return oauth2.ReuseTokenSource(tok, &persistingTokenSource{
		ctx:      ctx,
		base:     base,
		provider: provider,
		account:  account,
		last:     tok.AccessToken,
		metrics:  metrics,
		logger:   logging.WithAccount(logging.OrDefault(logger), account),
	}), nil
}

// persistingTokenSource saves a token whenever the access token changes.
type persistingTokenSource struct {
	ctx      context.Context
	base     oauth2.TokenSource
	provider TokenProvider
	account  string
	metrics  *instrumentation.Metrics
	logger   *slog.Logger

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		s.metrics.RecordOAuthTokenRefresh(s.ctx, instrumentation.OAuthResultFailure)
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken == s.last {
		return tok, nil
	}
	s.last = tok.AccessToken
	s.metrics.RecordOAuthTokenRefresh(s.ctx, instrumentation.OAuthResultSuccess)

	if err := s.provider.SaveTokenForAccount(s.ctx, s.account, tok); err != nil {
		// The refreshed token still works for this run.
		s.logger.Warn("failed to persist refreshed token", logging.Err(err))
	} else {
		s.logger.Debug("refreshed token persisted", slog.String("token", logging.SanitizeToken(tok.AccessToken)))
	}
	return tok, nil
}

// Exchange trades an authorization code for a token and stores it.
func Exchange(ctx context.Context, conf *oauth2.Config, provider TokenProvider, account, code string, metrics *instrumentation.Metrics) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultFailure)
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	metrics.RecordOAuthAuth(ctx, instrumentation.OAuthResultSuccess)

	if err := provider.SaveTokenForAccount(ctx, account, tok); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}
