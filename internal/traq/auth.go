package traq

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/tonimelisma/qui/internal/tokenfile"
)

// OAuthOptions identifies the OAuth2 client registered on the traQ server.
type OAuthOptions struct {
	ServerURL    string // API root; the OAuth2 endpoints live under it
	ClientID     string
	RedirectURL  string // empty: the server uses the client's registered URI
	RedirectPort int    // local callback listener port
}

// stateTokenBytes is the number of random bytes for the OAuth2 state parameter.
const stateTokenBytes = 16

// callbackPath is the HTTP path the OAuth2 redirect hits on the local server.
const callbackPath = "/"

// shutdownTimeout is how long to wait for the callback server to drain.
const shutdownTimeout = 5 * time.Second

// callbackResult carries the authorization code or error from the callback handler.
type callbackResult struct {
	code string
	err  error
}

// Login performs the authorization code + PKCE flow:
//  1. Binds a localhost HTTP server on opts.RedirectPort
//  2. Opens the browser to the server's authorization endpoint
//  3. Receives the callback with the authorization code
//  4. Exchanges the code for a token using PKCE
//  5. Saves the token to disk at tokenPath
//
// If the port cannot be bound, Login falls back to a manual flow: the URL is
// printed and the redirected URL is read as one line from manual.
//
// The returned TokenSource binds ctx to the underlying oauth2 token source.
func Login(
	ctx context.Context,
	opts OAuthOptions,
	tokenPath string,
	openURL func(string) error,
	manual io.Reader,
	logger *slog.Logger,
) (TokenSource, error) {
	cfg := oauthConfig(opts)

	return doLogin(ctx, cfg, opts.RedirectPort, tokenPath, openURL, manual, logger)
}

// doLogin accepts a pre-built oauth2.Config so tests can inject a mock endpoint.
func doLogin(
	ctx context.Context,
	cfg *oauth2.Config,
	port int,
	tokenPath string,
	openURL func(string) error,
	manual io.Reader,
	logger *slog.Logger,
) (TokenSource, error) {
	logger.Info("starting browser auth flow (authorization code + PKCE)",
		slog.String("path", tokenPath),
	)

	verifier := oauth2.GenerateVerifier()

	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("traq: generating state token: %w", err)
	}

	authURL := cfg.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))

	var code string

	resultCh := make(chan callbackResult, 1)
	mux := http.NewServeMux()

	srv, err := startCallbackServer(ctx, port, mux, resultCh, logger)
	if err != nil {
		logger.Warn("callback server unavailable, continuing with manual authentication",
			slog.String("error", err.Error()),
		)

		code, err = manualCode(authURL, state, manual)
		if err != nil {
			return nil, err
		}
	} else {
		defer shutdownCallbackServer(srv, logger)

		registerCallbackHandler(mux, state, resultCh)
		launchBrowser(authURL, openURL, logger)

		code, err = waitForCallback(ctx, resultCh)
		if err != nil {
			return nil, err
		}
	}

	return exchangeAndSave(ctx, cfg, tokenPath, code, verifier, logger)
}

// startCallbackServer binds 127.0.0.1:port and serves mux.
func startCallbackServer(
	ctx context.Context,
	port int,
	mux *http.ServeMux,
	resultCh chan<- callbackResult,
	logger *slog.Logger,
) (*http.Server, error) {
	lc := net.ListenConfig{}

	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return nil, fmt.Errorf("traq: binding localhost listener: %w", err)
	}

	logger.Info("callback server listening", slog.String("addr", listener.Addr().String()))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}

	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			resultCh <- callbackResult{err: fmt.Errorf("traq: callback server error: %w", serveErr)}
		}
	}()

	return srv, nil
}

// registerCallbackHandler adds the callback route to the mux.
func registerCallbackHandler(mux *http.ServeMux, state string, resultCh chan<- callbackResult) {
	mux.HandleFunc("GET "+callbackPath, func(w http.ResponseWriter, r *http.Request) {
		handleOAuthCallback(w, r, state, resultCh)
	})
}

// handleOAuthCallback validates the state, extracts the code, and sends the result.
func handleOAuthCallback(w http.ResponseWriter, r *http.Request, state string, resultCh chan<- callbackResult) {
	code, err := codeFromQuery(r.URL.Query(), state)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		sendResult(resultCh, callbackResult{err: err})

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<html><body><h1>Authentication successful</h1>"+
		"<p>You can close this window and return to the terminal.</p></body></html>")
	sendResult(resultCh, callbackResult{code: code})
}

// sendResult delivers the first callback outcome; later hits are dropped.
func sendResult(resultCh chan<- callbackResult, res callbackResult) {
	select {
	case resultCh <- res:
	default:
	}
}

// codeFromQuery checks the state and returns the authorization code.
func codeFromQuery(q url.Values, state string) (string, error) {
	if q.Get("state") != state {
		return "", errors.New("traq: OAuth2 state mismatch (possible CSRF)")
	}

	if errParam := q.Get("error"); errParam != "" {
		return "", fmt.Errorf("traq: authorization failed: %s: %s", errParam, q.Get("error_description"))
	}

	code := q.Get("code")
	if code == "" {
		return "", errors.New("traq: callback missing authorization code")
	}

	return code, nil
}

// manualCode prints the authorization URL and reads back the URL the
// browser was redirected to.
func manualCode(authURL, state string, in io.Reader) (string, error) {
	fmt.Fprintf(os.Stderr, "Open this URL in your browser:\n%s\n\n", authURL)
	fmt.Fprint(os.Stderr, "Enter the URL you were redirected to: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("traq: reading redirect URL: %w", err)
	}

	redirected, err := url.Parse(strings.TrimSpace(line))
	if err != nil {
		return "", fmt.Errorf("traq: parsing redirect URL: %w", err)
	}

	return codeFromQuery(redirected.Query(), state)
}

// shutdownCallbackServer gracefully shuts down the callback HTTP server.
func shutdownCallbackServer(srv *http.Server, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("callback server shutdown error", slog.String("error", err.Error()))
	}
}

// launchBrowser attempts to open the auth URL. If it fails, prints the URL
// to stderr as a fallback so the user can copy-paste it.
func launchBrowser(authURL string, openURL func(string) error, logger *slog.Logger) {
	logger.Info("opening browser for authorization")

	if openErr := openURL(authURL); openErr != nil {
		logger.Warn("failed to open browser, printing URL",
			slog.String("error", openErr.Error()),
		)

		fmt.Fprintf(os.Stderr, "Open this URL in your browser:\n%s\n", authURL)
	}
}

// waitForCallback blocks until the callback fires or the context is canceled.
func waitForCallback(ctx context.Context, resultCh <-chan callbackResult) (string, error) {
	select {
	case result := <-resultCh:
		if result.err != nil {
			return "", result.err
		}

		return result.code, nil
	case <-ctx.Done():
		return "", fmt.Errorf("traq: browser auth canceled: %w", ctx.Err())
	}
}

// exchangeAndSave exchanges the auth code for a token and persists it.
func exchangeAndSave(
	ctx context.Context,
	cfg *oauth2.Config,
	tokenPath, code, verifier string,
	logger *slog.Logger,
) (TokenSource, error) {
	logger.Info("received authorization code, exchanging for token")

	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("traq: token exchange failed: %w", err)
	}

	if saveErr := tokenfile.Save(tokenPath, tok, nil); saveErr != nil {
		return nil, fmt.Errorf("traq: saving token: %w", saveErr)
	}

	logger.Info("login successful",
		slog.String("path", tokenPath),
		slog.Time("expiry", tok.Expiry),
	)

	return newTokenBridge(ctx, cfg, tok, tokenPath, nil, logger), nil
}

// generateState produces a cryptographically random hex string for the
// OAuth2 state parameter.
func generateState() (string, error) {
	b := make([]byte, stateTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// TokenSourceFromPath loads a saved token and returns a TokenSource that
// refreshes it when possible and writes refreshed tokens back to disk.
// Returns ErrNotLoggedIn if no token file exists at the path.
func TokenSourceFromPath(ctx context.Context, opts OAuthOptions, tokenPath string, logger *slog.Logger) (TokenSource, error) {
	tok, meta, err := tokenfile.Load(tokenPath)
	if err != nil {
		return nil, err
	}

	if tok == nil {
		return nil, ErrNotLoggedIn
	}

	expired := !tok.Expiry.IsZero() && tok.Expiry.Before(time.Now())
	logger.Debug("loaded saved token",
		slog.String("path", tokenPath),
		slog.Time("expiry", tok.Expiry),
		slog.Bool("expired", expired),
	)

	return newTokenBridge(ctx, oauthConfig(opts), tok, tokenPath, meta, logger), nil
}

// Logout removes the saved token file at the given path.
// Returns nil if the token file does not exist (already logged out).
func Logout(tokenPath string, logger *slog.Logger) error {
	err := os.Remove(tokenPath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("logout: no token file to remove (already logged out)",
			slog.String("path", tokenPath),
		)

		return nil
	}

	if err != nil {
		return err
	}

	logger.Info("logout: removed token file", slog.String("path", tokenPath))

	return nil
}

// oauthConfig builds the oauth2.Config for a traQ server. traQ clients are
// public, so the client ID travels in the request body.
func oauthConfig(opts OAuthOptions) *oauth2.Config {
	base := strings.TrimRight(opts.ServerURL, "/")

	return &oauth2.Config{
		ClientID:    opts.ClientID,
		RedirectURL: opts.RedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:   base + "/oauth2/authorize",
			TokenURL:  base + "/oauth2/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// tokenBridge adapts oauth2.TokenSource to traq.TokenSource and persists
// the token whenever the oauth2 library hands back a new one.
type tokenBridge struct {
	src    oauth2.TokenSource
	path   string
	meta   map[string]string
	logger *slog.Logger

	mu   sync.Mutex
	last string
}

func newTokenBridge(
	ctx context.Context,
	cfg *oauth2.Config,
	tok *oauth2.Token,
	path string,
	meta map[string]string,
	logger *slog.Logger,
) *tokenBridge {
	return &tokenBridge{
		src:    cfg.TokenSource(ctx, tok),
		path:   path,
		meta:   meta,
		logger: logger,
		last:   tok.AccessToken,
	}
}

func (b *tokenBridge) Token() (string, error) {
	t, err := b.src.Token()
	if err != nil {
		b.logger.Warn("token acquisition failed", slog.String("error", err.Error()))
		return "", fmt.Errorf("traq: obtaining token: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if t.AccessToken != b.last {
		b.last = t.AccessToken
		b.persist(t)
	}

	return t.AccessToken, nil
}

// persist writes a refreshed token. Failure is logged, not returned: the
// in-memory token is still good for this invocation.
func (b *tokenBridge) persist(t *oauth2.Token) {
	b.logger.Info("token refreshed by oauth2 library",
		slog.String("path", b.path),
		slog.Time("new_expiry", t.Expiry),
	)

	if err := tokenfile.Save(b.path, t, b.meta); err != nil {
		b.logger.Warn("failed to persist refreshed token",
			slog.String("path", b.path),
			slog.String("error", err.Error()),
		)
	}
}

// LoadTokenMeta reads just the metadata from a token file.
func LoadTokenMeta(tokenPath string) (map[string]string, error) {
	return tokenfile.ReadMeta(tokenPath)
}

// SaveTokenMeta reads the current token, merges new metadata, and saves.
func SaveTokenMeta(tokenPath string, meta map[string]string) error {
	return tokenfile.LoadAndMergeMeta(tokenPath, meta)
}
