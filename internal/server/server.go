package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"dealdesk/internal/events"
	"dealdesk/internal/storage"
	"dealdesk/internal/store"
	"dealdesk/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

type Service struct {
	logger       *logrus.Logger
	config       *types.Config
	userRepo     *store.UserRepository
	listingRepo  *store.ListingRepository
	progressRepo *store.ProgressRepository
	documentRepo *store.DocumentRepository

	documents *storage.DocumentStorage
	bus       *events.Bus

	cognitoClient *cognitoidentityprovider.Client
	cookie        *securecookie.SecureCookie

	jwksCache *jwk.Cache
	jwksURL   string

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	cognitoClient *cognitoidentityprovider.Client,
	documents *storage.DocumentStorage,
	bus *events.Bus,
	userRepo *store.UserRepository,
	listingRepo *store.ListingRepository,
	progressRepo *store.ProgressRepository,
	documentRepo *store.DocumentRepository,
	jwkCache *jwk.Cache,
	jwksURL string,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger:        logger,
		config:        config,
		cognitoClient: cognitoClient,
		cookie:        securecookie.New(hashKey, blockKey),

		documents: documents,
		bus:       bus,

		userRepo:     userRepo,
		listingRepo:  listingRepo,
		progressRepo: progressRepo,
		documentRepo: documentRepo,

		jwksCache: jwkCache,
		jwksURL:   jwksURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/auth/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/auth/confirm", s.handlePostConfirm, http.MethodPost)
	r.HandleFunc("/auth/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/auth/logout", s.handlePostLogout, http.MethodPost)

	// Every role shares one set of handlers; the :role segment must match
	// the authenticated session role.
	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)
		r.Use(s.RequireRole)

		r.HandleFunc("/:role/progress", s.handleGetProgress, http.MethodGet)
		r.HandleFunc("/:role/progress/step", s.handlePostProgressStep, http.MethodPost)
		r.HandleFunc("/:role/progress/visit", s.handlePostProgressVisit, http.MethodPost)

		r.HandleFunc("/:role/current-listing", s.handleGetCurrentListing, http.MethodGet)
		r.HandleFunc("/:role/listings", s.handleGetListings, http.MethodGet)
		r.HandleFunc("/:role/listings", s.handlePostListings, http.MethodPost)
		r.HandleFunc("/:role/listings/select", s.handlePostSelectListing, http.MethodPost)
		r.HandleFunc("/:role/listings/:listingID/status", s.handlePostListingStatus, http.MethodPost)
		r.HandleFunc("/:role/listings/:listingID/buyers", s.handleGetListingBuyers, http.MethodGet)
		r.HandleFunc("/:role/listings/:listingID/buyers", s.handlePostAssignBuyer, http.MethodPost)

		r.HandleFunc("/:role/listings/:listingID/documents", s.handleGetListingDocuments, http.MethodGet)
		r.HandleFunc("/:role/listings/:listingID/documents", s.handlePostListingDocuments, http.MethodPost)
		r.HandleFunc("/:role/listings/:listingID/documents/:documentID", s.handleDeleteListingDocument, http.MethodDelete)
		r.HandleFunc("/:role/listings/:listingID/documents/:documentID/status", s.handlePostDocumentStatus, http.MethodPost)
		r.HandleFunc("/:role/listings/:listingID/agent-documents", s.handleGetProviderDocuments, http.MethodGet)
		r.HandleFunc("/:role/listings/:listingID/broker-documents", s.handleGetProviderDocuments, http.MethodGet)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Service) userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextKeyUserID).(string)
	if !ok {
		return "", fmt.Errorf("user id not found in context")
	}
	return userID, nil
}

func (s *Service) roleFromContext(ctx context.Context) (types.Role, error) {
	role, ok := ctx.Value(contextKeyRole).(types.Role)
	if !ok {
		return "", fmt.Errorf("role not found in context")
	}
	return role, nil
}
