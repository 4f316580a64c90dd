package http

import (
	"github.com/rs/zerolog"

	"github.com/onehope/resources-api/internal/application/auth"
	storageapp "github.com/onehope/resources-api/internal/application/storage"
	"github.com/onehope/resources-api/internal/infrastructure/dynamo"
	"github.com/onehope/resources-api/internal/infrastructure/mailer"
	"github.com/onehope/resources-api/internal/otp"
	"github.com/onehope/resources-api/internal/session"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo     *dynamo.UserRepo
	DownloadRepo *dynamo.DownloadLogRepo
	SavedRepo    *dynamo.SavedResourceRepo

	Codes     otp.Store
	Sessions  *session.Manager
	Mailer    mailer.Mailer
	Presigner storageapp.Presigner

	// TokenVerifier is nil when no delegated identity provider is configured;
	// the exchange-token flow then answers 503.
	TokenVerifier auth.TokenVerifier

	Logger zerolog.Logger
}
