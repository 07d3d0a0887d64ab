package utils

import (
	"time"

	"github.com/MicahParks/keyfunc"
	"go.uber.org/zap"
)

func JwksCreatePublicKey(jwksURL string, refreshInterval time.Duration) (*keyfunc.JWKS, error) {
	// Refresh failures keep the previous key set; the dashboard keeps serving.
	options := keyfunc.Options{
		RefreshInterval: refreshInterval,
		RefreshErrorHandler: func(err error) {
			zap.S().Errorf("refreshing jwks from %s: %v", jwksURL, err)
		},
	}

	jwks, err := keyfunc.Get(jwksURL, options)
	if err != nil {
		return nil, err
	}
	return jwks, nil
}
