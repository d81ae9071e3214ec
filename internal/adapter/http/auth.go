package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/nettap/internal/app"
	"github.com/neomorfeo/nettap/internal/domain"
)

type LoginInput struct {
	Body struct {
		Email    string `json:"email,omitempty"`
		Password string `json:"password,omitempty"`
	}
}

type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refreshToken,omitempty"`
	}
}

func registerAuth(api huma.API, svc *app.AuthService, limiter *RateLimiter) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/auth/login",
		Summary:     "Exchange credentials for tokens",
		Tags:        []string{"Auth"},
		Middlewares: limited(api, limiter),
	}, func(ctx context.Context, input *LoginInput) (*Response[AuthResponse], error) {
		if input.Body.Email == "" || input.Body.Password == "" {
			return nil, toAPIError(ctx, &domain.ValidationError{Message: "Email and password are required"})
		}
		res, err := svc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return respond(toAuthResponse(res)), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/api/auth/refresh",
		Summary:     "Rotate a refresh token",
		Description: "The presented refresh token is revoked and a new pair is issued.",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RefreshInput) (*Response[AuthResponse], error) {
		if input.Body.RefreshToken == "" {
			return nil, toAPIError(ctx, &domain.ValidationError{Message: "refreshToken is required"})
		}
		res, err := svc.Refresh(ctx, input.Body.RefreshToken)
		if err != nil {
			return nil, toAPIError(ctx, err)
		}
		return respond(toAuthResponse(res)), nil
	})
}
