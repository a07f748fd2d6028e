package server

import (
	"net/http"
	"net/mail"
	"strings"

	"dealdesk/internal"
	"dealdesk/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

type registerRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
	Role       string `json:"role"`
}

func (s *Service) handlePostRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if _, err := mail.ParseAddress(req.Email); err != nil {
		s.respondError(w, types.NewValidationError("email", "not a valid address"))
		return
	}
	if len(req.Password) < 8 {
		s.respondError(w, types.NewValidationError("password", "must be at least 8 characters"))
		return
	}

	role, err := types.ParseRole(req.Role)
	if err != nil {
		s.respondError(w, types.NewValidationError("role", "must be SELLER, BUYER, BROKER or AGENT"))
		return
	}

	input := &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(s.config.CognitoClientID),
		Username: aws.String(req.Email), // use email as username
		Password: aws.String(req.Password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(req.Email)},
			{Name: aws.String("given_name"), Value: aws.String(strings.TrimSpace(req.GivenName))},
			{Name: aws.String("family_name"), Value: aws.String(strings.TrimSpace(req.FamilyName))},
			{Name: aws.String("custom:role"), Value: aws.String(string(role))},
		},
	}

	if _, err := s.cognitoClient.SignUp(ctx, input); err != nil {
		s.logger.WithError(err).Error("failed to sign up user")
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusAccepted, map[string]string{"email": req.Email, "status": "CONFIRMATION_PENDING"})
}

type confirmRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (s *Service) handlePostConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req confirmRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	input := &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(s.config.CognitoClientID),
		Username:         aws.String(strings.TrimSpace(req.Email)),
		ConfirmationCode: aws.String(strings.TrimSpace(req.Code)),
	}

	if _, err := s.cognitoClient.ConfirmSignUp(ctx, input); err != nil {
		s.logger.WithError(err).Error("failed to confirm signup")
		s.respondError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "CONFIRMED"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) handlePostLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	input := &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.config.CognitoClientID),
		AuthParameters: map[string]string{
			"USERNAME": req.Email,
			"PASSWORD": req.Password,
		},
	}

	resp, err := s.cognitoClient.InitiateAuth(ctx, input)
	if err != nil {
		// NotAuthorizedException, UserNotConfirmedException, etc.
		s.respondError(w, types.ErrNotAuthorized)
		return
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		s.respondError(w, types.ErrNotAuthorized)
		return
	}

	accessToken := aws.ToString(resp.AuthenticationResult.AccessToken)
	expiresIn := int(resp.AuthenticationResult.ExpiresIn)

	// Mirror the identity into the local users table so document payloads
	// can name their uploader.
	if err := s.upsertIdentityFromToken(r, accessToken); err != nil {
		s.logger.WithError(err).Error("failed to mirror user identity")
		s.respondError(w, err)
		return
	}

	encryptedToken, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, accessToken)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt access token")
		s.respondError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   expiresIn,
		Path:     "/",
	})

	s.respondJSON(w, http.StatusOK, map[string]string{"status": "AUTHENTICATED"})
}

func (s *Service) handlePostLogout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   -1,
	})

	w.WriteHeader(http.StatusNoContent)
}

func (s *Service) upsertIdentityFromToken(r *http.Request, accessToken string) error {
	ctx := r.Context()

	set, err := s.jwksCache.Lookup(ctx, s.jwksURL)
	if err != nil {
		return err
	}

	token, err := jwt.Parse(
		[]byte(accessToken),
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	)
	if err != nil {
		return err
	}

	userID, ok := token.Subject()
	if !ok || userID == "" {
		return types.ErrNotAuthorized
	}

	var roleClaim, email, givenName, familyName string
	if err := token.Get("custom:role", &roleClaim); err != nil {
		return types.ErrNotAuthorized
	}
	_ = token.Get("email", &email)
	_ = token.Get("given_name", &givenName)
	_ = token.Get("family_name", &familyName)

	role, err := types.ParseRole(roleClaim)
	if err != nil {
		return types.ErrNotAuthorized
	}

	return s.userRepo.UpsertIdentity(ctx, userID, role, email, givenName, familyName)
}
