package httpapi

import (
	"net/http"

	"github.com/vpnhouse/songbook/pkg/validator"
	"github.com/vpnhouse/songbook/pkg/xerror"
	"github.com/vpnhouse/songbook/pkg/xhttp"
)

type signUpRequest struct {
	Username string `json:"username" valid:"required"`
	Password string `json:"password" valid:"required"`
	Email    string `json:"email" valid:"email,required"`
}

type confirmSignUpRequest struct {
	Username string `json:"username" valid:"required"`
	Code     string `json:"code" valid:"required"`
}

type signInRequest struct {
	Username string `json:"username" valid:"required"`
	Password string `json:"password" valid:"required"`
}

// decodeBody reads a strictly typed payload and validates its struct tags.
func decodeBody(r *http.Request, v interface{}, description string) error {
	if err := xhttp.DecodeJSON(r, v); err != nil {
		return err
	}
	if err := validator.ValidateStruct(v); err != nil {
		return xerror.EInvalidArgument(description, err)
	}
	return nil
}

// SignUp implements POST method on /auth/signup endpoint
func (api *SongbookAPI) SignUp(w http.ResponseWriter, r *http.Request) {
	xhttp.JSONResponse(w, func() (interface{}, error) {
		var req signUpRequest
		if err := decodeBody(r, &req, "Invalid signup data"); err != nil {
			return nil, err
		}

		if err := api.identity.SignUp(r.Context(), req.Username, req.Password, req.Email); err != nil {
			return nil, err
		}
		return messageResponse{Message: "Signup successful, check your email for the confirmation code"}, nil
	})
}

// ConfirmSignUp implements POST method on /auth/confirm_signup endpoint
func (api *SongbookAPI) ConfirmSignUp(w http.ResponseWriter, r *http.Request) {
	xhttp.JSONResponse(w, func() (interface{}, error) {
		var req confirmSignUpRequest
		if err := decodeBody(r, &req, "Invalid confirmation data"); err != nil {
			return nil, err
		}

		if err := api.identity.ConfirmSignUp(r.Context(), req.Username, req.Code); err != nil {
			return nil, err
		}
		return messageResponse{Message: "User " + req.Username + " successfully confirmed"}, nil
	})
}

// SignIn implements POST method on /auth/signin endpoint,
// the ID token is handed out as an HttpOnly session cookie.
func (api *SongbookAPI) SignIn(w http.ResponseWriter, r *http.Request) {
	xhttp.JSONResponse(w, func() (interface{}, error) {
		var req signInRequest
		if err := decodeBody(r, &req, "Invalid signin data"); err != nil {
			return nil, err
		}

		token, err := api.identity.SignIn(r.Context(), req.Username, req.Password)
		if err != nil {
			return nil, err
		}

		xhttp.SetSessionCookie(w, api.authorizer.CookieName(), token)
		return messageResponse{Message: "Signin successful"}, nil
	})
}

// SignOut implements POST method on /auth/signout endpoint
func (api *SongbookAPI) SignOut(w http.ResponseWriter, r *http.Request) {
	xhttp.JSONResponse(w, func() (interface{}, error) {
		xhttp.ClearSessionCookie(w, api.authorizer.CookieName())
		return messageResponse{Message: "Signout successful"}, nil
	})
}
