package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/ahinestrog/smartkart/Backend/src/platform/fault"
)

// FirebaseVerifier accepts Firebase ID tokens. Administrators carry the
// custom claim admin=true.
type FirebaseVerifier struct {
	client *fbauth.Client
}

func NewFirebaseVerifier(ctx context.Context, projectID, credFile string) (*FirebaseVerifier, error) {
	var opts []option.ClientOption
	if credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app init: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Principal, error) {
	t, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Principal{}, fault.Unauthenticated("token verification failed, access denied")
	}
	admin, _ := t.Claims["admin"].(bool)
	return Principal{UserID: t.UID, Admin: admin}, nil
}
